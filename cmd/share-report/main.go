// Command share-report runs a scenario through the share allocation
// engine and writes the results as CSV and Excel reports, archiving them
// in the results database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"enershare/internal/config"
	"enershare/internal/exporter"
	"enershare/internal/infrastructure"
	"enershare/internal/results"
	"enershare/internal/scenario"
)

func main() {
	configFile := flag.String("config", "", "config file (defaults to config.yaml if present)")
	scenarioFile := flag.String("scenario", "", "scenario file (defaults to the configured path)")
	outputDir := flag.String("out", "", "output directory (defaults to the configured path)")
	noExcel := flag.Bool("no-excel", false, "skip the Excel workbook")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *scenarioFile == "" {
		*scenarioFile = cfg.Paths.ScenarioFile
	}
	if *outputDir == "" {
		*outputDir = cfg.Paths.OutputDir
	}

	logger.Info("loading scenario", "path", *scenarioFile)
	scn, err := scenario.Load(*scenarioFile)
	if err != nil {
		logger.Error("failed to load scenario", "error", err)
		os.Exit(1)
	}

	world, err := scenario.Build(scn, cfg.Simulation, logger)
	if err != nil {
		logger.Error("failed to build scenario", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := scenario.Run(ctx, world, cfg.Simulation, logger)
	if err != nil {
		logger.Error("scenario run failed", "error", err)
		os.Exit(1)
	}

	store, err := results.Open(cfg.Paths.ResultsDB)
	if err != nil {
		logger.Error("failed to open results database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, result.RunID, result.Scenario, result.Records); err != nil {
		logger.Error("failed to archive run", "error", err)
		os.Exit(1)
	}

	timestamp := time.Now().Format("20060102")
	csvName := fmt.Sprintf("share_report_%s.csv", timestamp)
	if err := exporter.NewCSVWriter(*outputDir, logger).WriteReport(csvName, result.Records); err != nil {
		logger.Error("failed to write CSV report", "error", err)
		os.Exit(1)
	}

	if !*noExcel {
		xlsxName := fmt.Sprintf("share_report_%s.xlsx", timestamp)
		if err := exporter.NewWorkbookWriter(*outputDir, logger).WriteReport(xlsxName, result.Records); err != nil {
			logger.Error("failed to write Excel report", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("share report generated",
		"run_id", result.RunID,
		"scenario", result.Scenario,
		"records", len(result.Records),
		"output_dir", *outputDir)
}
