// Package exporter writes scenario run results as CSV and Excel reports.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"enershare/internal/results"
)

var reportHeaders = []string{
	"run_id", "region", "sector", "subsector", "period", "year",
	"share", "share_weight", "output", "input", "price", "fuel_price", "co2_factor",
}

// CSVWriter writes share reports under a fixed output directory.
type CSVWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at outputDir.
func NewCSVWriter(outputDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outputDir: outputDir, logger: logger}
}

// WriteReport writes all records to one CSV file. The file gets a UTF-8
// BOM so Excel opens it correctly.
func (w *CSVWriter) WriteReport(fileName string, records []results.Record) error {
	fullPath := filepath.Join(w.outputDir, fileName)
	w.logger.Info("writing CSV report",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(reportHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

func recordRow(r results.Record) []string {
	return []string{
		r.RunID,
		r.Region,
		r.Sector,
		r.Subsector,
		strconv.Itoa(r.Period),
		strconv.Itoa(r.Year),
		formatFloat(r.Share),
		formatFloat(r.ShareWeight),
		formatFloat(r.Output),
		formatFloat(r.Input),
		formatFloat(r.Price),
		formatFloat(r.FuelPrice),
		formatFloat(r.CO2Factor),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
