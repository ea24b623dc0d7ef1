package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"enershare/internal/results"
)

// WorkbookWriter writes one Excel workbook per run, with a sheet per
// region so analysts can compare sectors side by side.
type WorkbookWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewWorkbookWriter creates a workbook writer rooted at outputDir.
func NewWorkbookWriter(outputDir string, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{outputDir: outputDir, logger: logger}
}

// WriteReport writes records grouped into one sheet per region.
func (w *WorkbookWriter) WriteReport(fileName string, records []results.Record) error {
	fullPath := filepath.Join(w.outputDir, fileName)
	w.logger.Info("writing Excel report",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	byRegion := map[string][]results.Record{}
	var regionOrder []string
	for _, r := range records {
		if _, ok := byRegion[r.Region]; !ok {
			regionOrder = append(regionOrder, r.Region)
		}
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}

	for i, region := range regionOrder {
		sheet := region
		if i == 0 {
			// Rename the default sheet instead of leaving an empty one.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}
		if err := writeSheet(f, sheet, byRegion[region]); err != nil {
			return err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, records []results.Record) error {
	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for row, r := range records {
		values := []interface{}{
			r.RunID, r.Region, r.Sector, r.Subsector, r.Period, r.Year,
			r.Share, r.ShareWeight, r.Output, r.Input, r.Price, r.FuelPrice, r.CO2Factor,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}
