package stats

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"aviary/internal/model"
)

const generationsSheet = "generations"

// WriteGenerationsXLSX writes one row per generation under a header row.
func WriteGenerationsXLSX(path string, generations []model.GenerationRecord) error {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(generationsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, name := range generationsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(generationsSheet, cell, name); err != nil {
			return err
		}
	}
	for r, g := range generations {
		row := []any{g.Generation, g.Min, g.Avg, g.Max, g.StdDev}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := file.SetSheetRow(generationsSheet, cell, &row); err != nil {
			return err
		}
	}
	return file.SaveAs(path)
}

func ReadGenerationsXLSX(path string) ([]model.GenerationRecord, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := file.GetRows(generationsSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.GenerationRecord{}, nil
	}

	generations := make([]model.GenerationRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		g, err := parseGenerationRow(row)
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	return generations, nil
}
