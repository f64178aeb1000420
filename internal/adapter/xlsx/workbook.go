// Package xlsx exports a year's dashboard views as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"

	"github.com/couchcryptid/storm-dashboard/internal/dashboard"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetMap      = "Map"
	SheetClass    = "Class"
	SheetMonthly  = "Monthly"
	SheetPressure = "Pressure"
)

// Write encodes d as an xlsx workbook with one sheet per view.
func Write(w io.Writer, d dashboard.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMap); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetClass, SheetMonthly, SheetPressure} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetMap, mapRows(d)},
		{SheetClass, classRows(d)},
		{SheetMonthly, monthlyRows(d)},
		{SheetPressure, pressureRows(d)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func mapRows(d dashboard.Dashboard) [][]any {
	rows := [][]any{{"storm_name", "point", "latitude", "longitude"}}
	for _, t := range d.Map {
		for i := range t.Lat {
			rows = append(rows, []any{t.Name, i + 1, t.Lat[i], t.Lon[i]})
		}
	}
	return rows
}

func classRows(d dashboard.Dashboard) [][]any {
	rows := [][]any{{"storm_type", "count"}}
	for _, c := range d.Class {
		rows = append(rows, []any{c.Type, c.Count})
	}
	return rows
}

func monthlyRows(d dashboard.Dashboard) [][]any {
	header := []any{"storm_type"}
	for _, name := range d.MonthNames {
		header = append(header, name)
	}
	rows := [][]any{header}
	for _, s := range d.Monthly {
		row := []any{s.Type}
		for _, c := range s.Counts() {
			row = append(row, c)
		}
		rows = append(rows, row)
	}
	return rows
}

// pressureRows leaves the pressure cell empty for missing readings.
func pressureRows(d dashboard.Dashboard) [][]any {
	rows := [][]any{{"storm_type", "index", "pressure"}}
	for _, s := range d.Pressure {
		for i, p := range s.Values {
			var v any
			if p.Valid {
				v = p.Value
			}
			rows = append(rows, []any{s.Type, i + 1, v})
		}
	}
	return rows
}
