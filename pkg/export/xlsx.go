package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/scenelayout/pkg/scene"
)

// Sheet names written by XLSX.
const (
	SheetObjects    = "Objects"
	SheetCollisions = "Collisions"
	SheetWarnings   = "Warnings"
)

var (
	objectHeader = []any{
		"Name", "Category", "Group",
		"Pos X", "Pos Y", "Pos Z",
		"Rot X", "Rot Y", "Rot Z",
		"Width", "Height", "Depth",
	}
	collisionHeader = []any{"Object A", "Object B", "Overlap (m³)", "Severity"}
	warningHeader   = []any{"Kind", "Object", "Message"}
)

// XLSX returns the audit workbook for l. The Objects sheet has one row per
// placement in layout order; its columns can be read back by
// scene.ReadXLSX, which picks out name, width, depth, height and category.
func XLSX(l scene.Layout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetObjects); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCollisions, SheetWarnings} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	objRows := make([][]any, 0, len(l.Objects))
	for _, p := range l.Objects {
		group := ""
		if p.Hierarchy != nil {
			group = p.Hierarchy.Parent
		}
		objRows = append(objRows, []any{
			p.Name, categoryOf(p), group,
			p.Position[0], p.Position[1], p.Position[2],
			p.Rotation[0], p.Rotation[1], p.Rotation[2],
			p.Size[0], p.Size[1], p.Size[2],
		})
	}
	if err := writeSheet(f, SheetObjects, objectHeader, objRows, bold); err != nil {
		return nil, err
	}

	colRows := make([][]any, 0, len(l.Collisions))
	for _, rec := range l.Collisions {
		colRows = append(colRows, []any{rec.A, rec.B, rec.OverlapVolume, string(rec.Severity)})
	}
	if err := writeSheet(f, SheetCollisions, collisionHeader, colRows, bold); err != nil {
		return nil, err
	}

	warnRows := make([][]any, 0, len(l.Warnings))
	for _, w := range l.Warnings {
		warnRows = append(warnRows, []any{string(w.Kind), w.Object, w.Message})
	}
	if err := writeSheet(f, SheetWarnings, warningHeader, warnRows, bold); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet writes a styled header row followed by rows.
func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 14); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
