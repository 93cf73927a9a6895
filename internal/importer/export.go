package importer

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/example/wordmemo/pkg/models"
)

// ExportSheet is the sheet ExportXLSX writes to
const ExportSheet = "Sheet1"

var exportHeader = []string{"Num", "Term", "Meaning", "Level", "Due"}

// ExportXLSX writes cards as a workbook with one row per card after a header row.
// Columns A and B of the result import back with DefaultImportConfig and StartRow 2.
func ExportXLSX(cards []models.Card, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for col, title := range exportHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}

	for i, c := range cards {
		row := i + 2
		values := []interface{}{"", c.Term, c.Meaning, c.Level, time.UnixMilli(c.Due).UTC().Format(time.RFC3339)}
		if c.Num != nil {
			values[0] = *c.Num
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(ExportSheet, "B", "C", 30); err != nil {
		return errors.Wrap(err, "failed to set column width")
	}
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrap(err, "invalid cell")
	}
	if err := f.SetCellValue(ExportSheet, name, value); err != nil {
		return errors.Wrapf(err, "failed to set cell %s", name)
	}
	return nil
}
