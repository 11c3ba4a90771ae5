package deckfill

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteStaticData appends key/value bookkeeping rows to a workbook tab,
// creating the tab when absent. Each pair becomes one row of key, value,
// and write timestamp, after any existing rows. Pairs are written in the
// order given.
func WriteStaticData(xlsxPath, sheet string, pairs [][2]string) error {
	if len(pairs) == 0 {
		return nil
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	next := len(rows) + 1

	stamp := time.Now().Format("2006-01-02 15:04:05")
	for _, pair := range pairs {
		cells := []string{pair[0], pair[1], stamp}
		for col, value := range cells {
			name, err := excelize.CoordinatesToCellName(col+1, next)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, name, value); err != nil {
				return err
			}
		}
		next++
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
