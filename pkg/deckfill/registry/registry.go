// Package registry builds the substitution registry from a workbook: a
// mapping from placeholder token to a scalar value, a chart reference, or a
// rectangular cell range. The registry is rebuilt from scratch on every
// update cycle and never persisted.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/deckfill/pkg/deckfill/models"
	"github.com/hmasato/deckfill/pkg/deckfill/placeholder"
)

// ErrNoSubstitutionsSheet indicates the workbook has no scalar key/value
// sheet. Chart and table resolution are unaffected; the error surfaces only
// when a scalar lookup is attempted.
var ErrNoSubstitutionsSheet = errors.New("no substitutions sheet")

// Registry maps placeholder tokens to resolved values. Keys are exactly the
// sheet tab names (chart/table entries) or the first-column values of the
// scalar sheet; lookups use the raw token string including delimiters.
type Registry struct {
	file      *excelize.File
	scalars   map[string]string
	charts    map[string]models.ChartRef
	ranges    map[string]models.RangeRef
	scalarErr error
}

// Build scans the workbook and produces a fresh registry. path must point
// at the same workbook the excelize file was opened from; chart discovery
// reads the raw archive because the cell API does not expose charts.
//
// A missing scalar sheet is not an immediate error: it is remembered and
// reported by ScalarsErr / the first scalar lookup. Zero matching chart or
// table tabs simply add no entries.
func Build(f *excelize.File, path string, scalarSheet string) (*Registry, error) {
	r := &Registry{
		file:    f,
		scalars: make(map[string]string),
		charts:  make(map[string]models.ChartRef),
		ranges:  make(map[string]models.RangeRef),
	}

	if err := r.buildScalars(scalarSheet); err != nil {
		return nil, err
	}

	var chartTabs []string
	for _, name := range f.GetSheetList() {
		if !placeholder.IsToken(name) {
			continue
		}
		switch placeholder.Classify(name) {
		case placeholder.Chart:
			chartTabs = append(chartTabs, name)
		case placeholder.Table:
			ref, ok, err := r.usedRange(name)
			if err != nil {
				return nil, fmt.Errorf("table range %q: %w", name, err)
			}
			if ok {
				r.ranges[name] = ref
			}
		}
	}

	if len(chartTabs) > 0 {
		charts, err := discoverCharts(path, chartTabs)
		if err != nil {
			return nil, fmt.Errorf("chart discovery: %w", err)
		}
		r.charts = charts
	}

	return r, nil
}

// buildScalars reads the key/value sheet as ordered rows starting at row 1.
// Keys are the literal column-1 cell values; the sheet is expected to store
// full delimited tokens as keys.
func (r *Registry) buildScalars(sheet string) error {
	idx, err := r.file.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx < 0 {
		r.scalarErr = fmt.Errorf("%w: %q", ErrNoSubstitutionsSheet, sheet)
		return nil
	}

	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		r.scalars[row[0]] = value
	}
	return nil
}

// usedRange computes the trimmed used range of a table tab: height up to the
// last row containing any non-blank cell, width equal to the widest
// populated row within that height. A sheet with no populated cells yields
// no entry.
func (r *Registry) usedRange(sheet string) (models.RangeRef, bool, error) {
	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return models.RangeRef{}, false, err
	}

	lastRow := 0
	for i, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				lastRow = i + 1
				break
			}
		}
	}
	if lastRow == 0 {
		return models.RangeRef{}, false, nil
	}

	cols := 0
	for i := 0; i < lastRow; i++ {
		if len(rows[i]) > cols {
			cols = len(rows[i])
		}
	}

	return models.RangeRef{Sheet: sheet, Rows: lastRow, Cols: cols}, true, nil
}

// Scalar resolves a text token to its scalar value.
func (r *Registry) Scalar(token string) (string, bool) {
	v, ok := r.scalars[token]
	return v, ok
}

// Chart resolves a chart token to its chart reference.
func (r *Registry) Chart(token string) (models.ChartRef, bool) {
	ref, ok := r.charts[token]
	return ref, ok
}

// Range resolves a table token to its range reference.
func (r *Registry) Range(token string) (models.RangeRef, bool) {
	ref, ok := r.ranges[token]
	return ref, ok
}

// ScalarsErr reports the deferred configuration error of a workbook without
// a scalar sheet, nil otherwise.
func (r *Registry) ScalarsErr() error {
	return r.scalarErr
}

// Grid reads the live values and styles of a range into a row-major grid.
func (r *Registry) Grid(ref models.RangeRef) (models.Grid, error) {
	rows, err := r.file.GetRows(ref.Sheet)
	if err != nil {
		return nil, err
	}

	grid := make(models.Grid, ref.Rows)
	for i := 0; i < ref.Rows; i++ {
		cells := make([]models.Cell, ref.Cols)
		for j := 0; j < ref.Cols; j++ {
			if i < len(rows) && j < len(rows[i]) {
				cells[j].Value = rows[i][j]
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			style, err := r.cellStyle(ref.Sheet, name)
			if err != nil {
				return nil, err
			}
			cells[j].Style = style
		}
		grid[i] = cells
	}
	return grid, nil
}

// ColumnWidths returns the EMU width of each column the range spans.
func (r *Registry) ColumnWidths(ref models.RangeRef) ([]int64, error) {
	widths := make([]int64, ref.Cols)
	for j := 0; j < ref.Cols; j++ {
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return nil, err
		}
		chars, err := r.file.GetColWidth(ref.Sheet, name)
		if err != nil {
			return nil, err
		}
		widths[j] = models.ColWidthToEMU(chars)
	}
	return widths, nil
}

// RowHeights returns the EMU height of each row the range spans.
func (r *Registry) RowHeights(ref models.RangeRef) ([]int64, error) {
	heights := make([]int64, ref.Rows)
	for i := 0; i < ref.Rows; i++ {
		pt, err := r.file.GetRowHeight(ref.Sheet, i+1)
		if err != nil {
			return nil, err
		}
		heights[i] = models.PointsToEMU(pt)
	}
	return heights, nil
}

// Footprint returns the range's natural pixel-equivalent footprint on its
// source sheet: the sum of its column widths and row heights, in EMU.
func (r *Registry) Footprint(ref models.RangeRef) (models.Rect, error) {
	widths, err := r.ColumnWidths(ref)
	if err != nil {
		return models.Rect{}, err
	}
	heights, err := r.RowHeights(ref)
	if err != nil {
		return models.Rect{}, err
	}

	var fp models.Rect
	for _, w := range widths {
		fp.W += w
	}
	for _, h := range heights {
		fp.H += h
	}
	return fp, nil
}

// cellStyle projects a source cell's style attributes into a CellStyle.
func (r *Registry) cellStyle(sheet, cell string) (models.CellStyle, error) {
	idx, err := r.file.GetCellStyle(sheet, cell)
	if err != nil {
		return models.CellStyle{}, err
	}
	st, err := r.file.GetStyle(idx)
	if err != nil {
		return models.CellStyle{}, err
	}
	if st == nil {
		return models.CellStyle{}, nil
	}

	var out models.CellStyle
	if st.Font != nil {
		out.Bold = st.Font.Bold
		out.Italic = st.Font.Italic
		out.Strike = st.Font.Strike
		out.Underline = st.Font.Underline != "" && st.Font.Underline != "none"
		out.FontFamily = st.Font.Family
		out.FontSize = st.Font.Size
		out.FontColor = normalizeColor(st.Font.Color)
	}
	if st.Fill.Type == "pattern" && st.Fill.Pattern > 0 && len(st.Fill.Color) > 0 {
		out.FillColor = normalizeColor(st.Fill.Color[0])
	}
	if st.Alignment != nil {
		out.VerticalAlign = st.Alignment.Vertical
	}
	return out, nil
}

// normalizeColor strips a leading alpha byte from an ARGB hex string and
// upper-cases the result, yielding RRGGBB.
func normalizeColor(c string) string {
	c = strings.TrimPrefix(c, "#")
	if len(c) == 8 {
		c = c[2:]
	}
	return strings.ToUpper(c)
}
