package models

// CellStyle carries the per-cell style attributes that survive projection
// into a presentation table cell.
type CellStyle struct {
	// Bold reports whether the cell font is bold.
	Bold bool
	// Italic reports whether the cell font is italic.
	Italic bool
	// Strike reports whether the cell font uses strikethrough.
	Strike bool
	// Underline reports whether the cell font is underlined.
	Underline bool
	// FontFamily is the cell font name (empty for the workbook default).
	FontFamily string
	// FontSize is the cell font size in points (0 for the workbook default).
	FontSize float64
	// FontColor is the foreground color as an RRGGBB hex string (no alpha).
	FontColor string
	// FillColor is the background fill as an RRGGBB hex string, empty when
	// the cell has no solid fill.
	FillColor string
	// VerticalAlign is the named vertical alignment as stored on the sheet
	// (e.g. "top", "center"); consumers map it through AnchorFor.
	VerticalAlign string
}

// Cell is a single value/style pair inside a Grid.
type Cell struct {
	// Value is the formatted cell text.
	Value string
	// Style is the cell's projected style.
	Style CellStyle
}

// Grid is a row-major rectangular block of cells read from a sheet range.
type Grid [][]Cell

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns in the grid (0 for an empty grid).
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// anchorMap maps named vertical-alignment strings to DrawingML table cell
// anchor constants.
var anchorMap = map[string]string{
	"top":    "t",
	"center": "ctr",
	"middle": "ctr",
	"bottom": "b",
}

// AnchorFor maps a named vertical alignment to its DrawingML anchor value,
// falling back to middle for unrecognized or absent values.
func AnchorFor(valign string) string {
	if anchor, ok := anchorMap[valign]; ok {
		return anchor
	}
	return "ctr"
}
