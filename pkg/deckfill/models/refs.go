package models

// RangeRef identifies the used range of a table sheet. Cell values and
// styles are read lazily; the ref only pins the sheet and its trimmed
// dimensions at registry build time.
type RangeRef struct {
	// Sheet is the source sheet tab name (also the registry key).
	Sheet string
	// Rows is the range height: up to the last row containing any
	// non-blank cell.
	Rows int
	// Cols is the range width: the widest populated row within Rows.
	Cols int
}

// ChartRef identifies the first chart anchored on a chart sheet tab.
type ChartRef struct {
	// Sheet is the source sheet tab name (also the registry key).
	Sheet string
	// Part is the chart part path inside the workbook archive
	// (e.g. "xl/charts/chart1.xml").
	Part string
	// Width is the chart's natural on-sheet width in EMU.
	Width int64
	// Height is the chart's natural on-sheet height in EMU.
	Height int64
}
