package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// saveWorkbook writes the file to a temp path and reopens it, so tests see
// the same on-disk state Build sees in production.
func saveWorkbook(t *testing.T, f *excelize.File) (*excelize.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save test workbook: %v", err)
	}
	reopened, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen test workbook: %v", err)
	}
	t.Cleanup(func() { reopened.Close() })
	return reopened, path
}

func TestBuildScalars(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("substitutions"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("substitutions", "A1", "<%name%>")
	f.SetCellValue("substitutions", "B1", "Acme Corp")
	f.SetCellValue("substitutions", "A2", "<%quarter%>")
	f.SetCellValue("substitutions", "B2", "Q3")
	f.SetCellValue("substitutions", "A3", "<%empty%>")

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := reg.ScalarsErr(); err != nil {
		t.Fatalf("unexpected scalar error: %v", err)
	}
	if v, ok := reg.Scalar("<%name%>"); !ok || v != "Acme Corp" {
		t.Errorf("Scalar(<%%name%%>) = %q, %v", v, ok)
	}
	if v, ok := reg.Scalar("<%empty%>"); !ok || v != "" {
		t.Errorf("expected empty value for key-only row, got %q, %v", v, ok)
	}
	if _, ok := reg.Scalar("<%missing%>"); ok {
		t.Error("did not expect a hit for an absent key")
	}
	// Lookups use the raw token verbatim: no delimiter stripping.
	if _, ok := reg.Scalar("name"); ok {
		t.Error("undelimited key should not resolve")
	}
}

func TestBuildWithoutSubstitutionsSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	wb, path := saveWorkbook(t, f)

	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := reg.ScalarsErr(); !errors.Is(err, ErrNoSubstitutionsSheet) {
		t.Errorf("expected ErrNoSubstitutionsSheet, got %v", err)
	}
	if _, ok := reg.Scalar("<%name%>"); ok {
		t.Error("did not expect scalar hits without the sheet")
	}
}

func TestBuildTableRangeTrimsTrailingBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("<%table1%>"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("<%table1%>", "A1", "Region")
	f.SetCellValue("<%table1%>", "B1", "Total")
	f.SetCellValue("<%table1%>", "A2", "North")
	f.SetCellValue("<%table1%>", "B2", 120)
	f.SetCellValue("<%table1%>", "A3", "South")
	// Row 4 left blank, row 5 blank but styled.
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	f.SetCellStyle("<%table1%>", "A5", "A5", style)

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ref, ok := reg.Range("<%table1%>")
	if !ok {
		t.Fatalf("expected a range entry for <%%table1%%>")
	}
	if ref.Rows != 3 {
		t.Errorf("expected 3 rows after trimming, got %d", ref.Rows)
	}
	if ref.Cols != 2 {
		t.Errorf("expected 2 columns, got %d", ref.Cols)
	}
}

func TestBuildIgnoresNonTokenSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("table data"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("table data", "A1", "x")

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := reg.Range("table data"); ok {
		t.Error("sheet without token delimiters must not produce an entry")
	}
}

func TestGridValuesAndStyles(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("<%table1%>"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("<%table1%>", "A1", "Header")
	f.SetCellValue("<%table1%>", "B1", "Count")
	f.SetCellValue("<%table1%>", "A2", "North")
	f.SetCellValue("<%table1%>", "B2", 7)

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Italic: true, Color: "FF0000"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEEFF"}},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	if err := f.SetCellStyle("<%table1%>", "A1", "A1", style); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ref, ok := reg.Range("<%table1%>")
	if !ok {
		t.Fatal("expected a range entry")
	}

	grid, err := reg.Grid(ref)
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	if grid.Rows() != 2 || grid.Cols() != 2 {
		t.Fatalf("got %dx%d grid, want 2x2", grid.Rows(), grid.Cols())
	}
	if grid[0][0].Value != "Header" || grid[1][1].Value != "7" {
		t.Errorf("unexpected grid values: %+v", grid)
	}

	st := grid[0][0].Style
	if !st.Bold || !st.Italic {
		t.Errorf("expected bold italic header style, got %+v", st)
	}
	if st.FontColor != "FF0000" {
		t.Errorf("expected font color FF0000, got %q", st.FontColor)
	}
	if st.FillColor != "DDEEFF" {
		t.Errorf("expected fill color DDEEFF, got %q", st.FillColor)
	}
	if st.VerticalAlign != "top" {
		t.Errorf("expected top alignment, got %q", st.VerticalAlign)
	}
	if grid[1][0].Style.Bold {
		t.Error("unstyled cell must not inherit the header style")
	}
}

func TestFootprint(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("<%table1%>"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("<%table1%>", "A1", "a")
	f.SetCellValue("<%table1%>", "B1", "b")
	f.SetCellValue("<%table1%>", "A2", "c")

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ref, _ := reg.Range("<%table1%>")

	widths, err := reg.ColumnWidths(ref)
	if err != nil {
		t.Fatalf("ColumnWidths failed: %v", err)
	}
	heights, err := reg.RowHeights(ref)
	if err != nil {
		t.Fatalf("RowHeights failed: %v", err)
	}
	if len(widths) != 2 || len(heights) != 2 {
		t.Fatalf("got %d widths, %d heights", len(widths), len(heights))
	}

	fp, err := reg.Footprint(ref)
	if err != nil {
		t.Fatalf("Footprint failed: %v", err)
	}
	if fp.W != widths[0]+widths[1] {
		t.Errorf("footprint width %d is not the column sum %d", fp.W, widths[0]+widths[1])
	}
	if fp.H != heights[0]+heights[1] {
		t.Errorf("footprint height %d is not the row sum %d", fp.H, heights[0]+heights[1])
	}
	if fp.W <= 0 || fp.H <= 0 {
		t.Errorf("expected a positive footprint, got %+v", fp)
	}
}

func TestBuildChartEntry(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("<%chart1%>"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("<%chart1%>", "A1", "Jan")
	f.SetCellValue("<%chart1%>", "A2", "Feb")
	f.SetCellValue("<%chart1%>", "B1", 10)
	f.SetCellValue("<%chart1%>", "B2", 20)
	err := f.AddChart("<%chart1%>", "D1", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "totals",
			Categories: "'<%chart1%>'!$A$1:$A$2",
			Values:     "'<%chart1%>'!$B$1:$B$2",
		}},
	})
	if err != nil {
		t.Fatalf("AddChart failed: %v", err)
	}

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ref, ok := reg.Chart("<%chart1%>")
	if !ok {
		t.Fatalf("expected a chart entry for <%%chart1%%>")
	}
	if ref.Sheet != "<%chart1%>" {
		t.Errorf("unexpected sheet name %q", ref.Sheet)
	}
	if ref.Part == "" {
		t.Error("expected a chart part path")
	}
	if ref.Width <= 0 || ref.Height <= 0 {
		t.Errorf("expected a positive natural size, got %dx%d", ref.Width, ref.Height)
	}
}

func TestBuildChartTabWithoutChart(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("<%chart1%>"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("<%chart1%>", "A1", "no chart here")

	wb, path := saveWorkbook(t, f)
	reg, err := Build(wb, path, "substitutions")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := reg.Chart("<%chart1%>"); ok {
		t.Error("chart tab without a chart object must not produce an entry")
	}
}
