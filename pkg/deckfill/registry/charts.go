package registry

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hmasato/deckfill/pkg/deckfill/models"
)

// Default natural chart size, used when the drawing records a zero extent
// (some writers anchor charts between cells without an explicit xfrm size).
const (
	defaultChartWidthPx  = 480
	defaultChartHeightPx = 290
)

// workbookXML is the subset of xl/workbook.xml needed to map sheet names to
// relationship ids.
type workbookXML struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

// archiveRels is the subset of a .rels part needed to resolve targets.
type archiveRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// drawingXML is the subset of a spreadsheet drawing part needed to locate
// chart graphic frames and their on-sheet extents.
type drawingXML struct {
	TwoCell  []drawingAnchor `xml:"twoCellAnchor"`
	OneCell  []drawingAnchor `xml:"oneCellAnchor"`
	Absolute []drawingAnchor `xml:"absoluteAnchor"`
}

type drawingAnchor struct {
	Frame *struct {
		Xfrm struct {
			Ext struct {
				Cx int64 `xml:"cx,attr"`
				Cy int64 `xml:"cy,attr"`
			} `xml:"ext"`
		} `xml:"xfrm"`
		Chart *struct {
			RID string `xml:"id,attr"`
		} `xml:"graphic>graphicData>chart"`
	} `xml:"graphicFrame"`
}

// discoverCharts opens the workbook archive and returns, for every requested
// sheet tab, the first chart anchored on it: its chart part path and its
// natural EMU extent from the drawing. Tabs without a chart are absent from
// the result.
func discoverCharts(xlsxPath string, tabs []string) (map[string]models.ChartRef, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result := make(map[string]models.ChartRef)

	sheetPaths, err := sheetPartPaths(&r.Reader)
	if err != nil {
		return nil, err
	}

	for _, tab := range tabs {
		sheetPath, ok := sheetPaths[tab]
		if !ok {
			continue
		}
		ref, ok, err := firstSheetChart(&r.Reader, sheetPath)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", tab, err)
		}
		if ok {
			ref.Sheet = tab
			result[tab] = ref
		}
	}

	return result, nil
}

// sheetPartPaths maps sheet tab names to their worksheet part paths.
func sheetPartPaths(r *zip.Reader) (map[string]string, error) {
	wbData, ok, err := readArchivePart(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("archive has no xl/workbook.xml")
	}
	var wb workbookXML
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return nil, err
	}

	relsData, ok, err := readArchivePart(r, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("archive has no workbook rels")
	}
	var rels archiveRels
	if err := xml.Unmarshal(relsData, &rels); err != nil {
		return nil, err
	}

	targets := make(map[string]string, len(rels.Rels))
	for _, rel := range rels.Rels {
		targets[rel.ID] = rel.Target
	}

	result := make(map[string]string, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		if target, ok := targets[sheet.RID]; ok {
			result[sheet.Name] = resolveTarget("xl", target)
		}
	}
	return result, nil
}

// firstSheetChart walks worksheet rels to the drawing part and returns the
// first chart graphic frame found there.
func firstSheetChart(r *zip.Reader, sheetPath string) (models.ChartRef, bool, error) {
	drawingPath, ok, err := drawingPartPath(r, sheetPath)
	if err != nil || !ok {
		return models.ChartRef{}, false, err
	}

	drawingData, ok, err := readArchivePart(r, drawingPath)
	if err != nil || !ok {
		return models.ChartRef{}, false, err
	}
	var drawing drawingXML
	if err := xml.Unmarshal(drawingData, &drawing); err != nil {
		return models.ChartRef{}, false, err
	}

	anchors := make([]drawingAnchor, 0, len(drawing.TwoCell)+len(drawing.OneCell)+len(drawing.Absolute))
	anchors = append(anchors, drawing.TwoCell...)
	anchors = append(anchors, drawing.OneCell...)
	anchors = append(anchors, drawing.Absolute...)

	for _, anchor := range anchors {
		if anchor.Frame == nil || anchor.Frame.Chart == nil {
			continue
		}
		target, ok, err := chartTarget(r, drawingPath, anchor.Frame.Chart.RID)
		if err != nil || !ok {
			return models.ChartRef{}, false, err
		}

		ref := models.ChartRef{
			Part:   target,
			Width:  anchor.Frame.Xfrm.Ext.Cx,
			Height: anchor.Frame.Xfrm.Ext.Cy,
		}
		if ref.Width == 0 || ref.Height == 0 {
			ref.Width = models.PixelsToEMU(defaultChartWidthPx)
			ref.Height = models.PixelsToEMU(defaultChartHeightPx)
		}
		return ref, true, nil
	}

	return models.ChartRef{}, false, nil
}

// drawingPartPath resolves a worksheet's drawing relationship, if any.
func drawingPartPath(r *zip.Reader, sheetPath string) (string, bool, error) {
	relsData, ok, err := readArchivePart(r, relsPathFor(sheetPath))
	if err != nil || !ok {
		return "", false, err
	}
	var rels archiveRels
	if err := xml.Unmarshal(relsData, &rels); err != nil {
		return "", false, err
	}

	for _, rel := range rels.Rels {
		if strings.HasSuffix(rel.Type, "/drawing") {
			return resolveTarget(path.Dir(sheetPath), rel.Target), true, nil
		}
	}
	return "", false, nil
}

// chartTarget resolves a drawing relationship id to a chart part path.
func chartTarget(r *zip.Reader, drawingPath, rid string) (string, bool, error) {
	relsData, ok, err := readArchivePart(r, relsPathFor(drawingPath))
	if err != nil || !ok {
		return "", false, err
	}
	var rels archiveRels
	if err := xml.Unmarshal(relsData, &rels); err != nil {
		return "", false, err
	}

	for _, rel := range rels.Rels {
		if rel.ID == rid && strings.Contains(rel.Type, "chart") {
			return resolveTarget(path.Dir(drawingPath), rel.Target), true, nil
		}
	}
	return "", false, nil
}

// relsPathFor returns the .rels part path for a given part
// (e.g. "xl/drawings/drawing1.xml" -> "xl/drawings/_rels/drawing1.xml.rels").
func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolveTarget resolves a relationship target against the directory of the
// source part, honoring ".." segments and absolute targets.
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// readArchivePart reads one named part out of the archive. A missing part is
// not an error; the second return distinguishes absence.
func readArchivePart(r *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false, err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}
	return nil, false, nil
}
