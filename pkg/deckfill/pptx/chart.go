package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/hmasato/deckfill/pkg/deckfill/models"
)

const (
	contentTypeChart       = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	contentTypeChartColors = "application/vnd.ms-office.chartcolorstyle+xml"
	contentTypeChartStyle  = "application/vnd.ms-office.chartstyle+xml"
	contentTypeWorkbook    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	relTypeChart = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"

	contentTypesPart = "[Content_Types].xml"
)

// ImportChart copies a chart part out of a source archive into the package
// under ppt/charts/, together with its satellite parts (color and style
// definitions, the embedded workbook), rewriting the chart relationships
// and registering the needed content types. It returns the new chart part
// name.
func ImportChart(pkg *Package, src *zip.Reader, srcChartPart string) (string, error) {
	chartData, ok, err := readArchive(src, srcChartPart)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("source archive has no part %q", srcChartPart)
	}

	n := nextChartIndex(pkg)
	chartPart := fmt.Sprintf("ppt/charts/chart%d.xml", n)
	pkg.Write(chartPart, chartData)
	if err := ensureOverride(pkg, "/"+chartPart, contentTypeChart); err != nil {
		return "", err
	}

	if err := importChartRels(pkg, src, srcChartPart, chartPart, n); err != nil {
		return "", err
	}
	return chartPart, nil
}

// importChartRels copies the chart's relationship targets and writes the
// rewritten rels part. Relationships whose targets have no place in a
// presentation (external links, cached images) are dropped.
func importChartRels(pkg *Package, src *zip.Reader, srcChartPart, chartPart string, n int) error {
	relsData, ok, err := readArchive(src, relsPathFor(srcChartPart))
	if err != nil || !ok {
		return err
	}
	srcRels, err := parseRels(relsData)
	if err != nil {
		return err
	}

	srcDir := path.Dir(srcChartPart)
	var newRels []Relationship
	for _, rel := range srcRels {
		base := path.Base(rel.Target)

		var newPart, newTarget, contentType string
		switch {
		case strings.Contains(rel.Type, "chartColorStyle"):
			newPart = fmt.Sprintf("ppt/charts/colors%d.xml", n)
			newTarget = path.Base(newPart)
			contentType = contentTypeChartColors
		case strings.Contains(rel.Type, "chartStyle"):
			newPart = fmt.Sprintf("ppt/charts/style%d.xml", n)
			newTarget = path.Base(newPart)
			contentType = contentTypeChartStyle
		case strings.HasSuffix(rel.Type, "/package"), strings.Contains(rel.Target, "embeddings"):
			ext := strings.TrimPrefix(path.Ext(base), ".")
			if ext == "" {
				ext = "xlsx"
			}
			newPart = fmt.Sprintf("ppt/embeddings/chartData%d.%s", n, ext)
			newTarget = "../embeddings/" + path.Base(newPart)
			if err := ensureDefault(pkg, ext, contentTypeWorkbook); err != nil {
				return err
			}
		default:
			continue
		}

		data, ok, err := readArchive(src, resolveTarget(srcDir, rel.Target))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		pkg.Write(newPart, data)
		if contentType != "" {
			if err := ensureOverride(pkg, "/"+newPart, contentType); err != nil {
				return err
			}
		}
		newRels = append(newRels, Relationship{ID: rel.ID, Type: rel.Type, Target: newTarget})
	}

	if len(newRels) > 0 {
		pkg.Write(relsPathFor(chartPart), marshalRels(newRels))
	}
	return nil
}

// AddSlideChartRel registers a relationship from a slide to an imported
// chart part and returns its id. The slide rels part is created when the
// slide has none.
func AddSlideChartRel(pkg *Package, slidePart, chartPart string) (string, error) {
	relsPart := relsPathFor(slidePart)

	var rels []Relationship
	if pkg.Has(relsPart) {
		data, err := pkg.Read(relsPart)
		if err != nil {
			return "", err
		}
		rels, err = parseRels(data)
		if err != nil {
			return "", err
		}
	}

	rid := nextRelID(rels)
	rels = append(rels, Relationship{
		ID:     rid,
		Type:   relTypeChart,
		Target: "../" + strings.TrimPrefix(chartPart, "ppt/"),
	})
	pkg.Write(relsPart, marshalRels(rels))
	return rid, nil
}

// ChartFrameXML builds the graphic frame that places a chart on a slide.
func ChartFrameXML(id int, name, rid string, box models.Rect) string {
	return fmt.Sprintf(`<p:graphicFrame>`+
		`<p:nvGraphicFramePr>`+
		`<p:cNvPr id="%d" name="%s"/>`+
		`<p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr>`+
		`<p:nvPr/>`+
		`</p:nvGraphicFramePr>`+
		`<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart">`+
		`<c:chart xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" r:id="%s"/>`+
		`</a:graphicData></a:graphic>`+
		`</p:graphicFrame>`,
		id, escapeXML(name),
		box.X, box.Y, box.W, box.H,
		rid)
}

// nextChartIndex returns the first free chart part index.
func nextChartIndex(pkg *Package) int {
	max := 0
	for _, name := range pkg.Names() {
		if !strings.HasPrefix(name, "ppt/charts/chart") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/charts/chart"), ".xml")
		if n, err := strconv.Atoi(num); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// ensureOverride registers a content-type override for a part.
func ensureOverride(pkg *Package, partName, contentType string) error {
	return insertContentType(pkg,
		fmt.Sprintf(`PartName="%s"`, partName),
		fmt.Sprintf(`<Override PartName="%s" ContentType="%s"/>`, partName, contentType))
}

// ensureDefault registers a content-type default for a file extension.
func ensureDefault(pkg *Package, ext, contentType string) error {
	return insertContentType(pkg,
		fmt.Sprintf(`Extension="%s"`, ext),
		fmt.Sprintf(`<Default Extension="%s" ContentType="%s"/>`, ext, contentType))
}

func insertContentType(pkg *Package, marker, entry string) error {
	data, err := pkg.Read(contentTypesPart)
	if err != nil {
		return err
	}
	if bytes.Contains(data, []byte(marker)) {
		return nil
	}
	idx := bytes.LastIndex(data, []byte("</Types>"))
	if idx < 0 {
		return fmt.Errorf("malformed %s", contentTypesPart)
	}
	var buf bytes.Buffer
	buf.Write(data[:idx])
	buf.WriteString(entry)
	buf.Write(data[idx:])
	pkg.Write(contentTypesPart, buf.Bytes())
	return nil
}

// readArchive reads one named part out of a source archive. A missing part
// is not an error; the second return distinguishes absence.
func readArchive(r *zip.Reader, name string) ([]byte, bool, error) {
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
