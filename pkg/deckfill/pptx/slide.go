package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hmasato/deckfill/pkg/deckfill/models"
)

// TextRun is one styled text span inside a shape. The byte span covers the
// raw content between <a:t> and </a:t>, so edits can be spliced into the
// original markup without re-serializing the slide.
type TextRun struct {
	// Text is the decoded run text.
	Text string

	start, end int64
	empty      bool
}

// Shape is one p:sp element on a slide with its geometry and text runs.
type Shape struct {
	// HasBox reports whether the shape declares its own a:xfrm geometry.
	// Shapes inheriting geometry from the layout have no box.
	HasBox bool
	// Box is the shape's bounding box in EMU, valid when HasBox is set.
	Box models.Rect
	// Runs are the shape's text runs in document order.
	Runs []TextRun

	start, end int64
}

// ParseShapes scans a slide part for p:sp shape elements, in document
// order. Shapes nested inside group shapes are skipped, as are pictures and
// graphic frames.
func ParseShapes(data []byte) ([]Shape, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var shapes []Shape
	groupDepth := 0
	for {
		prev := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse slide: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "grpSp":
				groupDepth++
			case "sp":
				if groupDepth > 0 {
					continue
				}
				sh, err := parseShape(dec, prev)
				if err != nil {
					return nil, fmt.Errorf("parse slide: %w", err)
				}
				shapes = append(shapes, sh)
			}
		case xml.EndElement:
			if t.Name.Local == "grpSp" {
				groupDepth--
			}
		}
	}

	// A self-closing <a:t/> yields a zero-length span positioned after the
	// tag. Splicing there would put text outside the element, so mark such
	// runs non-editable.
	for si := range shapes {
		for ri := range shapes[si].Runs {
			run := &shapes[si].Runs[ri]
			if run.start == run.end && bytes.HasSuffix(data[:run.start], []byte("/>")) {
				run.empty = true
			}
		}
	}

	return shapes, nil
}

// parseShape consumes one sp subtree, capturing the first xfrm geometry and
// every text run with its byte span.
func parseShape(dec *xml.Decoder, start int64) (Shape, error) {
	sh := Shape{start: start}
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return sh, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "xfrm":
				box, ok, err := parseXfrm(dec)
				if err != nil {
					return sh, err
				}
				if ok && !sh.HasBox {
					sh.HasBox = true
					sh.Box = box
				}
				depth--
			case "t":
				run, err := parseRunText(dec)
				if err != nil {
					return sh, err
				}
				sh.Runs = append(sh.Runs, run)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	sh.end = dec.InputOffset()
	return sh, nil
}

// parseXfrm reads the off/ext children of an xfrm element.
func parseXfrm(dec *xml.Decoder) (models.Rect, bool, error) {
	var box models.Rect
	seenOff, seenExt := false, false
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return box, false, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "off":
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "x":
						box.X, _ = strconv.ParseInt(attr.Value, 10, 64)
					case "y":
						box.Y, _ = strconv.ParseInt(attr.Value, 10, 64)
					}
				}
				seenOff = true
			case "ext":
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "cx":
						box.W, _ = strconv.ParseInt(attr.Value, 10, 64)
					case "cy":
						box.H, _ = strconv.ParseInt(attr.Value, 10, 64)
					}
				}
				seenExt = true
			}
		case xml.EndElement:
			depth--
		}
	}

	return box, seenOff && seenExt, nil
}

// parseRunText consumes one a:t element, recording the raw byte span of its
// content.
func parseRunText(dec *xml.Decoder) (TextRun, error) {
	run := TextRun{start: dec.InputOffset()}
	var sb strings.Builder

	for {
		prev := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return run, err
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			run.end = prev
			if run.end < run.start {
				run.start, run.end = prev, prev
			}
			run.Text = sb.String()
			return run, nil
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return run, err
			}
		}
	}
}

// RunEdit replaces the whole text of one run.
type RunEdit struct {
	Run  TextRun
	Text string
}

// ApplyRunEdits splices the replacement texts into the slide markup.
// Edits are applied back to front so earlier spans stay valid.
func ApplyRunEdits(data []byte, edits []RunEdit) []byte {
	sorted := make([]RunEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Run.start > sorted[j].Run.start })

	out := data
	for _, edit := range sorted {
		if edit.Run.empty {
			continue
		}
		var buf bytes.Buffer
		buf.Write(out[:edit.Run.start])
		buf.WriteString(escapeXML(edit.Text))
		buf.Write(out[edit.Run.end:])
		out = buf.Bytes()
	}
	return out
}

// RemoveShape deletes a shape element from the slide markup.
func RemoveShape(data []byte, sh Shape) []byte {
	out := make([]byte, 0, len(data)-int(sh.end-sh.start))
	out = append(out, data[:sh.start]...)
	out = append(out, data[sh.end:]...)
	return out
}

// AppendFrame inserts a graphic frame at the end of the slide's shape tree.
func AppendFrame(data []byte, frameXML string) ([]byte, error) {
	idx := bytes.LastIndex(data, []byte("</p:spTree>"))
	if idx < 0 {
		return nil, fmt.Errorf("slide has no shape tree")
	}
	var buf bytes.Buffer
	buf.Write(data[:idx])
	buf.WriteString(frameXML)
	buf.Write(data[idx:])
	return buf.Bytes(), nil
}

var shapeIDPattern = regexp.MustCompile(`cNvPr[^>]*\sid="(\d+)"`)

// NextShapeID returns a drawing object id not yet used on the slide.
func NextShapeID(data []byte) int {
	max := 1
	for _, m := range shapeIDPattern.FindAllSubmatch(data, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// escapeXML escapes text for embedding in XML character data or attributes.
func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
