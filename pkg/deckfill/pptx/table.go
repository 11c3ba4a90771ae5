package pptx

import (
	"fmt"
	"strings"

	"github.com/hmasato/deckfill/pkg/deckfill/models"
)

// ScaleLengths scales a list of source lengths so they sum to target,
// preserving their proportions. Rounding remainders land on the last entry
// so the total is exact.
func ScaleLengths(src []int64, target int64) []int64 {
	if len(src) == 0 {
		return nil
	}
	var total int64
	for _, v := range src {
		total += v
	}
	out := make([]int64, len(src))
	if total <= 0 {
		each := target / int64(len(src))
		for i := range out {
			out[i] = each
		}
		out[len(out)-1] += target - each*int64(len(src))
		return out
	}

	var used int64
	for i, v := range src {
		out[i] = v * target / total
		used += out[i]
	}
	out[len(out)-1] += target - used
	return out
}

// TableFrameXML builds a graphic frame containing a DrawingML table for the
// given grid. The box carries the frame position and target size; colWidths
// and rowHeights are the per-column/per-row EMU sizes, already scaled to sum
// to the box dimensions.
func TableFrameXML(id int, name string, grid models.Grid, box models.Rect, colWidths, rowHeights []int64) string {
	var gridCols strings.Builder
	for _, w := range colWidths {
		gridCols.WriteString(fmt.Sprintf(`<a:gridCol w="%d"/>`, w))
	}

	var rows strings.Builder
	for i, row := range grid {
		var h int64
		if i < len(rowHeights) {
			h = rowHeights[i]
		}
		rows.WriteString(fmt.Sprintf(`<a:tr h="%d">`, h))
		for _, cell := range row {
			rows.WriteString(tableCellXML(cell))
		}
		rows.WriteString(`</a:tr>`)
	}

	return fmt.Sprintf(`<p:graphicFrame>`+
		`<p:nvGraphicFramePr>`+
		`<p:cNvPr id="%d" name="%s"/>`+
		`<p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr>`+
		`<p:nvPr/>`+
		`</p:nvGraphicFramePr>`+
		`<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">`+
		`<a:tbl><a:tblPr firstRow="1" bandRow="1"/><a:tblGrid>%s</a:tblGrid>%s</a:tbl>`+
		`</a:graphicData></a:graphic>`+
		`</p:graphicFrame>`,
		id, escapeXML(name),
		box.X, box.Y, box.W, box.H,
		gridCols.String(), rows.String())
}

// tableCellXML renders one table cell, projecting the source cell style:
// run properties for the font attributes, tcPr for anchor and background.
func tableCellXML(cell models.Cell) string {
	st := cell.Style

	var body string
	if cell.Value == "" {
		body = `<a:p/>`
	} else {
		var attrs strings.Builder
		attrs.WriteString(`lang="en-US"`)
		if st.FontSize > 0 {
			attrs.WriteString(fmt.Sprintf(` sz="%d"`, int(st.FontSize*100)))
		}
		if st.Bold {
			attrs.WriteString(` b="1"`)
		}
		if st.Italic {
			attrs.WriteString(` i="1"`)
		}
		if st.Underline {
			attrs.WriteString(` u="sng"`)
		}
		if st.Strike {
			attrs.WriteString(` strike="sngStrike"`)
		}

		var props strings.Builder
		if st.FontColor != "" {
			props.WriteString(fmt.Sprintf(`<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, st.FontColor))
		}
		if st.FontFamily != "" {
			props.WriteString(fmt.Sprintf(`<a:latin typeface="%s"/>`, escapeXML(st.FontFamily)))
		}

		body = fmt.Sprintf(`<a:p><a:r><a:rPr %s dirty="0">%s</a:rPr><a:t>%s</a:t></a:r></a:p>`,
			attrs.String(), props.String(), escapeXML(cell.Value))
	}

	fill := ""
	if st.FillColor != "" {
		fill = fmt.Sprintf(`<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, st.FillColor)
	}

	return fmt.Sprintf(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>%s</a:txBody>`+
		`<a:tcPr anchor="%s">%s</a:tcPr></a:tc>`,
		body, models.AnchorFor(st.VerticalAlign), fill)
}
