package render

import (
	"fmt"
	"strings"

	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/rows"
	"github.com/amirbrooks/ganttcsv/internal/session"
)

const (
	bandRowHeight = 24
	labelPadX     = 8
	indentStep    = 14
)

// SVG draws the frame as a standalone SVG document: a label column on the
// left, the date header on top and the bars below it.
func SVG(f *session.Frame, st Style) string {
	l := f.Layout
	ox, oy := st.LabelsWidth, layout.HeaderHeight
	chartW := max(l.Width, f.HeaderWidth)
	width, height := ox+chartW, oy+l.Height

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.label { font-family: %s; font-size: %dpx; fill: #263238; }
.group { font-weight: bold; }
.date { font-family: %s; font-size: %dpx; fill: #546e7a; }
.tick { font-family: %s; font-size: %dpx; fill: #455a64; }
.check { font-family: %s; font-size: %dpx; fill: #6a1b9a; }
</style>
<marker id="arrow" markerWidth="8" markerHeight="8" refX="6" refY="4" orient="auto"><path d="M0,0 L8,4 L0,8 z" fill="%s"/></marker>
</defs>
`, width, height, st.Background,
		st.FontFamily, st.FontSize+1,
		st.FontFamily, st.FontSize-1,
		st.FontFamily, st.FontSize-1,
		st.FontFamily, st.FontSize-1,
		st.Dep))

	writeHeader(&svg, f, st, ox)
	writeGrid(&svg, l, st, ox, oy)
	writeLabels(&svg, f, st, oy)

	svg.WriteString(fmt.Sprintf(`<g transform="translate(%d,%d)">`+"\n", ox, oy))
	for i, r := range f.Rows {
		writeRow(&svg, r, l.Rows[i], st)
	}
	for _, d := range l.Dependencies {
		c1, c2 := d.Controls()
		svg.WriteString(fmt.Sprintf(`<path d="M %d %d C %d %d %d %d %d %d" fill="none" stroke="%s" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
			d.Start.X, d.Start.Y, c1.X, c1.Y, c2.X, c2.Y, d.End.X, d.End.Y, st.Dep))
	}
	if f.TodayVisible {
		svg.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
			f.TodayPath, st.Today))
	}
	svg.WriteString("</g>\n")

	svg.WriteString("</svg>")
	return svg.String()
}

func writeHeader(svg *strings.Builder, f *session.Frame, st Style, ox int) {
	for _, b := range f.Bands {
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="0" x2="%d" y2="%d" stroke="%s"/>`+"\n", ox+b.X, ox+b.X, bandRowHeight, st.Grid))
		svg.WriteString(fmt.Sprintf(`<text class="tick" x="%d" y="%d" text-anchor="middle">%s</text>`+"\n", ox+b.LabelX, bandRowHeight-8, escapeXML(b.Label)))
	}
	for _, t := range f.Ticks {
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`+"\n", ox+t.X, bandRowHeight, ox+t.X, layout.HeaderHeight, st.Grid))
		anchor := "start"
		if t.Centered {
			anchor = "middle"
		}
		svg.WriteString(fmt.Sprintf(`<text class="tick" x="%d" y="%d" text-anchor="%s">%s</text>`+"\n", ox+t.LabelX, layout.HeaderHeight-12, anchor, escapeXML(t.Label)))
	}
	svg.WriteString(fmt.Sprintf(`<line x1="0" y1="%d" x2="%d" y2="%d" stroke="%s"/>`+"\n", layout.HeaderHeight, ox+max(f.Layout.Width, f.HeaderWidth), layout.HeaderHeight, st.Grid))
}

func writeGrid(svg *strings.Builder, l *layout.Layout, st Style, ox, oy int) {
	for _, x := range l.GridLines {
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`+"\n", ox+x, oy, ox+x, oy+l.Height, st.Grid))
	}
	for _, g := range l.Rows {
		svg.WriteString(fmt.Sprintf(`<line x1="0" y1="%d" x2="%d" y2="%d" stroke="%s"/>`+"\n", oy+g.Bottom, ox+l.Width, oy+g.Bottom, st.Grid))
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="0" x2="%d" y2="%d" stroke="%s"/>`+"\n", ox, ox, oy+l.Height, st.Grid))
}

func indent(k rows.Kind) int {
	switch k {
	case rows.KindGroup:
		return 0
	case rows.KindSubgroup, rows.KindMilestone:
		return 1
	default:
		return 2
	}
}

func writeLabels(svg *strings.Builder, f *session.Frame, st Style, oy int) {
	for i, r := range f.Rows {
		g := f.Layout.Rows[i]
		x := labelPadX + indent(r.Kind)*indentStep
		y := oy + g.CenterY + st.FontSize/2 - 1
		class := "label"
		if r.Kind == rows.KindGroup {
			class = "label group"
		}
		svg.WriteString(fmt.Sprintf(`<text class="%s" x="%d" y="%d">%s</text>`+"\n", class, x, y, escapeXML(r.DisplayName)))
		if !r.IsLeaf() {
			continue
		}
		text, color := st.Badge(r.Task.Priority)
		if text == "" {
			continue
		}
		bx := st.LabelsWidth - labelPadX - layout.TextWidth(text, st.FontSize) - 6
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="3" fill="%s"/>`+"\n",
			bx-3, oy+g.CenterY-8, layout.TextWidth(text, st.FontSize)+6, 16, color))
		svg.WriteString(fmt.Sprintf(`<text class="label" x="%d" y="%d" style="fill:#ffffff">%s</text>`+"\n", bx, y, escapeXML(text)))
	}
}

func writeRow(svg *strings.Builder, r rows.Row, g layout.RowGeometry, st Style) {
	if g.Milestone != nil {
		svg.WriteString(fmt.Sprintf(`<text class="label" x="%d" y="%d" style="fill:#c2185b">★ %s %s</text>`+"\n",
			g.Milestone.X+6, g.Milestone.Y+4, dates.FormatMonthDay(g.Milestone.Date), escapeXML(r.Task.Name)))
		return
	}
	if g.Bar == nil {
		return
	}
	fill, stroke := st.Sub, "none"
	switch r.Kind {
	case rows.KindGroup:
		fill = st.Group
	case rows.KindTask, rows.KindSubtask:
		fill = st.StatusColor(r.Task.Status)
		stroke = "#90a4ae"
		if strings.EqualFold(fill, "#ffffff") {
			stroke = st.NotStartedBorder
		}
	}
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="3" fill="%s" stroke="%s"/>`+"\n",
		g.Bar.X, g.Bar.Y, g.Bar.W, g.Bar.H, fill, stroke))
	for _, lbl := range []*layout.Label{g.StartLabel, g.EndLabel} {
		if lbl == nil {
			continue
		}
		svg.WriteString(fmt.Sprintf(`<text class="date" x="%d" y="%d" text-anchor="%s">%s</text>`+"\n",
			lbl.X, lbl.Y+4, lbl.Anchor, escapeXML(lbl.Text)))
	}
	if g.Check != nil {
		svg.WriteString(fmt.Sprintf(`<text class="check" x="%d" y="%d">★ %s中間</text>`+"\n",
			g.Check.X, g.Check.Y, dates.FormatMonthDay(g.Check.Date)))
	}
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
