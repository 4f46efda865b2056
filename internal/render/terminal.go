package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/rows"
	"github.com/amirbrooks/ganttcsv/internal/session"
)

const (
	DefaultLabelCols = 30
	DefaultTermWidth = 120
	minChartCols     = 10
)

// TermOptions controls the text rendering.
type TermOptions struct {
	// Width is the total line width in cells.
	Width     int
	LabelCols int
	// Cursor highlights one row; negative for none.
	Cursor int
	Plain  bool
	// Collapsed reports whether a group or subgroup row is folded.
	Collapsed func(rows.Row) bool
}

type termStyles struct {
	label, cursor, group, sub, header, today, check, milestone, overdue lipgloss.Style
}

func newTermStyles(st Style, plain bool) termStyles {
	base := lipgloss.NewStyle()
	if plain {
		return termStyles{label: base, cursor: base, group: base, sub: base, header: base, today: base, check: base, milestone: base, overdue: base}
	}
	return termStyles{
		label:     base,
		cursor:    base.Copy().Reverse(true),
		group:     base.Copy().Bold(true).Foreground(lipgloss.Color(st.Group)),
		sub:       base.Copy().Foreground(lipgloss.Color(st.Sub)),
		header:    base.Copy().Faint(true),
		today:     base.Copy().Foreground(lipgloss.Color(st.Today)),
		check:     base.Copy().Foreground(lipgloss.Color("#6a1b9a")),
		milestone: base.Copy().Foreground(lipgloss.Color("#c2185b")),
		overdue:   base.Copy().Bold(true).Foreground(lipgloss.Color(st.Today)),
	}
}

// CellPx is the pixel span of one terminal column so that a layout of
// widthPx fits in cols.
func CellPx(widthPx, cols int) int {
	if cols < 1 {
		cols = 1
	}
	px := (widthPx + cols - 1) / cols
	return max(1, px)
}

// Terminal draws the frame as lines of text, one per row plus a header.
func Terminal(f *session.Frame, st Style, opt TermOptions) string {
	if opt.Width <= 0 {
		opt.Width = DefaultTermWidth
	}
	if opt.LabelCols <= 0 {
		opt.LabelCols = DefaultLabelCols
	}
	chartCols := max(minChartCols, opt.Width-opt.LabelCols-1)
	cell := CellPx(f.Layout.Width, chartCols)
	ts := newTermStyles(st, opt.Plain)

	overdueRows := map[int]bool{}
	for _, s := range f.Overdue {
		overdueRows[s.Row] = true
	}
	todayCol := -1
	if f.TodayVisible {
		todayCol = f.TodayX / cell
	}

	var b strings.Builder
	pad := strings.Repeat(" ", opt.LabelCols+1)
	b.WriteString(ts.header.Render(pad + headerLine(f.Bands, cell, chartCols, func(bd layout.Band) (int, string) { return bd.X, bd.Label })))
	b.WriteString("\n")
	b.WriteString(ts.header.Render(pad + tickLine(f.Ticks, cell, chartCols)))
	b.WriteString("\n")

	for i, r := range f.Rows {
		g := f.Layout.Rows[i]
		label := rowLabel(r, opt.Collapsed)
		if r.IsLeaf() {
			if badge, _ := st.Badge(r.Task.Priority); badge != "" {
				label += " [" + badge + "]"
			}
		}
		ls := ts.label
		switch r.Kind {
		case rows.KindGroup:
			ls = ts.group
		case rows.KindSubgroup:
			ls = ts.sub
		}
		if i == opt.Cursor {
			ls = ts.cursor
		}
		b.WriteString(ls.Copy().Width(opt.LabelCols).MaxWidth(opt.LabelCols).Render(label))
		b.WriteString(" ")
		b.WriteString(chartLine(r, g, cell, chartCols, todayCol, overdueRows[i], ts))
		b.WriteString("\n")
	}
	return b.String()
}

func rowLabel(r rows.Row, collapsed func(rows.Row) bool) string {
	prefix := ""
	switch r.Kind {
	case rows.KindGroup, rows.KindSubgroup:
		prefix = "▾ "
		if collapsed != nil && collapsed(r) {
			prefix = "▸ "
		}
	case rows.KindMilestone:
		prefix = "◆ "
	}
	return strings.Repeat("  ", indent(r.Kind)) + prefix + r.DisplayName
}

func chartLine(r rows.Row, g layout.RowGeometry, cell, cols, todayCol int, overdue bool, ts termStyles) string {
	cells := make([]string, cols)
	for i := range cells {
		cells[i] = " "
	}
	set := func(col int, s string) {
		if col >= 0 && col < cols {
			cells[col] = s
		}
	}
	if todayCol >= 0 {
		set(todayCol, ts.today.Render("│"))
	}
	switch {
	case g.Milestone != nil:
		set(g.Milestone.X/cell, ts.milestone.Render("◆"))
	case g.Bar != nil:
		glyph := "█"
		style := lipgloss.NewStyle()
		switch r.Kind {
		case rows.KindGroup:
			glyph, style = "▀", ts.group
		case rows.KindSubgroup:
			glyph, style = "▀", ts.sub
		}
		from, to := g.Bar.X/cell, max(g.Bar.X/cell, (g.Bar.X+g.Bar.W-1)/cell)
		for c := from; c <= to; c++ {
			set(c, style.Render(glyph))
		}
		if g.Check != nil {
			set(g.Check.X/cell, ts.check.Render("★"))
		}
		if overdue {
			set(to+1, ts.overdue.Render("!"))
		}
	}
	return strings.Join(cells, "")
}

func headerLine[T any](items []T, cell, cols int, at func(T) (int, string)) string {
	var b strings.Builder
	pos := 0
	for _, it := range items {
		x, text := at(it)
		col := x / cell
		w := lipgloss.Width(text)
		// labels that would collide or overflow are dropped
		if col < pos || col+w > cols {
			continue
		}
		b.WriteString(strings.Repeat(" ", col-pos))
		b.WriteString(text)
		pos = col + w + 1
		if pos <= cols {
			b.WriteString(" ")
		}
	}
	if pos < cols {
		b.WriteString(strings.Repeat(" ", cols-pos))
	}
	return b.String()
}

func tickLine(ticks []layout.Tick, cell, cols int) string {
	return headerLine(ticks, cell, cols, func(t layout.Tick) (int, string) { return t.X, t.Label })
}
