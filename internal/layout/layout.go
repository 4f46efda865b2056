// Package layout projects sequenced rows onto pixel coordinates.
package layout

import (
	"time"

	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/rows"
)

const (
	RowHeight        = 28
	BarHeight        = 20
	SummaryBarHeight = 12
	// BarPad centers a leaf bar vertically in its row.
	BarPad       = (RowHeight - BarHeight) / 2
	MinBarWidth  = 6
	BarGutter    = 2
	DateLabelGap = 4
	GuardDays    = 2
	RightPad     = 120
	HeaderHeight = 62
	// CharWidth approximates the advance of one label character per pixel of font size.
	CharWidth = 0.6
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Anchor is the side of a label its X coordinate refers to.
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
)

type Label struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Text   string `json:"text"`
	Anchor Anchor `json:"anchor"`
}

// Right estimates the right edge of the label for a font size in pixels.
func (l Label) Right(fontPx int) int {
	w := TextWidth(l.Text, fontPx)
	if l.Anchor == AnchorEnd {
		return l.X
	}
	return l.X + w
}

// TextWidth estimates rendered text width from its rune count.
func TextWidth(s string, fontPx int) int {
	return int(float64(len([]rune(s))) * float64(fontPx) * CharWidth)
}

// Marker is a point annotation tied to a date.
type Marker struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Date time.Time `json:"date"`
}

// RowGeometry is the projected shape of one row.
type RowGeometry struct {
	Index   int       `json:"index"`
	Kind    rows.Kind `json:"kind"`
	Top     int       `json:"top"`
	Bottom  int       `json:"bottom"`
	CenterY int       `json:"center_y"`

	Bar        *Rect   `json:"bar,omitempty"`
	StartLabel *Label  `json:"start_label,omitempty"`
	EndLabel   *Label  `json:"end_label,omitempty"`
	Check      *Marker `json:"check,omitempty"`
	Milestone  *Marker `json:"milestone,omitempty"`
}

// Dependency is one predecessor-to-successor link between visible rows.
type Dependency struct {
	From    int   `json:"from"`
	To      int   `json:"to"`
	FromRow int   `json:"from_row"`
	ToRow   int   `json:"to_row"`
	Start   Point `json:"start"`
	End     Point `json:"end"`
}

// Controls returns the two cubic Bezier control points of the link curve.
func (d Dependency) Controls() (Point, Point) {
	dx := d.End.X - d.Start.X
	if dx < 0 {
		dx = -dx
	}
	if dx < 20 {
		dx = 20
	}
	return Point{X: d.Start.X + dx/2, Y: d.Start.Y}, Point{X: d.End.X - dx/2, Y: d.End.Y}
}

type Layout struct {
	Zoom      Zoom  `json:"zoom"`
	DayWidth  int   `json:"day_width"`
	TotalDays int   `json:"total_days"`
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	GridLines []int `json:"grid_lines"`

	Rows         []RowGeometry `json:"rows"`
	Dependencies []Dependency  `json:"dependencies"`

	min time.Time
}

// X converts a date to its left pixel offset.
func (l *Layout) X(d time.Time) int {
	return dates.Offset(l.min, d) * l.DayWidth
}

// Project computes geometry for rs against m at zoom z. The day width comes
// from m.DayWidth.
func Project(rs []rows.Row, m *model.Model, z Zoom) *Layout {
	l := &Layout{Zoom: z, DayWidth: m.DayWidth, TotalDays: m.TotalDays(), min: m.Min}
	l.Width = l.TotalDays*l.DayWidth + RightPad
	l.Height = len(rs) * RowHeight
	for _, g := range gridDays(m, z, l.TotalDays) {
		l.GridLines = append(l.GridLines, g*l.DayWidth)
	}

	anchors := map[int]Rect{}
	for i, r := range rs {
		g := RowGeometry{
			Index:   i,
			Kind:    r.Kind,
			Top:     i * RowHeight,
			Bottom:  i*RowHeight + RowHeight,
			CenterY: i*RowHeight + RowHeight/2,
		}
		switch r.Kind {
		case rows.KindGroup, rows.KindSubgroup:
			l.summary(&g, r)
		case rows.KindMilestone:
			left, _ := l.extent(r.Task.Start, r.Task.End)
			g.Milestone = &Marker{X: left, Y: g.CenterY, Date: r.Task.Start}
		default:
			l.leaf(&g, r.Task)
		}
		if r.Task != nil {
			left, w := l.extent(r.Task.Start, r.Task.End)
			anchors[r.Task.Index] = Rect{X: left, Y: g.CenterY, W: w}
		}
		l.Rows = append(l.Rows, g)
	}

	rowOf := map[int]int{}
	for i, r := range rs {
		if r.Task != nil {
			rowOf[r.Task.Index] = i
		}
	}
	for i, r := range rs {
		if r.Task == nil {
			continue
		}
		src := anchors[r.Task.Index]
		for _, to := range r.Task.Successors {
			dst, ok := anchors[to]
			if !ok {
				continue
			}
			l.Dependencies = append(l.Dependencies, Dependency{
				From:    r.Task.Index,
				To:      to,
				FromRow: i,
				ToRow:   rowOf[to],
				Start:   Point{X: src.X + src.W, Y: src.Y},
				End:     Point{X: dst.X, Y: dst.Y},
			})
		}
	}
	return l
}

// extent returns the left offset and width of a bar spanning start..end.
func (l *Layout) extent(start, end time.Time) (int, int) {
	left := l.X(start)
	w := dates.InclusiveDaySpan(start, end)*l.DayWidth - BarGutter
	if w < MinBarWidth {
		w = MinBarWidth
	}
	return left, w
}

func (l *Layout) leaf(g *RowGeometry, t *model.Task) {
	left, w := l.extent(t.Start, t.End)
	top := g.Top + BarPad
	mid := top + BarHeight/2
	g.Bar = &Rect{X: left, Y: top, W: w, H: BarHeight}
	g.StartLabel = &Label{X: left - DateLabelGap, Y: mid, Text: dates.FormatMonthDay(t.Start), Anchor: AnchorEnd}
	g.EndLabel = &Label{X: left + w + DateLabelGap, Y: mid, Text: dates.FormatMonthDay(t.End), Anchor: AnchorStart}
	if t.HasCheck() {
		x := l.X(t.Check)
		if x < left {
			x = left
		}
		if x > left+w {
			x = left + w
		}
		g.Check = &Marker{X: x, Y: mid + 15, Date: t.Check}
	}
}

func (l *Layout) summary(g *RowGeometry, r rows.Row) {
	var lo, hi, check time.Time
	for _, t := range r.Items {
		if t.Start.IsZero() || t.End.IsZero() {
			continue
		}
		if lo.IsZero() || t.Start.Before(lo) {
			lo = t.Start
		}
		if hi.IsZero() || t.End.After(hi) {
			hi = t.End
		}
		if t.HasCheck() && (check.IsZero() || t.Check.Before(check)) {
			check = t.Check
		}
	}
	if lo.IsZero() || isMilestoneGroup(r) {
		return
	}
	left, w := l.extent(lo, hi)
	pad := (RowHeight - SummaryBarHeight) / 2
	if pad < 0 {
		pad = 0
	}
	top := g.Top + pad + 2
	mid := top + SummaryBarHeight/2
	g.Bar = &Rect{X: left, Y: top, W: w, H: SummaryBarHeight}
	g.StartLabel = &Label{X: left - DateLabelGap, Y: mid, Text: dates.FormatMonthDay(lo), Anchor: AnchorEnd}
	g.EndLabel = &Label{X: left + w + DateLabelGap, Y: mid, Text: dates.FormatMonthDay(hi), Anchor: AnchorStart}
	if r.Kind == rows.KindSubgroup && !check.IsZero() {
		g.Check = &Marker{X: l.X(check), Y: mid + 9, Date: check}
	}
}

// isMilestoneGroup is true for a group whose items sequence as milestones;
// such groups draw no summary bar.
func isMilestoneGroup(r rows.Row) bool {
	return r.Kind == rows.KindGroup && r.Milestone
}
