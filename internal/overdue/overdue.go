// Package overdue finds unfinished rows whose end date has passed and builds
// the "today" path that bends around them.
package overdue

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/rows"
)

const (
	// Radius caps the vertical inset of a bend within its row.
	Radius = 8
	// TouchGap keeps a bend one pixel clear of the end label.
	TouchGap = 1
	// LabelFontPx is the end label font size used for width estimates.
	LabelFontPx = 11
)

// Segment is one overdue row the today path must reach.
type Segment struct {
	Row            int    `json:"row"`
	Task           int    `json:"task"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	End            string `json:"end"`
	RowTop         int    `json:"row_top"`
	RowBottom      int    `json:"row_bottom"`
	CenterY        int    `json:"center_y"`
	EndLabelRightX int    `json:"end_label_right_x"`
}

// DoneFunc reports whether a raw status string means finished.
type DoneFunc func(status string) bool

// Segments lists task and subtask rows that are not done and ended before
// today (UTC midnight), ordered by row top.
func Segments(rs []rows.Row, l *layout.Layout, today time.Time, isDone DoneFunc) []Segment {
	today = dates.Midnight(today)
	var out []Segment
	for i, r := range rs {
		if !r.IsLeaf() || r.Task == nil || r.Task.End.IsZero() {
			continue
		}
		status := strings.TrimSpace(strings.ReplaceAll(r.Task.Status, "\u3000", " "))
		if isDone != nil && isDone(status) {
			continue
		}
		if !r.Task.End.Before(today) {
			continue
		}
		g := l.Rows[i]
		seg := Segment{
			Row:       i,
			Task:      r.Task.Index,
			Name:      r.DisplayName,
			Status:    status,
			End:       dates.Format(r.Task.End),
			RowTop:    g.Top,
			RowBottom: g.Bottom,
			CenterY:   g.CenterY,
		}
		if g.Bar != nil {
			seg.CenterY = g.Bar.Y + g.Bar.H/2
		}
		if g.EndLabel != nil {
			seg.EndLabelRightX = g.EndLabel.Right(LabelFontPx)
		}
		out = append(out, seg)
	}
	return out
}

// TodayX is the pixel offset of today's UTC midnight from the model minimum.
func TodayX(m *model.Model, today time.Time) int {
	return dates.Offset(m.Min, dates.Midnight(today)) * m.DayWidth
}

// Visible reports whether x falls within a canvas of the given width.
func Visible(x, width int) bool {
	return x >= 0 && x <= width
}

// Path builds SVG path data for a vertical line at todayX spanning height,
// bending left to touch the end label of each segment.
func Path(segs []Segment, todayX, height int) string {
	parts := []string{fmt.Sprintf("M %d 0", todayX)}
	cursor := 0
	for _, s := range segs {
		top := max(0, s.RowTop)
		bot := min(height, s.RowBottom)
		inset := min(Radius, (bot-top)/2)
		if cursor < top {
			parts = append(parts, fmt.Sprintf("L %d %d", todayX, top+inset))
		}
		touch := max(0, min(todayX-1, s.EndLabelRightX+TouchGap))
		parts = append(parts,
			fmt.Sprintf("Q %d %d %d %d", todayX, s.CenterY, touch, s.CenterY),
			fmt.Sprintf("Q %d %d %d %d", todayX, s.CenterY, todayX, bot-inset),
		)
		cursor = bot
	}
	if cursor < height {
		parts = append(parts, fmt.Sprintf("L %d %d", todayX, height))
	}
	return strings.Join(parts, " ")
}
