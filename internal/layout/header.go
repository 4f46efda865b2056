package layout

import (
	"fmt"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/model"
)

// Tick is one labelled boundary in the date header.
type Tick struct {
	Day    int       `json:"day"`
	Date   time.Time `json:"date"`
	X      int       `json:"x"`
	Label  string    `json:"label"`
	LabelX int       `json:"label_x"`
	// Centered labels sit on LabelX; others start there.
	Centered bool `json:"centered"`
}

// Band is a month span in the upper header row.
type Band struct {
	X      int    `json:"x"`
	Width  int    `json:"width"`
	Label  string `json:"label"`
	LabelX int    `json:"label_x"`
}

// IsBoundary reports whether d starts a header cell in zoom z: every day,
// each Sunday, or the first of a month.
func IsBoundary(d time.Time, z Zoom) bool {
	switch z {
	case ZoomWeek:
		return d.UTC().Weekday() == time.Sunday
	case ZoomMonth:
		return d.UTC().Day() == 1
	default:
		return true
	}
}

// HeaderWidth is the header extent, which runs GuardDays past the content.
func HeaderWidth(m *model.Model) int {
	return (m.TotalDays() + GuardDays) * m.DayWidth
}

// Ticks lists the header boundaries of m in zoom z, guard days included.
func Ticks(m *model.Model, z Zoom) []Tick {
	var out []Tick
	dw := m.DayWidth
	n := m.TotalDays() + GuardDays
	for d := 0; d < n; d++ {
		cur := dates.AddDays(m.Min, d)
		if !IsBoundary(cur, z) {
			continue
		}
		x := d * dw
		t := Tick{Day: d, Date: cur, X: x}
		switch z {
		case ZoomMonth:
			t.Label = fmt.Sprintf("%d月", int(cur.Month()))
			t.LabelX = x + 6
		case ZoomWeek:
			t.Label = dates.FormatMonthDay(cur)
			t.LabelX = x + 6
		default:
			t.Label = fmt.Sprint(cur.Day())
			t.LabelX = x + dw/2
			t.Centered = true
		}
		out = append(out, t)
	}
	return out
}

// MonthBands splits the header into calendar months. Month zoom has none
// since its ticks already name the months.
func MonthBands(m *model.Model, z Zoom) []Band {
	if z == ZoomMonth {
		return nil
	}
	var out []Band
	dw := m.DayWidth
	n := m.TotalDays() + GuardDays
	start := 0
	for d := 1; d <= n; d++ {
		if d < n && dates.AddDays(m.Min, d).Day() != 1 {
			continue
		}
		first := dates.AddDays(m.Min, start)
		span := d - start
		out = append(out, Band{
			X:      start * dw,
			Width:  span * dw,
			Label:  fmt.Sprintf("%d年 %d月", first.Year(), int(first.Month())),
			LabelX: start*dw + span*dw/2,
		})
		start = d
	}
	return out
}

// gridDays lists the day offsets that get a vertical grid line.
func gridDays(m *model.Model, z Zoom, total int) []int {
	var out []int
	for d := 0; d < total; d++ {
		if IsBoundary(dates.AddDays(m.Min, d), z) {
			out = append(out, d)
		}
	}
	return out
}
