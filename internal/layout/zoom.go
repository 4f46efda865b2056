package layout

import (
	"fmt"
	"math"
	"strings"
)

// Zoom is the header granularity of the chart.
type Zoom string

const (
	ZoomDay   Zoom = "day"
	ZoomWeek  Zoom = "week"
	ZoomMonth Zoom = "month"
)

// Zooms lists the modes in cycling order.
var Zooms = []Zoom{ZoomDay, ZoomWeek, ZoomMonth}

// ParseZoom accepts day, week or month in any case. Empty input is day.
func ParseZoom(s string) (Zoom, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day", "d":
		return ZoomDay, nil
	case "week", "w":
		return ZoomWeek, nil
	case "month", "m":
		return ZoomMonth, nil
	default:
		return "", fmt.Errorf("unknown zoom %q (want day, week or month)", s)
	}
}

// Next returns the mode after z in Zooms.
func (z Zoom) Next() Zoom {
	for i, v := range Zooms {
		if v == z {
			return Zooms[(i+1)%len(Zooms)]
		}
	}
	return ZoomDay
}

// Widths is the day width in pixels for each zoom mode.
type Widths struct {
	Day   int
	Week  int
	Month int
}

var DefaultWidths = Widths{Day: 28, Week: 12, Month: 7}

// For returns the day width of z.
func (w Widths) For(z Zoom) int {
	switch z {
	case ZoomWeek:
		return w.Week
	case ZoomMonth:
		return w.Month
	default:
		return w.Day
	}
}

// MinFitDayWidth is the narrowest day FitDayWidth returns by default.
const MinFitDayWidth = 4

// FitDayWidth picks the day width that makes totalDays fill containerPx,
// never narrower than minWidth.
func FitDayWidth(containerPx, totalDays, minWidth int) int {
	if minWidth <= 0 {
		minWidth = MinFitDayWidth
	}
	if totalDays <= 0 {
		totalDays = 1
	}
	w := int(math.Round(float64(containerPx) / float64(totalDays)))
	if w < minWidth {
		return minWidth
	}
	return w
}
