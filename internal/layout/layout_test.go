package layout

import (
	"testing"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/rows"
)

const fixture = `category,viewpoint,task,start,end,check,id,successors
Build,Design,Draft,2025-08-20,2025-08-20,,1,2
Build,Design,Review,2025-08-22,2025-08-25,2025-08-30,2,3
Build,Test,,2025-08-26,2025-08-27,,3,
Milestones,Go,,2025-08-29,2025-08-29,,4,
`

func project(t *testing.T, collapsed ...string) (*model.Model, []rows.Row, *Layout) {
	t.Helper()
	opts := model.DefaultOptions()
	opts.CategoryOrder = []string{"Milestones"}
	m, _, err := model.Build(fixture, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	v := rows.View{CollapsedViewpoints: map[string]bool{}, MilestoneCategory: "Milestones"}
	for _, k := range collapsed {
		v.CollapsedViewpoints[k] = true
	}
	rs := rows.Sequence(m, v)
	return m, rs, Project(rs, m, ZoomDay)
}

func TestProjectLeafBars(t *testing.T) {
	_, rs, l := project(t)
	if len(rs) != 8 || len(l.Rows) != 8 {
		t.Fatalf("expected 8 rows, got %d/%d", len(rs), len(l.Rows))
	}
	if l.Width != 17*28+RightPad || l.Height != 8*RowHeight {
		t.Fatalf("unexpected canvas %dx%d", l.Width, l.Height)
	}
	draft := l.Rows[4]
	if draft.Kind != rows.KindTask || draft.Bar == nil {
		t.Fatalf("expected task bar at row 4, got %#v", draft)
	}
	if *draft.Bar != (Rect{X: 196, Y: 116, W: 26, H: BarHeight}) {
		t.Fatalf("unexpected bar %#v", *draft.Bar)
	}
	if draft.StartLabel.X != 192 || draft.StartLabel.Anchor != AnchorEnd || draft.StartLabel.Text != "8/20" {
		t.Fatalf("unexpected start label %#v", draft.StartLabel)
	}
	if draft.EndLabel.X != 226 || draft.EndLabel.Y != 126 {
		t.Fatalf("unexpected end label %#v", draft.EndLabel)
	}
	if draft.Check != nil {
		t.Fatalf("expected no check marker")
	}

	review := l.Rows[5]
	if review.Bar.X != 252 || review.Bar.W != 110 {
		t.Fatalf("unexpected review bar %#v", *review.Bar)
	}
	if review.Check == nil || review.Check.X != 362 || review.Check.Y != 169 {
		t.Fatalf("expected check clamped to bar end, got %#v", review.Check)
	}
}

func TestProjectSummaryAndMilestone(t *testing.T) {
	_, _, l := project(t)
	if l.Rows[0].Bar != nil {
		t.Fatalf("milestone group should not draw a summary bar")
	}
	ms := l.Rows[1].Milestone
	if ms == nil || ms.X != 448 || ms.Y != 42 {
		t.Fatalf("unexpected milestone marker %#v", ms)
	}
	group := l.Rows[2]
	if group.Bar == nil || group.Bar.X != 196 || group.Bar.W != 222 || group.Bar.H != SummaryBarHeight {
		t.Fatalf("unexpected group bar %#v", group.Bar)
	}
	if group.Check != nil {
		t.Fatalf("group rows carry no check marker")
	}
	sub := l.Rows[3]
	if sub.Bar.Y != 94 || sub.Bar.W != 166 {
		t.Fatalf("unexpected subgroup bar %#v", *sub.Bar)
	}
	if sub.Check == nil || sub.Check.X != 476 || sub.Check.Y != 109 {
		t.Fatalf("unexpected subgroup check %#v", sub.Check)
	}
}

func TestProjectDependencies(t *testing.T) {
	_, _, l := project(t)
	if len(l.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %#v", l.Dependencies)
	}
	d := l.Dependencies[0]
	if d.Start != (Point{X: 222, Y: 126}) || d.End != (Point{X: 252, Y: 154}) {
		t.Fatalf("unexpected endpoints %#v", d)
	}
	c1, c2 := d.Controls()
	if c1 != (Point{X: 237, Y: 126}) || c2 != (Point{X: 237, Y: 154}) {
		t.Fatalf("unexpected controls %v %v", c1, c2)
	}
	if d2 := l.Dependencies[1]; d2.FromRow != 5 || d2.ToRow != 7 || d2.End.X != 364 {
		t.Fatalf("unexpected second dependency %#v", d2)
	}
}

func TestProjectSkipsHiddenSuccessor(t *testing.T) {
	_, _, l := project(t, model.ViewpointKey("Build", "Test"))
	if len(l.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %#v", l.Dependencies)
	}
	if l.Dependencies[0].To != 1 {
		t.Fatalf("expected remaining link to Review, got %#v", l.Dependencies[0])
	}
}

func TestTicksWeek(t *testing.T) {
	m, _, _ := project(t)
	ticks := Ticks(m, ZoomWeek)
	if len(ticks) != 3 {
		t.Fatalf("expected 3 week ticks, got %#v", ticks)
	}
	want := []string{"8/17", "8/24", "8/31"}
	for i, tk := range ticks {
		if tk.Label != want[i] {
			t.Fatalf("expected %q, got %q", want[i], tk.Label)
		}
		if tk.LabelX != tk.X+6 || tk.Centered {
			t.Fatalf("unexpected label placement %#v", tk)
		}
	}
	if ticks[0].X != 4*28 {
		t.Fatalf("expected first tick at %d, got %d", 4*28, ticks[0].X)
	}
}

func TestTicksDayIncludesGuard(t *testing.T) {
	m, _, _ := project(t)
	ticks := Ticks(m, ZoomDay)
	if len(ticks) != m.TotalDays()+GuardDays {
		t.Fatalf("expected %d ticks, got %d", m.TotalDays()+GuardDays, len(ticks))
	}
	if ticks[0].Label != "13" || ticks[0].LabelX != 14 || !ticks[0].Centered {
		t.Fatalf("unexpected first day tick %#v", ticks[0])
	}
	if HeaderWidth(m) != 19*28 {
		t.Fatalf("unexpected header width %d", HeaderWidth(m))
	}
}

func TestMonthBands(t *testing.T) {
	m := &model.Model{
		Min:      time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC),
		Max:      time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
		DayWidth: 10,
	}
	bands := MonthBands(m, ZoomDay)
	if len(bands) != 2 {
		t.Fatalf("expected 2 bands, got %#v", bands)
	}
	if bands[0] != (Band{X: 0, Width: 20, Label: "2025年 8月", LabelX: 10}) {
		t.Fatalf("unexpected first band %#v", bands[0])
	}
	if bands[1] != (Band{X: 20, Width: 40, Label: "2025年 9月", LabelX: 40}) {
		t.Fatalf("unexpected second band %#v", bands[1])
	}
	if MonthBands(m, ZoomMonth) != nil {
		t.Fatalf("month zoom should have no bands")
	}
	ticks := Ticks(m, ZoomMonth)
	if len(ticks) != 1 || ticks[0].Label != "9月" || ticks[0].LabelX != 26 {
		t.Fatalf("unexpected month ticks %#v", ticks)
	}
}

func TestFitDayWidth(t *testing.T) {
	cases := []struct {
		px, days, min, want int
	}{
		{800, 40, 4, 20},
		{100, 40, 4, 4},
		{1000, 0, 0, 1000},
		{90, 20, 0, 5},
	}
	for _, c := range cases {
		if got := FitDayWidth(c.px, c.days, c.min); got != c.want {
			t.Fatalf("FitDayWidth(%d, %d, %d): expected %d, got %d", c.px, c.days, c.min, c.want, got)
		}
	}
}

func TestZoom(t *testing.T) {
	z, err := ParseZoom("Week")
	if err != nil || z != ZoomWeek {
		t.Fatalf("expected week, got %q %v", z, err)
	}
	if _, err := ParseZoom("year"); err == nil {
		t.Fatalf("expected error for unknown zoom")
	}
	if ZoomMonth.Next() != ZoomDay {
		t.Fatalf("expected month to cycle to day")
	}
	if DefaultWidths.For(ZoomMonth) != 7 {
		t.Fatalf("expected month width 7")
	}
}
