package session

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/rows"
)

const fixture = `category,viewpoint,task,start,end,status,id,successors
A,x,T1,2025-08-20,2025-08-22,進行中,1,2
A,y,,2025-08-23,2025-08-24,完了済み,2,
B,z,,2025-08-25,2025-08-26,,3,
`

const fixtureNext = `category,viewpoint,task,start,end
A,x,T1,2025-08-20,2025-08-22
A,w,,2025-08-23,2025-08-24
B,z,,2025-08-25,2025-08-26
`

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(config.Default(), nil)
	s.Now = func() time.Time { return time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC) }
	if _, err := s.Generate("plan.csv", fixture); err != nil {
		t.Fatalf("generate: %v", err)
	}
	return s
}

func kinds(rs []rows.Row) []rows.Kind {
	out := make([]rows.Kind, len(rs))
	for i, r := range rs {
		out[i] = r.Kind
	}
	return out
}

func TestFirstGenerateCollapsesViewpoints(t *testing.T) {
	s := newSession(t)
	rs, err := s.Rows()
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := []rows.Kind{rows.KindGroup, rows.KindSubgroup, rows.KindSubgroup, rows.KindGroup, rows.KindSubgroup}
	if !reflect.DeepEqual(kinds(rs), want) {
		t.Fatalf("expected %v, got %v", want, kinds(rs))
	}
	if s.BuildID == "" || s.Source != "plan.csv" {
		t.Fatalf("expected build id and source, got %q %q", s.BuildID, s.Source)
	}
	if !s.Collapse.Initialized() {
		t.Fatalf("expected collapse state initialized")
	}
}

func TestRegeneratePrunesCollapsedKeys(t *testing.T) {
	s := newSession(t)
	if err := s.ToggleViewpointOf("A", "x"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.Generate("next.csv", fixtureNext); err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := map[string]bool{"B::z": true}
	if !reflect.DeepEqual(s.Collapse.Viewpoints, want) {
		t.Fatalf("expected %v, got %v", want, s.Collapse.Viewpoints)
	}
}

func TestFailedGenerateKeepsPreviousModel(t *testing.T) {
	s := newSession(t)
	prev, prevID := s.Model, s.BuildID
	_, err := s.Generate("bad.csv", "foo,bar\n1,2\n")
	if !errors.Is(err, model.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if s.Model != prev || s.BuildID != prevID || s.Source != "plan.csv" {
		t.Fatalf("failed generate replaced state")
	}
	if _, err := s.Generate("empty.csv", ""); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("expected empty input error, got %v", err)
	}
	if s.Model != prev {
		t.Fatalf("failed generate replaced model")
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	a := newSession(t)
	b := newSession(t)
	if !reflect.DeepEqual(a.Model, b.Model) {
		t.Fatalf("expected identical models")
	}
	ra, _ := a.Rows()
	rb, _ := b.Rows()
	if !reflect.DeepEqual(ra, rb) {
		t.Fatalf("expected identical rows")
	}
	before := a.Snapshot()
	if _, err := a.Generate("plan.csv", fixture); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(before, a.Snapshot()) {
		t.Fatalf("rebuild changed state: %#v vs %#v", before, a.Snapshot())
	}
}

func TestToggleAll(t *testing.T) {
	s := newSession(t)
	if s.AnyViewpointExpanded() {
		t.Fatalf("expected every viewpoint collapsed")
	}
	if err := s.ToggleAllViewpoints(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(s.Collapse.Viewpoints) != 0 {
		t.Fatalf("expected viewpoints cleared, got %v", s.Collapse.Viewpoints)
	}
	_ = s.ToggleViewpoint("A::y")
	_ = s.ToggleAllViewpoints()
	if s.AnyViewpointExpanded() {
		t.Fatalf("partial collapse should collapse all")
	}

	_ = s.ToggleAllCategories()
	if s.AnyCategoryExpanded() {
		t.Fatalf("expected categories collapsed")
	}
	rs, _ := s.Rows()
	if len(rs) != 2 {
		t.Fatalf("expected 2 group rows, got %d", len(rs))
	}
	_ = s.ToggleAllCategories()
	if !s.AnyCategoryExpanded() || len(s.Collapse.Categories) != 0 {
		t.Fatalf("expected categories expanded")
	}

	s.ToggleTaskRows()
	if !s.HideTaskRows {
		t.Fatalf("expected task rows hidden")
	}
}

func TestToggleUnknownKey(t *testing.T) {
	s := newSession(t)
	if err := s.ToggleCategory("Z"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected unknown key, got %v", err)
	}
	if err := s.ToggleViewpoint("A::nope"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected unknown key, got %v", err)
	}
	empty := New(config.Default(), nil)
	if err := empty.ToggleAllCategories(); !errors.Is(err, ErrNoModel) {
		t.Fatalf("expected no model, got %v", err)
	}
	if _, err := empty.Frame(); !errors.Is(err, ErrNoModel) {
		t.Fatalf("expected no model, got %v", err)
	}
}

func TestZoomAndFit(t *testing.T) {
	s := newSession(t)
	s.SetZoom(layout.ZoomWeek)
	if s.DayWidth() != 12 || s.Model.DayWidth != 12 {
		t.Fatalf("expected week width 12, got %d/%d", s.DayWidth(), s.Model.DayWidth)
	}
	if err := s.FitToWidth(800); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if s.Model.DayWidth != 57 || s.FitWidth != 800 {
		t.Fatalf("expected fitted width 57, got %d", s.Model.DayWidth)
	}
	if _, err := s.Generate("plan.csv", fixture); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if s.Model.DayWidth != 57 {
		t.Fatalf("expected fit to survive rebuild, got %d", s.Model.DayWidth)
	}
	if s.CycleZoom() != layout.ZoomMonth || s.Model.DayWidth != 7 || s.FitWidth != 0 {
		t.Fatalf("expected month zoom at width 7, got %s/%d", s.Zoom, s.Model.DayWidth)
	}
	if err := s.FitToWidth(0); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestFrame(t *testing.T) {
	s := newSession(t)
	_ = s.ToggleAllViewpoints()
	f, err := s.Frame()
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if len(f.Rows) != 8 || len(f.Layout.Rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(f.Rows))
	}
	if len(f.Overdue) != 2 || f.Overdue[0].Row != 2 || f.Overdue[1].Row != 7 {
		t.Fatalf("unexpected overdue rows %#v", f.Overdue)
	}
	if f.TodayX != 19*28 || f.TodayVisible || f.TodayPath != "" {
		t.Fatalf("expected today past the canvas, got x=%d visible=%v", f.TodayX, f.TodayVisible)
	}
	if len(f.Layout.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(f.Layout.Dependencies))
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := newSession(t)
	_ = s.ToggleViewpoint("B::z")
	s.SetZoom(layout.ZoomWeek)
	st := s.Snapshot()

	r := New(config.Default(), nil)
	if err := r.Restore(st); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := r.Generate("plan.csv", fixture); err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := map[string]bool{"A::x": true, "A::y": true}
	if !reflect.DeepEqual(r.Collapse.Viewpoints, want) {
		t.Fatalf("expected %v, got %v", want, r.Collapse.Viewpoints)
	}
	if r.Zoom != layout.ZoomWeek || r.Model.DayWidth != 12 {
		t.Fatalf("expected restored week zoom, got %s/%d", r.Zoom, r.Model.DayWidth)
	}
	if err := r.Restore(State{Zoom: "year"}); err == nil {
		t.Fatalf("expected error for bad zoom")
	}
}

func TestGenerateBeforeEpoch(t *testing.T) {
	s := New(config.Config{}, nil)
	s.Now = func() time.Time { return time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC) }
	if _, err := s.Generate("x", "category,start,end\nA,2025-08-20,2025-08-21\n"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if s.BuildID == "" {
		t.Fatalf("expected a build id")
	}
	if want := time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC); !s.Model.Min.Equal(want) {
		t.Fatalf("expected min %v, got %v", want, s.Model.Min)
	}
}
