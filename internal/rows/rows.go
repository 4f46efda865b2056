// Package rows flattens a Model into the ordered rows of the chart.
//
// The position of a row in the returned slice is its vertical index; layout
// code never recomputes it.
package rows

import (
	"sort"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/model"
)

// Kind tags a Row.
type Kind string

const (
	KindGroup     Kind = "group"
	KindSubgroup  Kind = "subgroup"
	KindTask      Kind = "task"
	KindSubtask   Kind = "subtask"
	KindMilestone Kind = "milestone"
)

// Row is one display line. Group and subgroup rows carry Items; leaf rows
// carry Task.
type Row struct {
	Kind        Kind
	Category    string
	Viewpoint   string
	Key         string
	Items       []*model.Task
	Task        *model.Task
	DisplayName string
	// Milestone marks the group row of the milestone category.
	Milestone bool
}

// IsLeaf reports whether the row draws a single task bar.
func (r Row) IsLeaf() bool {
	return r.Kind == KindTask || r.Kind == KindSubtask
}

// View is the UI state a sequence depends on.
type View struct {
	CollapsedCategories map[string]bool
	CollapsedViewpoints map[string]bool
	HideTaskRows        bool

	MilestoneCategory string
	DefaultViewpoint  string
	// ViewpointOrder, when non-empty, ranks listed viewpoints ahead of the
	// start-date ordering.
	ViewpointOrder []string
	Compare        model.Compare
}

// Sequence builds the row list for m under v.
func Sequence(m *model.Model, v View) []Row {
	if m == nil {
		return nil
	}
	cmp := v.Compare
	if cmp == nil {
		cmp = model.NewCollator("ja")
	}
	defVP := v.DefaultViewpoint
	if defVP == "" {
		defVP = m.DefaultViewpoint
	}
	var out []Row
	for _, g := range m.Groups {
		milestones := v.MilestoneCategory != "" && g.Category == v.MilestoneCategory
		out = append(out, Row{Kind: KindGroup, Category: g.Category, Items: g.Items, DisplayName: g.Category, Milestone: milestones})
		if v.CollapsedCategories[g.Category] {
			continue
		}
		if milestones {
			for _, t := range g.Items {
				out = append(out, Row{
					Kind:        KindMilestone,
					Category:    g.Category,
					Task:        t,
					DisplayName: firstNonEmpty(t.Viewpoint, t.Label, t.Name),
				})
			}
			continue
		}

		for _, b := range viewpointBuckets(g.Items, defVP, v.ViewpointOrder, cmp) {
			key := model.ViewpointKey(g.Category, b.name)
			out = append(out, Row{Kind: KindSubgroup, Category: g.Category, Viewpoint: b.name, Key: key, Items: b.items, DisplayName: b.name})
			if v.CollapsedViewpoints[key] {
				continue
			}
			var named, plain []*model.Task
			for _, t := range b.items {
				if t.Label != "" {
					named = append(named, t)
				} else {
					plain = append(plain, t)
				}
			}
			SortByDates(named, cmp)
			SortByDates(plain, cmp)
			if len(named) > 0 && !v.HideTaskRows {
				for _, t := range named {
					out = append(out, Row{Kind: KindTask, Category: g.Category, Viewpoint: b.name, Key: key, Task: t, DisplayName: t.Label})
				}
			}
			for _, t := range plain {
				out = append(out, Row{Kind: KindSubtask, Category: g.Category, Viewpoint: b.name, Key: key, Task: t, DisplayName: firstNonEmpty(t.Viewpoint, t.Name)})
			}
		}
	}
	return out
}

type bucket struct {
	name     string
	items    []*model.Task
	minStart time.Time
}

func viewpointBuckets(items []*model.Task, defVP string, order []string, cmp model.Compare) []bucket {
	idx := map[string]int{}
	var buckets []bucket
	for _, t := range items {
		name := t.ViewpointName(defVP)
		i, ok := idx[name]
		if !ok {
			i = len(buckets)
			idx[name] = i
			buckets = append(buckets, bucket{name: name})
		}
		b := &buckets[i]
		b.items = append(b.items, t)
		if !t.Start.IsZero() && (b.minStart.IsZero() || t.Start.Before(b.minStart)) {
			b.minStart = t.Start
		}
	}

	rank := model.Rank(order)
	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if len(order) > 0 {
			if ra, rb := rank(a.name), rank(b.name); ra != rb {
				return ra < rb
			}
		}
		if c := compareDates(a.minStart, b.minStart); c != 0 {
			return c < 0
		}
		return cmp(a.name, b.name) < 0
	})
	return buckets
}

// SortByDates orders tasks by start, then end, then display name. Zero dates
// sort last. The sort is stable.
func SortByDates(tasks []*model.Task, cmp model.Compare) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return CompareByDates(tasks[i], tasks[j], cmp) < 0
	})
}

// CompareByDates is the comparator behind SortByDates.
func CompareByDates(a, b *model.Task, cmp model.Compare) int {
	if c := compareDates(a.Start, b.Start); c != 0 {
		return c
	}
	if c := compareDates(a.End, b.End); c != 0 {
		return c
	}
	return cmp(firstNonEmpty(a.Label, a.Viewpoint, a.Name), firstNonEmpty(b.Label, b.Viewpoint, b.Name))
}

func compareDates(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
