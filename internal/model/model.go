// Package model builds the task graph a Gantt chart is drawn from.
//
// Build is a pure function of the CSV text and its Options: it never touches
// UI state, so callers can keep the previous Model when it fails.
package model

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/csvgrid"
	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/header"
)

// Task is one surviving CSV data row.
type Task struct {
	// Index is the task's position in Model.Tasks.
	Index int `json:"index"`
	// Row is the 1-based data row number (header excluded, blank rows skipped).
	Row int `json:"row"`

	Category  string    `json:"category"`
	Viewpoint string    `json:"viewpoint"`
	Label     string    `json:"task"`
	Name      string    `json:"name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Check     time.Time `json:"check,omitempty"`

	Assignee string `json:"assignee,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`

	ID            string `json:"id,omitempty"`
	SuccessorsRaw string `json:"successors_raw,omitempty"`
	// Successors holds indices into Model.Tasks, resolved after every row is known.
	Successors []int `json:"successors,omitempty"`
}

// HasCheck reports whether the task carries a midpoint check date.
func (t *Task) HasCheck() bool {
	return !t.Check.IsZero()
}

// ViewpointName is the viewpoint or the default label when blank.
func (t *Task) ViewpointName(def string) string {
	if t.Viewpoint == "" {
		return def
	}
	return t.Viewpoint
}

// Group is one category bucket.
type Group struct {
	Category string  `json:"category"`
	Items    []*Task `json:"-"`
}

type Model struct {
	Tasks  []*Task `json:"tasks"`
	Groups []Group `json:"groups"`
	// Min is the earliest start minus the left padding; Max is the latest end.
	Min      time.Time `json:"min"`
	Max      time.Time `json:"max"`
	DayWidth int       `json:"day_width"`
	// DefaultViewpoint labels tasks with a blank viewpoint.
	DefaultViewpoint string `json:"-"`
}

// Successors resolves t's successor indices.
func (m *Model) Successors(t *Task) []*Task {
	out := make([]*Task, 0, len(t.Successors))
	for _, i := range t.Successors {
		if i >= 0 && i < len(m.Tasks) {
			out = append(out, m.Tasks[i])
		}
	}
	return out
}

// ViewpointKey is the collapse-state key of a viewpoint within a category.
func ViewpointKey(category, viewpoint string) string {
	return category + "::" + viewpoint
}

// ViewpointKeys returns every category::viewpoint key in model order.
func (m *Model) ViewpointKeys() []string {
	var keys []string
	for _, g := range m.Groups {
		seen := map[string]bool{}
		for _, t := range g.Items {
			name := t.ViewpointName(m.DefaultViewpoint)
			if seen[name] {
				continue
			}
			seen[name] = true
			keys = append(keys, ViewpointKey(g.Category, name))
		}
	}
	return keys
}

// Categories returns the group names in model order.
func (m *Model) Categories() []string {
	out := make([]string, len(m.Groups))
	for i, g := range m.Groups {
		out[i] = g.Category
	}
	return out
}

// TotalDays is the inclusive day count between Min and Max.
func (m *Model) TotalDays() int {
	return dates.InclusiveDaySpan(m.Min, m.Max)
}

type Options struct {
	CategoryOrder    []string
	DefaultCategory  string
	DefaultViewpoint string
	LeftPadDays      int
	DayWidth         int
	Compare          Compare
	Logger           *log.Logger
}

func DefaultOptions() Options {
	return Options{
		DefaultCategory:  "(未分類)",
		DefaultViewpoint: "(なし)",
		LeftPadDays:      7,
		DayWidth:         28,
		Compare:          NewCollator("ja"),
	}
}

// DroppedRow records a data row that did not become a Task.
type DroppedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ReferenceWarning records a successor id that was not linked.
type ReferenceWarning struct {
	From   string `json:"from"`
	Row    int    `json:"row"`
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

func (w ReferenceWarning) String() string {
	return fmt.Sprintf("successor %q from task %q (row %d): %s", w.Ref, w.From, w.Row, w.Reason)
}

// Report carries the non-fatal diagnostics of a build.
type Report struct {
	Dropped  []DroppedRow       `json:"dropped"`
	Warnings []ReferenceWarning `json:"warnings"`
}

const (
	reasonNoName       = "no display name"
	reasonNoStart      = "missing or invalid start date"
	reasonNoEnd        = "missing or invalid end date"
	reasonInverted     = "end date before start date"
	reasonUnresolved   = "unknown task id"
	reasonSelfRelation = "self reference"
)

// Build parses CSV text into a Model.
func Build(text string, opts Options) (*Model, *Report, error) {
	opts = fillOptions(opts)
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	grid := csvgrid.Parse(text)
	if len(grid) == 0 {
		return nil, nil, &Error{Kind: ErrEmptyInput}
	}
	cols, missing := header.Resolve(grid[0])
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, nil, &Error{Kind: ErrSchema, Missing: names, Detail: "header needs category, start and end"}
	}

	report := &Report{}
	var tasks []*Task
	for i, r := range grid[1:] {
		t, reason := taskFromRow(r, cols)
		if reason != "" {
			report.Dropped = append(report.Dropped, DroppedRow{Row: i + 1, Reason: reason})
			continue
		}
		t.Row = i + 1
		t.Index = len(tasks)
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return nil, nil, &Error{Kind: ErrValidation, Detail: fmt.Sprintf("%d rows dropped", len(report.Dropped))}
	}
	if n := len(report.Dropped); n > 0 {
		logger.Printf("dropped %d rows without valid dates or names", n)
	}

	lo, hi := tasks[0].Start, tasks[0].End
	for _, t := range tasks {
		if t.Start.Before(lo) {
			lo = t.Start
		}
		if t.End.After(hi) {
			hi = t.End
		}
	}

	groups := groupByCategory(tasks, opts)
	report.Warnings = resolveSuccessors(tasks)
	for _, w := range report.Warnings {
		logger.Printf("warning: %s", w)
	}

	return &Model{
		Tasks:            tasks,
		Groups:           groups,
		Min:              dates.AddDays(lo, -opts.LeftPadDays),
		Max:              hi,
		DayWidth:         opts.DayWidth,
		DefaultViewpoint: opts.DefaultViewpoint,
	}, report, nil
}

func fillOptions(opts Options) Options {
	def := DefaultOptions()
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = def.DefaultCategory
	}
	if opts.DefaultViewpoint == "" {
		opts.DefaultViewpoint = def.DefaultViewpoint
	}
	if opts.LeftPadDays <= 0 {
		opts.LeftPadDays = def.LeftPadDays
	}
	if opts.DayWidth <= 0 {
		opts.DayWidth = def.DayWidth
	}
	if opts.Compare == nil {
		opts.Compare = def.Compare
	}
	return opts
}

func taskFromRow(r []string, cols header.Columns) (*Task, string) {
	cell := func(f header.Field) string {
		return strings.TrimSpace(csvgrid.Cell(r, cols.Get(f)))
	}
	t := &Task{
		Category:      cell(header.Category),
		Viewpoint:     cell(header.Viewpoint),
		Label:         cell(header.Task),
		Assignee:      cell(header.Assignee),
		Status:        cell(header.Status),
		Priority:      cell(header.Priority),
		ID:            cell(header.TaskID),
		SuccessorsRaw: cell(header.Successors),
	}
	t.Name = firstNonEmpty(t.Label, t.Viewpoint, t.Category)
	if t.Name == "" {
		return nil, reasonNoName
	}
	var ok bool
	if t.Start, ok = dates.Parse(cell(header.Start)); !ok {
		return nil, reasonNoStart
	}
	if t.End, ok = dates.Parse(cell(header.End)); !ok {
		return nil, reasonNoEnd
	}
	if t.End.Before(t.Start) {
		return nil, reasonInverted
	}
	if check, ok := dates.Parse(cell(header.Check)); ok {
		t.Check = check
	}
	return t, ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func groupByCategory(tasks []*Task, opts Options) []Group {
	byCat := map[string][]*Task{}
	var order []string
	for _, t := range tasks {
		k := t.Category
		if k == "" {
			k = opts.DefaultCategory
		}
		if _, ok := byCat[k]; !ok {
			order = append(order, k)
		}
		byCat[k] = append(byCat[k], t)
	}

	rank := Rank(opts.CategoryOrder)
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := rank(order[i]), rank(order[j])
		if ri != rj {
			return ri < rj
		}
		return opts.Compare(order[i], order[j]) < 0
	})

	groups := make([]Group, 0, len(order))
	for _, cat := range order {
		items := byCat[cat]
		sort.SliceStable(items, func(i, j int) bool {
			return opts.Compare(items[i].Viewpoint, items[j].Viewpoint) < 0
		})
		groups = append(groups, Group{Category: cat, Items: items})
	}
	return groups
}

// Unranked is the rank of names missing from a configured order.
const Unranked = 9999

// Rank returns the position lookup for an explicit name order. The first
// occurrence of a duplicated name wins.
func Rank(order []string) func(string) int {
	idx := make(map[string]int, len(order))
	for i, name := range order {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return Unranked
	}
}

func resolveSuccessors(tasks []*Task) []ReferenceWarning {
	byID := map[string]*Task{}
	for _, t := range tasks {
		if t.ID != "" {
			byID[t.ID] = t
		}
	}
	var warnings []ReferenceWarning
	for _, t := range tasks {
		t.Successors = nil
		if t.SuccessorsRaw == "" {
			continue
		}
		for _, part := range strings.Split(t.SuccessorsRaw, ";") {
			ref := strings.TrimSpace(part)
			if ref == "" {
				continue
			}
			target, ok := byID[ref]
			switch {
			case !ok:
				warnings = append(warnings, ReferenceWarning{From: t.ID, Row: t.Row, Ref: ref, Reason: reasonUnresolved})
			case target == t:
				warnings = append(warnings, ReferenceWarning{From: t.ID, Row: t.Row, Ref: ref, Reason: reasonSelfRelation})
			default:
				t.Successors = append(t.Successors, target.Index)
			}
		}
	}
	return warnings
}
