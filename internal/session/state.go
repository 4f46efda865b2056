package session

import (
	"github.com/amirbrooks/ganttcsv/internal/layout"
)

// State is the persistable part of a session. Models are rebuilt from their
// CSV, so only view state is kept.
type State struct {
	Source              string   `yaml:"source,omitempty" json:"source,omitempty"`
	CollapsedCategories []string `yaml:"collapsed_categories" json:"collapsed_categories"`
	CollapsedViewpoints []string `yaml:"collapsed_viewpoints" json:"collapsed_viewpoints"`
	HideTaskRows        bool     `yaml:"hide_task_rows" json:"hide_task_rows"`
	Zoom                string   `yaml:"zoom" json:"zoom"`
	// FitWidth, when positive, is re-applied after each Generate.
	FitWidth    int  `yaml:"fit_width,omitempty" json:"fit_width,omitempty"`
	Initialized bool `yaml:"initialized" json:"initialized"`
}

// Snapshot captures the current view state.
func (s *Session) Snapshot() State {
	st := State{
		Source:              s.Source,
		CollapsedCategories: sortedKeys(s.Collapse.Categories),
		CollapsedViewpoints: sortedKeys(s.Collapse.Viewpoints),
		HideTaskRows:        s.HideTaskRows,
		Zoom:                string(s.Zoom),
		FitWidth:            s.FitWidth,
		Initialized:         s.Collapse.initialized,
	}
	return st
}

// Restore applies a saved State. It must run before Generate so the first
// build reconciles against the restored keys and re-applies the fit width.
func (s *Session) Restore(st State) error {
	z, err := layout.ParseZoom(st.Zoom)
	if err != nil {
		return err
	}
	s.Collapse = &CollapseState{
		Categories:  toSet(st.CollapsedCategories),
		Viewpoints:  toSet(st.CollapsedViewpoints),
		initialized: st.Initialized,
	}
	s.HideTaskRows = st.HideTaskRows
	s.SetZoom(z)
	s.FitWidth = max(0, st.FitWidth)
	return nil
}
