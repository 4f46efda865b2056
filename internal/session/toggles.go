package session

import (
	"fmt"

	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/rows"
)

// ToggleCategory flips one category between collapsed and expanded.
func (s *Session) ToggleCategory(category string) error {
	if s.Model == nil {
		return ErrNoModel
	}
	if !contains(s.Model.Categories(), category) {
		return fmt.Errorf("%w: category %q", ErrUnknownKey, category)
	}
	flip(s.Collapse.Categories, category)
	return nil
}

// ToggleViewpoint flips one category::viewpoint key.
func (s *Session) ToggleViewpoint(key string) error {
	if s.Model == nil {
		return ErrNoModel
	}
	if !contains(s.Model.ViewpointKeys(), key) {
		return fmt.Errorf("%w: viewpoint %q", ErrUnknownKey, key)
	}
	flip(s.Collapse.Viewpoints, key)
	return nil
}

// ToggleViewpointOf is ToggleViewpoint addressed by category and viewpoint name.
func (s *Session) ToggleViewpointOf(category, viewpoint string) error {
	return s.ToggleViewpoint(model.ViewpointKey(category, viewpoint))
}

// ToggleAllCategories expands everything when every category is collapsed,
// and collapses every category otherwise.
func (s *Session) ToggleAllCategories() error {
	if s.Model == nil {
		return ErrNoModel
	}
	cats := s.Model.Categories()
	if len(cats) > 0 && allIn(cats, s.Collapse.Categories) {
		s.Collapse.Categories = map[string]bool{}
		return nil
	}
	s.Collapse.Categories = toSet(cats)
	return nil
}

// ToggleAllViewpoints clears the viewpoint set when every key is collapsed,
// and adds every key otherwise.
func (s *Session) ToggleAllViewpoints() error {
	if s.Model == nil {
		return ErrNoModel
	}
	keys := s.Model.ViewpointKeys()
	if len(keys) > 0 && allIn(keys, s.Collapse.Viewpoints) {
		s.Collapse.Viewpoints = map[string]bool{}
		return nil
	}
	for _, k := range keys {
		s.Collapse.Viewpoints[k] = true
	}
	return nil
}

// ToggleTaskRows flips whether named task rows are hidden.
func (s *Session) ToggleTaskRows() {
	s.HideTaskRows = !s.HideTaskRows
}

// AnyCategoryExpanded reports whether at least one category is open.
func (s *Session) AnyCategoryExpanded() bool {
	if s.Model == nil {
		return false
	}
	return !allIn(s.Model.Categories(), s.Collapse.Categories)
}

// AnyViewpointExpanded reports whether at least one viewpoint is open.
func (s *Session) AnyViewpointExpanded() bool {
	if s.Model == nil {
		return false
	}
	return !allIn(s.Model.ViewpointKeys(), s.Collapse.Viewpoints)
}

// CycleZoom advances to the next zoom mode.
func (s *Session) CycleZoom() layout.Zoom {
	s.SetZoom(s.Zoom.Next())
	return s.Zoom
}

func flip(set map[string]bool, key string) {
	if set[key] {
		delete(set, key)
		return
	}
	set[key] = true
}

func allIn(keys []string, set map[string]bool) bool {
	for _, k := range keys {
		if !set[k] {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Collapsed reports whether a group or subgroup row is folded.
func (s *Session) Collapsed(r rows.Row) bool {
	switch r.Kind {
	case rows.KindGroup:
		return s.Collapse.Categories[r.Category]
	case rows.KindSubgroup:
		return s.Collapse.Viewpoints[r.Key]
	default:
		return false
	}
}
