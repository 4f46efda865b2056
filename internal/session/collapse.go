package session

import "sort"

// CollapseState is the set of collapsed categories and viewpoint keys. It
// outlives any single Model.
type CollapseState struct {
	Categories map[string]bool
	Viewpoints map[string]bool
	// initialized flips on the first Reconcile.
	initialized bool
}

func NewCollapseState() *CollapseState {
	return &CollapseState{Categories: map[string]bool{}, Viewpoints: map[string]bool{}}
}

// Reconcile adapts the viewpoint set to the keys of a new model. The first
// call collapses every key; later calls keep only collapsed keys that still
// exist.
func (c *CollapseState) Reconcile(keys []string) {
	next := make(map[string]bool, len(keys))
	if !c.initialized {
		for _, k := range keys {
			next[k] = true
		}
		c.initialized = true
		c.Viewpoints = next
		return
	}
	for _, k := range keys {
		if c.Viewpoints[k] {
			next[k] = true
		}
	}
	c.Viewpoints = next
}

func (c *CollapseState) Initialized() bool { return c.initialized }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(keys []string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}
