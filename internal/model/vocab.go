package model

import "strings"

// Status is the display class of a task's status cell.
type Status int

const (
	// StatusInProgress is also the class of unrecognized values.
	StatusInProgress Status = iota
	StatusDone
	StatusNotStarted
	StatusDelayed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusNotStarted:
		return "not-started"
	case StatusDelayed:
		return "delayed"
	default:
		return "in-progress"
	}
}

// Priority is the badge class of a task's priority cell.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityUrgent
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "mid"
	case PriorityLow:
		return "low"
	default:
		return ""
	}
}

// Vocabulary maps raw status and priority literals to their classes.
type Vocabulary struct {
	Done       []string
	NotStarted []string
	InProgress []string
	Delayed    []string

	Urgent []string
	High   []string
	Medium []string
	Low    []string
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Done:       []string{"完了済み", "完了", "done"},
		NotStarted: []string{"開始前", "未着手", "not-started", "not started"},
		InProgress: []string{"進行中", "in-progress", "in progress"},
		Delayed:    []string{"遅延", "delayed"},
		Urgent:     []string{"緊急", "urgent"},
		High:       []string{"高", "high"},
		Medium:     []string{"中", "medium", "mid"},
		Low:        []string{"低", "low"},
	}
}

// Status classifies a raw status cell.
func (v Vocabulary) Status(raw string) Status {
	s := normalizeLiteral(raw)
	switch {
	case containsLiteral(v.Done, s):
		return StatusDone
	case containsLiteral(v.NotStarted, s):
		return StatusNotStarted
	case containsLiteral(v.Delayed, s):
		return StatusDelayed
	default:
		return StatusInProgress
	}
}

// IsDone reports whether a raw status cell means the task is finished.
func (v Vocabulary) IsDone(raw string) bool {
	return v.Status(raw) == StatusDone
}

// Priority classifies a raw priority cell.
func (v Vocabulary) Priority(raw string) Priority {
	s := normalizeLiteral(raw)
	switch {
	case s == "":
		return PriorityNone
	case containsLiteral(v.Urgent, s):
		return PriorityUrgent
	case containsLiteral(v.High, s):
		return PriorityHigh
	case containsLiteral(v.Medium, s):
		return PriorityMedium
	case containsLiteral(v.Low, s):
		return PriorityLow
	default:
		return PriorityNone
	}
}

func normalizeLiteral(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "\u3000", " ")))
}

func containsLiteral(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range list {
		if normalizeLiteral(v) == s {
			return true
		}
	}
	return false
}
