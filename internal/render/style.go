// Package render draws a session Frame as SVG or as terminal text.
package render

import (
	"strings"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/session"
)

// Style carries the colors, fonts and vocabularies a renderer needs.
type Style struct {
	LabelsWidth int
	FontFamily  string
	FontSize    int
	Background  string
	Grid        string
	Dep         string
	Today       string
	Group       string
	Sub         string

	StatusColors map[model.Status]string
	// NotStartedBorder outlines white bars so they stay visible.
	NotStartedBorder string

	Vocab model.Vocabulary
}

// NewStyle derives a Style from configuration.
func NewStyle(cfg config.Config) Style {
	cfg = config.Normalize(cfg)
	return Style{
		LabelsWidth: cfg.SVG.LabelsWidth,
		FontFamily:  cfg.SVG.FontFamily,
		FontSize:    cfg.SVG.FontSize,
		Background:  orColor(cfg.SVG.Background, "#ffffff"),
		Grid:        orColor(cfg.SVG.GridColor, "#eceff1"),
		Dep:         orColor(cfg.SVG.DepColor, "#ff0000"),
		Today:       orColor(cfg.SVG.TodayColor, "#d81b60"),
		Group:       orColor(cfg.SVG.GroupColor, "#546e7a"),
		Sub:         orColor(cfg.SVG.SubColor, "#42a5f5"),
		StatusColors: map[model.Status]string{
			model.StatusDone:       orColor(cfg.Statuses.Done.Color, "#bdbdbd"),
			model.StatusNotStarted: orColor(cfg.Statuses.NotStarted.Color, "#ffffff"),
			model.StatusInProgress: orColor(cfg.Statuses.InProgress.Color, "#66bb6a"),
			model.StatusDelayed:    orColor(cfg.Statuses.Delayed.Color, "#ffd54f"),
		},
		NotStartedBorder: "#cfd8dc",
		Vocab:            session.Vocabulary(cfg),
	}
}

// StatusColor is the bar fill of a raw status cell.
func (s Style) StatusColor(raw string) string {
	if c, ok := s.StatusColors[s.Vocab.Status(raw)]; ok {
		return c
	}
	return "#66bb6a"
}

// Badge is the short priority label and its color. An unknown priority has no badge.
func (s Style) Badge(raw string) (string, string) {
	switch s.Vocab.Priority(raw) {
	case model.PriorityUrgent:
		return "緊急", "#c62828"
	case model.PriorityHigh:
		return "高", "#ef6c00"
	case model.PriorityMedium:
		return "中", "#1565c0"
	case model.PriorityLow:
		return "低", "#607d8b"
	default:
		return "", ""
	}
}

func orColor(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
