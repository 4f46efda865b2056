// Package config loads the chart configuration from YAML.
//
// Every key is optional; missing keys fall back to Default(). Ordered lists are
// trimmed and de-duplicated on load.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Locale            string         `yaml:"locale"`
	CategoryOrder     []string       `yaml:"category_order"`
	MilestoneCategory string         `yaml:"milestone_category"`
	DefaultCategory   string         `yaml:"default_category"`
	DefaultViewpoint  string         `yaml:"default_viewpoint"`
	LeftPadDays       int            `yaml:"left_pad_days"`
	Zoom              ZoomWidths     `yaml:"zoom"`
	MinDayWidth       int            `yaml:"min_day_width"`
	ViewpointOrder    ViewpointOrder `yaml:"viewpoint_order"`
	Statuses          Statuses       `yaml:"statuses"`
	Priorities        Priorities     `yaml:"priorities"`
	SVG               SVG            `yaml:"svg"`
}

// ZoomWidths is the pixel width of one day per zoom mode.
type ZoomWidths struct {
	Day   int `yaml:"day"`
	Week  int `yaml:"week"`
	Month int `yaml:"month"`
}

type ViewpointOrder struct {
	Enabled bool     `yaml:"enabled"`
	Order   []string `yaml:"order"`
}

// StatusVocab lists the literals that map to one status and its bar color.
type StatusVocab struct {
	Values []string `yaml:"values"`
	Color  string   `yaml:"color"`
}

type Statuses struct {
	Done       StatusVocab `yaml:"done"`
	NotStarted StatusVocab `yaml:"not_started"`
	InProgress StatusVocab `yaml:"in_progress"`
	Delayed    StatusVocab `yaml:"delayed"`
}

type Priorities struct {
	Urgent []string `yaml:"urgent"`
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

type SVG struct {
	LabelsWidth int    `yaml:"labels_width"`
	RightPad    int    `yaml:"right_pad"`
	FontFamily  string `yaml:"font_family"`
	FontSize    int    `yaml:"font_size"`
	Background  string `yaml:"background"`
	GridColor   string `yaml:"grid_color"`
	DepColor    string `yaml:"dep_color"`
	TodayColor  string `yaml:"today_color"`
	GroupColor  string `yaml:"group_color"`
	SubColor    string `yaml:"subgroup_color"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Locale: "ja",
		CategoryOrder: []string{
			"マイルストーン",
			"PMO",
			"活用 PoC① AIエージェント構築",
			"活用 PoC② CDP関連",
			"活用 PoC③ VoC分析",
			"データマネジメント①-体制構築",
			"データマネジメント②-ガバナンス",
			"データマネジメント③-セキュリティ",
			"データマネジメント④-メタデータ管理",
			"構築-基盤環境",
			"構築-データ整備・連携",
			"構築-データカタログ整備",
		},
		MilestoneCategory: "マイルストーン",
		DefaultCategory:   "(未分類)",
		DefaultViewpoint:  "(なし)",
		LeftPadDays:       7,
		Zoom:              ZoomWidths{Day: 28, Week: 12, Month: 7},
		MinDayWidth:       4,
		Statuses: Statuses{
			Done:       StatusVocab{Values: []string{"完了済み", "完了", "done"}, Color: "#bdbdbd"},
			NotStarted: StatusVocab{Values: []string{"開始前", "未着手", "not-started", "not started"}, Color: "#ffffff"},
			InProgress: StatusVocab{Values: []string{"進行中", "in-progress", "in progress"}, Color: "#66bb6a"},
			Delayed:    StatusVocab{Values: []string{"遅延", "delayed"}, Color: "#ffd54f"},
		},
		Priorities: Priorities{
			Urgent: []string{"緊急", "urgent"},
			High:   []string{"高", "high"},
			Medium: []string{"中", "medium", "mid"},
			Low:    []string{"低", "low"},
		},
		SVG: SVG{
			LabelsWidth: 360,
			RightPad:    120,
			FontFamily:  "'Noto Sans JP', Arial, sans-serif",
			FontSize:    11,
			Background:  "#ffffff",
			GridColor:   "#eceff1",
			DepColor:    "#ff0000",
			TodayColor:  "#d81b60",
			GroupColor:  "#546e7a",
			SubColor:    "#42a5f5",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and normalizes the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}
	return Normalize(cfg), nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Normalize fills zero values from Default and cleans ordered lists.
func Normalize(cfg Config) Config {
	def := Default()
	cfg.Locale = orDefault(cfg.Locale, def.Locale)
	cfg.MilestoneCategory = strings.TrimSpace(cfg.MilestoneCategory)
	cfg.DefaultCategory = orDefault(cfg.DefaultCategory, def.DefaultCategory)
	cfg.DefaultViewpoint = orDefault(cfg.DefaultViewpoint, def.DefaultViewpoint)
	if cfg.LeftPadDays <= 0 {
		cfg.LeftPadDays = def.LeftPadDays
	}
	if cfg.Zoom.Day <= 0 {
		cfg.Zoom.Day = def.Zoom.Day
	}
	if cfg.Zoom.Week <= 0 {
		cfg.Zoom.Week = def.Zoom.Week
	}
	if cfg.Zoom.Month <= 0 {
		cfg.Zoom.Month = def.Zoom.Month
	}
	if cfg.MinDayWidth <= 0 {
		cfg.MinDayWidth = def.MinDayWidth
	}
	cfg.CategoryOrder = uniqueStrings(cfg.CategoryOrder)
	cfg.ViewpointOrder.Order = uniqueStrings(cfg.ViewpointOrder.Order)
	if cfg.SVG.LabelsWidth <= 0 {
		cfg.SVG.LabelsWidth = def.SVG.LabelsWidth
	}
	if cfg.SVG.RightPad < 0 {
		cfg.SVG.RightPad = def.SVG.RightPad
	}
	if cfg.SVG.FontSize <= 0 {
		cfg.SVG.FontSize = def.SVG.FontSize
	}
	cfg.SVG.FontFamily = orDefault(cfg.SVG.FontFamily, def.SVG.FontFamily)
	return cfg
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
