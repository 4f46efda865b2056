// Package session holds the application state of one chart: the current
// Model, its collapse state and zoom. Each Generate replaces the Model as a
// whole; a failed Generate leaves the previous one in place.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/overdue"
	"github.com/amirbrooks/ganttcsv/internal/rows"
)

var (
	ErrNoModel    = errors.New("no chart generated")
	ErrUnknownKey = errors.New("unknown key")
)

type Session struct {
	Config config.Config
	Model  *model.Model
	Report *model.Report
	// Source names the dataset the Model was built from.
	Source  string
	BuildID string

	Collapse     *CollapseState
	HideTaskRows bool
	Zoom         layout.Zoom
	// FitWidth is the container width of the last FitToWidth, zero while the
	// zoom's own day width applies.
	FitWidth int

	Now    func() time.Time
	Logger *log.Logger

	dayWidth int
	compare  model.Compare
	vocab    model.Vocabulary
}

// New returns an empty session for cfg. A nil logger discards output.
func New(cfg config.Config, logger *log.Logger) *Session {
	cfg = config.Normalize(cfg)
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		Config:   cfg,
		Collapse: NewCollapseState(),
		Zoom:     layout.ZoomDay,
		Now:      time.Now,
		Logger:   logger,
		dayWidth: cfg.Zoom.Day,
		compare:  model.NewCollator(cfg.Locale),
		vocab:    Vocabulary(cfg),
	}
}

// Vocabulary converts the configured status and priority literals.
func Vocabulary(cfg config.Config) model.Vocabulary {
	return model.Vocabulary{
		Done:       cfg.Statuses.Done.Values,
		NotStarted: cfg.Statuses.NotStarted.Values,
		InProgress: cfg.Statuses.InProgress.Values,
		Delayed:    cfg.Statuses.Delayed.Values,
		Urgent:     cfg.Priorities.Urgent,
		High:       cfg.Priorities.High,
		Medium:     cfg.Priorities.Medium,
		Low:        cfg.Priorities.Low,
	}
}

func (s *Session) Vocabulary() model.Vocabulary { return s.vocab }

func (s *Session) Compare() model.Compare { return s.compare }

func (s *Session) DayWidth() int { return s.dayWidth }

func (s *Session) options() model.Options {
	return model.Options{
		CategoryOrder:    s.Config.CategoryOrder,
		DefaultCategory:  s.Config.DefaultCategory,
		DefaultViewpoint: s.Config.DefaultViewpoint,
		LeftPadDays:      s.Config.LeftPadDays,
		DayWidth:         s.dayWidth,
		Compare:          s.compare,
		Logger:           s.Logger,
	}
}

// Generate builds a Model from CSV text and makes it current. On error the
// session is unchanged.
func (s *Session) Generate(source, text string) (*model.Report, error) {
	m, rep, err := model.Build(text, s.options())
	if err != nil {
		return nil, err
	}
	s.Collapse.Reconcile(m.ViewpointKeys())
	if s.FitWidth > 0 {
		m.DayWidth = layout.FitDayWidth(s.FitWidth, m.TotalDays(), s.Config.MinDayWidth)
		s.dayWidth = m.DayWidth
	}
	s.Model = m
	s.Report = rep
	s.Source = source
	// Build ids use the wall clock; Now may be pinned to any calendar day.
	s.BuildID = ulid.Make().String()
	s.Logger.Printf("built %s: %d tasks, %d groups, %d days", displaySource(source), len(m.Tasks), len(m.Groups), m.TotalDays())
	return rep, nil
}

func displaySource(source string) string {
	if source == "" {
		return "input"
	}
	return source
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Today is the current UTC midnight.
func (s *Session) Today() time.Time {
	return dates.Midnight(s.now())
}

// SetZoom switches zoom and resets the day width to the configured width.
func (s *Session) SetZoom(z layout.Zoom) {
	s.Zoom = z
	s.FitWidth = 0
	s.setDayWidth(s.widths().For(z))
}

// FitToWidth sizes days so the whole range fills containerPx.
func (s *Session) FitToWidth(containerPx int) error {
	if s.Model == nil {
		return ErrNoModel
	}
	if containerPx <= 0 {
		return fmt.Errorf("container width must be positive, got %d", containerPx)
	}
	s.FitWidth = containerPx
	s.setDayWidth(layout.FitDayWidth(containerPx, s.Model.TotalDays(), s.Config.MinDayWidth))
	return nil
}

func (s *Session) setDayWidth(w int) {
	s.dayWidth = w
	if s.Model != nil {
		s.Model.DayWidth = w
	}
}

func (s *Session) widths() layout.Widths {
	return layout.Widths{Day: s.Config.Zoom.Day, Week: s.Config.Zoom.Week, Month: s.Config.Zoom.Month}
}

func (s *Session) view() rows.View {
	v := rows.View{
		CollapsedCategories: s.Collapse.Categories,
		CollapsedViewpoints: s.Collapse.Viewpoints,
		HideTaskRows:        s.HideTaskRows,
		MilestoneCategory:   s.Config.MilestoneCategory,
		DefaultViewpoint:    s.Config.DefaultViewpoint,
		Compare:             s.compare,
	}
	if s.Config.ViewpointOrder.Enabled {
		v.ViewpointOrder = s.Config.ViewpointOrder.Order
	}
	return v
}

// Rows sequences the current Model under the session's collapse state.
func (s *Session) Rows() ([]rows.Row, error) {
	if s.Model == nil {
		return nil, ErrNoModel
	}
	return rows.Sequence(s.Model, s.view()), nil
}

// Frame is everything a renderer needs for one draw.
type Frame struct {
	BuildID      string            `json:"build_id"`
	Source       string            `json:"source"`
	Zoom         layout.Zoom       `json:"zoom"`
	Min          time.Time         `json:"min"`
	Max          time.Time         `json:"max"`
	Rows         []rows.Row        `json:"-"`
	Layout       *layout.Layout    `json:"layout"`
	Ticks        []layout.Tick     `json:"ticks"`
	Bands        []layout.Band     `json:"bands"`
	HeaderWidth  int               `json:"header_width"`
	Today        time.Time         `json:"today"`
	TodayX       int               `json:"today_x"`
	TodayVisible bool              `json:"today_visible"`
	Overdue      []overdue.Segment `json:"overdue"`
	TodayPath    string            `json:"today_path,omitempty"`
}

// Frame runs the sequencer, projector and overdue pass for the current state.
func (s *Session) Frame() (*Frame, error) {
	rs, err := s.Rows()
	if err != nil {
		return nil, err
	}
	m := s.Model
	l := layout.Project(rs, m, s.Zoom)
	today := s.Today()
	f := &Frame{
		BuildID:     s.BuildID,
		Source:      s.Source,
		Zoom:        s.Zoom,
		Min:         m.Min,
		Max:         m.Max,
		Rows:        rs,
		Layout:      l,
		Ticks:       layout.Ticks(m, s.Zoom),
		Bands:       layout.MonthBands(m, s.Zoom),
		HeaderWidth: layout.HeaderWidth(m),
		Today:       today,
		TodayX:      overdue.TodayX(m, today),
	}
	f.TodayVisible = overdue.Visible(f.TodayX, l.Width)
	f.Overdue = overdue.Segments(rs, l, today, s.vocab.IsDone)
	if f.TodayVisible {
		f.TodayPath = overdue.Path(f.Overdue, f.TodayX, l.Height)
	}
	return f, nil
}
