package render

import (
	"strings"
	"testing"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/rows"
	"github.com/amirbrooks/ganttcsv/internal/session"
)

const fixture = `category,viewpoint,task,start,end,status,priority,check,id,successors
Dev & Ops,Build,Code <core>,2025-08-20,2025-08-29,進行中,高,2025-08-25,1,2
Dev & Ops,Build,,2025-08-30,2025-09-10,開始前,,,2,
マイルストーン,Launch,,2025-09-10,2025-09-10,,,,3,
`

func frame(t *testing.T) (*session.Session, *session.Frame) {
	t.Helper()
	s := session.New(config.Default(), nil)
	s.Now = func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) }
	if _, err := s.Generate("fixture.csv", fixture); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := s.ToggleAllViewpoints(); err != nil {
		t.Fatalf("expand: %v", err)
	}
	f, err := s.Frame()
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	return s, f
}

func TestSVGDrawsChart(t *testing.T) {
	_, f := frame(t)
	if len(f.Rows) != 6 || len(f.Overdue) != 1 || !f.TodayVisible {
		t.Fatalf("unexpected frame: %d rows, %d overdue, today %v", len(f.Rows), len(f.Overdue), f.TodayVisible)
	}
	out := SVG(f, NewStyle(config.Default()))
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>") {
		t.Fatalf("expected an svg document")
	}
	for _, want := range []string{
		"Dev &amp; Ops",
		"Code &lt;core&gt;",
		"★ 8/25中間",
		"★ 9/10 Launch",
		">高</text>",
		`stroke-linecap="round"`,
		"2025年 8月",
		`fill="#66bb6a"`,
		`stroke="#cfd8dc"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected svg to contain %q", want)
		}
	}
	if n := strings.Count(out, `marker-end="url(#arrow)"`); n != 1 {
		t.Fatalf("expected 1 dependency curve, got %d", n)
	}
}

func TestTerminalPlain(t *testing.T) {
	s, f := frame(t)
	collapsed := func(r rows.Row) bool {
		if r.Kind == rows.KindGroup {
			return s.Collapse.Categories[r.Category]
		}
		return s.Collapse.Viewpoints[r.Key]
	}
	opt := TermOptions{Width: 100, Plain: true, Cursor: -1, Collapsed: collapsed}

	out := Terminal(f, NewStyle(config.Default()), opt)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(f.Rows)+2 {
		t.Fatalf("expected %d lines, got %d", len(f.Rows)+2, len(lines))
	}
	if !strings.Contains(lines[3], "◆ Launch") {
		t.Fatalf("expected milestone line, got %q", lines[3])
	}
	if !strings.Contains(lines[5], "▾ Build") {
		t.Fatalf("expected expanded subgroup, got %q", lines[5])
	}
	if !strings.Contains(lines[6], "Code <core> [高]") || !strings.Contains(lines[6], "!") || !strings.Contains(lines[6], "★") {
		t.Fatalf("expected overdue task line, got %q", lines[6])
	}
	if !strings.Contains(lines[6], "│") {
		t.Fatalf("expected today marker, got %q", lines[6])
	}

	if err := s.ToggleViewpoint("Dev & Ops::Build"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	folded, err := s.Frame()
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	text := Terminal(folded, NewStyle(config.Default()), opt)
	if !strings.Contains(text, "▸ Build") || strings.Contains(text, "Code <core>") {
		t.Fatalf("expected collapsed subgroup in %q", text)
	}
}

func TestCellPx(t *testing.T) {
	if got := CellPx(932, 69); got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
	if got := CellPx(10, 0); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestStyleStatusAndBadge(t *testing.T) {
	st := NewStyle(config.Default())
	if st.StatusColor("完了済み") != "#bdbdbd" || st.StatusColor("??") != "#66bb6a" {
		t.Fatalf("unexpected status colors")
	}
	if text, _ := st.Badge("urgent"); text != "緊急" {
		t.Fatalf("expected urgent badge, got %q", text)
	}
	if text, _ := st.Badge(""); text != "" {
		t.Fatalf("expected no badge, got %q", text)
	}
}
