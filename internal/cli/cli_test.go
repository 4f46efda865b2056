package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/amirbrooks/ganttcsv/internal/dates"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() { stdout, stderr = oldOut, oldErr }()
	code := Run(args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// workspace returns the global flags for a fresh initialized root.
func workspace(t *testing.T) []string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "gantt")
	flags := []string{"--root", root, "--today", "2025-10-01"}
	if r := run(t, append(flags, "init")...); r.code != ExitOK {
		t.Fatalf("init: expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	return flags
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestExtractGlobalFlags(t *testing.T) {
	gf, rest, err := extractGlobalFlags([]string{"render", "--root", "/tmp/g", "--json", "--stdout-json", "--today", "2025-01-10", "--format", "text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gf.Root != "/tmp/g" || !gf.JSON || !gf.StdoutJSON {
		t.Fatalf("unexpected flags: %#v", gf)
	}
	if got := dates.Format(gf.Today); got != "2025-01-10" {
		t.Fatalf("expected today 2025-01-10, got %s", got)
	}
	if gf.ExportDir != filepath.Join("/tmp/g", "exports") {
		t.Fatalf("expected export dir under root, got %s", gf.ExportDir)
	}
	if want := []string{"render", "--format", "text"}; !reflect.DeepEqual(rest, want) {
		t.Fatalf("expected %v, got %v", want, rest)
	}
}

func TestExtractGlobalFlagsRejectsBadCombos(t *testing.T) {
	if _, _, err := extractGlobalFlags([]string{"--stdout-json", "ls"}); err == nil {
		t.Fatalf("expected --stdout-json without --json to fail")
	}
	if _, _, err := extractGlobalFlags([]string{"--quiet", "--verbose", "ls"}); err == nil {
		t.Fatalf("expected --quiet with --verbose to fail")
	}
	if _, _, err := extractGlobalFlags([]string{"--today", "soon", "ls"}); err == nil {
		t.Fatalf("expected an invalid --today to fail")
	}
}

func TestReorderFlags(t *testing.T) {
	got := reorderFlags([]string{"a.csv", "--rows", "3", "--", "-x"}, map[string]bool{"--rows": true})
	want := []string{"--rows", "3", "a.csv", "-x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestUnknownCommand(t *testing.T) {
	r := run(t, "--root", t.TempDir(), "bogus")
	if r.code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, r.code)
	}
	if !strings.Contains(r.stderr, "Unknown command: bogus") {
		t.Fatalf("expected unknown command message, got %q", r.stderr)
	}
}

func TestListAndCheckSample(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "ls", "--plain")...)
	if r.code != ExitOK || !strings.Contains(r.stdout, "sample.csv\tsample\t") {
		t.Fatalf("expected the sample in the listing, got %d %q", r.code, r.stdout)
	}

	r = run(t, append(g, "check")...)
	if r.code != ExitOK {
		t.Fatalf("check: expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	if !strings.HasPrefix(r.stdout, "sample.csv: 8 tasks in 3 categories") {
		t.Fatalf("unexpected check summary: %q", r.stdout)
	}

	r = run(t, append(g, "--json", "--stdout-json", "check")...)
	var payload struct {
		Tasks int    `json:"tasks"`
		Min   string `json:"min"`
		Max   string `json:"max"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &payload); err != nil {
		t.Fatalf("decode check json: %v (%q)", err, r.stdout)
	}
	if payload.Tasks != 8 || payload.Min != "2025-08-11" || payload.Max != "2025-10-31" {
		t.Fatalf("unexpected check payload: %#v", payload)
	}
}

func TestJSONExportWritesFile(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "--json", "ls")...)
	if r.code != ExitOK || !strings.HasPrefix(r.stdout, "Wrote JSON to: ") {
		t.Fatalf("expected an export path, got %d %q", r.code, r.stdout)
	}
	path := strings.TrimSpace(strings.TrimPrefix(r.stdout, "Wrote JSON to: "))
	if !strings.HasPrefix(filepath.Base(path), "datasets-") {
		t.Fatalf("unexpected export name: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected export file: %v", err)
	}
}

func TestSourceErrors(t *testing.T) {
	g := workspace(t)
	if r := run(t, append(g, "check", "nope.csv")...); r.code != ExitNotFound {
		t.Fatalf("expected exit %d for a missing dataset, got %d", ExitNotFound, r.code)
	}
	if r := run(t, append(g, "check", filepath.Join(t.TempDir(), "missing.csv"))...); r.code != ExitNotFound {
		t.Fatalf("expected exit %d for a missing file, got %d", ExitNotFound, r.code)
	}

	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := run(t, append(g, "check", bad)...)
	if r.code != ExitData {
		t.Fatalf("expected exit %d for a bad header, got %d", ExitData, r.code)
	}
	if !strings.HasPrefix(r.stderr, "check: ") {
		t.Fatalf("expected the command prefix on stderr, got %q", r.stderr)
	}
}

func TestStdinSource(t *testing.T) {
	g := workspace(t)
	old := stdin
	stdin = strings.NewReader("category,start,end\nA,2025-01-01,2025-01-03\n")
	defer func() { stdin = old }()

	r := run(t, append(g, "check", "-")...)
	if r.code != ExitOK || !strings.HasPrefix(r.stdout, "stdin: 1 tasks in 1 categories") {
		t.Fatalf("unexpected stdin check: %d %q %q", r.code, r.stdout, r.stderr)
	}
}

func TestPreviewLimitsRows(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "preview", "--plain", "--rows", "2")...)
	if r.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	got := lines(r.stdout)
	if len(got) != 3 || !strings.HasPrefix(got[0], "カテゴリ\t観点") {
		t.Fatalf("expected header plus 2 rows, got %q", got)
	}
}

func TestShowTask(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "--plain", "show", "3")...)
	if r.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	for _, want := range []string{"name\t基本設計", "successors\t4 詳細設計, 5 構築", "predecessors\t-", "overdue\ttrue"} {
		if !strings.Contains(r.stdout, want) {
			t.Fatalf("expected %q in %q", want, r.stdout)
		}
	}
	if r := run(t, append(g, "show", "nobody")...); r.code != ExitNotFound {
		t.Fatalf("expected exit %d, got %d", ExitNotFound, r.code)
	}
}

func TestDepsAndOverdue(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "--plain", "deps")...)
	if got := lines(r.stdout); len(got) != 7 {
		t.Fatalf("expected header plus 6 dependencies, got %q", got)
	}

	r = run(t, append(g, "--plain", "overdue")...)
	got := lines(r.stdout)
	if len(got) != 4 {
		t.Fatalf("expected header plus 3 overdue tasks, got %q", got)
	}
	if !strings.Contains(r.stdout, "基本設計\t2025-09-05\t進行中") {
		t.Fatalf("expected 基本設計 overdue, got %q", r.stdout)
	}
}

func TestToggleAndZoomPersist(t *testing.T) {
	g := workspace(t)
	if r := run(t, append(g, "toggle", "all")...); r.code != ExitOK {
		t.Fatalf("toggle: expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	r := run(t, append(g, "--plain", "rows")...)
	if got := lines(r.stdout); len(got) != 4 {
		t.Fatalf("expected header plus 3 group rows, got %q", got)
	}
	if r := run(t, append(g, "zoom", "week")...); r.code != ExitOK || !strings.Contains(r.stdout, "zoom week (12 px/day)") {
		t.Fatalf("unexpected zoom output: %d %q", r.code, r.stdout)
	}

	r = run(t, append(g, "--json", "--stdout-json", "state", "show")...)
	var payload struct {
		Saved bool `json:"saved"`
		State struct {
			Source     string   `json:"source"`
			Zoom       string   `json:"zoom"`
			Categories []string `json:"collapsed_categories"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &payload); err != nil {
		t.Fatalf("decode state: %v (%q)", err, r.stdout)
	}
	if !payload.Saved || payload.State.Zoom != "week" || payload.State.Source != "sample.csv" || len(payload.State.Categories) != 3 {
		t.Fatalf("unexpected saved state: %#v", payload)
	}

	if r := run(t, append(g, "toggle", "category", "PMO")...); r.code != ExitOK {
		t.Fatalf("toggle category: expected exit 0, got %d", r.code)
	}
	if r := run(t, append(g, "toggle", "category", "nope")...); r.code != ExitNotFound {
		t.Fatalf("expected exit %d for an unknown category, got %d", ExitNotFound, r.code)
	}

	if r := run(t, append(g, "state", "reset")...); r.code != ExitOK {
		t.Fatalf("reset: expected exit 0, got %d", r.code)
	}
	r = run(t, append(g, "state", "show")...)
	if !strings.Contains(r.stdout, "No saved state.") {
		t.Fatalf("expected no saved state after reset, got %q", r.stdout)
	}
}

func TestNoStateLeavesStateAlone(t *testing.T) {
	g := workspace(t)
	run(t, append(g, "--no-state", "toggle", "tasks")...)
	r := run(t, append(g, "state", "show")...)
	if !strings.Contains(r.stdout, "No saved state.") {
		t.Fatalf("expected --no-state not to save, got %q", r.stdout)
	}
}

func TestRenderSVGAndCopy(t *testing.T) {
	g := workspace(t)
	var copied string
	old := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	defer func() { copyToClipboard = old }()

	out := filepath.Join(t.TempDir(), "chart.svg")
	r := run(t, append(g, "render", "--out", out, "--copy", "--zoom", "month")...)
	if r.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(b), "<svg ") || !strings.Contains(string(b), "マイルストーン") {
		t.Fatalf("unexpected svg output: %.200s", b)
	}
	if copied != out {
		t.Fatalf("expected the path %s on the clipboard, got %q", out, copied)
	}
}

func TestRenderTextAndBadFormat(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "--plain", "render", "--format", "text", "--width", "100")...)
	if r.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "▾ マイルストーン") || !strings.Contains(r.stdout, "▾ PMO") {
		t.Fatalf("expected group rows in the text chart, got %q", r.stdout)
	}
	if r := run(t, append(g, "render", "--format", "png")...); r.code != ExitUsage {
		t.Fatalf("expected exit %d for png, got %d", ExitUsage, r.code)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	g := workspace(t)
	if r := run(t, append(g, "config", "set", "zoom.day", "30")...); r.code != ExitOK || !strings.Contains(r.stdout, "Set zoom.day = 30") {
		t.Fatalf("unexpected config set: %d %q %q", r.code, r.stdout, r.stderr)
	}
	if r := run(t, append(g, "config", "set", "zoom.day", "zero")...); r.code != ExitUsage {
		t.Fatalf("expected exit %d for an invalid value, got %d", ExitUsage, r.code)
	}
	if r := run(t, append(g, "config", "set", "colour", "red")...); r.code != ExitUsage {
		t.Fatalf("expected exit %d for an unknown key, got %d", ExitUsage, r.code)
	}
	r := run(t, append(g, "--plain", "config", "show")...)
	found := false
	for _, line := range lines(r.stdout) {
		if f := strings.Fields(line); len(f) == 2 && f[0] == "zoom.day" && f[1] == "30" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected zoom.day 30 in %q", r.stdout)
	}
}

func TestToggleViewpointByName(t *testing.T) {
	g := workspace(t)
	if r := run(t, append(g, "toggle", "viewpoint", "設計")...); r.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (%s)", r.code, r.stderr)
	}
	r := run(t, append(g, "--json", "--stdout-json", "state", "show")...)
	if strings.Contains(r.stdout, "構築-基盤環境::設計") {
		t.Fatalf("expected 設計 to be expanded, got %q", r.stdout)
	}
	if !strings.Contains(r.stdout, "構築-基盤環境::テスト") {
		t.Fatalf("expected テスト to stay collapsed, got %q", r.stdout)
	}
	if r := run(t, append(g, "toggle", "viewpoint", "PMO::nothing")...); r.code != ExitNotFound {
		t.Fatalf("expected exit %d, got %d", ExitNotFound, r.code)
	}
}

func TestTodayBeforeEpoch(t *testing.T) {
	g := workspace(t)
	r := run(t, append(g, "--today", "1969-12-31", "render", "--format", "text")...)
	if r.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (%s)", r.code, r.stderr)
	}
}
