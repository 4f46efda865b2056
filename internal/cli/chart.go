package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/amirbrooks/ganttcsv/internal/layout"
	"github.com/amirbrooks/ganttcsv/internal/render"
	"github.com/amirbrooks/ganttcsv/internal/session"
	"github.com/amirbrooks/ganttcsv/internal/store"
	"github.com/amirbrooks/ganttcsv/internal/tui"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

func cmdRender(ws *store.Workspace, gf GlobalFlags, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--format": true,
		"--zoom":   true,
		"--fit":    true,
		"--width":  true,
		"--out":    true,
	})
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "svg", "Output format (svg|text|json)")
	zoomFlag := fs.String("zoom", "", "Zoom for this render only (day|week|month)")
	fit := fs.Int("fit", 0, "Fit the whole range into this many pixels")
	width := fs.Int("width", render.DefaultTermWidth, "Text output width in columns")
	out := fs.String("out", "", "Write to this path instead of the exports directory")
	copyOut := fs.Bool("copy", false, "Copy the written path (or the text chart) to the clipboard")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 1 || *fit < 0 {
		fmt.Fprintln(stderr, "Usage: gantt render [source] [--format svg|text|json] [--zoom day|week|month] [--fit px] [--width N] [--out path] [--copy]")
		return ExitUsage
	}
	*format = strings.ToLower(strings.TrimSpace(*format))
	switch *format {
	case "svg", "text", "txt", "json":
	default:
		fmt.Fprintln(stderr, "render: unknown format:", *format)
		return ExitUsage
	}

	s, err := openSession(ws, gf, fs.Arg(0))
	if err != nil {
		return fail("render", err)
	}
	if *zoomFlag != "" {
		z, err := layout.ParseZoom(*zoomFlag)
		if err != nil {
			fmt.Fprintln(stderr, "render:", err)
			return ExitUsage
		}
		s.SetZoom(z)
	}
	if *fit > 0 {
		if err := s.FitToWidth(*fit); err != nil {
			return fail("render", err)
		}
	}
	f, err := s.Frame()
	if err != nil {
		return fail("render", err)
	}
	st := render.NewStyle(s.Config)

	switch *format {
	case "text", "txt":
		text := render.Terminal(f, st, render.TermOptions{
			Width:     *width,
			Cursor:    -1,
			Plain:     gf.Plain,
			Collapsed: s.Collapsed,
		})
		if *out != "" {
			return writeOutput("render", gf, *out, []byte(text+"\n"), *copyOut)
		}
		fmt.Fprintln(stdout, text)
		if *copyOut {
			if err := copyToClipboard(text); err != nil {
				return fail("render", err)
			}
		}
		return ExitOK
	case "json":
		if gf.StdoutJSON {
			return emitJSON(ws, gf, "render", "frame", f)
		}
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return fail("render", err)
		}
		return writeChart(ws, gf, "frame", "json", *out, data, *copyOut)
	default:
		return writeChart(ws, gf, "gantt", "svg", *out, []byte(render.SVG(f, st)), *copyOut)
	}
}

// writeChart writes data to out, or to a new export file when out is empty.
func writeChart(ws *store.Workspace, gf GlobalFlags, kind, ext, out string, data []byte, copyPath bool) int {
	if out != "" {
		return writeOutput("render", gf, out, data, copyPath)
	}
	path, err := ws.WriteExport(gf.ExportDir, kind, ext, data)
	if err != nil {
		return fail("render", err)
	}
	return reportWrite(gf, strings.ToUpper(ext), path, copyPath)
}

func writeOutput(cmd string, gf GlobalFlags, path string, data []byte, copyPath bool) int {
	if err := store.WriteFile(path, data); err != nil {
		return fail(cmd, err)
	}
	return reportWrite(gf, "output", path, copyPath)
}

func reportWrite(gf GlobalFlags, what, path string, copyPath bool) int {
	if copyPath {
		if err := copyToClipboard(path); err != nil {
			return fail("render", err)
		}
	}
	if !gf.Quiet {
		fmt.Fprintf(stdout, "Wrote %s to: %s\n", what, path)
	}
	return ExitOK
}

func cmdToggle(ws *store.Workspace, gf GlobalFlags, args []string) int {
	args = reorderFlags(args, map[string]bool{"--source": true})
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.String("source", "", "CSV file, dataset name or -")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	usage := func() int {
		fmt.Fprintln(stderr, "Usage: gantt toggle <category|viewpoint|all|viewpoints|tasks> [name] [--source <source>]")
		return ExitUsage
	}
	if fs.NArg() < 1 {
		return usage()
	}
	what := strings.ToLower(fs.Arg(0))
	name := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))

	s, err := openSession(ws, gf, *source)
	if err != nil {
		return fail("toggle", err)
	}
	switch what {
	case "category", "cat":
		if name == "" {
			return usage()
		}
		err = s.ToggleCategory(name)
	case "viewpoint", "vp":
		if name == "" {
			return usage()
		}
		err = toggleViewpointArg(s, name)
	case "all", "categories":
		err = s.ToggleAllCategories()
	case "viewpoints":
		err = s.ToggleAllViewpoints()
	case "tasks":
		s.ToggleTaskRows()
	default:
		return usage()
	}
	if err != nil {
		return fail("toggle", err)
	}
	if err := saveState(ws, gf, s); err != nil {
		return fail("toggle", err)
	}
	return printViewState(ws, gf, "toggle", s)
}

// toggleViewpointArg accepts a full "category::viewpoint" key or a viewpoint
// name that is unique across categories.
func toggleViewpointArg(s *session.Session, name string) error {
	if category, vp, ok := strings.Cut(name, "::"); ok {
		return s.ToggleViewpointOf(category, vp)
	}
	var match []string
	for _, key := range s.Model.ViewpointKeys() {
		if _, vp, _ := strings.Cut(key, "::"); vp == name {
			match = append(match, key)
		}
	}
	switch len(match) {
	case 0:
		return fmt.Errorf("viewpoint %q: %w", name, session.ErrUnknownKey)
	case 1:
		return s.ToggleViewpoint(match[0])
	default:
		return fmt.Errorf("viewpoint %q is in %d categories, use category::viewpoint: %w", name, len(match), store.ErrInvalid)
	}
}

func printViewState(ws *store.Workspace, gf GlobalFlags, cmd string, s *session.Session) int {
	st := s.Snapshot()
	if gf.JSON {
		return emitJSON(ws, gf, cmd, "state", st)
	}
	if gf.Quiet {
		return ExitOK
	}
	rs, err := s.Rows()
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintf(stdout, "%d rows, zoom %s (%d px/day), %d categories and %d viewpoints collapsed",
		len(rs), st.Zoom, s.DayWidth(), len(st.CollapsedCategories), len(st.CollapsedViewpoints))
	if st.HideTaskRows {
		fmt.Fprint(stdout, ", task rows hidden")
	}
	fmt.Fprintln(stdout)
	return ExitOK
}

func cmdZoom(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: gantt zoom [day|week|month|next]")
		return ExitUsage
	}
	s, err := openSession(ws, gf, "")
	if err != nil {
		return fail("zoom", err)
	}
	switch arg := argOr(args, 0); arg {
	case "":
		return printViewState(ws, gf, "zoom", s)
	case "next":
		s.CycleZoom()
	default:
		z, err := layout.ParseZoom(arg)
		if err != nil {
			fmt.Fprintln(stderr, "zoom:", err)
			return ExitUsage
		}
		s.SetZoom(z)
	}
	if err := saveState(ws, gf, s); err != nil {
		return fail("zoom", err)
	}
	return printViewState(ws, gf, "zoom", s)
}

func cmdFit(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: gantt fit <px|off>")
		return ExitUsage
	}
	s, err := openSession(ws, gf, "")
	if err != nil {
		return fail("fit", err)
	}
	if args[0] == "off" {
		s.SetZoom(s.Zoom)
	} else {
		px, err := strconv.Atoi(args[0])
		if err != nil || px <= 0 {
			fmt.Fprintln(stderr, "fit: width must be a positive number of pixels")
			return ExitUsage
		}
		if err := s.FitToWidth(px); err != nil {
			return fail("fit", err)
		}
	}
	if err := saveState(ws, gf, s); err != nil {
		return fail("fit", err)
	}
	return printViewState(ws, gf, "fit", s)
}

func cmdState(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: gantt state <show|reset>")
		return ExitUsage
	}
	switch args[0] {
	case "show":
		st, ok, err := ws.LoadUIState()
		if err != nil {
			return fail("state", err)
		}
		if gf.JSON {
			return emitJSON(ws, gf, "state", "state", map[string]any{"saved": ok, "state": st})
		}
		if !ok {
			fmt.Fprintln(stdout, "No saved state.")
			return ExitOK
		}
		fmt.Fprintf(stdout, "source: %s\nzoom: %s\nfit_width: %d\nhide_task_rows: %t\ncollapsed categories: %s\ncollapsed viewpoints: %s\n",
			orDash(st.Source), orDash(st.Zoom), st.FitWidth, st.HideTaskRows,
			orDash(strings.Join(st.CollapsedCategories, ", ")), orDash(strings.Join(st.CollapsedViewpoints, ", ")))
		return ExitOK
	case "reset":
		if err := ws.ResetUIState(); err != nil {
			return fail("state", err)
		}
		if !gf.Quiet {
			fmt.Fprintln(stdout, "State reset.")
		}
		return ExitOK
	default:
		fmt.Fprintln(stderr, "Usage: gantt state <show|reset>")
		return ExitUsage
	}
}

func cmdTUI(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: gantt tui [source]")
		return ExitUsage
	}
	if argOr(args, 0) == stdinSource {
		fmt.Fprintln(stderr, "tui: stdin is the terminal; pass a file or dataset")
		return ExitUsage
	}
	s, err := openSession(ws, gf, argOr(args, 0))
	if err != nil {
		return fail("tui", err)
	}
	onChange := func(session.State) error { return saveState(ws, gf, s) }
	if err := tui.Run(s, render.NewStyle(s.Config), onChange); err != nil {
		return fail("tui", err)
	}
	return ExitOK
}
