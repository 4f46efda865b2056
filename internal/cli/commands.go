package cli

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/csvgrid"
	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/rows"
	"github.com/amirbrooks/ganttcsv/internal/session"
	"github.com/amirbrooks/ganttcsv/internal/store"
)

// DefaultPreviewRows caps the raw CSV preview.
const DefaultPreviewRows = 500

func cmdInit(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, "Usage: gantt init")
		return ExitUsage
	}
	if err := ws.Init(); err != nil {
		return fail("init", err)
	}
	if !gf.Quiet {
		fmt.Fprintln(stdout, "Initialized gantt workspace at:", ws.Root)
	}
	return ExitOK
}

func cmdList(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, "Usage: gantt ls")
		return ExitUsage
	}
	list, err := ws.ListDatasets()
	if err != nil {
		return fail("ls", err)
	}
	if gf.JSON {
		return emitJSON(ws, gf, "ls", "datasets", map[string]any{"datasets": list})
	}
	if gf.Plain {
		fmt.Fprintln(stdout, "NAME\tKIND\tSIZE\tMODIFIED")
		for _, d := range list {
			fmt.Fprintf(stdout, "%s\t%s\t%d\t%s\n", d.Name, d.Kind, d.Size, modified(d))
		}
		return ExitOK
	}
	if len(list) == 0 {
		if !gf.Quiet {
			fmt.Fprintln(stdout, "No datasets. Run: gantt init")
		}
		return ExitOK
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSIZE\tMODIFIED")
	for _, d := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Kind, humanSize(d.Size), modified(d))
	}
	_ = w.Flush()
	return ExitOK
}

func modified(d store.Dataset) string {
	if d.Missing {
		return "(missing)"
	}
	return d.ModTime.Local().Format("2006-01-02 15:04")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func cmdPreview(ws *store.Workspace, gf GlobalFlags, args []string) int {
	args = reorderFlags(args, map[string]bool{"--rows": true})
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("rows", DefaultPreviewRows, "Maximum data rows to show")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 1 || *limit < 0 {
		fmt.Fprintln(stderr, "Usage: gantt preview [source] [--rows N]")
		return ExitUsage
	}
	name, text, err := resolveSource(ws, fs.Arg(0), "")
	if err != nil {
		return fail("preview", err)
	}
	grid := csvgrid.Parse(text)
	if len(grid) == 0 {
		return fail("preview", &model.Error{Kind: model.ErrEmptyInput})
	}
	head, body := grid[0], grid[1:]
	shown := body
	if len(shown) > *limit {
		shown = shown[:*limit]
	}

	if gf.JSON {
		return emitJSON(ws, gf, "preview", "preview", map[string]any{
			"source": name,
			"header": head,
			"rows":   shown,
			"total":  len(body),
		})
	}
	if gf.Plain {
		fmt.Fprintln(stdout, strings.Join(head, "\t"))
		for _, r := range shown {
			fmt.Fprintln(stdout, strings.Join(r, "\t"))
		}
		return ExitOK
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(head, "\t"))
	for _, r := range shown {
		cells := make([]string, len(head))
		for i := range cells {
			cells[i] = strings.ReplaceAll(csvgrid.Cell(r, i), "\n", " ")
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
	if !gf.Quiet && len(shown) < len(body) {
		fmt.Fprintf(stdout, "(%d of %d rows)\n", len(shown), len(body))
	}
	return ExitOK
}

func cmdCheck(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: gantt check [source]")
		return ExitUsage
	}
	s, err := openSession(ws, gf, argOr(args, 0))
	if err != nil {
		return fail("check", err)
	}
	m, rep := s.Model, s.Report
	payload := map[string]any{
		"source":     s.Source,
		"build_id":   s.BuildID,
		"tasks":      len(m.Tasks),
		"categories": m.Categories(),
		"min":        dates.Format(m.Min),
		"max":        dates.Format(m.Max),
		"days":       m.TotalDays(),
		"dropped":    rep.Dropped,
		"warnings":   rep.Warnings,
	}
	if gf.JSON {
		return emitJSON(ws, gf, "check", "check", payload)
	}
	if gf.Plain {
		fmt.Fprintln(stdout, "KIND\tROW\tDETAIL")
		for _, d := range rep.Dropped {
			fmt.Fprintf(stdout, "dropped\t%d\t%s\n", d.Row, d.Reason)
		}
		for _, w := range rep.Warnings {
			fmt.Fprintf(stdout, "warning\t%d\t%s\n", w.Row, w)
		}
		return ExitOK
	}
	fmt.Fprintf(stdout, "%s: %d tasks in %d categories, %s .. %s (%d days)\n",
		s.Source, len(m.Tasks), len(m.Groups), dates.Format(m.Min), dates.Format(m.Max), m.TotalDays())
	for _, d := range rep.Dropped {
		fmt.Fprintf(stdout, "  dropped row %d: %s\n", d.Row, d.Reason)
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(stdout, "  warning: %s\n", w)
	}
	if len(rep.Dropped) == 0 && len(rep.Warnings) == 0 && !gf.Quiet {
		fmt.Fprintln(stdout, "  no problems found")
	}
	return ExitOK
}

type rowView struct {
	Index     int       `json:"index"`
	Kind      rows.Kind `json:"kind"`
	Category  string    `json:"category"`
	Viewpoint string    `json:"viewpoint,omitempty"`
	Name      string    `json:"name"`
	Task      *int      `json:"task,omitempty"`
	Items     int       `json:"items,omitempty"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Status    string    `json:"status,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty"`
}

func viewRows(s *session.Session, rs []rows.Row) []rowView {
	out := make([]rowView, 0, len(rs))
	for i, r := range rs {
		start, end := rowSpan(r)
		v := rowView{
			Index:     i,
			Kind:      r.Kind,
			Category:  r.Category,
			Viewpoint: r.Viewpoint,
			Name:      r.DisplayName,
			Items:     len(r.Items),
			Start:     formatDate(start),
			End:       formatDate(end),
			Collapsed: s.Collapsed(r),
		}
		if r.Task != nil {
			idx := r.Task.Index
			v.Task = &idx
			v.Status = r.Task.Status
		}
		out = append(out, v)
	}
	return out
}

// rowSpan is a leaf's own dates or the extent of a summary row's items.
func rowSpan(r rows.Row) (time.Time, time.Time) {
	if r.Task != nil {
		return r.Task.Start, r.Task.End
	}
	var lo, hi time.Time
	for i, t := range r.Items {
		if i == 0 || t.Start.Before(lo) {
			lo = t.Start
		}
		if i == 0 || t.End.After(hi) {
			hi = t.End
		}
	}
	return lo, hi
}

func cmdRows(ws *store.Workspace, gf GlobalFlags, args []string) int {
	args = reorderFlags(args, map[string]bool{})
	fs := flag.NewFlagSet("rows", flag.ContinueOnError)
	fs.SetOutput(stderr)
	expand := fs.Bool("expand", false, "Show every row regardless of the saved folding")
	collapse := fs.Bool("collapse", false, "Fold every category")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 1 || (*expand && *collapse) {
		fmt.Fprintln(stderr, "Usage: gantt rows [source] [--expand|--collapse]")
		return ExitUsage
	}
	s, err := openSession(ws, gf, fs.Arg(0))
	if err != nil {
		return fail("rows", err)
	}
	switch {
	case *expand:
		s.Collapse.Categories = map[string]bool{}
		s.Collapse.Viewpoints = map[string]bool{}
		s.HideTaskRows = false
	case *collapse:
		for _, c := range s.Model.Categories() {
			s.Collapse.Categories[c] = true
		}
	}
	rs, err := s.Rows()
	if err != nil {
		return fail("rows", err)
	}
	views := viewRows(s, rs)

	if gf.JSON {
		return emitJSON(ws, gf, "rows", "rows", map[string]any{"source": s.Source, "rows": views})
	}
	if gf.Plain {
		fmt.Fprintln(stdout, "#\tKIND\tCATEGORY\tNAME\tSTART\tEND\tSTATUS")
		for _, v := range views {
			fmt.Fprintf(stdout, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", v.Index, v.Kind, v.Category, v.Name, v.Start, v.End, v.Status)
		}
		return ExitOK
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tNAME\tSTART\tEND\tSTATUS")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", v.Index, v.Kind, indentName(v), v.Start, v.End, orDash(v.Status))
	}
	_ = w.Flush()
	return ExitOK
}

func indentName(v rowView) string {
	switch v.Kind {
	case rows.KindGroup:
		if v.Collapsed {
			return "▸ " + v.Name
		}
		return "▾ " + v.Name
	case rows.KindSubgroup:
		if v.Collapsed {
			return "  ▸ " + v.Name
		}
		return "  ▾ " + v.Name
	case rows.KindMilestone:
		return "  ◆ " + v.Name
	default:
		return "    " + v.Name
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return dates.Format(t)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// findTask matches a task id, then an exact display name, then a label.
func findTask(m *model.Model, ref string) (*model.Task, error) {
	ref = strings.TrimSpace(ref)
	for _, t := range m.Tasks {
		if t.ID != "" && t.ID == ref {
			return t, nil
		}
	}
	for _, t := range m.Tasks {
		if t.Name == ref || t.Label == ref {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %q: %w", ref, store.ErrNotFound)
}

func cmdShow(ws *store.Workspace, gf GlobalFlags, args []string) int {
	args = reorderFlags(args, map[string]bool{"--source": true})
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.String("source", "", "CSV file, dataset name or -")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: gantt show <task-id-or-name> [--source <source>]")
		return ExitUsage
	}
	s, err := openSession(ws, gf, *source)
	if err != nil {
		return fail("show", err)
	}
	t, err := findTask(s.Model, fs.Arg(0))
	if err != nil {
		return fail("show", err)
	}
	var preds []*model.Task
	for _, p := range s.Model.Tasks {
		for _, idx := range p.Successors {
			if idx == t.Index {
				preds = append(preds, p)
			}
		}
	}
	succs := s.Model.Successors(t)

	if gf.JSON {
		return emitJSON(ws, gf, "show", "task", map[string]any{
			"task":         t,
			"successors":   succs,
			"predecessors": preds,
			"overdue":      isOverdue(s, t),
		})
	}
	vocab := s.Vocabulary()
	fields := [][2]string{
		{"name", t.Name},
		{"id", orDash(t.ID)},
		{"category", t.Category},
		{"viewpoint", t.ViewpointName(s.Config.DefaultViewpoint)},
		{"task", orDash(t.Label)},
		{"start", dates.Format(t.Start)},
		{"end", dates.Format(t.End)},
		{"days", fmt.Sprint(dates.InclusiveDaySpan(t.Start, t.End))},
		{"check", orDash(formatDate(t.Check))},
		{"assignee", orDash(t.Assignee)},
		{"status", fmt.Sprintf("%s (%s)", orDash(t.Status), vocab.Status(t.Status))},
		{"priority", fmt.Sprintf("%s (%s)", orDash(t.Priority), vocab.Priority(t.Priority))},
		{"overdue", fmt.Sprint(isOverdue(s, t))},
		{"successors", taskNames(succs)},
		{"predecessors", taskNames(preds)},
		{"csv row", fmt.Sprint(t.Row)},
	}
	if gf.Plain {
		for _, f := range fields {
			fmt.Fprintf(stdout, "%s\t%s\n", f[0], f[1])
		}
		return ExitOK
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(w, "%s:\t%s\n", f[0], f[1])
	}
	_ = w.Flush()
	return ExitOK
}

func isOverdue(s *session.Session, t *model.Task) bool {
	return t.End.Before(s.Today()) && !s.Vocabulary().IsDone(t.Status)
}

func taskNames(ts []*model.Task) string {
	if len(ts) == 0 {
		return "-"
	}
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
		if t.ID != "" {
			names[i] = t.ID + " " + t.Name
		}
	}
	return strings.Join(names, ", ")
}

type depView struct {
	From      string `json:"from"`
	FromName  string `json:"from_name"`
	To        string `json:"to"`
	ToName    string `json:"to_name"`
	Visible   bool   `json:"visible"`
	Backwards bool   `json:"backwards,omitempty"`
}

func cmdDeps(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: gantt deps [source]")
		return ExitUsage
	}
	s, err := openSession(ws, gf, argOr(args, 0))
	if err != nil {
		return fail("deps", err)
	}
	f, err := s.Frame()
	if err != nil {
		return fail("deps", err)
	}
	drawn := map[[2]int]bool{}
	for _, d := range f.Layout.Dependencies {
		drawn[[2]int{d.From, d.To}] = true
	}
	var deps []depView
	for _, t := range s.Model.Tasks {
		for _, succ := range s.Model.Successors(t) {
			deps = append(deps, depView{
				From:      t.ID,
				FromName:  t.Name,
				To:        succ.ID,
				ToName:    succ.Name,
				Visible:   drawn[[2]int{t.Index, succ.Index}],
				Backwards: succ.Start.Before(t.End),
			})
		}
	}

	if gf.JSON {
		return emitJSON(ws, gf, "deps", "deps", map[string]any{
			"source":       s.Source,
			"dependencies": deps,
			"geometry":     f.Layout.Dependencies,
			"warnings":     s.Report.Warnings,
		})
	}
	if gf.Plain {
		fmt.Fprintln(stdout, "FROM\tTO\tVISIBLE\tBACKWARDS")
		for _, d := range deps {
			fmt.Fprintf(stdout, "%s\t%s\t%t\t%t\n", d.From, d.To, d.Visible, d.Backwards)
		}
		return ExitOK
	}
	if len(deps) == 0 {
		if !gf.Quiet {
			fmt.Fprintln(stdout, "No dependencies.")
		}
		return ExitOK
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FROM\t\tTO\tNOTE")
	for _, d := range deps {
		var notes []string
		if !d.Visible {
			notes = append(notes, "hidden")
		}
		if d.Backwards {
			notes = append(notes, "starts before predecessor ends")
		}
		fmt.Fprintf(w, "%s %s\t→\t%s %s\t%s\n", d.From, d.FromName, d.To, d.ToName, strings.Join(notes, ", "))
	}
	_ = w.Flush()
	return ExitOK
}

func cmdOverdue(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: gantt overdue [source]")
		return ExitUsage
	}
	s, err := openSession(ws, gf, argOr(args, 0))
	if err != nil {
		return fail("overdue", err)
	}
	// Overdue is reported over every task, not just the rows left unfolded.
	s.Collapse.Categories = map[string]bool{}
	s.Collapse.Viewpoints = map[string]bool{}
	s.HideTaskRows = false
	f, err := s.Frame()
	if err != nil {
		return fail("overdue", err)
	}

	if gf.JSON {
		return emitJSON(ws, gf, "overdue", "overdue", map[string]any{
			"source":        s.Source,
			"today":         dates.Format(f.Today),
			"today_visible": f.TodayVisible,
			"overdue":       f.Overdue,
		})
	}
	if gf.Plain {
		fmt.Fprintln(stdout, "ROW\tNAME\tEND\tSTATUS")
		for _, seg := range f.Overdue {
			fmt.Fprintf(stdout, "%d\t%s\t%s\t%s\n", seg.Row, seg.Name, seg.End, seg.Status)
		}
		return ExitOK
	}
	if len(f.Overdue) == 0 {
		if !gf.Quiet {
			fmt.Fprintf(stdout, "Nothing overdue as of %s.\n", dates.Format(f.Today))
		}
		return ExitOK
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEND\tLATE\tSTATUS")
	for _, seg := range f.Overdue {
		late := "-"
		if end, ok := dates.Parse(seg.End); ok {
			late = fmt.Sprintf("%dd", dates.Offset(end, f.Today))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", seg.Name, seg.End, late, orDash(seg.Status))
	}
	_ = w.Flush()
	return ExitOK
}
