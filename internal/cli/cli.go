package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/dates"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/session"
	"github.com/amirbrooks/ganttcsv/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitData     = 5
	ExitInternal = 10
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

type GlobalFlags struct {
	Root       string
	ConfigPath string
	JSON       bool
	Plain      bool
	Quiet      bool
	Verbose    bool
	StdoutJSON bool
	ExportDir  string
	// Today overrides the clock for overdue and today markers.
	Today   time.Time
	NoState bool
}

func reorderFlags(args []string, takesValue map[string]bool) []string {
	if len(args) == 0 {
		return args
	}
	var flags []string
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			if i+1 < len(args) {
				rest = append(rest, args[i+1:]...)
			}
			break
		}
		if strings.HasPrefix(a, "-") && a != "-" {
			flags = append(flags, a)
			if takesValue[a] && !strings.Contains(a, "=") {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}

func Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return ExitUsage
	}

	if len(rest) == 0 {
		printHelp()
		return ExitUsage
	}

	cmd := rest[0]
	cmdArgs := rest[1:]

	ws, err := store.Open(gf.Root)
	if err != nil {
		fmt.Fprintln(stderr, "gantt:", err)
		return ExitInternal
	}

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return ExitOK
	case "init":
		return cmdInit(ws, gf, cmdArgs)
	case "config", "cfg":
		return cmdConfig(ws, gf, cmdArgs)
	case "ls", "list":
		return cmdList(ws, gf, cmdArgs)
	case "preview":
		return cmdPreview(ws, gf, cmdArgs)
	case "check":
		return cmdCheck(ws, gf, cmdArgs)
	case "rows":
		return cmdRows(ws, gf, cmdArgs)
	case "show":
		return cmdShow(ws, gf, cmdArgs)
	case "deps":
		return cmdDeps(ws, gf, cmdArgs)
	case "overdue":
		return cmdOverdue(ws, gf, cmdArgs)
	case "render":
		return cmdRender(ws, gf, cmdArgs)
	case "toggle":
		return cmdToggle(ws, gf, cmdArgs)
	case "zoom":
		return cmdZoom(ws, gf, cmdArgs)
	case "fit":
		return cmdFit(ws, gf, cmdArgs)
	case "state":
		return cmdState(ws, gf, cmdArgs)
	case "tui", "view":
		return cmdTUI(ws, gf, cmdArgs)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		return ExitUsage
	}
}

func printHelp() {
	fmt.Fprint(stdout, `gantt: Gantt charts from task CSV files

Usage:
  gantt [global flags] <command> [args]

Global flags:
  --root <path>    Workspace root (default: ~/.gantt or GANTT_ROOT)
  --config <path>  Config file (default: <root>/config.yaml)
  --json           Write JSON output to <root>/exports (no stdout JSON)
  --stdout-json    Allow JSON to stdout (debug only)
  --export-dir     Override export directory (default: <root>/exports)
  --plain          TSV output
  --today <date>   Treat <date> as today (YYYY-MM-DD)
  --no-state       Ignore and do not save the folded/zoom state
  --quiet
  --verbose

Sources:
  A source is a CSV file path, "-" for stdin, or a dataset name from "gantt ls".
  Without a source the last used one is taken, else the first sample.

Commands:
  init
  ls
  preview [source] [--rows N]
  check [source]
  rows [source] [--expand] [--collapse]
  show <task-id-or-name> [--source <source>]
  deps [source]
  overdue [source]
  render [source] [--format svg|text|json] [--zoom day|week|month] [--fit <px>] [--width N] [--out <path>] [--copy]
  toggle <category|viewpoint|all|viewpoints|tasks> [name] [--source <source>]
  zoom <day|week|month>
  fit <px>
  state show|reset
  tui [source]
  config show
  config set <key> <value>
`)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Allow flags anywhere by scanning and stripping known globals.
	gf := GlobalFlags{}

	// Default root from env or home.
	if env := os.Getenv("GANTT_ROOT"); env != "" {
		gf.Root = env
	} else {
		home, _ := os.UserHomeDir()
		if home != "" {
			gf.Root = filepath.Join(home, ".gantt")
		} else {
			gf.Root = ".gantt"
		}
	}

	out := make([]string, 0, len(args))
	skip := 0

	for i := 0; i < len(args); i++ {
		if skip > 0 {
			skip--
			continue
		}
		a := args[i]
		switch a {
		case "--root":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--root requires a value")
			}
			gf.Root = args[i+1]
			skip = 1
		case "--config":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--config requires a value")
			}
			gf.ConfigPath = args[i+1]
			skip = 1
		case "--today":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--today requires a value")
			}
			t, ok := dates.Parse(args[i+1])
			if !ok {
				return gf, nil, fmt.Errorf("--today: invalid date %q", args[i+1])
			}
			gf.Today = t
			skip = 1
		case "--json":
			gf.JSON = true
		case "--stdout-json":
			gf.StdoutJSON = true
		case "--export-dir":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--export-dir requires a value")
			}
			gf.ExportDir = args[i+1]
			skip = 1
		case "--plain":
			gf.Plain = true
		case "--no-state":
			gf.NoState = true
		case "--quiet":
			gf.Quiet = true
		case "--verbose":
			gf.Verbose = true
		default:
			out = append(out, a)
		}
	}

	if gf.StdoutJSON && !gf.JSON {
		return gf, nil, errors.New("--stdout-json requires --json")
	}
	if gf.Quiet && gf.Verbose {
		return gf, nil, errors.New("--quiet and --verbose are mutually exclusive")
	}
	if gf.ExportDir == "" {
		gf.ExportDir = filepath.Join(gf.Root, "exports")
	}
	return gf, out, nil
}

func newLogger(gf GlobalFlags) *log.Logger {
	if !gf.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(stderr, "gantt: ", 0)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, store.ErrNotFound), errors.Is(err, session.ErrUnknownKey), errors.Is(err, fs.ErrNotExist):
		return ExitNotFound
	case errors.Is(err, store.ErrInvalid):
		return ExitUsage
	case errors.Is(err, model.ErrEmptyInput), errors.Is(err, model.ErrSchema), errors.Is(err, model.ErrValidation):
		return ExitData
	default:
		return ExitInternal
	}
}

func fail(cmd string, err error) int {
	fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
	return exitCode(err)
}

// emitJSON writes payload to stdout with --stdout-json, or to an export file.
func emitJSON(ws *store.Workspace, gf GlobalFlags, cmd, base string, payload any) int {
	if gf.StdoutJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		return ExitOK
	}
	path, err := writeJSONExport(ws, gf, base, payload)
	if err != nil {
		return fail(cmd, err)
	}
	if !gf.Quiet {
		fmt.Fprintln(stdout, "Wrote JSON to:", path)
	}
	return ExitOK
}

func writeJSONExport(ws *store.Workspace, gf GlobalFlags, base string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return ws.WriteExport(gf.ExportDir, base, "json", data)
}
