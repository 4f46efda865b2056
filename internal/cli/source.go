package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/session"
	"github.com/amirbrooks/ganttcsv/internal/store"
)

const stdinSource = "-"

// resolveSource returns the name and CSV text of a source argument: an
// existing file path, "-" for stdin, or a dataset name. An empty argument
// falls back to fallback, then to the default dataset.
func resolveSource(ws *store.Workspace, arg, fallback string) (string, string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		arg = fallback
	}
	if arg == "" {
		d, err := ws.DefaultDataset()
		if err != nil {
			return "", "", err
		}
		arg = d.Name
	}
	if arg == stdinSource {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", err
		}
		return "stdin", string(b), nil
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		b, err := os.ReadFile(arg)
		if err != nil {
			return "", "", err
		}
		return arg, string(b), nil
	}
	if strings.ContainsAny(arg, `/\`) {
		return "", "", fmt.Errorf("%s: %w", arg, store.ErrNotFound)
	}
	text, err := ws.ReadDataset(arg)
	if err != nil {
		return "", "", err
	}
	return arg, text, nil
}

func loadConfig(ws *store.Workspace, gf GlobalFlags) (config.Config, error) {
	if gf.ConfigPath == "" {
		return ws.Config(), nil
	}
	cfg, err := config.Load(gf.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config %s: %w", gf.ConfigPath, err)
	}
	return cfg, nil
}

// openSession builds a session for the source argument with the saved view
// state applied. The saved state's source is used when arg is empty; stdin
// is never remembered.
func openSession(ws *store.Workspace, gf GlobalFlags, arg string) (*session.Session, error) {
	cfg, err := loadConfig(ws, gf)
	if err != nil {
		return nil, err
	}
	s := session.New(cfg, newLogger(gf))
	if !gf.Today.IsZero() {
		today := gf.Today
		s.Now = func() time.Time { return today }
	}

	fallback := ""
	if !gf.NoState {
		st, ok, err := ws.LoadUIState()
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
		if ok {
			if err := s.Restore(st); err != nil {
				s.Logger.Printf("ignoring saved state: %v", err)
			} else {
				fallback = st.Source
			}
		}
	}

	name, text, err := resolveSource(ws, arg, fallback)
	if err != nil && arg == "" && fallback != "" && errors.Is(err, store.ErrNotFound) {
		// The remembered source is gone; start over from the default dataset.
		name, text, err = resolveSource(ws, "", "")
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.Generate(name, text); err != nil {
		return nil, err
	}
	return s, nil
}

func saveState(ws *store.Workspace, gf GlobalFlags, s *session.Session) error {
	if gf.NoState {
		return nil
	}
	st := s.Snapshot()
	if st.Source == "stdin" {
		st.Source = ""
	}
	return ws.SaveUIState(st)
}
