package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amirbrooks/ganttcsv/internal/config"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	timeNow     = func() time.Time { return time.Now().UTC() }
)

// NameError reports a dataset or export name that cannot be used.
// It satisfies errors.Is(err, ErrInvalid).
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	if e == nil {
		return "invalid name"
	}
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

func (e *NameError) Is(target error) bool {
	return target == ErrInvalid
}

const (
	configFile  = "config.yaml"
	csvDir      = "csv"
	exportsDir  = "exports"
	stateDir    = "state"
	uiStateFile = "ui.yaml"
)

// Workspace is a directory holding config.yaml, CSV datasets, saved UI state
// and exports.
type Workspace struct {
	Root string
	cfg  config.Config
}

// Open opens a workspace rooted at root. It does not create files until Init is called.
func Open(root string) (*Workspace, error) {
	ws := &Workspace{Root: expandHome(root)}
	if err := ws.loadOrDefaultConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return ws, nil
}

// Init creates the workspace layout, a default config and the sample dataset.
// Existing files are left alone.
func (w *Workspace) Init() error {
	for _, dir := range []string{w.Root, w.CSVDir(), w.ExportsDir(), filepath.Join(w.Root, stateDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := w.ensureConfig(); err != nil {
		return err
	}
	return w.ensureSample()
}

func (w *Workspace) ConfigPath() string { return filepath.Join(w.Root, configFile) }

func (w *Workspace) CSVDir() string { return filepath.Join(w.Root, csvDir) }

func (w *Workspace) ExportsDir() string { return filepath.Join(w.Root, exportsDir) }

func (w *Workspace) ensureConfig() error {
	if _, err := os.Stat(w.ConfigPath()); err == nil {
		return w.loadOrDefaultConfig()
	}
	return w.SaveConfig(config.Default())
}

func (w *Workspace) loadOrDefaultConfig() error {
	cfg, err := config.Load(w.ConfigPath())
	if err != nil {
		w.cfg = config.Default()
		return err
	}
	w.cfg = cfg
	return nil
}

func (w *Workspace) Config() config.Config {
	return w.cfg
}

func (w *Workspace) SaveConfig(cfg config.Config) error {
	cfg = config.Normalize(cfg)
	b, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	w.cfg = cfg
	return atomicWriteFile(w.ConfigPath(), b, 0o644)
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", timeNow().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
