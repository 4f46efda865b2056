package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// WriteExport writes data into dir (the workspace exports directory when
// empty) as <kind>-<ULID>.<ext> and returns the path.
func (w *Workspace) WriteExport(dir, kind, ext string, data []byte) (string, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" || strings.ContainsAny(kind, `/\`) {
		return "", &NameError{Name: kind, Reason: "export kind must be a plain word"}
	}
	if strings.TrimSpace(dir) == "" {
		dir = w.ExportsDir()
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "json"
	}
	name := fmt.Sprintf("%s-%s.%s", kind, newULID(), ext)
	path := filepath.Join(expandHome(dir), name)
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes data to an explicit path atomically.
func WriteFile(path string, data []byte) error {
	return atomicWriteFile(expandHome(path), data, 0o644)
}
