package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	manifestFile = "manifest.json"
	samplesFile  = "samples.json"
	// MaxDatasets caps the dataset listing.
	MaxDatasets = 10
)

type DatasetKind string

const (
	KindSample DatasetKind = "sample"
	KindStored DatasetKind = "stored"
)

type Dataset struct {
	Name    string      `json:"name"`
	Kind    DatasetKind `json:"kind"`
	Path    string      `json:"path"`
	Size    int64       `json:"size"`
	ModTime time.Time   `json:"mod_time"`
	Missing bool        `json:"missing,omitempty"`
}

// ListDatasets returns samples.json entries followed by manifest.json
// entries, keeping .csv names only, de-duplicated and capped at MaxDatasets.
// When neither list exists the csv directory is scanned instead.
func (w *Workspace) ListDatasets() ([]Dataset, error) {
	samples, errS := readNameList(filepath.Join(w.CSVDir(), samplesFile))
	stored, errM := readNameList(filepath.Join(w.CSVDir(), manifestFile))
	if errS != nil && !errors.Is(errS, fs.ErrNotExist) {
		return nil, errS
	}
	if errM != nil && !errors.Is(errM, fs.ErrNotExist) {
		return nil, errM
	}
	if errors.Is(errS, fs.ErrNotExist) && errors.Is(errM, fs.ErrNotExist) {
		scanned, err := w.scanCSVDir()
		if err != nil {
			return nil, err
		}
		stored = scanned
	}

	var out []Dataset
	seen := map[string]bool{}
	add := func(names []string, kind DatasetKind) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if len(out) >= MaxDatasets || seen[name] || !isCSVName(name) {
				continue
			}
			seen[name] = true
			out = append(out, w.describe(name, kind))
		}
	}
	add(samples, KindSample)
	add(stored, KindStored)
	return out, nil
}

func (w *Workspace) describe(name string, kind DatasetKind) Dataset {
	d := Dataset{Name: name, Kind: kind, Path: filepath.Join(w.CSVDir(), name)}
	fi, err := os.Stat(d.Path)
	if err != nil {
		d.Missing = true
		return d
	}
	d.Size = fi.Size()
	d.ModTime = fi.ModTime().UTC()
	return d
}

func (w *Workspace) scanCSVDir() ([]string, error) {
	entries, err := os.ReadDir(w.CSVDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isCSVName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadDataset returns the text of a named dataset in the csv directory.
func (w *Workspace) ReadDataset(name string) (string, error) {
	if err := validateDatasetName(name); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(w.CSVDir(), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("dataset %q: %w", name, ErrNotFound)
		}
		return "", err
	}
	return string(b), nil
}

// DefaultDataset is the first sample, else the first listed dataset.
func (w *Workspace) DefaultDataset() (Dataset, error) {
	list, err := w.ListDatasets()
	if err != nil {
		return Dataset{}, err
	}
	for _, d := range list {
		if d.Kind == KindSample && !d.Missing {
			return d, nil
		}
	}
	for _, d := range list {
		if !d.Missing {
			return d, nil
		}
	}
	return Dataset{}, fmt.Errorf("no datasets in %s: %w", w.CSVDir(), ErrNotFound)
}

func validateDatasetName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &NameError{Name: name, Reason: "empty"}
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return &NameError{Name: name, Reason: "must be a file name inside the csv directory"}
	case !isCSVName(name):
		return &NameError{Name: name, Reason: "must end in .csv"}
	}
	return nil
}

func isCSVName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv") && len(name) > len(".csv")
}

func readNameList(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return names, nil
}

func writeNameList(path string, names []string) error {
	b, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, append(b, '\n'), 0o644)
}
