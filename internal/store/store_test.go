package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/model"
	"github.com/amirbrooks/ganttcsv/internal/session"
)

func initWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := Open(filepath.Join(t.TempDir(), "ws"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := ws.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return ws
}

func writeCSV(t *testing.T, ws *Workspace, name string) {
	t.Helper()
	path := filepath.Join(ws.CSVDir(), name)
	if err := os.WriteFile(path, []byte("category,start,end\nA,2025-01-01,2025-01-02\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestInitWritesConfigAndSample(t *testing.T) {
	ws := initWorkspace(t)
	if _, err := os.Stat(ws.ConfigPath()); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	list, err := ws.ListDatasets()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != SampleName || list[0].Kind != KindSample || list[0].Missing {
		t.Fatalf("expected the sample dataset, got %#v", list)
	}
	text, err := ws.ReadDataset(SampleName)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, _, err := model.Build(text, model.DefaultOptions()); err != nil {
		t.Fatalf("sample does not build: %v", err)
	}
	reopened, err := Open(ws.Root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Config().MilestoneCategory != config.Default().MilestoneCategory {
		t.Fatalf("expected default config after reopen")
	}
}

func TestListDatasetsOrdersSamplesFirstAndCaps(t *testing.T) {
	ws := initWorkspace(t)
	var stored []string
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("plan-%02d.csv", i)
		writeCSV(t, ws, name)
		stored = append(stored, name)
	}
	stored = append([]string{"notes.txt", SampleName}, stored...)
	if err := writeNameList(filepath.Join(ws.CSVDir(), manifestFile), stored); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	list, err := ws.ListDatasets()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != MaxDatasets {
		t.Fatalf("expected %d datasets, got %d", MaxDatasets, len(list))
	}
	if list[0].Name != SampleName || list[0].Kind != KindSample {
		t.Fatalf("expected sample first, got %#v", list[0])
	}
	if list[1].Name != "plan-00.csv" || list[1].Kind != KindStored {
		t.Fatalf("expected first stored dataset, got %#v", list[1])
	}
	for _, d := range list {
		if !strings.HasSuffix(d.Name, ".csv") {
			t.Fatalf("unexpected non-csv entry %q", d.Name)
		}
	}
}

func TestListDatasetsScansWithoutLists(t *testing.T) {
	ws := initWorkspace(t)
	if err := os.Remove(filepath.Join(ws.CSVDir(), samplesFile)); err != nil {
		t.Fatalf("remove samples: %v", err)
	}
	writeCSV(t, ws, "b.csv")
	list, err := ws.ListDatasets()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := []string{}
	for _, d := range list {
		names = append(names, d.Name)
	}
	if !reflect.DeepEqual(names, []string{"b.csv", SampleName}) {
		t.Fatalf("unexpected scan result %v", names)
	}
}

func TestReadDatasetValidatesNames(t *testing.T) {
	ws := initWorkspace(t)
	for _, name := range []string{"", "../x.csv", "plan.txt", "a/b.csv"} {
		if _, err := ws.ReadDataset(name); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected invalid for %q, got %v", name, err)
		}
	}
	if _, err := ws.ReadDataset("missing.csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUIStateRoundTrip(t *testing.T) {
	ws := initWorkspace(t)
	if _, ok, err := ws.LoadUIState(); err != nil || ok {
		t.Fatalf("expected no saved state, got ok=%v err=%v", ok, err)
	}
	st := session.State{
		Source:              SampleName,
		CollapsedCategories: []string{"PMO"},
		CollapsedViewpoints: []string{"PMO::会議体"},
		HideTaskRows:        true,
		Zoom:                "week",
		Initialized:         true,
	}
	if err := ws.SaveUIState(st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := ws.LoadUIState()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("expected %#v, got %#v", st, got)
	}
	if err := ws.ResetUIState(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := ws.LoadUIState(); ok {
		t.Fatalf("expected state removed")
	}
}

func TestWriteExport(t *testing.T) {
	ws := initWorkspace(t)
	path, err := ws.WriteExport("", "chart", ".svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(path) != ws.ExportsDir() || !strings.HasPrefix(filepath.Base(path), "chart-") || filepath.Ext(path) != ".svg" {
		t.Fatalf("unexpected export path %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "<svg/>" {
		t.Fatalf("unexpected export content %q (%v)", b, err)
	}
	if _, err := ws.WriteExport("", "../x", "json", nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}
