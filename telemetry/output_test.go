package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/scape/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\"): %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// Every method is a no-op on the nil manager.
	if err := om.WriteWindow(WindowStats{}); err != nil {
		t.Errorf("WriteWindow on nil: %v", err)
	}
	if err := om.WritePopulationSeries(nil); err != nil {
		t.Errorf("WritePopulationSeries on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerWritesTelemetryCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	if err := om.WriteWindow(WindowStats{WindowEndTick: 25, Population: 100, Births: 4}); err != nil {
		t.Fatalf("WriteWindow: %v", err)
	}
	if err := om.WriteWindow(WindowStats{WindowEndTick: 50, Population: 90, Deaths: 14}); err != nil {
		t.Fatalf("WriteWindow: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "window_end") {
		t.Error("telemetry.csv missing header")
	}
	if strings.Count(content, "window_end") != 1 {
		t.Error("header should be written exactly once")
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 {
		t.Errorf("telemetry.csv has %d lines, want header + 2 records", len(lines))
	}
}

func TestOutputManagerWritesPopulationSeries(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	series := []PopulationPoint{{Tick: 1, Population: 10}, {Tick: 2, Population: 7}}
	if err := om.WritePopulationSeries(series); err != nil {
		t.Fatalf("WritePopulationSeries: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "population.csv"))
	if err != nil {
		t.Fatalf("reading population.csv: %v", err)
	}
	content := strings.TrimSpace(string(data))
	lines := strings.Split(content, "\n")
	if len(lines) != 3 {
		t.Errorf("population.csv has %d lines, want header + 2 records", len(lines))
	}
	if !strings.Contains(lines[0], "tick") || !strings.Contains(lines[0], "population") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestOutputManagerWritesConfigSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot not written: %v", err)
	}
}

func TestPlotPopulationWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "population.png")
	series := []PopulationPoint{
		{Tick: 1, Population: 250}, {Tick: 2, Population: 240},
		{Tick: 3, Population: 245}, {Tick: 4, Population: 180},
	}

	if err := PlotPopulation(series, path); err != nil {
		t.Fatalf("PlotPopulation: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}
