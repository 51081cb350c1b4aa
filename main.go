package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/scape/capacity"
	"github.com/pthm-cable/scape/config"
	"github.com/pthm-cable/scape/render"
	"github.com/pthm-cable/scape/telemetry"
	"github.com/pthm-cable/scape/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	ticks := flag.Int("ticks", 0, "Tick budget (0 = use config)")
	width := flag.Int("width", 0, "Landscape width (0 = use config)")
	height := flag.Int("height", 0, "Landscape height (0 = use config)")
	agents := flag.Int("agents", 0, "Initial agent count (0 = use config)")
	randomize := flag.Bool("randomize", false, "Randomize the capacity field parameters")
	display := flag.Bool("display", false, "Render the landscape to the terminal each tick")
	sleep := flag.Duration("sleep", time.Second, "Delay between rendered frames")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	plotPath := flag.String("plot", "", "Write the population series plot to this file (.png/.svg/.pdf)")

	flag.Parse()

	// Set up slog (JSON to stderr; the terminal renderer owns stdout)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *width > 0 {
		cfg.Landscape.Width = *width
	}
	if *height > 0 {
		cfg.Landscape.Height = *height
	}
	if *agents > 0 {
		cfg.Population.Initial = *agents
	}
	if *ticks > 0 {
		cfg.Run.Ticks = *ticks
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	field := capacity.FromConfig(cfg, rng, cfg.Landscape.Width, cfg.Landscape.Height, *randomize)

	land, err := world.New(cfg, field)
	if err != nil {
		slog.Error("failed to build landscape", "error", err)
		os.Exit(1)
	}

	active := land.PlaceAgents(cfg.Population.Initial, rng)
	sched := world.NewScheduler(land, active, rng)
	defer sched.Stop()

	collector := telemetry.NewCollector(cfg.Telemetry.WindowTicks)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	var view *render.Renderer
	if *display {
		view = render.New(os.Stdout)
		view.Frame(land.Snapshot(sched.Population(), cfg.Run.Ticks))
		time.Sleep(*sleep)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"size", [2]int{cfg.Landscape.Width, cfg.Landscape.Height},
		"agents", land.InitialAgents(),
		"ticks", cfg.Run.Ticks,
		"capacity_model", cfg.Capacity.Model,
	)

	for i := 1; i <= cfg.Run.Ticks; i++ {
		report := sched.Step()
		collector.Record(report)

		if view != nil {
			view.Frame(land.Snapshot(report.Population, cfg.Run.Ticks))
			time.Sleep(*sleep)
		}

		if collector.ShouldFlush(report.Tick) {
			snap := land.Snapshot(report.Population, cfg.Run.Ticks)
			stats := collector.Flush(report.Tick, report.Population,
				telemetry.WealthValues(sched.Agents()), snap.MeanResource())
			if err := output.WriteWindow(stats); err != nil {
				slog.Error("failed to write telemetry window", "error", err)
			}
		}

		if report.Tick%cfg.Telemetry.LogInterval == 0 {
			slog.Info("population",
				"tick", report.Tick,
				"of", cfg.Run.Ticks,
				"alive", report.Population,
				"births", report.Births,
				"deaths", report.Deaths,
			)
		}

		if report.Population == 0 {
			slog.Info("all agents have died", "tick", report.Tick)
			break
		}
	}

	if view != nil {
		view.Frame(land.Snapshot(sched.Population(), cfg.Run.Ticks))
	}

	ratio := 0.0
	if land.InitialAgents() > 0 {
		ratio = float64(sched.Population()) / float64(land.InitialAgents())
	}
	slog.Info("simulation finished",
		"tick", land.Time(),
		"alive", sched.Population(),
		"initial", land.InitialAgents(),
		"survivor_ratio", ratio,
	)

	if err := output.WritePopulationSeries(collector.Series()); err != nil {
		slog.Error("failed to write population series", "error", err)
	}
	if *plotPath != "" {
		if err := telemetry.PlotPopulation(collector.Series(), *plotPath); err != nil {
			slog.Error("failed to plot population series", "error", err)
		}
	}
}
