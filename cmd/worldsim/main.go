// Command worldsim runs the deterministic world-history kernel from the
// command line: it builds a world from a seed and configuration, advances
// it year by year, and writes a timeseries and run summary to disk. It can
// also run as one side of a GUI/CLI parity comparison (spec.md section 6).
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/engine"
	"github.com/talgya/worldkernel/internal/kernelerr"
	"github.com/talgya/worldkernel/internal/persistence"
	"github.com/talgya/worldkernel/internal/report"
)

// Exit codes, fixed by spec.md section 6: 0 success, 2 argument/config
// error, 3 invariant violation, 5 parity mismatch, 6 parity subprocess
// failure. 1 and 4 are reserved and never returned.
const (
	exitOK                      = 0
	exitArgumentError           = 2
	exitInvariantViolation      = 3
	exitParityMismatch          = 5
	exitParitySubprocessFailure = 6
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		seed                       uint64
		configPath                 string
		startYear, endYear         int
		checkpointEveryYears       int
		outDir                     string
		useGPU                     int
		parityCheckYears           int
		parityCheckpointEveryYears int
		parityRole                 string
		parityOut                  string
	)

	fs := flag.NewFlagSet("worldsim", flag.ContinueOnError)
	fs.Uint64Var(&seed, "seed", 1, "world RNG seed")
	fs.StringVar(&configPath, "config", "", "path to a TOML configuration file")
	fs.IntVar(&startYear, "startYear", 0, "override the configured start year")
	fs.IntVar(&endYear, "endYear", 0, "override the configured end year")
	fs.IntVar(&checkpointEveryYears, "checkpointEveryYears", 50, "years between checkpoints")
	fs.StringVar(&outDir, "outDir", "out", "directory for timeseries.csv, run_summary.json, and checkpoints.db")
	fs.IntVar(&useGPU, "useGPU", 0, "accepted for compatibility; stored in the config and has no effect on the run")
	fs.IntVar(&parityCheckYears, "parityCheckYears", 0, "years to run under --parityRole before comparing checkpoints")
	fs.IntVar(&parityCheckpointEveryYears, "parityCheckpointEveryYears", 10, "checkpoint cadence while running under --parityRole")
	fs.StringVar(&parityRole, "parityRole", "", "gui|cli: run as one side of a GUI/CLI parity comparison")
	fs.StringVar(&parityOut, "parityOut", "", "sqlite database path the parity roles share")

	if err := fs.Parse(args); err != nil {
		return exitArgumentError
	}

	overridden := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { overridden[f.Name] = true })

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("configuration error")
		return exitArgumentError
	}
	if overridden["startYear"] {
		cfg.StartYear = startYear
	}
	if overridden["endYear"] {
		cfg.EndYear = endYear
	}
	cfg.Economy.UseGPU = useGPU != 0

	if parityRole != "" {
		if parityRole != "gui" && parityRole != "cli" {
			logger.Error().Str("parityRole", parityRole).Msg("parityRole must be gui or cli")
			return exitArgumentError
		}
		if parityOut == "" || parityCheckYears <= 0 {
			logger.Error().Msg("parityRole requires --parityOut and --parityCheckYears > 0")
			return exitArgumentError
		}
		return runParityRole(logger, cfg, seed, parityRole, parityOut, parityCheckYears, parityCheckpointEveryYears)
	}

	return runStandalone(logger, cfg, seed, outDir, checkpointEveryYears)
}

func loadConfig(path string) (config.Document, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runStandalone drives a single full run: build the world, advance it to
// cfg.EndYear, and write timeseries.csv, run_summary.json, and a
// checkpoint database to outDir.
func runStandalone(logger zerolog.Logger, cfg config.Document, seed uint64, outDir string, checkpointEveryYears int) int {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create output directory")
		return exitArgumentError
	}

	ctx := engine.SimulationContext{WorldSeed: seed, Config: cfg, Log: &logger}
	w, err := engine.NewWorld(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("world initialization failed")
		return exitArgumentError
	}

	db, err := persistence.Open(filepath.Join(outDir, "checkpoints.db"))
	if err != nil {
		logger.Error().Err(err).Msg("failed to open checkpoint store")
		return exitArgumentError
	}
	defer db.Close()

	runID := fmt.Sprintf("seed-%d", seed)
	db.SaveMeta(runID, "seed", fmt.Sprintf("%d", seed))
	db.SaveMeta(runID, "startYear", fmt.Sprintf("%d", cfg.StartYear))
	db.SaveMeta(runID, "endYear", fmt.Sprintf("%d", cfg.EndYear))
	db.SaveMeta(runID, "runUUID", uuid.New().String())

	csvWriter, err := report.NewCSVWriter(filepath.Join(outDir, "timeseries.csv"))
	if err != nil {
		logger.Error().Err(err).Msg("failed to open timeseries.csv")
		return exitArgumentError
	}
	defer csvWriter.Close()

	cancel := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("stopping at next year boundary")
		close(cancel)
	}()

	var rows []report.Row
	onCheckpoint := func(w *engine.World) error {
		row := report.BuildRow(w)
		rows = append(rows, row)
		if err := csvWriter.Write(row); err != nil {
			return err
		}
		return db.SaveCheckpoint(checkpointOf(runID, w))
	}

	if err := engine.Run(ctx, w, cancel, checkpointEveryYears, onCheckpoint); err != nil {
		logger.Error().Err(err).Msg("run terminated")
		var invErr *kernelerr.InvariantError
		if errors.As(err, &invErr) {
			return exitInvariantViolation
		}
		return exitArgumentError
	}

	summary := report.RunSummary{
		Seed:      seed,
		StartYear: cfg.StartYear,
		EndYear:   cfg.EndYear,
		FinalYear: w.Year,
		Rows:      rows,
	}
	if err := report.WriteSummaryJSON(filepath.Join(outDir, "run_summary.json"), summary); err != nil {
		logger.Error().Err(err).Msg("failed to write run summary")
		return exitArgumentError
	}

	logger.Info().
		Int("finalYear", w.Year).
		Int("checkpoints", len(rows)).
		Str("worldPopulation", humanize.Comma(int64(engine.WorldPopulation(w)))).
		Msg("run complete")
	return exitOK
}

// runParityRole runs a shorter horizon under --parityRole, recording
// checkpoints into the shared --parityOut database under a role-qualified
// run ID. The cli role, expected to run second, compares its own
// checkpoints against the gui role's for the same seed and year and
// reports a mismatch via exitParityMismatch.
func runParityRole(logger zerolog.Logger, cfg config.Document, seed uint64, role, parityOut string, years, every int) int {
	if dir := filepath.Dir(parityOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Msg("failed to create parity output directory")
			return exitParitySubprocessFailure
		}
	}

	db, err := persistence.Open(parityOut)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open parity database")
		return exitParitySubprocessFailure
	}
	defer db.Close()

	cfg.EndYear = cfg.StartYear + years
	ctx := engine.SimulationContext{WorldSeed: seed, Config: cfg, Log: &logger}
	w, err := engine.NewWorld(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("world initialization failed")
		return exitParitySubprocessFailure
	}

	runID := fmt.Sprintf("seed-%d-%s", seed, role)
	onCheckpoint := func(w *engine.World) error {
		return db.SaveCheckpoint(checkpointOf(runID, w))
	}

	if err := engine.Run(ctx, w, nil, every, onCheckpoint); err != nil {
		logger.Error().Err(err).Msg("parity run terminated")
		return exitParitySubprocessFailure
	}

	if role != "cli" {
		logger.Info().Str("role", role).Msg("parity checkpoints recorded")
		return exitOK
	}
	return compareAgainstGUIRole(logger, db, seed)
}

func compareAgainstGUIRole(logger zerolog.Logger, db *persistence.DB, seed uint64) int {
	guiRunID := fmt.Sprintf("seed-%d-gui", seed)
	cliRunID := fmt.Sprintf("seed-%d-cli", seed)

	guiCheckpoints, err := db.LoadCheckpoints(guiRunID)
	if err != nil || len(guiCheckpoints) == 0 {
		logger.Warn().Msg("no gui-role checkpoints found to compare against; run --parityRole gui first")
		return exitOK
	}
	cliCheckpoints, err := db.LoadCheckpoints(cliRunID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to reload cli checkpoints")
		return exitParitySubprocessFailure
	}

	byYear := make(map[int]persistence.Checkpoint, len(cliCheckpoints))
	for _, cp := range cliCheckpoints {
		byYear[cp.Year] = cp
	}

	mismatchFound := false
	for _, guiCP := range guiCheckpoints {
		cliCP, ok := byYear[guiCP.Year]
		if !ok {
			continue
		}
		mismatches := persistence.Compare(guiCP, cliCP)
		for _, m := range mismatches {
			mismatchFound = true
			logger.Error().
				Int("year", guiCP.Year).
				Str("field", m.Field).
				Float64("gui", m.GUI).
				Float64("cli", m.CLI).
				Msg("parity mismatch")
		}
	}
	if mismatchFound {
		return exitParityMismatch
	}
	logger.Info().Msg("parity check passed")
	return exitOK
}

func checkpointOf(runID string, w *engine.World) persistence.Checkpoint {
	return persistence.Checkpoint{
		RunID:                   runID,
		Year:                    w.Year,
		WorldPopulation:         engine.WorldPopulation(w),
		PerCountryPopulationSum: engine.PerCountryPopulationSum(w),
		TotalGDPSum:             engine.TotalGDP(w),
		TotalStockpiles:         engine.TotalStockpiles(w),
		TotalTerritoryCells:     engine.TotalTerritoryCells(w),
	}
}
