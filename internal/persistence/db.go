// Package persistence provides SQLite-backed storage for checkpoint
// checksums, the artifact spec.md section 6's GUI/CLI parity contract
// compares across two independent runs of the same seed and config.
package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection used to persist per-checkpoint checksums
// and run metadata.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS world_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE TABLE IF NOT EXISTS checkpoints (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		world_population REAL NOT NULL,
		per_country_population_sum REAL NOT NULL,
		total_gdp_sum REAL NOT NULL,
		total_stockpiles REAL NOT NULL,
		total_territory_cells INTEGER NOT NULL,
		PRIMARY KEY (run_id, year)
	);

	CREATE INDEX IF NOT EXISTS idx_checkpoints_year ON checkpoints(year);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Checkpoint is the parity-contract checksum tuple spec.md section 6
// names: five scalars recomputed independently by both the GUI and CLI
// code paths at every checkpoint year and compared within fixed
// tolerances.
type Checkpoint struct {
	RunID                   string  `db:"run_id"`
	Year                    int     `db:"year"`
	WorldPopulation         float64 `db:"world_population"`
	PerCountryPopulationSum float64 `db:"per_country_population_sum"`
	TotalGDPSum             float64 `db:"total_gdp_sum"`
	TotalStockpiles         float64 `db:"total_stockpiles"`
	TotalTerritoryCells     int64   `db:"total_territory_cells"`
}

// SaveCheckpoint records cp, replacing any existing row for the same
// (RunID, Year) pair (a rerun of an interrupted run overwrites its own
// prior checkpoints rather than erroring).
func (db *DB) SaveCheckpoint(cp Checkpoint) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO checkpoints
		(run_id, year, world_population, per_country_population_sum,
		 total_gdp_sum, total_stockpiles, total_territory_cells)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cp.RunID, cp.Year, cp.WorldPopulation, cp.PerCountryPopulationSum,
		cp.TotalGDPSum, cp.TotalStockpiles, cp.TotalTerritoryCells,
	)
	return err
}

// LoadCheckpoints returns every checkpoint saved for runID, ordered by
// year ascending.
func (db *DB) LoadCheckpoints(runID string) ([]Checkpoint, error) {
	var rows []Checkpoint
	err := db.conn.Select(&rows,
		`SELECT run_id, year, world_population, per_country_population_sum,
		 total_gdp_sum, total_stockpiles, total_territory_cells
		 FROM checkpoints WHERE run_id = ? ORDER BY year ASC`,
		runID,
	)
	return rows, err
}

// LoadCheckpoint returns the single checkpoint for (runID, year).
func (db *DB) LoadCheckpoint(runID string, year int) (Checkpoint, error) {
	var cp Checkpoint
	err := db.conn.Get(&cp,
		`SELECT run_id, year, world_population, per_country_population_sum,
		 total_gdp_sum, total_stockpiles, total_territory_cells
		 FROM checkpoints WHERE run_id = ? AND year = ?`,
		runID, year,
	)
	return cp, err
}

// SaveMeta records a run-scoped key/value pair (seed, config path, git
// revision, and similar provenance fields a parity report wants to echo).
func (db *DB) SaveMeta(runID, key, value string) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO world_meta (run_id, key, value) VALUES (?, ?, ?)`,
		runID, key, value,
	)
	return err
}

// GetMeta returns the value saved for (runID, key).
func (db *DB) GetMeta(runID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value,
		`SELECT value FROM world_meta WHERE run_id = ? AND key = ?`,
		runID, key,
	)
	return value, err
}

// Tolerance is the allowed slack on one Checkpoint field, expressed as an
// absolute bound, a relative bound (fraction of the reference value), or
// both — a field passes if it satisfies either.
type Tolerance struct {
	Absolute float64
	Relative float64
}

// Mismatch describes one Checkpoint field that failed its parity
// tolerance when Compare ran.
type Mismatch struct {
	Field    string
	GUI, CLI float64
	Diff     float64
}

// defaultTolerances are spec.md section 6's parity-contract bounds:
// population within 128 head, territory within 8 cells, every other
// scalar within 5e-4 relative or 100 absolute, whichever is looser.
var defaultTolerances = map[string]Tolerance{
	"worldPopulation":         {Absolute: 128},
	"totalTerritoryCells":     {Absolute: 8},
	"perCountryPopulationSum": {Relative: 5e-4, Absolute: 100},
	"totalGDPSum":             {Relative: 5e-4, Absolute: 100},
	"totalStockpiles":         {Relative: 5e-4, Absolute: 100},
}

// Compare checks gui against cli field by field under defaultTolerances
// and returns every field that falls outside its tolerance. A nil/empty
// result means the two runs are parity-equivalent at this checkpoint year.
func Compare(gui, cli Checkpoint) []Mismatch {
	fields := []struct {
		name     string
		gui, cli float64
	}{
		{"worldPopulation", gui.WorldPopulation, cli.WorldPopulation},
		{"perCountryPopulationSum", gui.PerCountryPopulationSum, cli.PerCountryPopulationSum},
		{"totalGDPSum", gui.TotalGDPSum, cli.TotalGDPSum},
		{"totalStockpiles", gui.TotalStockpiles, cli.TotalStockpiles},
		{"totalTerritoryCells", float64(gui.TotalTerritoryCells), float64(cli.TotalTerritoryCells)},
	}

	var mismatches []Mismatch
	for _, f := range fields {
		tol := defaultTolerances[f.name]
		diff := f.gui - f.cli
		if diff < 0 {
			diff = -diff
		}
		withinAbsolute := tol.Absolute > 0 && diff <= tol.Absolute
		withinRelative := tol.Relative > 0 && f.cli != 0 && diff/absFloat(f.cli) <= tol.Relative
		if withinAbsolute || withinRelative {
			continue
		}
		mismatches = append(mismatches, Mismatch{Field: f.name, GUI: f.gui, CLI: f.cli, Diff: diff})
	}
	return mismatches
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
