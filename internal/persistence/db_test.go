package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadCheckpointRoundTrips(t *testing.T) {
	db := openTestDB(t)

	cp := Checkpoint{
		RunID:                   "run-cli",
		Year:                    -4800,
		WorldPopulation:         128000,
		PerCountryPopulationSum: 987654,
		TotalGDPSum:             45000,
		TotalStockpiles:         12000,
		TotalTerritoryCells:     9001,
	}
	require.NoError(t, db.SaveCheckpoint(cp))

	loaded, err := db.LoadCheckpoint("run-cli", -4800)
	require.NoError(t, err)
	require.Equal(t, cp, loaded)
}

func TestSaveCheckpointOverwritesSameRunYear(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveCheckpoint(Checkpoint{RunID: "r", Year: 100, WorldPopulation: 1}))
	require.NoError(t, db.SaveCheckpoint(Checkpoint{RunID: "r", Year: 100, WorldPopulation: 2}))

	loaded, err := db.LoadCheckpoint("r", 100)
	require.NoError(t, err)
	require.Equal(t, 2.0, loaded.WorldPopulation)
}

func TestLoadCheckpointsOrdersByYear(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveCheckpoint(Checkpoint{RunID: "r", Year: 50}))
	require.NoError(t, db.SaveCheckpoint(Checkpoint{RunID: "r", Year: -4950}))
	require.NoError(t, db.SaveCheckpoint(Checkpoint{RunID: "r", Year: 0}))

	rows, err := db.LoadCheckpoints("r")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []int{-4950, 0, 50}, []int{rows[0].Year, rows[1].Year, rows[2].Year})
}

func TestMetaRoundTrips(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("run-cli", "seed", "42"))
	value, err := db.GetMeta("run-cli", "seed")
	require.NoError(t, err)
	require.Equal(t, "42", value)
}

func TestCompareWithinTolerancePasses(t *testing.T) {
	gui := Checkpoint{
		WorldPopulation:         1_000_000,
		PerCountryPopulationSum: 5_000_000,
		TotalGDPSum:             250_000,
		TotalStockpiles:         80_000,
		TotalTerritoryCells:     40_000,
	}
	cli := gui
	cli.WorldPopulation += 100
	cli.TotalTerritoryCells += 3
	cli.TotalGDPSum *= 1.0001

	require.Empty(t, Compare(gui, cli))
}

func TestCompareBeyondToleranceReportsMismatch(t *testing.T) {
	gui := Checkpoint{WorldPopulation: 1_000_000, TotalTerritoryCells: 40_000}
	cli := Checkpoint{WorldPopulation: 1_000_500, TotalTerritoryCells: 40_000}

	mismatches := Compare(gui, cli)
	require.Len(t, mismatches, 1)
	require.Equal(t, "worldPopulation", mismatches[0].Field)
}
