package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
)

func testContext(t *testing.T) SimulationContext {
	t.Helper()
	cfg := config.Default()
	cfg.NumCountries = 6
	cfg.MaxCountries = 16
	cfg.StartYear = -4800
	cfg.EndYear = -4700
	cfg.FieldDownsample = 4
	logger := zerolog.Nop()
	return SimulationContext{WorldSeed: 777, Config: cfg, Log: &logger}
}

func TestNewWorldSpawnsRequestedCountries(t *testing.T) {
	ctx := testContext(t)
	w, err := NewWorld(ctx)
	require.NoError(t, err)
	require.Len(t, w.Countries, ctx.Config.NumCountries)
	for i, c := range w.Countries {
		require.True(t, c.Alive)
		require.Greater(t, c.Population(), 0.0)
		require.Equal(t, i, c.Index)
	}
}

func TestRunYearAdvancesYearAndPreservesInvariants(t *testing.T) {
	ctx := testContext(t)
	w, err := NewWorld(ctx)
	require.NoError(t, err)

	startYear := w.Year
	for i := 0; i < 5; i++ {
		RunYear(ctx, w, 1)
	}
	require.Equal(t, startYear+5, w.Year)
	require.NoError(t, CheckInvariants(w, -1))
}

func TestRunYearIsDeterministicAcrossIdenticalWorlds(t *testing.T) {
	ctxA := testContext(t)
	wA, err := NewWorld(ctxA)
	require.NoError(t, err)

	ctxB := testContext(t)
	wB, err := NewWorld(ctxB)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		RunYear(ctxA, wA, 1)
		RunYear(ctxB, wB, 1)
	}

	require.Equal(t, WorldPopulation(wA), WorldPopulation(wB))
	require.Equal(t, TotalTerritoryCells(wA), TotalTerritoryCells(wB))
	require.Equal(t, TotalGDP(wA), TotalGDP(wB))
}

func TestRunStopsAtEndYearAndRunsCheckpoints(t *testing.T) {
	ctx := testContext(t)
	w, err := NewWorld(ctx)
	require.NoError(t, err)

	var checkpoints int
	err = Run(ctx, w, nil, 25, func(*World) error {
		checkpoints++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, ctx.Config.EndYear, w.Year)
	require.Equal(t, 4, checkpoints)
}

func TestRunRespectsCancellationAtYearBoundary(t *testing.T) {
	ctx := testContext(t)
	w, err := NewWorld(ctx)
	require.NoError(t, err)

	cancel := make(chan struct{})
	close(cancel)

	err = Run(ctx, w, cancel, 25, nil)
	require.NoError(t, err)
	require.Equal(t, ctx.Config.StartYear, w.Year)
}
