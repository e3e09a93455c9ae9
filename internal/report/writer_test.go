package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVWriterRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeseries.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(Row{Year: -4800, WorldPopulation: 1200}))
	require.NoError(t, w.Write(Row{Year: -4750, WorldPopulation: 1500}))
	require.NoError(t, w.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "year,worldPopulation")
	require.Contains(t, string(contents), "-4800,1200")
}

func TestWriteSummaryJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_summary.json")

	summary := RunSummary{
		Seed:      42,
		StartYear: -5000,
		EndYear:   2000,
		FinalYear: 2000,
		Rows:      []Row{{Year: -5000, WorldPopulation: 400}},
	}
	require.NoError(t, WriteSummaryJSON(path, summary))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"seed": 42`)
	require.Contains(t, string(contents), `"worldPopulation": 400`)
}
