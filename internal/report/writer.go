package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{
	"year", "worldPopulation", "urbanShare", "medianCountryPop", "medianCountryArea",
	"warFrequencyPerCentury", "tradeIntensity",
	"capabilityTier1Share", "capabilityTier2Share", "capabilityTier3Share",
	"collapseCount", "foodSecurityMean", "foodSecurityP10",
	"diseaseBurdenMean", "diseaseBurdenP90",
}

// CSVWriter appends Rows to a timeseries.csv file, writing the header once
// on the first row.
type CSVWriter struct {
	f    *os.File
	w    *csv.Writer
	rows int
}

// NewCSVWriter creates (or truncates) path and returns a writer ready to
// append checkpoint rows to it.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create timeseries: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write timeseries header: %w", err)
	}
	return &CSVWriter{f: f, w: w}, nil
}

// Write appends one checkpoint row.
func (cw *CSVWriter) Write(r Row) error {
	record := []string{
		strconv.Itoa(r.Year),
		formatFloat(r.WorldPopulation),
		formatFloat(r.UrbanShare),
		formatFloat(r.MedianCountryPop),
		formatFloat(r.MedianCountryArea),
		formatFloat(r.WarFrequencyPerCentury),
		formatFloat(r.TradeIntensity),
		formatFloat(r.CapabilityTier1Share),
		formatFloat(r.CapabilityTier2Share),
		formatFloat(r.CapabilityTier3Share),
		strconv.Itoa(r.CollapseCount),
		formatFloat(r.FoodSecurityMean),
		formatFloat(r.FoodSecurityP10),
		formatFloat(r.DiseaseBurdenMean),
		formatFloat(r.DiseaseBurdenP90),
	}
	if err := cw.w.Write(record); err != nil {
		return fmt.Errorf("write timeseries row (year %d): %w", r.Year, err)
	}
	cw.rows++
	return nil
}

// Close flushes buffered rows and closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		cw.f.Close()
		return err
	}
	return cw.f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RunSummary is the full run_summary.json document: the run's provenance
// and its complete checkpoint series.
type RunSummary struct {
	Seed      uint64 `json:"seed"`
	StartYear int    `json:"startYear"`
	EndYear   int    `json:"endYear"`
	FinalYear int    `json:"finalYear"`
	Rows      []Row  `json:"checkpoints"`
}

// WriteSummaryJSON writes summary to path as indented JSON.
func WriteSummaryJSON(path string, summary RunSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create run summary: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	return nil
}
