// Package report computes the per-checkpoint summary row spec.md section 6
// requires and writes it out as timeseries.csv and run_summary.json.
package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/talgya/worldkernel/internal/engine"
)

// Tier boundaries on a country's average knowledge stock (§4.8's
// KnowledgeStockAvg), used to bucket countries into capability tiers for
// capabilityTier{1,2,3}Share. Tier 1 is pre-industrial, tier 3 is the
// highest knowledge band the kernel currently models; thresholds were
// picked so a freshly-spawned country starts in tier 1 and a country that
// has saturated every domain reaches tier 3.
const (
	capabilityTier2Threshold = 0.35
	capabilityTier3Threshold = 0.75
)

// Row is one checkpoint's worth of the aggregate series spec.md section 6
// names. Field names match timeseries.csv's header and run_summary.json's
// per-checkpoint array entries.
type Row struct {
	Year                   int     `json:"year"`
	WorldPopulation        float64 `json:"worldPopulation"`
	UrbanShare             float64 `json:"urbanShare"`
	MedianCountryPop       float64 `json:"medianCountryPop"`
	MedianCountryArea      float64 `json:"medianCountryArea"`
	WarFrequencyPerCentury float64 `json:"warFrequencyPerCentury"`
	TradeIntensity         float64 `json:"tradeIntensity"`
	CapabilityTier1Share   float64 `json:"capabilityTier1Share"`
	CapabilityTier2Share   float64 `json:"capabilityTier2Share"`
	CapabilityTier3Share   float64 `json:"capabilityTier3Share"`
	CollapseCount          int     `json:"collapseCount"`
	FoodSecurityMean       float64 `json:"foodSecurityMean"`
	FoodSecurityP10        float64 `json:"foodSecurityP10"`
	DiseaseBurdenMean      float64 `json:"diseaseBurdenMean"`
	DiseaseBurdenP90       float64 `json:"diseaseBurdenP90"`
}

type countrySample struct {
	pop, area, food, disease, knowledge float64
}

// BuildRow computes one checkpoint row from w's current state. It never
// mutates w.
func BuildRow(w *engine.World) Row {
	var samples []countrySample
	var worldPop, urbanPop float64

	for i, c := range w.Countries {
		if !c.Alive {
			continue
		}
		pop := c.Population()
		worldPop += pop
		urbanPop += c.UrbanPopulation
		samples = append(samples, countrySample{
			pop:       pop,
			area:      float64(len(w.Grid.OwnerCells(i))),
			food:      c.Economy.FoodSecurity,
			disease:   c.Economy.DiseaseBurden,
			knowledge: c.Economy.KnowledgeStockAvg,
		})
	}

	row := Row{
		Year:                   w.Year,
		WorldPopulation:        worldPop,
		UrbanShare:             safeDiv(urbanPop, worldPop),
		CollapseCount:          w.CollapseCount,
		WarFrequencyPerCentury: float64(len(w.WarStartYears)),
		TradeIntensity:         meanTradeIntensity(w),
	}

	if len(samples) == 0 {
		return row
	}

	pops := make([]float64, len(samples))
	areas := make([]float64, len(samples))
	foods := make([]float64, len(samples))
	diseases := make([]float64, len(samples))
	var tier1, tier2, tier3 int
	for i, s := range samples {
		pops[i], areas[i], foods[i], diseases[i] = s.pop, s.area, s.food, s.disease
		switch {
		case s.knowledge >= capabilityTier3Threshold:
			tier3++
		case s.knowledge >= capabilityTier2Threshold:
			tier2++
		default:
			tier1++
		}
	}

	row.MedianCountryPop = medianOf(pops)
	row.MedianCountryArea = medianOf(areas)
	row.FoodSecurityMean = stat.Mean(foods, nil)
	row.FoodSecurityP10 = quantileOf(foods, 0.10)
	row.DiseaseBurdenMean = stat.Mean(diseases, nil)
	row.DiseaseBurdenP90 = quantileOf(diseases, 0.90)

	n := float64(len(samples))
	row.CapabilityTier1Share = float64(tier1) / n
	row.CapabilityTier2Share = float64(tier2) / n
	row.CapabilityTier3Share = float64(tier3) / n

	return row
}

// meanTradeIntensity averages TradeMatrix connectivity over every
// border-contact country pair, the one statistic spec.md section 6 names
// that reads off the trade matrix rather than per-country state.
func meanTradeIntensity(w *engine.World) float64 {
	var sum float64
	var n int
	for i, c := range w.Countries {
		if !c.Alive {
			continue
		}
		for _, j := range w.Grid.AdjacentCountries(i) {
			if j <= i {
				continue
			}
			other, ok := w.Countries[j]
			if !ok || !other.Alive {
				continue
			}
			v, ok := w.TradeMatrix.Connectivity(i, j)
			if !ok {
				continue
			}
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// medianOf returns the middle value of a sorted copy of xs (even-length
// slices average the two central values).
func medianOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// quantileOf returns the empirical p-quantile of xs via gonum/stat, which
// requires its input pre-sorted ascending.
func quantileOf(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
