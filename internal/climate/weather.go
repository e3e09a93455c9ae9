package climate

import (
	"math"

	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// anomalyDownsample is the coarse weather grid's downsample factor relative
// to the field grid, per §4.3 ("≈field_W/8 × field_H/8").
const anomalyDownsample = 8

// tickIntervalYears is how often the weather anomaly grid advances.
const tickIntervalYears = 2

// ar1Persistence is the AR(1) autoregressive coefficient applied to each
// anomaly cell between ticks.
const ar1Persistence = 0.7

// AnomalyGrid is the coarse (temperature anomaly, precipitation anomaly)
// grid updated every tickIntervalYears simulated years via AR(1) with
// deterministic hashed noise.
type AnomalyGrid struct {
	Width, Height int
	TempAnomaly   []float64
	PrecipAnomaly []float64
}

// NewAnomalyGrid allocates a zero-valued anomaly grid sized to cover the
// given field grid dimensions at anomalyDownsample.
func NewAnomalyGrid(fieldWidth, fieldHeight int) *AnomalyGrid {
	w := max((fieldWidth+anomalyDownsample-1)/anomalyDownsample, 1)
	h := max((fieldHeight+anomalyDownsample-1)/anomalyDownsample, 1)
	return &AnomalyGrid{
		Width:         w,
		Height:        h,
		TempAnomaly:   make([]float64, w*h),
		PrecipAnomaly: make([]float64, w*h),
	}
}

// Tick advances the AR(1) anomaly process for the given simulated year, but
// only on years divisible by tickIntervalYears (the grid otherwise holds
// its prior value, matching the "updated every 2 simulated years" contract).
func (a *AnomalyGrid) Tick(worldSeed uint64, year int) {
	if ((year % tickIntervalYears) + tickIntervalYears) % tickIntervalYears != 0 {
		return
	}
	for cell := range a.TempAnomaly {
		tu := determinism.HashedUnit(worldSeed, year, cell, determinism.SaltWeatherTemp)
		pu := determinism.HashedUnit(worldSeed, year, cell, determinism.SaltWeatherPrec)

		// Map u01 to a zero-mean shock, then apply the AR(1) recurrence.
		tShock := (tu - 0.5) * 6.0  // +/- 3 degC shock scale
		pShock := (pu - 0.5) * 0.5  // +/- 0.25 precip-fraction shock scale

		a.TempAnomaly[cell] = ar1Persistence*a.TempAnomaly[cell] + tShock
		a.PrecipAnomaly[cell] = determinism.Clamp(ar1Persistence*a.PrecipAnomaly[cell]+pShock, -0.6, 0.6)
	}
}

// anomalyAt upsamples the coarse anomaly grid to a field-grid coordinate via
// nearest-neighbor lookup, per §4.3.
func (a *AnomalyGrid) anomalyAt(fx, fy, fieldWidth, fieldHeight int) (tempAnom, precipAnom float64) {
	ax := fx * a.Width / max(fieldWidth, 1)
	ay := fy * a.Height / max(fieldHeight, 1)
	ax = min(max(ax, 0), a.Width-1)
	ay = min(max(ay, 0), a.Height-1)
	idx := ay*a.Width + ax
	return a.TempAnomaly[idx], a.PrecipAnomaly[idx]
}

// tempResponse is the piecewise food-yield response to realized temperature:
// peaking in a temperate band, falling off toward frost and toward heat
// stress.
func tempResponse(tempC float64) float64 {
	optimal := 18.0
	spread := 14.0
	d := (tempC - optimal) / spread
	return math.Exp(-0.5 * d * d)
}

// precipResponse is the food-yield response to realized precipitation: a
// logistic ramp that saturates once a moisture floor is met, then gently
// declines past waterlogging.
func precipResponse(precip float64) float64 {
	ramp := determinism.Sigmoid((precip - 0.25) * 10)
	waterlog := 1.0
	if precip > 0.85 {
		waterlog = 1.0 - (precip-0.85)*0.8
	}
	return determinism.Clamp01(ramp) * determinism.Clamp(waterlog, 0.4, 1.0)
}

// biomeBaseYield is the per-biome ceiling multiplier feeding the final
// food-yield product.
func biomeBaseYield(b Biome) float64 {
	switch b {
	case BiomeIce:
		return 0.05
	case BiomeTundra:
		return 0.25
	case BiomeTaiga:
		return 0.55
	case BiomeTemperateForest:
		return 1.1
	case BiomeGrassland:
		return 1.3
	case BiomeDesert:
		return 0.15
	case BiomeSavanna:
		return 0.8
	case BiomeTropicalForest:
		return 1.0
	case BiomeMediterranean:
		return 1.2
	default:
		return 1.0
	}
}

// ApplyFoodYield recomputes every field cell's FoodYieldMultiplier from the
// baseline climate, the current anomaly grid, and the piecewise tempo/precip
// responses, clamped to [0.05, 1.80] per §4.3.
func ApplyFoodYield(fg *worldmap.FieldGrid, baseline *Baseline, anomaly *AnomalyGrid) {
	for idx := 0; idx < len(fg.FoodYieldMultiplier); idx++ {
		fx, fy := idx%fg.Width, idx/fg.Width
		tempAnom, precipAnom := anomaly.anomalyAt(fx, fy, fg.Width, fg.Height)

		tMean := baseline.TempMean[idx]
		pMean := baseline.PrecipMean[idx]

		realizedTemp := tMean + tempAnom
		realizedPrecip := determinism.Clamp01(pMean + precipAnom)

		mult := biomeBaseYield(baseline.Biome[idx]) * tempResponse(realizedTemp) * precipResponse(realizedPrecip)
		fg.FoodYieldMultiplier[idx] = determinism.Clamp(mult, 0.05, 1.80)
	}
}

// CountryFoodMultiplier computes the food-potential-weighted average
// food-yield multiplier over every field cell majority-owned by owner,
// per §4.3's per-country aggregation.
func CountryFoodMultiplier(fg *worldmap.FieldGrid, owner int) float64 {
	var weighted, total float64
	for idx, o := range fg.OwnerID {
		if int(o) != owner {
			continue
		}
		w := fg.FoodPotential[idx]
		weighted += w * fg.FoodYieldMultiplier[idx]
		total += w
	}
	if total <= 0 {
		return 1.0
	}
	return weighted / total
}
