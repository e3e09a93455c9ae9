// Package climate derives the kernel's baseline climate layer and its
// periodic weather anomaly field (spec.md §4.3). Baseline climate is
// computed once at world init from the field grid's land fraction; weather
// anomalies are recomputed every two simulated years from deterministic
// hashed noise and upsampled nearest-neighbor onto the field grid.
package climate

import (
	"math"

	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// Biome is the piecewise land-cover classification derived from
// (temperature, precipitation, coastal proximity).
type Biome int

const (
	BiomeIce Biome = iota
	BiomeTundra
	BiomeTaiga
	BiomeTemperateForest
	BiomeGrassland
	BiomeDesert
	BiomeSavanna
	BiomeTropicalForest
	BiomeMediterranean
)

// Zone is the coarse latitudinal precipitation band used to derive the
// baseline precipitation field.
type Zone int

const (
	ZoneEquatorial Zone = iota
	ZoneSubtropicalDry
	ZoneMidWet
	ZonePolarDry
)

// Baseline holds the once-computed climate fields over the field grid:
// coastal proximity, rain-shadow advection, mean temperature/precipitation,
// biome, and climate zone. It is immutable after NewBaseline returns
// (spec.md §5: "read-mostly structures ... are immutable after init").
type Baseline struct {
	Width, Height int

	CoastalProximity []float64 // 1 at the coast, decaying inland
	Advection        []float64 // longitudinal rain-shadow factor in [0, 1]
	TempMean         []float64 // degrees Celsius
	PrecipMean       []float64 // [0, 1]
	Biome            []Biome
	Zone             []Zone
}

// NewBaseline derives the baseline climate from a FieldGrid's land fraction
// layer via a coastal-distance BFS, a latitude temperature curve, and a
// zone/advection-modulated precipitation band sum.
func NewBaseline(fg *worldmap.FieldGrid) *Baseline {
	w, h := fg.Width, fg.Height
	n := w * h

	b := &Baseline{
		Width:            w,
		Height:           h,
		CoastalProximity: make([]float64, n),
		Advection:        make([]float64, n),
		TempMean:         make([]float64, n),
		PrecipMean:       make([]float64, n),
		Biome:            make([]Biome, n),
		Zone:             make([]Zone, n),
	}

	dist := coastalDistanceBFS(fg)
	maxDist := 1.0
	for _, d := range dist {
		if d > maxDist {
			maxDist = d
		}
	}

	for fy := 0; fy < h; fy++ {
		latFrac := math.Abs(float64(fy)/float64(max(h-1, 1))-0.5) * 2 // 0 equator, 1 poles
		for fx := 0; fx < w; fx++ {
			idx := fy*w + fx
			if fg.LandFraction[idx] < 0.5 {
				// Ocean blocks carry a nominal sea-surface baseline; no
				// country ever aggregates a food-yield multiplier over them.
				b.CoastalProximity[idx] = 1.0
				b.TempMean[idx] = 15.0 - 25.0*latFrac
				b.PrecipMean[idx] = 0.6
				continue
			}

			coastProx := 1.0 - determinism.Clamp01(dist[idx]/maxDist)
			b.CoastalProximity[idx] = coastProx

			// Rain-shadow advection: prevailing westerlies lose moisture
			// moving east across a landmass, so advection decays with
			// distance from the west coast of the same latitude band.
			westDist := westwardDistance(fg, fx, fy)
			advection := determinism.Clamp01(1.0 - westDist/float64(max(w, 1)))
			b.Advection[idx] = advection

			temp := 30.0 - 55.0*latFrac + coastProx*4.0
			b.TempMean[idx] = temp

			zone := classifyZone(latFrac)
			b.Zone[idx] = zone
			b.PrecipMean[idx] = zonePrecipitation(zone, advection, coastProx)

			b.Biome[idx] = classifyBiome(temp, b.PrecipMean[idx], coastProx)
		}
	}

	return b
}

// biomeMoveCostMultiplier is the biome base-cost term §4.4 step 2's
// move-cost formula names: open grassland and mediterranean land are
// cheapest to cross, ice and desert the most punishing, scaled on top of
// the land/ocean term FieldGrid already carries.
func biomeMoveCostMultiplier(b Biome) float64 {
	switch b {
	case BiomeGrassland:
		return 1.0
	case BiomeMediterranean:
		return 1.05
	case BiomeSavanna:
		return 1.1
	case BiomeTemperateForest:
		return 1.15
	case BiomeTaiga:
		return 1.3
	case BiomeTropicalForest:
		return 1.4
	case BiomeTundra:
		return 1.5
	case BiomeDesert:
		return 1.6
	case BiomeIce:
		return 2.2
	default:
		return 1.0
	}
}

// ApplyBiomeMoveCost folds each field cell's biome base cost into
// fg.BaseMoveCost/MoveCost, once b has classified every cell. It must run
// after NewFieldGrid (which seeds BaseMoveCost from land/ocean fraction
// alone) and before the first control-reach pass.
func ApplyBiomeMoveCost(fg *worldmap.FieldGrid, b *Baseline) {
	for idx := range fg.BaseMoveCost {
		fg.BaseMoveCost[idx] *= biomeMoveCostMultiplier(b.Biome[idx])
		fg.MoveCost[idx] = fg.BaseMoveCost[idx] * fg.InfraDiscount[idx]
	}
}

// coastalDistanceBFS computes, for every land field cell, the graph
// distance (in field cells) to the nearest ocean-majority field cell.
func coastalDistanceBFS(fg *worldmap.FieldGrid) []float64 {
	w, h := fg.Width, fg.Height
	n := w * h
	dist := make([]float64, n)
	visited := make([]bool, n)
	queue := make([]int, 0, n)

	for idx, frac := range fg.LandFraction {
		if frac < 0.5 {
			visited[idx] = true
			dist[idx] = 0
			queue = append(queue, idx)
		} else {
			dist[idx] = -1
		}
	}

	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]
		cx, cy := cur%w, cur/w
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if visited[nidx] {
				continue
			}
			visited[nidx] = true
			dist[nidx] = dist[cur] + 1
			queue = append(queue, nidx)
		}
	}

	for idx, d := range dist {
		if d < 0 {
			dist[idx] = float64(w + h) // unreached interior, treat as far
		}
	}
	return dist
}

// westwardDistance returns the number of land field cells between (fx, fy)
// and the nearest ocean cell to its west at the same row, used as the
// rain-shadow advection proxy.
func westwardDistance(fg *worldmap.FieldGrid, fx, fy int) float64 {
	for x := fx; x >= 0; x-- {
		if fg.LandFraction[fy*fg.Width+x] < 0.5 {
			return float64(fx - x)
		}
	}
	return float64(fx + 1)
}

func classifyZone(latFrac float64) Zone {
	switch {
	case latFrac < 0.2:
		return ZoneEquatorial
	case latFrac < 0.45:
		return ZoneSubtropicalDry
	case latFrac < 0.75:
		return ZoneMidWet
	default:
		return ZonePolarDry
	}
}

func zonePrecipitation(zone Zone, advection, coastProx float64) float64 {
	var base float64
	switch zone {
	case ZoneEquatorial:
		base = 0.85
	case ZoneSubtropicalDry:
		base = 0.25
	case ZoneMidWet:
		base = 0.6
	case ZonePolarDry:
		base = 0.2
	}
	return determinism.Clamp01(base*(0.4+0.6*advection) + coastProx*0.15)
}

func classifyBiome(temp, precip, coastProx float64) Biome {
	switch {
	case temp < -5:
		return BiomeIce
	case temp < 2:
		return BiomeTundra
	case temp < 5:
		return BiomeTaiga
	case precip < 0.2 && temp > 18:
		return BiomeDesert
	case precip < 0.35 && temp > 10:
		return BiomeSavanna
	case precip > 0.7 && temp > 22:
		return BiomeTropicalForest
	case precip > 0.5 && temp >= 5 && temp <= 22:
		return BiomeTemperateForest
	case precip < 0.45 && coastProx > 0.4 && temp > 12 && temp < 24:
		return BiomeMediterranean
	default:
		return BiomeGrassland
	}
}
