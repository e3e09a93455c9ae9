package worldmap

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/worldkernel/internal/config"
)

// GenerateLayers procedurally derives a LoadedLayers raster when no base map
// image is configured, using layered simplex noise for elevation/rainfall/
// temperature and steepest-descent river tracing. This mirrors the teacher's
// world-generation approach (octave noise -> terrain thresholds -> coastal
// pass -> river trace), re-expressed over a row-major rectangular grid
// instead of a hex field.
func GenerateLayers(width, height int, seed int64, cfg config.Document) *LoadedLayers {
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	layers := &LoadedLayers{
		Width:       width,
		Height:      height,
		Land:        make([]bool, width*height),
		Resource:    make([]ResourceKind, width*height),
		HasResource: make([]bool, width*height),
		Coal:        make([]bool, width*height),
		Copper:      make([]bool, width*height),
		Tin:         make([]bool, width*height),
		Riverland:   make([]bool, width*height),
		SpawnZones:  make([]bool, width*height),
	}

	elevation := make([]float64, width*height)
	const seaLevel = 0.32

	cx, cy := float64(width)/2, float64(height)/2
	maxDist := math.Sqrt(cx*cx + cy*cy)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			fx, fy := float64(x), float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.015, 0.5)
			rain := octaveNoise(rainNoise, fx, fy, 3, 0.012, 0.5)

			dist := math.Sqrt((fx-cx)*(fx-cx)+(fy-cy)*(fy-cy)) / maxDist
			edgeFalloff := 1.0 - math.Pow(dist, 3.5)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			elevation[idx] = elev
			isLand := elev >= seaLevel
			layers.Land[idx] = isLand

			if isLand {
				oreRoll := octaveNoise(tempNoise, fx+1000, fy+1000, 2, 0.03, 0.5)
				layers.Coal[idx] = oreRoll > 0.72
				layers.Copper[idx] = rain > 0.55 && oreRoll > 0.5 && oreRoll <= 0.72
				layers.Tin[idx] = oreRoll > 0.35 && oreRoll <= 0.5 && elev > 0.55

				if rain > 0.65 {
					layers.HasResource[idx] = true
					layers.Resource[idx] = ResourceFood
				} else if oreRoll > 0.8 {
					layers.HasResource[idx] = true
					layers.Resource[idx] = ResourceIron
				}
			}
		}
	}

	markRiverlandByDescent(layers, elevation, seed)

	return layers
}

// octaveNoise layers multiple noise frequencies into a single fractal
// value, as the teacher's generation.go does for its hex terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

// markRiverlandByDescent traces a handful of rivers from high-elevation
// land cells down to the coast via steepest descent, marking each visited
// cell as riverland — the rectangular-grid analog of the teacher's
// traceRiver/placeRivers pair.
func markRiverlandByDescent(layers *LoadedLayers, elevation []float64, seed int64) {
	w, h := layers.Width, layers.Height

	var sources []int
	for idx, land := range layers.Land {
		if land && elevation[idx] > 0.6 {
			sources = append(sources, idx)
		}
	}
	if len(sources) == 0 {
		return
	}

	numRivers := len(sources) / 40
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > 24 {
		numRivers = 24
	}

	// Deterministic selection: stride through the sources list rather than
	// shuffling, so the river count and placement depend only on the
	// elevation field (already seeded).
	stride := max(len(sources)/numRivers, 1)
	for i := 0; i < len(sources) && numRivers > 0; i += stride {
		traceRiver(layers, elevation, sources[i], w, h)
		numRivers--
	}
}

func traceRiver(layers *LoadedLayers, elevation []float64, start, w, h int) {
	visited := make(map[int]bool)
	current := start
	const maxSteps = 200

	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		if !layers.Land[current] {
			break
		}
		layers.Riverland[current] = true

		x, y := current%w, current/w
		bestIdx := -1
		bestElev := elevation[current]
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if visited[nidx] {
				continue
			}
			if elevation[nidx] < bestElev {
				bestElev = elevation[nidx]
				bestIdx = nidx
			}
		}
		if bestIdx < 0 {
			break
		}
		current = bestIdx
	}
}
