package worldmap

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"
	"os"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/kernelerr"
)

// LandColor is the exact RGB land pixel value named in spec.md §6.
var LandColor = color.RGBA{R: 0, G: 58, B: 0, A: 255}

// ResourceKind is a resource type in the resource layer image;
// resourcePalette maps exact palette colors to kinds, per §6.
type ResourceKind int

const (
	ResourceFood ResourceKind = iota
	ResourceHorses
	ResourceSalt
	ResourceIron
	ResourceCoal
	ResourceGold
)

var resourcePalette = map[color.RGBA]ResourceKind{
	{R: 0, G: 200, B: 0, A: 255}:   ResourceFood,
	{R: 200, G: 150, B: 80, A: 255}: ResourceHorses,
	{R: 255, G: 255, B: 255, A: 255}: ResourceSalt,
	{R: 180, G: 90, B: 40, A: 255}: ResourceIron,
	{R: 40, G: 40, B: 40, A: 255}:  ResourceCoal,
	{R: 255, G: 215, B: 0, A: 255}: ResourceGold,
}

// LoadedLayers holds the decoded raw per-pixel layer data prior to resource
// derivation.
type LoadedLayers struct {
	Width, Height int
	Land          []bool
	Resource      []ResourceKind
	HasResource   []bool
	Coal          []bool
	Copper        []bool
	Tin           []bool
	Riverland     []bool
	SpawnZones    []bool
}

// LoadLayers decodes the base map and every auxiliary layer named in a
// config.Document, enforcing the exact-pixel-size match required by §6.
// Every layer beyond the base map is optional; a missing path yields an
// all-false layer.
func LoadLayers(cfg config.Document) (*LoadedLayers, error) {
	base, err := decodeImage(cfg.BaseMapPath)
	if err != nil {
		return nil, kernelerr.NewConfigError("base_map_path", err)
	}
	w, h := base.Bounds().Dx(), base.Bounds().Dy()

	layers := &LoadedLayers{
		Width:       w,
		Height:      h,
		Land:        make([]bool, w*h),
		Resource:    make([]ResourceKind, w*h),
		HasResource: make([]bool, w*h),
		Coal:        make([]bool, w*h),
		Copper:      make([]bool, w*h),
		Tin:         make([]bool, w*h),
		Riverland:   make([]bool, w*h),
		SpawnZones:  make([]bool, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := base.At(base.Bounds().Min.X+x, base.Bounds().Min.Y+y).RGBA()
			px := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
			layers.Land[y*w+x] = px == LandColor
		}
	}

	if err := loadOptionalResource(cfg.ResourceLayerPath, w, h, layers); err != nil {
		return nil, err
	}
	if err := loadOptionalPresence(cfg.CoalLayerPath, w, h, layers.Coal); err != nil {
		return nil, err
	}
	if err := loadOptionalPresence(cfg.CopperLayerPath, w, h, layers.Copper); err != nil {
		return nil, err
	}
	if err := loadOptionalPresence(cfg.TinLayerPath, w, h, layers.Tin); err != nil {
		return nil, err
	}
	if err := loadOptionalPresence(cfg.RiverlandLayerPath, w, h, layers.Riverland); err != nil {
		return nil, err
	}
	if err := loadOptionalPresence(cfg.SpawnZonesPath, w, h, layers.SpawnZones); err != nil {
		return nil, err
	}

	return layers, nil
}

func decodeImage(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("no path given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func checkSize(layer string, img image.Image, w, h int) error {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw != w || ih != h {
		return &kernelerr.AssetSizeError{Layer: layer, Width: iw, Height: ih, ExpectWidth: w, ExpectHeight: h}
	}
	return nil
}

func loadOptionalResource(path string, w, h int, out *LoadedLayers) error {
	if path == "" {
		return nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return kernelerr.NewConfigError(path, err)
	}
	if err := checkSize("resource", img, w, h); err != nil {
		return err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
			px := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
			if kind, ok := resourcePalette[px]; ok {
				out.Resource[y*w+x] = kind
				out.HasResource[y*w+x] = true
			}
		}
	}
	return nil
}

// presenceTolerance is the small per-channel color tolerance used for
// presence-flag layers (coal/copper/tin), per §6 ("matched by small color
// tolerance").
const presenceTolerance = 24

func loadOptionalPresence(path string, w, h int, out []bool) error {
	if path == "" {
		return nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return kernelerr.NewConfigError(path, err)
	}
	if err := checkSize("presence-layer", img, w, h); err != nil {
		return err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
			// Present unless the pixel is near-black (background/absence).
			if int(r>>8) > presenceTolerance || int(g>>8) > presenceTolerance || int(b>>8) > presenceTolerance {
				out[y*w+x] = true
			}
		}
	}
	return nil
}

// DeriveResourcePotentials builds the static per-cell potentials from the
// decoded layers using the latitude-, humidity-, and coastal-adjacency-
// weighted formula named in §4.2, and fills a fresh Grid's potential slices.
func DeriveResourcePotentials(g *Grid, layers *LoadedLayers, cfg config.Document) {
	w, h := layers.Width, layers.Height
	copy(g.Land, layers.Land)
	copy(g.Riverland, layers.Riverland)

	coastal := coastalAdjacency(layers)

	for y := 0; y < h; y++ {
		lat := math.Abs(float64(y)/float64(h)-0.5) * 2 // 0 at equator, 1 at poles
		humidity := 1.0 - lat*0.6
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !layers.Land[idx] {
				continue
			}

			coastBoost := 1.0
			if coastal[idx] {
				coastBoost += cfg.Food.CoastalBonus
			}

			foraging := cfg.Food.BaseForaging * humidity * coastBoost
			farming := cfg.Food.BaseFarming * (1 - lat*0.5) * coastBoost
			if layers.Riverland[idx] {
				farming += cfg.Food.RiverlandFoodFloor
			}
			if !layers.HasResource[idx] {
				// no-op: food potential still derives from foraging/farming.
			} else if layers.Resource[idx] == ResourceFood {
				farming *= 1.25
			}

			food := foraging + farming

			iron := 0.0
			if layers.HasResource[idx] && layers.Resource[idx] == ResourceIron {
				iron = 1.0
			}
			ore := cfg.ResourceWeights.OreWeightIron*iron +
				cfg.ResourceWeights.OreWeightCopper*b2f(layers.Copper[idx]) +
				cfg.ResourceWeights.OreWeightTin*b2f(layers.Tin[idx])

			coal := 0.0
			if layers.Coal[idx] {
				coal = 1.0
			}
			energy := cfg.ResourceWeights.EnergyWeightCoal*coal +
				cfg.ResourceWeights.EnergyWeightBio*humidity

			clay := cfg.Food.ClayMin + (cfg.Food.ClayMax-cfg.Food.ClayMin)*humidity
			if layers.Riverland[idx] {
				clay *= 1.3
			}
			construction := clay

			nonFood := (ore + energy + construction) * cfg.ResourceWeights.NonFoodNormalizer

			g.FoodPotential[idx] = food
			g.ForagingPotential[idx] = foraging
			g.FarmingPotential[idx] = farming
			g.OrePotential[idx] = ore
			g.EnergyPotential[idx] = energy
			g.ConstructionPotential[idx] = construction
			g.NonFoodPotential[idx] = nonFood
		}
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// coastalAdjacency flags every land cell with at least one ocean 4-neighbor.
func coastalAdjacency(layers *LoadedLayers) []bool {
	w, h := layers.Width, layers.Height
	out := make([]bool, w*h)
	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !layers.Land[idx] {
				continue
			}
			for _, d := range dirs {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if !layers.Land[ny*w+nx] {
					out[idx] = true
					break
				}
			}
		}
	}
	return out
}
