// Package config loads the kernel's TOML configuration document (spec.md
// §6). Every numeric knob the kernel reaches for at runtime — food
// coefficients, migration shock thresholds, technology gate thresholds —
// lives here instead of scattered literals, so a run's behavior is fully
// reproducible from (seed, config) alone.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/talgya/worldkernel/internal/kernelerr"
)

// Food holds the coastal/foraging/farming/riverland/clay coefficients used
// to derive static resource potentials (§4.2).
type Food struct {
	CoastalBonus       float64 `toml:"coastal_bonus"`
	BaseForaging       float64 `toml:"base_foraging"`
	BaseFarming        float64 `toml:"base_farming"`
	RiverlandFoodFloor float64 `toml:"riverland_food_floor"`
	ClayMin            float64 `toml:"clay_min"`
	ClayMax            float64 `toml:"clay_max"`
	ClayHotspotChance  float64 `toml:"clay_hotspot_chance"`
}

// ResourceWeights holds the ore-composite weighting and normalization.
type ResourceWeights struct {
	OreWeightIron     float64 `toml:"ore_weight_iron"`
	OreWeightCopper   float64 `toml:"ore_weight_copper"`
	OreWeightTin      float64 `toml:"ore_weight_tin"`
	EnergyWeightCoal  float64 `toml:"energy_weight_coal"`
	EnergyWeightBio   float64 `toml:"energy_weight_biomass"`
	NonFoodNormalizer float64 `toml:"non_food_normalizer"`
}

// Migration holds short/long-hop migration constants and refugee-shock
// parameters. Per spec §9's Open Question resolution, every shock threshold
// and multiplier is config-driven; Load fails if any required key below is
// absent rather than silently defaulting.
type Migration struct {
	RefugeeHalfLifeYears  float64 `toml:"refugee_half_life_years"`
	FamineShockThreshold  float64 `toml:"famine_shock_threshold"`
	FamineShockMultiplier float64 `toml:"famine_shock_multiplier"`
	EpidemicShockThreshold  float64 `toml:"epidemic_shock_threshold"`
	EpidemicShockMultiplier float64 `toml:"epidemic_shock_multiplier"`
	WarShockThreshold     float64 `toml:"war_shock_threshold"`
	WarShockMultiplier    float64 `toml:"war_shock_multiplier"`
	CulturalPreference    float64 `toml:"cultural_preference"`
	CorridorBonus         float64 `toml:"corridor_bonus"`
	MigRate               float64 `toml:"mig_rate"`
	CrowdingWeight        float64 `toml:"crowding_weight"`
}

// Technology holds discovery/adoption/diffusion thresholds.
type Technology struct {
	CapabilityThresholdScale  float64 `toml:"capability_threshold_scale"`
	CulturalFrictionStrength  float64 `toml:"cultural_friction_strength"`
	AdoptionThreshold         float64 `toml:"adoption_threshold"`
	DiffusionEta              float64 `toml:"diffusion_eta"`
	DiffusionNeighborBonus    float64 `toml:"diffusion_neighbor_bonus"`
	LowAdoptionDecayYears     int     `toml:"low_adoption_decay_years"`
}

// Economy holds economy-wide flags and coefficients.
type Economy struct {
	UseGPU            bool    `toml:"use_gpu"`
	InterestRate      float64 `toml:"interest_rate"`
	DebtServiceCeiling float64 `toml:"debt_service_ceiling"`
	LeakageRate       float64 `toml:"leakage_rate"`
}

// Expansion holds the country-agent's territorial growth, war, and
// infrastructure-building cadence/cost knobs (spec.md section 4.11),
// carried from original_source/include/country.h's m_burstExpansion*,
// m_warBurstConquest*, m_nextRoadCheckYear-style fields.
type Expansion struct {
	CarryingCapacityPerFood   float64 `toml:"carrying_capacity_per_food"`
	BaseExpansionBudget       float64 `toml:"base_expansion_budget"`
	MaxSizeMultiplier         float64 `toml:"max_size_multiplier"`
	BurstExpansionFrequency   int     `toml:"burst_expansion_frequency"`
	BurstExpansionRadius      int     `toml:"burst_expansion_radius"`
	WarCheckIntervalYears     int     `toml:"war_check_interval_years"`
	WarCheckCooldownYears     int     `toml:"war_check_cooldown_years"`
	WarBurstConquestFrequency int     `toml:"war_burst_conquest_frequency"`
	WarBurstConquestRadius    int     `toml:"war_burst_conquest_radius"`
	WarExhaustionPerYear      float64 `toml:"war_exhaustion_per_year"`
	WarSupplyDecayPerYear     float64 `toml:"war_supply_decay_per_year"`
	WarBaseDurationYears      int     `toml:"war_base_duration_years"`
	RoadCheckIntervalYears    int     `toml:"road_check_interval_years"`
	RoadMinCellDistance       float64 `toml:"road_min_cell_distance"`
	PortCheckIntervalYears    int     `toml:"port_check_interval_years"`
	AirwayCheckIntervalYears  int     `toml:"airway_check_interval_years"`
	AirwayMinCityPopulation   float64 `toml:"airway_min_city_population"`
}

// Document is the full decoded configuration.
type Document struct {
	StartYear             int             `toml:"start_year"`
	EndYear               int             `toml:"end_year"`
	BaseMapPath           string          `toml:"base_map_path"`
	ResourceLayerPath     string          `toml:"resource_layer_path"`
	CoalLayerPath         string          `toml:"coal_layer_path"`
	CopperLayerPath       string          `toml:"copper_layer_path"`
	TinLayerPath          string          `toml:"tin_layer_path"`
	RiverlandLayerPath    string          `toml:"riverland_layer_path"`
	SpawnZonesPath        string          `toml:"spawn_zones_path"`
	NumCountries          int             `toml:"num_countries"`
	MaxCountries          int             `toml:"max_countries"`
	FieldDownsample       int             `toml:"field_downsample"`
	Food                  Food            `toml:"food"`
	ResourceWeights       ResourceWeights `toml:"resource_weights"`
	Migration             Migration      `toml:"migration"`
	Technology             Technology     `toml:"technology"`
	Economy                Economy        `toml:"economy"`
	Expansion               Expansion      `toml:"expansion"`

	// Hash is recorded alongside the seed once a config is loaded, per §6.
	Hash uint64 `toml:"-"`
}

// requiredMigrationKeys lists the shock keys that must be present in the
// TOML document; see the Migration doc comment.
var requiredMigrationKeys = []string{
	"refugee_half_life_years",
	"famine_shock_threshold", "famine_shock_multiplier",
	"epidemic_shock_threshold", "epidemic_shock_multiplier",
	"war_shock_threshold", "war_shock_multiplier",
}

// Default returns a fully populated configuration with reasonable defaults
// for every field, mirroring the teacher's DefaultGenConfig pattern: a
// complete, runnable zero-state that Load then overrides from file.
func Default() Document {
	return Document{
		StartYear:       -5000,
		EndYear:         2000,
		NumCountries:    64,
		MaxCountries:    512,
		FieldDownsample: 6,
		Food: Food{
			CoastalBonus:       0.18,
			BaseForaging:       12,
			BaseFarming:        28,
			RiverlandFoodFloor: 14,
			ClayMin:            0.05,
			ClayMax:            0.35,
			ClayHotspotChance:  0.04,
		},
		ResourceWeights: ResourceWeights{
			OreWeightIron:     0.5,
			OreWeightCopper:   0.3,
			OreWeightTin:      0.2,
			EnergyWeightCoal:  0.65,
			EnergyWeightBio:   0.35,
			NonFoodNormalizer: 1.0,
		},
		Migration: Migration{
			RefugeeHalfLifeYears:    6,
			FamineShockThreshold:    0.35,
			FamineShockMultiplier:   2.2,
			EpidemicShockThreshold:  0.20,
			EpidemicShockMultiplier: 1.6,
			WarShockThreshold:       0.5,
			WarShockMultiplier:      1.8,
			CulturalPreference:      0.4,
			CorridorBonus:           0.25,
			MigRate:                 0.12,
			CrowdingWeight:          1.20,
		},
		Technology: Technology{
			CapabilityThresholdScale: 1.0,
			CulturalFrictionStrength: 0.8,
			AdoptionThreshold:        0.65,
			DiffusionEta:             0.05,
			DiffusionNeighborBonus:   0.15,
			LowAdoptionDecayYears:    40,
		},
		Economy: Economy{
			UseGPU:             false,
			InterestRate:       0.045,
			DebtServiceCeiling: 0.35,
			LeakageRate:        0.15,
		},
		Expansion: Expansion{
			CarryingCapacityPerFood:   1200,
			BaseExpansionBudget:       4,
			MaxSizeMultiplier:         1.0,
			BurstExpansionFrequency:   25,
			BurstExpansionRadius:      3,
			WarCheckIntervalYears:     5,
			WarCheckCooldownYears:     15,
			WarBurstConquestFrequency: 10,
			WarBurstConquestRadius:    2,
			WarExhaustionPerYear:      0.08,
			WarSupplyDecayPerYear:     0.05,
			WarBaseDurationYears:      12,
			RoadCheckIntervalYears:    10,
			RoadMinCellDistance:       6,
			PortCheckIntervalYears:    10,
			AirwayCheckIntervalYears:  25,
			AirwayMinCityPopulation:   50000,
		},
	}
}

// Load reads and decodes a TOML config file over the defaults, validates
// the required migration keys are present, and stamps a content hash.
func Load(path string) (Document, error) {
	doc := Default()
	if path == "" {
		return doc, kernelerr.NewConfigError("path", fmt.Errorf("no config path given"))
	}

	raw := map[string]any{}
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return doc, kernelerr.NewConfigError(path, err)
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return doc, kernelerr.NewConfigError(path, err)
	}

	migTable, _ := raw["migration"].(map[string]any)
	for _, key := range requiredMigrationKeys {
		if _, ok := migTable[key]; !ok {
			return doc, kernelerr.NewConfigError("migration."+key,
				fmt.Errorf("required shock threshold/multiplier missing from config"))
		}
	}

	doc.Hash = hashDocument(meta.Keys(), raw)
	return doc, nil
}

// hashDocument derives a stable content hash over the decoded keys so it can
// be recorded alongside the seed without re-reading the file.
func hashDocument(keys []toml.Key, raw map[string]any) uint64 {
	var h uint64 = 0xcbf29ce484222325
	const prime = 0x100000001b3
	walk := func(s string) {
		for i := 0; i < len(s); i++ {
			h ^= uint64(s[i])
			h *= prime
		}
	}
	for _, k := range keys {
		walk(k.String())
	}
	walk(fmt.Sprintf("%v", raw))
	return h
}
