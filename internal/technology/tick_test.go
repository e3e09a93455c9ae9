package technology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/country"
)

func testTechConfig() config.Technology {
	return config.Default().Technology
}

func richSignals() Signals {
	return Signals{
		Population: 100000, UrbanPopulation: 20000, Specialization: 0.5,
		InstitutionCapacity: 0.8, Stability: 0.7, Legitimacy: 0.7,
		MarketAccess: 0.6, ConnectivityIndex: 0.6, EducationInvestment: 0.8,
		RnDInvestment: 0.8, ClimateFoodMult: 1.0, FarmingPotential: 1.0,
		ForagingPotential: 1.0, OreAvail: 1.0, EnergyAvail: 1.0,
		ConstructionAvail: 1.0, HasCoastAccess: true, HasRiverland: true,
	}
}

func TestTickInnovationGrowsKnowledge(t *testing.T) {
	c := country.NewCountry(0, "C", -5000, country.TypeTrader)
	TickCountry(c, richSignals(), testTechConfig(), 1, -5000, 1)
	require.Greater(t, c.Knowledge[DomainAdministration], 0.0)
}

func TestTickDiscoveryRequiresPrerequisites(t *testing.T) {
	c := country.NewCountry(0, "C", -5000, country.TypeTrader)
	c.Knowledge[DomainAdministration] = 1.0

	for year := -5000; year < -4000; year++ {
		TickCountry(c, richSignals(), testTechConfig(), 1, year, 1)
	}

	_, hasWriting := c.KnownTech[TechWriting]
	require.True(t, hasWriting)
	_, hasProto := c.KnownTech[TechProtoWriting]
	require.True(t, hasProto)
}

func TestTickDiscoveryDeterministic(t *testing.T) {
	run := func() map[int]int {
		c := country.NewCountry(0, "C", -5000, country.TypeTrader)
		c.Knowledge[DomainAdministration] = 1.0
		for year := -5000; year < -4900; year++ {
			TickCountry(c, richSignals(), testTechConfig(), 7, year, 1)
		}
		return c.KnownTech
	}
	require.Equal(t, run(), run())
}

// TestCapabilityThresholdScaleDelaysDiscovery isolates tickDiscovery's
// threshold gate from tickInnovation's knowledge growth and from
// multi-tech prerequisite chains: TechProtoWriting has none, so the only
// variable between runs is CapabilityThresholdScale. Knowledge is held
// fixed at 1.0 across every call, so a scale that pushes the effective
// threshold above 1.0 must block discovery in every one of these trials,
// not just on average.
func TestCapabilityThresholdScaleDelaysDiscovery(t *testing.T) {
	run := func(scale float64) bool {
		cfg := testTechConfig()
		cfg.CapabilityThresholdScale = scale
		c := country.NewCountry(0, "C", -5000, country.TypeTrader)
		c.Knowledge[DomainAdministration] = 1.0
		for year := -5000; year < -4800; year++ {
			tickDiscovery(c, richSignals(), cfg, 1, year)
		}
		_, hasProto := c.KnownTech[TechProtoWriting]
		return hasProto
	}

	require.True(t, run(1.0))
	require.False(t, run(50.0), "a much larger capability threshold scale must gate discovery")
}

func TestTickAdoptionGrowsTowardOne(t *testing.T) {
	c := country.NewCountry(0, "C", -5000, country.TypeTrader)
	c.KnownTech[TechWriting] = -5000
	c.AdoptionLevel[TechWriting] = 0.5

	for i := 0; i < 50; i++ {
		tickAdoption(c, richSignals(), testTechConfig(), 1)
	}
	require.Greater(t, c.AdoptionLevel[TechWriting], 0.5)
	require.LessOrEqual(t, c.AdoptionLevel[TechWriting], 1.0)
}

func TestComputeEffectsOnlyCountsAdoptedTech(t *testing.T) {
	c := country.NewCountry(0, "C", -5000, country.TypeTrader)
	c.KnownTech[TechWriting] = -5000
	c.AdoptionLevel[TechWriting] = 0.1

	e := ComputeEffects(c)
	require.Zero(t, e.ResearchMult)

	c.AdoptionLevel[TechWriting] = 0.9
	e = ComputeEffects(c)
	require.Greater(t, e.ResearchMult, 0.0)
}

func TestTickDiffusionConservesTotalKnowledge(t *testing.T) {
	a := country.NewCountry(0, "A", -5000, country.TypeTrader)
	b := country.NewCountry(1, "B", -5000, country.TypeTrader)
	a.Knowledge[DomainScience] = 1.0
	b.Knowledge[DomainScience] = 0.0

	countries := map[int]*country.Country{0: a, 1: b}
	before := a.Knowledge[DomainScience] + b.Knowledge[DomainScience]

	TickDiffusion(countries, testTechConfig(), func(int, int) float64 { return 0.8 }, func(int, int) bool { return true }, 1)

	after := a.Knowledge[DomainScience] + b.Knowledge[DomainScience]
	require.InDelta(t, before, after, 1e-9)
	require.Less(t, a.Knowledge[DomainScience], 1.0)
	require.Greater(t, b.Knowledge[DomainScience], 0.0)
}
