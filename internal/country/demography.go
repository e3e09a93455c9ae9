package country

import (
	"math"

	"github.com/talgya/worldkernel/internal/config"
	"github.com/talgya/worldkernel/internal/determinism"
)

// baseFamineRefugeeRate, baseEpidemicRefugeeRate, and baseWarRefugeeRate
// are updateRefugeePush's per-shock base rates; config.Migration's
// shock threshold/multiplier fields amplify them once the corresponding
// severity crosses its threshold.
const (
	baseFamineRefugeeRate   = 0.15
	baseEpidemicRefugeeRate = 0.12
	baseWarRefugeeRate      = 0.20
)

// cohortFoodRequirement is req_k from §4.6, per cohort per year fraction.
var cohortFoodRequirement = Cohorts{0.00085, 0.00100, 0.00120, 0.00110, 0.00095}

// cohortBaseDeathRate is baseDeath_k, annual.
var cohortBaseDeathRate = Cohorts{0.030, 0.006, 0.008, 0.014, 0.045}

// cohortFamineDeathAdd is famineAdd_k, annual.
var cohortFamineDeathAdd = Cohorts{0.06, 0.03, 0.03, 0.04, 0.08}

// cohortEpidemicAgeWeight distributes direct epidemic deaths by age (§4.6).
var cohortEpidemicAgeWeight = Cohorts{1.8, 0.9, 1.0, 1.4, 2.2}

// cohortAgingYears is the mean residency time in years before transitioning
// to the next cohort (5, 10, 35, 15 — the elder cohort has no further
// transition).
var cohortAgingYears = [NumCohorts - 1]float64{5, 10, 35, 15}

// DemographyInputs bundles the per-tick signals demography needs from
// macro economy and climate, computed by their owning packages.
type DemographyInputs struct {
	LastFoodOutput   float64
	ImportsValue     float64
	PriceFood        float64
	HumanityProxy    float64 // urban-share/humidity proxy feeding SIR beta
	HealthSpending   float64
	ImportedInfection float64 // trade-weighted mean of neighbor infection fractions
	BorderShare       float64
	War              bool
	Migration        config.Migration // shock thresholds/multipliers, §9's Open Question resolution
}

// TickDemography runs §4.6's per-country demography and SIR epidemiology
// for dtYears, subdividing into max(1, dtYears) equal substeps.
func TickDemography(c *Country, worldSeed uint64, year, dtYears int, in DemographyInputs) {
	substeps := dtYears
	if substeps < 1 {
		substeps = 1
	}
	subDt := float64(dtYears) / float64(substeps)
	if dtYears <= 0 {
		subDt = 1
	}

	var totalBirths, totalDeathsBase, totalDeathsFamine, totalDeathsEpi float64
	var lastNutrition float64 = 1.0

	for step := 0; step < substeps; step++ {
		nutrition, famine := tickFoodLedger(c, in, subDt)
		lastNutrition = nutrition

		beta, gamma, mu, waning := sirRates(c, in)
		tickSIR(c, worldSeed, year, step, beta, gamma, mu, waning, in)

		births := tickBirths(c, nutrition, in, subDt)
		deathsBase, deathsFamine, deathsEpi := tickDeaths(c, famine, subDt)

		tickAging(c, subDt, births)

		totalBirths += births
		totalDeathsBase += deathsBase
		totalDeathsFamine += deathsFamine
		totalDeathsEpi += deathsEpi
	}

	c.Economy.LastBirths = totalBirths
	c.Economy.LastDeathsBase = totalDeathsBase
	c.Economy.LastDeathsFamine = totalDeathsFamine
	c.Economy.LastDeathsEpi = totalDeathsEpi
	c.Economy.LastAvgNutrition = lastNutrition
	c.Economy.FamineSeverity = determinism.Clamp01(1 - lastNutrition)
	c.Economy.FoodSecurity = determinism.Clamp01(lastNutrition)
	c.Economy.DiseaseBurden = determinism.Clamp01(c.SIR.Infected * 3.0)

	updateRefugeePush(c, dtYears, in)
	driftStabilityAndLegitimacy(c)
}

// tickFoodLedger runs one substep's food ledger and returns (nutrition,
// famine) in [0, 1], per §4.6.
func tickFoodLedger(c *Country, in DemographyInputs, subDt float64) (nutrition, famine float64) {
	var required float64
	for k, pop := range c.Cohorts {
		required += pop * cohortFoodRequirement[k] * subDt
	}

	production := in.LastFoodOutput * subDt
	imports := determinism.SafeDiv(in.ImportsValue, in.PriceFood) * subDt

	spoilage := c.Economy.FoodStock * (1 - math.Pow(1-c.Economy.SpoilageRate, subDt))
	c.Economy.FoodStock = math.Max(0, c.Economy.FoodStock-spoilage)

	available := production + imports
	residualNeed := math.Max(0, required-available)
	drawFromStock := math.Min(residualNeed, c.Economy.FoodStock)
	c.Economy.FoodStock -= drawFromStock
	available += drawFromStock

	excess := math.Max(0, available-required)
	c.Economy.FoodStock = math.Min(c.Economy.FoodStockCap, c.Economy.FoodStock+excess)
	if c.Economy.FoodStock < 0 {
		c.Economy.FoodStock = 0
	}

	nutrition = determinism.Clamp01(determinism.SafeDiv(available, required))
	famine = 1 - nutrition
	return nutrition, famine
}

// sirRates derives beta/gamma/mu/waning as deterministic functions of urban
// share, humidity proxy, institution capacity, health spending, and
// connectivity, per §4.6.
func sirRates(c *Country, in DemographyInputs) (beta, gamma, mu, waning float64) {
	urbanShare := determinism.Clamp01(determinism.SafeDiv(c.UrbanPopulation, math.Max(c.Population(), 1)))
	beta = 0.25 + 0.35*urbanShare + 0.15*in.HumanityProxy - 0.20*c.Economy.InstitutionCapacity
	beta = determinism.Clamp(beta, 0.02, 0.9)

	gamma = 0.10 + 0.25*in.HealthSpending + 0.10*c.Economy.ConnectivityIndex
	gamma = determinism.Clamp(gamma, 0.05, 0.6)

	mu = 0.01 + 0.04*(1-in.HealthSpending)
	mu = determinism.Clamp(mu, 0.002, 0.15)

	waning = 0.02 + 0.03*(1-c.Economy.InstitutionCapacity)
	waning = determinism.Clamp(waning, 0.005, 0.2)
	return
}

// tickSIR advances the SIR compartments one substep with external import
// seeding, clips all flows to available mass, and renormalizes.
func tickSIR(c *Country, worldSeed uint64, year, step int, beta, gamma, mu, waning float64, in DemographyInputs) {
	s, i, r := c.SIR.Susceptible, c.SIR.Infected, c.SIR.Recovered

	importSeed := determinism.Clamp01(in.ImportedInfection + 0.15*in.BorderShare)
	noise := determinism.HashedUnitN(worldSeed, determinism.SaltCityStreak, c.Index, year, step)

	newInfections := math.Min(s, beta*s*i+importSeed*s*0.05*noise)
	recoveries := math.Min(i, gamma*i)
	infectionDeaths := math.Min(i-recoveries, mu*i)
	waned := math.Min(r, waning*r)

	s = s - newInfections + waned
	i = i + newInfections - recoveries - infectionDeaths
	r = r + recoveries - waned

	c.SIR = SIR{Susceptible: math.Max(0, s), Infected: math.Max(0, i), Recovered: math.Max(0, r)}
	c.SIR.Normalize()
}

// tickBirths applies §4.6's fertility formula and returns the birth count.
func tickBirths(c *Country, nutrition float64, in DemographyInputs, subDt float64) float64 {
	nutritionMult := determinism.Clamp(0.4+0.6*nutrition, 0.2, 1.2)
	wageMult := determinism.Clamp(0.7+0.5*c.Economy.RealWage, 0.5, 1.3)
	warMult := 1.0
	if in.War {
		warMult = 0.88
	}
	fertility := 0.20 * nutritionMult * wageMult * (1 - 0.5*c.SIR.Infected) * warMult
	births := c.Cohorts[2] * 0.5 * fertility * subDt
	if births < 0 {
		births = 0
	}
	return births
}

// tickDeaths applies §4.6's per-cohort death formula and returns the
// (base, famine, epidemic) death totals. diseaseMult_k is age-weighted per
// cohortEpidemicAgeWeight, so infection mortality falls hardest on the
// youngest and oldest cohorts.
func tickDeaths(c *Country, famine, subDt float64) (base, famineDeaths, epi float64) {
	for k := range c.Cohorts {
		pop := c.Cohorts[k]

		baseRate := cohortBaseDeathRate[k] * subDt
		famineRate := famine * cohortFamineDeathAdd[k] * subDt
		diseaseMultK := 1.0 + c.SIR.Infected*2.5*cohortEpidemicAgeWeight[k]
		epiAmp := (diseaseMultK - 1) * (baseRate + famineRate)

		totalRate := baseRate + famineRate + epiAmp
		deaths := math.Min(pop, pop*totalRate)
		c.Cohorts[k] = math.Max(0, pop-deaths)

		base += pop * baseRate
		famineDeaths += pop * famineRate
		epi += pop * epiAmp
	}

	return base, famineDeaths, epi
}

// tickAging applies §4.6's 5-stage aging transitions and enters births into
// cohort 0.
func tickAging(c *Country, subDt float64, births float64) {
	var outflow Cohorts
	for k := 0; k < NumCohorts-1; k++ {
		frac := math.Min(0.95, subDt/cohortAgingYears[k])
		outflow[k] = c.Cohorts[k] * frac
	}

	for k := 0; k < NumCohorts-1; k++ {
		c.Cohorts[k] -= outflow[k]
		c.Cohorts[k+1] += outflow[k]
	}
	c.Cohorts[0] += births
}

// updateRefugeePush applies half-life decay plus shock deltas from famine,
// epidemic, and war thresholds (§4.6). Every threshold, multiplier, and
// the half-life itself come from in.Migration (§9's Open Question
// resolution): setting refugeeHalfLifeYears=1 must make RefugeePush decay
// with a literal one-year half-life.
func updateRefugeePush(c *Country, dtYears int, in DemographyInputs) {
	mig := in.Migration
	decay := math.Pow(0.5, float64(dtYears)/mig.RefugeeHalfLifeYears)
	push := c.Economy.RefugeePush * decay

	famineTerm := baseFamineRefugeeRate * c.Economy.FamineSeverity
	if c.Economy.FamineSeverity > mig.FamineShockThreshold {
		famineTerm *= mig.FamineShockMultiplier
	}
	push += famineTerm

	epidemicTerm := baseEpidemicRefugeeRate * c.Economy.DiseaseBurden
	if c.Economy.DiseaseBurden > mig.EpidemicShockThreshold {
		epidemicTerm *= mig.EpidemicShockMultiplier
	}
	push += epidemicTerm

	if in.War {
		warTerm := baseWarRefugeeRate
		if c.WarExhaustion > mig.WarShockThreshold {
			warTerm *= mig.WarShockMultiplier
		}
		push += warTerm
	}

	c.Economy.RefugeePush = determinism.Clamp01(push)
}

// driftStabilityAndLegitimacy applies small stability/legitimacy drift
// proportional to shortage and disease, recording the breakdown in
// PolityDebug for observability only (§3's supplemented-features note).
func driftStabilityAndLegitimacy(c *Country) {
	dbg := &c.Economy.Debug
	dbg.StabilityBeforeUpdate = c.Polity.Stability
	dbg.LegitimacyBeforeUpdate = c.Polity.Legitimacy

	stabilityDeltaFamine := -0.04 * c.Economy.FamineSeverity
	stabilityDeltaDisease := -0.03 * c.Economy.DiseaseBurden
	c.Polity.Stability = determinism.Clamp01(c.Polity.Stability + stabilityDeltaFamine + stabilityDeltaDisease)

	legitimacyDeltaEconomy := -0.02*c.Economy.FamineSeverity - 0.015*c.Economy.DiseaseBurden
	c.Polity.Legitimacy = determinism.Clamp01(c.Polity.Legitimacy + legitimacyDeltaEconomy)

	dbg.StabilityDeltaFamine = stabilityDeltaFamine
	dbg.StabilityDeltaDisease = stabilityDeltaDisease
	dbg.StabilityAfterUpdate = c.Polity.Stability
	dbg.LegitimacyDeltaEconomy = legitimacyDeltaEconomy
	dbg.LegitimacyAfterUpdate = c.Polity.Legitimacy
}
