package culture

import (
	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/determinism"
	"github.com/talgya/worldkernel/internal/technology"
)

// Civic mirrors original_source/include/culture.h's Civic struct: an
// institution with civic/tech prerequisites, scalar unlock gates, and a
// one-time bundle of polity bonuses applied exactly once on unlock.
type Civic struct {
	ID             int
	Name           string
	RequiredCivics []int
	RequiredTechs  []int

	MinUrbanization  float64
	MinAdminCapacity float64
	MinAvgControl    float64

	StabilityBonus  float64
	LegitimacyBonus float64
	AdminCapBonus   float64
	FiscalCapBonus  float64
	LogisticsBonus  float64
}

const (
	CivicChiefdomCouncil = 1
	CivicWrittenLaw      = 2
	CivicStandingBureaucracy = 3
	CivicCoinedTreasury  = 4
	CivicPublicWorks     = 5
	CivicUniversityCharter = 6
)

// Civics is the fixed institution catalog, keyed by civic ID.
var Civics = map[int]Civic{
	CivicChiefdomCouncil: {
		ID: CivicChiefdomCouncil, Name: "Chiefdom Council",
		MinAdminCapacity: 0.10,
		StabilityBonus:   0.03, AdminCapBonus: 0.02,
	},
	CivicWrittenLaw: {
		ID: CivicWrittenLaw, Name: "Written Law",
		RequiredCivics: []int{CivicChiefdomCouncil}, RequiredTechs: []int{technology.TechWriting},
		MinAdminCapacity: 0.25, MinAvgControl: 0.35,
		LegitimacyBonus: 0.05, AdminCapBonus: 0.05,
	},
	CivicStandingBureaucracy: {
		ID: CivicStandingBureaucracy, Name: "Standing Bureaucracy",
		RequiredCivics: []int{CivicWrittenLaw}, RequiredTechs: []int{technology.TechCivilService},
		MinAdminCapacity: 0.45, MinUrbanization: 0.10,
		AdminCapBonus: 0.08, FiscalCapBonus: 0.05,
	},
	CivicCoinedTreasury: {
		ID: CivicCoinedTreasury, Name: "Coined Treasury",
		RequiredTechs: []int{technology.TechCurrency}, MinUrbanization: 0.08,
		FiscalCapBonus: 0.08,
	},
	CivicPublicWorks: {
		ID: CivicPublicWorks, Name: "Public Works",
		RequiredTechs: []int{technology.TechConstruction}, MinAdminCapacity: 0.30,
		LogisticsBonus: 0.10, StabilityBonus: 0.02,
	},
	CivicUniversityCharter: {
		ID: CivicUniversityCharter, Name: "University Charter",
		RequiredCivics: []int{CivicStandingBureaucracy}, RequiredTechs: []int{technology.TechUniversities},
		MinUrbanization: 0.15, MinAdminCapacity: 0.55,
		LegitimacyBonus: 0.06, AdminCapBonus: 0.05,
	},
}

// CanUnlock reports whether c meets every one of civic's prerequisites and
// scalar gates, and has not already unlocked it.
func CanUnlock(c *country.Country, civic Civic, avgControl float64) bool {
	if _, already := c.UnlockedCivics[civic.ID]; already {
		return false
	}
	for _, req := range civic.RequiredCivics {
		if _, ok := c.UnlockedCivics[req]; !ok {
			return false
		}
	}
	for _, req := range civic.RequiredTechs {
		if _, ok := c.KnownTech[req]; !ok {
			return false
		}
	}
	urbanization := determinism.SafeDiv(c.UrbanPopulation, c.Population())
	if urbanization < civic.MinUrbanization {
		return false
	}
	if c.Polity.AdminCapacity < civic.MinAdminCapacity {
		return false
	}
	if avgControl < civic.MinAvgControl {
		return false
	}
	return true
}

// Unlock applies civic's bonuses exactly once and records the unlock year.
// Bonuses are additive and permanent; no institution is ever revoked
// (§4.9's closing sentence).
func Unlock(c *country.Country, civic Civic, year int) {
	c.UnlockedCivics[civic.ID] = year
	c.Polity.Stability = determinism.Clamp01(c.Polity.Stability + civic.StabilityBonus)
	c.Polity.Legitimacy = determinism.Clamp01(c.Polity.Legitimacy + civic.LegitimacyBonus)
	c.Polity.AdminCapacity += civic.AdminCapBonus
	c.Polity.FiscalCapacity += civic.FiscalCapBonus
	c.Polity.LogisticsReach += civic.LogisticsBonus
}

// TickInstitutions scans the full catalog for any civic c can newly unlock
// this tick, in ascending ID order for determinism, and unlocks every one
// that qualifies.
func TickInstitutions(c *country.Country, avgControl float64, year int) {
	ids := make([]int, 0, len(Civics))
	for id := range Civics {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	for _, id := range ids {
		civic := Civics[id]
		if CanUnlock(c, civic, avgControl) {
			Unlock(c, civic, year)
		}
	}
}
