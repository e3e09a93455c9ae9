package political

import (
	"strings"

	"github.com/talgya/worldkernel/internal/country"
)

// tagReplacementCheckIntervalYears, controlThreshold, and
// legitimacyThreshold gate spec.md section 4.10's tag-replacement event.
const (
	tagReplacementCheckIntervalYears = 10
	tagReplacementControlThreshold   = 0.55
	tagReplacementLegitimacyThreshold = 0.18
	tagReplacementLegitimacyReset     = 0.45
	tagReplacementStabilityBump       = 0.10
	tagReplacementCooldownYears       = 20
)

// TickTagReplacement implements spec.md section 4.10's tag-replacement
// event: a struggling, non-warring country is renamed ("Kingdom of X" or
// "Republic of X", replacing any earlier such prefix) and reassigned the
// matching ideology (Republic at three or more cities, else Kingdom), with
// legitimacy reset and a stability bump.
func TickTagReplacement(c *country.Country, control float64, cityCount, year int) bool {
	if year%tagReplacementCheckIntervalYears != 0 {
		return false
	}
	if c.AtWar || control >= tagReplacementControlThreshold || c.Polity.Legitimacy >= tagReplacementLegitimacyThreshold {
		return false
	}

	base := strings.TrimPrefix(strings.TrimPrefix(c.Name, "Kingdom of "), "Republic of ")
	if cityCount >= 3 {
		c.Ideology = country.IdeologyRepublic
		c.Name = "Republic of " + base
	} else {
		c.Ideology = country.IdeologyKingdom
		c.Name = "Kingdom of " + base
	}
	c.Polity.Legitimacy = tagReplacementLegitimacyReset
	c.Polity.Stability += tagReplacementStabilityBump
	if c.Polity.Stability > 1 {
		c.Polity.Stability = 1
	}
	c.FragmentationCooldown = tagReplacementCooldownYears
	return true
}
