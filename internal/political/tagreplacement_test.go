package political

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/worldkernel/internal/country"
)

func TestTickTagReplacementRenamesStrugglingCountry(t *testing.T) {
	c := country.NewCountry(1, "Old", 0, country.TypeWarmonger)
	c.Polity.Legitimacy = 0.05
	c.AtWar = false

	changed := TickTagReplacement(c, 0.2, 4, 10)
	require.True(t, changed)
	require.Equal(t, country.IdeologyRepublic, c.Ideology)
	require.InDelta(t, tagReplacementLegitimacyReset, c.Polity.Legitimacy, 1e-9)
	require.Equal(t, tagReplacementCooldownYears, c.FragmentationCooldown)
}

func TestTickTagReplacementChoosesKingdomForFewCities(t *testing.T) {
	c := country.NewCountry(1, "Old", 0, country.TypeWarmonger)
	c.Polity.Legitimacy = 0.05

	TickTagReplacement(c, 0.2, 1, 10)
	require.Equal(t, country.IdeologyKingdom, c.Ideology)
}

func TestTickTagReplacementSkipsWhenAtWar(t *testing.T) {
	c := country.NewCountry(1, "Old", 0, country.TypeWarmonger)
	c.Polity.Legitimacy = 0.05
	c.AtWar = true

	changed := TickTagReplacement(c, 0.2, 4, 10)
	require.False(t, changed)
}

func TestTickTagReplacementSkipsWhenStable(t *testing.T) {
	c := country.NewCountry(1, "Old", 0, country.TypeWarmonger)
	c.Polity.Legitimacy = 0.9

	changed := TickTagReplacement(c, 0.9, 4, 10)
	require.False(t, changed)
}

func TestTickTagReplacementOffCadenceYearNoOp(t *testing.T) {
	c := country.NewCountry(1, "Old", 0, country.TypeWarmonger)
	c.Polity.Legitimacy = 0.05

	changed := TickTagReplacement(c, 0.2, 4, 11)
	require.False(t, changed)
}
