package country

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGreatPeopleEffectsExpire(t *testing.T) {
	m := NewManager(42, -5000)
	m.active = []activeEffect{{countryIndex: 3, field: FieldScience, multiplier: 1.5, expiryYear: -4990}}

	m.nextEventYear = 1_000_000 // suppress new events for this check
	m.UpdateEffects(-4985, 10)

	require.Equal(t, Effects{ResearchMult: 1, MilitaryMult: 1, ExpansionBonus: 0}, m.EffectsFor(3))
}

func TestGreatPeopleEffectsStackMultiplicatively(t *testing.T) {
	m := NewManager(42, -5000)
	m.active = []activeEffect{
		{countryIndex: 1, field: FieldScience, multiplier: 1.5, expiryYear: 100},
		{countryIndex: 1, field: FieldScience, multiplier: 2.0, expiryYear: 100},
	}
	eff := m.EffectsFor(1)
	require.InDelta(t, 3.0, eff.ResearchMult, 1e-9)
}

func TestGreatPeopleDeterministic(t *testing.T) {
	m1 := NewManager(7, -5000)
	m1.nextEventYear = -5000
	m1.UpdateEffects(-5000, 40)

	m2 := NewManager(7, -5000)
	m2.nextEventYear = -5000
	m2.UpdateEffects(-5000, 40)

	require.Equal(t, m1.active, m2.active)
}
