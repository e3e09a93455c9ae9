package country

import "github.com/talgya/worldkernel/internal/determinism"

// GreatPersonField is the domain a great person's transient bonus applies
// to, carried from original_source/great_people.cpp's two-field model.
type GreatPersonField int

const (
	FieldMilitary GreatPersonField = iota
	FieldScience
)

// Effects holds the transient scalar bonuses a great person grants their
// country for the duration of the effect (§3's supplemented feature, tick
// step 7). Only MilitaryMult is read by the engine, as the multiplier on
// military strength; ResearchMult and ExpansionBonus are computed but no
// research or expansion formula reads them.
type Effects struct {
	ResearchMult   float64
	MilitaryMult   float64
	ExpansionBonus float64
}

// activeEffect is one live great-person bonus.
type activeEffect struct {
	countryIndex int
	field        GreatPersonField
	multiplier   float64
	expiryYear   int
}

// Manager tracks active great-person effects and the deterministic
// schedule of future events, replacing original_source's
// std::random_device-seeded GreatPeopleManager with hashed-noise draws.
type Manager struct {
	worldSeed   uint64
	active      []activeEffect
	nextEventYear int
}

// NewManager builds a Manager whose first event falls 100-499 years after
// startYear, drawn deterministically from worldSeed.
func NewManager(worldSeed uint64, startYear int) *Manager {
	m := &Manager{worldSeed: worldSeed}
	m.nextEventYear = startYear + drawEventInterval(worldSeed, startYear, 0)
	return m
}

func drawEventInterval(worldSeed uint64, year, salt int) int {
	u := determinism.HashedUnitN(worldSeed, determinism.SaltGreatPerson, year, salt)
	return 100 + int(u*400)
}

// UpdateEffects removes expired effects and, once currentYear reaches the
// scheduled event year, selects floor(5% of countryCount) countries
// (the first entries of a deterministic shuffle) to each receive a new
// great-person effect.
func (m *Manager) UpdateEffects(currentYear, countryCount int) {
	kept := m.active[:0]
	for _, e := range m.active {
		if currentYear < e.expiryYear {
			kept = append(kept, e)
		}
	}
	m.active = kept

	if currentYear < m.nextEventYear {
		return
	}

	numGreatPeople := countryCount * 5 / 100
	if numGreatPeople > 0 {
		order := deterministicShuffleIndices(m.worldSeed, currentYear, countryCount)
		for i := 0; i < numGreatPeople; i++ {
			countryIndex := order[i]
			fieldU := determinism.HashedUnitN(m.worldSeed, determinism.SaltGreatPerson, currentYear, countryIndex, 1)
			field := FieldMilitary
			if fieldU >= 0.5 {
				field = FieldScience
			}
			multU := determinism.HashedUnitN(m.worldSeed, determinism.SaltGreatPerson, currentYear, countryIndex, 2)
			multiplier := 1.25 + multU*0.75 // [1.25, 2.0]
			durU := determinism.HashedUnitN(m.worldSeed, determinism.SaltGreatPerson, currentYear, countryIndex, 3)
			duration := 30 + int(durU*10) // [30, 39]

			m.active = append(m.active, activeEffect{
				countryIndex: countryIndex,
				field:        field,
				multiplier:   multiplier,
				expiryYear:   currentYear + duration,
			})
		}
	}

	m.nextEventYear = currentYear + drawEventInterval(m.worldSeed, currentYear, 0)
}

// EffectsFor aggregates every active effect targeting countryIndex into a
// single Effects bundle (multiple concurrent great people stack
// multiplicatively on research/military, additively on expansion).
func (m *Manager) EffectsFor(countryIndex int) Effects {
	e := Effects{ResearchMult: 1, MilitaryMult: 1, ExpansionBonus: 0}
	for _, eff := range m.active {
		if eff.countryIndex != countryIndex {
			continue
		}
		switch eff.field {
		case FieldScience:
			e.ResearchMult *= eff.multiplier
			e.ExpansionBonus += 0.05
		case FieldMilitary:
			e.MilitaryMult *= eff.multiplier
			e.ExpansionBonus += 0.10
		}
	}
	return e
}

// deterministicShuffleIndices produces a canonical permutation of
// [0, countryCount) via a Fisher-Yates shuffle driven by hashed noise,
// replacing original_source's std::mt19937 shuffle with a reproducible
// equivalent.
func deterministicShuffleIndices(worldSeed uint64, year, countryCount int) []int {
	idx := make([]int, countryCount)
	for i := range idx {
		idx[i] = i
	}
	for i := countryCount - 1; i > 0; i-- {
		u := determinism.HashedUnitN(worldSeed, determinism.SaltGreatPerson, year, i, 9)
		j := int(u * float64(i+1))
		if j > i {
			j = i
		}
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}
