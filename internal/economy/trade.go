package economy

import (
	"math"

	"github.com/talgya/worldkernel/internal/country"
	"github.com/talgya/worldkernel/internal/worldmap"
)

// Matrix is the dense country-pair trade intensity matrix spec.md section
// 4.7 names as "the sole output relied on by demography (migration) and
// epidemics (infection imports)". Indexing matches country index, not
// slice position, so a sparse country population still indexes correctly.
type Matrix struct {
	size   int
	values []float64
}

// NewMatrix allocates a size x size intensity matrix, all entries zero.
func NewMatrix(size int) *Matrix {
	return &Matrix{size: size, values: make([]float64, size*size)}
}

// Connectivity implements population.ConnectivityIndex.
func (m *Matrix) Connectivity(a, b int) (float64, bool) {
	if a < 0 || b < 0 || a >= m.size || b >= m.size {
		return 0, false
	}
	v := m.at(a, b)
	return v, v > 0
}

func (m *Matrix) at(a, b int) float64 { return m.values[a*m.size+b] }

func (m *Matrix) set(a, b int, v float64) {
	m.values[a*m.size+b] = v
	m.values[b*m.size+a] = v
}

// portWeight and shippingWeight scale a pair's raw connectivity when one
// or both countries hold the relevant infrastructure (§4.7: "neighbor
// sets, ports, shipping routes, and relative price differentials").
const (
	portWeight       = 0.25
	shippingWeight   = 0.20
	priceGapDamping  = 1.5
)

// Rebuild recomputes the full dense trade intensity matrix from the
// current grid adjacency, per-country port counts, and relative price
// differentials, per spec.md section 4.7.
func Rebuild(g *worldmap.Grid, countries map[int]*country.Country) *Matrix {
	size := g.MaxCountries()
	m := NewMatrix(size)

	for i, ci := range countries {
		if !ci.Alive {
			continue
		}
		for _, j := range g.AdjacentCountries(i) {
			if j <= i {
				continue
			}
			cj, ok := countries[j]
			if !ok || !cj.Alive {
				continue
			}
			m.set(i, j, pairIntensity(ci, cj, true))
		}
	}

	// Non-adjacent pairs can still trade via shipping routes (both ports).
	for i, ci := range countries {
		if !ci.Alive || ci.Polity.Ports == 0 {
			continue
		}
		for j, cj := range countries {
			if j <= i || !cj.Alive || cj.Polity.Ports == 0 {
				continue
			}
			if m.at(i, j) > 0 {
				continue // already scored via land adjacency above
			}
			m.set(i, j, pairIntensity(ci, cj, false))
		}
	}

	return m
}

func pairIntensity(a, b *country.Country, adjacent bool) float64 {
	base := 0.0
	if adjacent {
		base = 0.35
	}

	portBoost := 0.0
	if a.Polity.Ports > 0 && b.Polity.Ports > 0 {
		portBoost = portWeight
	}
	shippingBoost := 0.0
	if !adjacent && a.Polity.Ports > 0 && b.Polity.Ports > 0 {
		shippingBoost = shippingWeight
	}

	priceGap := math.Abs(a.Economy.PriceFood-b.Economy.PriceFood) + math.Abs(a.Economy.PriceGoods-b.Economy.PriceGoods)
	priceDamping := math.Exp(-priceGapDamping * priceGap / 2)

	intensity := (base + portBoost + shippingBoost) * priceDamping
	return math.Max(0, math.Min(1, intensity))
}
