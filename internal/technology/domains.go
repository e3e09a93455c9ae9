// Package technology implements the eight knowledge-domain stocks, their
// yearly innovation/diffusion dynamics, technology discovery gates, and
// adoption diffusion (spec.md section 4.8).
package technology

import "github.com/talgya/worldkernel/internal/country"

// Domain indexes into a country's Knowledge array. The eight domains and
// their ordering are carried from original_source/include/technology.h's
// capability tags, collapsed from its much larger per-tech catalog down to
// the fixed eight stocks spec.md names.
type Domain int

const (
	DomainAgriculture Domain = iota
	DomainMetallurgy
	DomainConstruction
	DomainMaritime
	DomainAdministration
	DomainCommerce
	DomainScience
	DomainMedicine
)

// DomainCount must equal country.NumKnowledgeDomains.
const DomainCount = int(country.NumKnowledgeDomains)

var domainNames = [DomainCount]string{
	DomainAgriculture:    "agriculture",
	DomainMetallurgy:     "metallurgy",
	DomainConstruction:   "construction",
	DomainMaritime:       "maritime",
	DomainAdministration: "administration",
	DomainCommerce:       "commerce",
	DomainScience:        "science",
	DomainMedicine:       "medicine",
}

// String returns the domain's lowercase name.
func (d Domain) String() string { return domainNames[d] }

// baseInnovationRate is each domain's base hazard before population,
// institution, and education/RnD modifiers apply (§4.8 step 1).
var baseInnovationRate = [DomainCount]float64{
	DomainAgriculture:    0.012,
	DomainMetallurgy:     0.008,
	DomainConstruction:   0.009,
	DomainMaritime:       0.006,
	DomainAdministration: 0.010,
	DomainCommerce:       0.009,
	DomainScience:        0.007,
	DomainMedicine:       0.006,
}
