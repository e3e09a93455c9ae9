package control

// Cache holds the staggered per-country control-reach recompute schedule
// (spec.md §4.4: "at most every 5-10 simulated years ... force-recompute on
// road/port change"), grounded on original_source/include/map.h's
// CountryControlCache.
type Cache struct {
	lastComputedYear map[int]int
	roadCount        map[int]int
	portCount        map[int]int

	// recomputeEveryYears is the per-country cadence; derived deterministically
	// from the country index so the staggering itself needs no extra RNG
	// draw (country 3's cadence never depends on country 7's state).
	recomputeEveryYears map[int]int
}

// NewCache builds an empty staggered-recompute cache.
func NewCache() *Cache {
	return &Cache{
		lastComputedYear:    make(map[int]int),
		roadCount:           make(map[int]int),
		portCount:           make(map[int]int),
		recomputeEveryYears: make(map[int]int),
	}
}

// cadenceFor derives a country's recompute interval in [5, 10] years from
// its index, deterministically and without consuming RNG state.
func cadenceFor(countryIndex int) int {
	return 5 + (countryIndex % 6)
}

// ShouldRecompute reports whether owner's control-reach field must be
// recomputed this year: either its staggered cadence has elapsed, its
// road/port count changed since the last recompute, or dtYears exceeds 1
// (a mega-jump step, which forces every country to refresh).
func (c *Cache) ShouldRecompute(owner, year, dtYears, roads, ports int) bool {
	if dtYears > 1 {
		return true
	}
	last, ok := c.lastComputedYear[owner]
	if !ok {
		return true
	}
	if c.roadCount[owner] != roads || c.portCount[owner] != ports {
		return true
	}
	cadence, ok := c.recomputeEveryYears[owner]
	if !ok {
		cadence = cadenceFor(owner)
		c.recomputeEveryYears[owner] = cadence
	}
	return year-last >= cadence
}

// MarkComputed records that owner's control field was refreshed this year
// with the given road/port counts.
func (c *Cache) MarkComputed(owner, year, roads, ports int) {
	c.lastComputedYear[owner] = year
	c.roadCount[owner] = roads
	c.portCount[owner] = ports
}
