package country

// SpawnChild creates a new country inheriting a scaled share of parent's
// demography, stockpiles, knowledge, and institutions, per spec.md section
// 4.10's fragmentation/breakaway split rules. populationShare scales
// cohorts and SIR-compatible population; knowledgeKeep and infraKeep scale
// knowledge domains and infrastructure-adjacent polity/economy fields
// respectively. The parent is left untouched; callers subtract the
// transferred share from the parent themselves once territory is moved.
func SpawnChild(index int, name string, foundingYear int, parent *Country, populationShare, knowledgeKeep, infraKeep float64) *Country {
	child := NewCountry(index, name, foundingYear, parent.Type)
	child.Ideology = parent.Ideology

	for k := range child.Cohorts {
		child.Cohorts[k] = parent.Cohorts[k] * populationShare
	}
	child.SIR = parent.SIR

	child.Economy = parent.Economy
	child.Economy.FoodStock = parent.Economy.FoodStock * populationShare
	child.Economy.NonFoodStock = parent.Economy.NonFoodStock * populationShare
	child.Economy.CapitalStock = parent.Economy.CapitalStock * infraKeep
	child.Economy.InfraStock = parent.Economy.InfraStock * infraKeep
	child.Economy.Debt = parent.Economy.Debt * populationShare

	child.Polity = parent.Polity
	child.Polity.Roads = int(float64(parent.Polity.Roads) * infraKeep)
	child.Polity.Ports = int(float64(parent.Polity.Ports) * infraKeep)
	child.Polity.Factories = int(float64(parent.Polity.Factories) * infraKeep)
	child.Polity.AdminCapacity = parent.Polity.AdminCapacity * infraKeep
	child.Polity.FiscalCapacity = parent.Polity.FiscalCapacity * infraKeep
	child.Polity.LogisticsReach = parent.Polity.LogisticsReach * infraKeep

	for d, v := range parent.Knowledge {
		child.Knowledge[d] = v * knowledgeKeep
	}
	child.Traits = parent.Traits

	for id, year := range parent.KnownTech {
		child.KnownTech[id] = year
	}
	for id, level := range parent.AdoptionLevel {
		child.AdoptionLevel[id] = level
	}
	for id, year := range parent.UnlockedCivics {
		child.UnlockedCivics[id] = year
	}

	child.UrbanPopulation = parent.UrbanPopulation * populationShare
	return child
}
