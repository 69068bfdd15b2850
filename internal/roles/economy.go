package roles

import "cogsguard-agent/internal/domain"

// Economy - числовые параметры ролей.
type Economy struct {
	CargoCapacity  int
	GearCargoBonus int

	GearCosts map[domain.Role]domain.Cost
	HeartCost domain.Cost

	// Попытка получить снаряжение бросается после GearBumpLimit ударов в станцию
	// или GearStepLimit шагов, повтор через GearRetryAfter тиков.
	GearBumpLimit  int
	GearStepLimit  int
	GearRetryAfter int

	ExtractorPatience int
	ExtractorCooldown int

	HostileAvoidDistance int
	StaleAfter           int

	JunctionBumpLimit  int
	JunctionRetryAfter int

	// Сундук, который не отдал сердце за ChestBumpLimit ударов, откладывается на ChestRetryAfter тиков.
	ChestBumpLimit  int
	ChestRetryAfter int

	EarlyExploreTicks int
}

// DefaultEconomy возвращает параметры по умолчанию.
func DefaultEconomy() Economy {
	return Economy{
		CargoCapacity:  4,
		GearCargoBonus: 40,
		GearCosts: map[domain.Role]domain.Cost{
			domain.RoleGatherer: {domain.Carbon: 1, domain.Oxygen: 1, domain.Germanium: 3, domain.Silicon: 1},
			domain.RoleExplorer: {domain.Carbon: 1, domain.Oxygen: 1, domain.Germanium: 1, domain.Silicon: 3},
			domain.RoleCapturer: {domain.Carbon: 3, domain.Oxygen: 1, domain.Germanium: 1, domain.Silicon: 1},
			domain.RoleDenier:   {domain.Carbon: 1, domain.Oxygen: 3, domain.Germanium: 1, domain.Silicon: 1},
		},
		HeartCost:            domain.Cost{domain.Carbon: 1, domain.Oxygen: 1, domain.Germanium: 1, domain.Silicon: 1},
		GearBumpLimit:        5,
		GearStepLimit:        80,
		GearRetryAfter:       100,
		ExtractorPatience:    5,
		ExtractorCooldown:    200,
		HostileAvoidDistance: 8,
		StaleAfter:           50,
		JunctionBumpLimit:    5,
		JunctionRetryAfter:   100,
		ChestBumpLimit:       16,
		ChestRetryAfter:      100,
		EarlyExploreTicks:    100,
	}
}

// Capacity — грузоподъемность с учетом снаряжения добытчика.
func (e Economy) Capacity(inv domain.Inventory) int {
	if inv.Has(domain.RoleGatherer.GearItem()) {
		return e.CargoCapacity + e.GearCargoBonus
	}
	return e.CargoCapacity
}
