package roles

import "cogsguard-agent/internal/domain"

// TeamView - агрегированное состояние команды, по которому выбирается роль.
type TeamView struct {
	Roles map[domain.Role]int

	HubKnown   bool
	ChestKnown bool

	Junctions int
	Friendly  int
	Neutral   int
	Hostile   int

	// Structures - сколько всего структур известно команде.
	Structures int
	Team       domain.TeamResources
}

// exploredEnough — после стольких структур отдельный разведчик не нужен.
const exploredEnough = 10

// ChooseRole выбирает самую нужную роль. Первое подходящее правило побеждает.
func ChooseRole(v TeamView) domain.Role {
	switch {
	case !v.HubKnown || !v.ChestKnown:
		return domain.RoleExplorer
	case v.Roles[domain.RoleExplorer] == 0:
		return domain.RoleExplorer
	case v.Roles[domain.RoleGatherer] == 0:
		return domain.RoleGatherer
	case v.Junctions == 0:
		return domain.RoleExplorer
	case v.Roles[domain.RoleDenier] == 0:
		return domain.RoleDenier
	case v.Roles[domain.RoleCapturer] == 0:
		return domain.RoleCapturer
	case v.Hostile > 0 && v.Roles[domain.RoleDenier] <= v.Roles[domain.RoleCapturer]:
		return domain.RoleDenier
	case v.Neutral > 0:
		return domain.RoleCapturer
	case v.Structures < exploredEnough:
		return domain.RoleExplorer
	}
	return domain.RoleGatherer
}
