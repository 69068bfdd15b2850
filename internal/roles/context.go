package roles

import (
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/systems"
)

// Navigation — примитивы движения. Роли только выбирают цель.
type Navigation interface {
	StepToward(pose, target domain.Location, tick int) domain.Intent
	Approach(pose, target domain.Location, tick int) domain.Intent
	Explore(pose domain.Location, tick int, opts systems.ExploreOptions) domain.Intent
	RecentlyStuck(loc domain.Location, tick int) bool
}

// Structures - доступ к обнаруженным структурам только на чтение.
type Structures interface {
	Nearest(st domain.StructureType, from domain.Location, keep func(domain.Structure) bool) (domain.Structure, bool)
	All(st domain.StructureType) []domain.Structure
	Get(loc domain.Location) (domain.Structure, bool)
}

// Context - входные данные роли на один тик.
type Context struct {
	Tick      int
	Pose      domain.Location
	Bumped    bool
	Inventory domain.Inventory
	Vibe      string
	Team      domain.TeamResources

	Structures Structures
	Nav        Navigation

	// Vibes - vibe, для которых у среды есть действие смены.
	Vibes map[string]bool
}
