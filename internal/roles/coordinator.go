package roles

import (
	"sort"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/pkg/logger"
)

// Пороги перебалансировки фиксированных ролей.
const (
	richThreshold  = 25
	poorThreshold  = 3
	poorAfterTicks = 100
)

// Snapshot - то, что агент открыто сообщает о себе координатору.
type Snapshot struct {
	AgentID int
	Role    domain.Role
	// Meta - роль агента выбирает координатор.
	Meta       bool
	Pose       domain.Location
	Structures []domain.Structure
	Team       domain.TeamResources
}

// Coordinator распределяет роли по снимкам агентов.
// Агентов он не трогает: результат применяет вызывающий на следующем тике.
type Coordinator struct {
	cooldown       int
	changeInterval int
	lastEval       map[int]int
	log            *logrus.Entry
}

// NewCoordinator создает координатор. changeInterval=0 отключает перебалансировку.
func NewCoordinator(cooldown, changeInterval int) *Coordinator {
	return &Coordinator{
		cooldown:       cooldown,
		changeInterval: changeInterval,
		lastEval:       make(map[int]int),
		log:            logger.Log.WithField("component", "coordinator"),
	}
}

// Reset забывает расписание пересмотра. Вызывается на границе эпизода.
func (c *Coordinator) Reset() {
	c.lastEval = make(map[int]int)
}

// BuildTeamView объединяет открытия всех агентов (по клетке, свежайшее наблюдение побеждает).
func BuildTeamView(snaps []Snapshot) TeamView {
	v := TeamView{Roles: make(map[domain.Role]int)}
	merged := make(map[uint64]domain.Structure)
	for _, s := range snaps {
		if s.Role != domain.RoleMeta {
			v.Roles[s.Role]++
		}
		if s.Team.Known && !v.Team.Known {
			v.Team = s.Team
		}
		for _, st := range s.Structures {
			k := st.Location.Key()
			if prev, ok := merged[k]; ok && prev.LastSeen >= st.LastSeen {
				continue
			}
			merged[k] = st
		}
	}

	v.Structures = len(merged)
	for _, st := range merged {
		switch st.Type {
		case domain.Hub:
			v.HubKnown = true
		case domain.Chest:
			v.ChestKnown = true
		case domain.Junction:
			v.Junctions++
			switch st.Alignment {
			case domain.Friendly:
				v.Friendly++
			case domain.Neutral:
				v.Neutral++
			case domain.Hostile:
				v.Hostile++
			}
		}
	}
	return v
}

// Assign возвращает новые роли для агентов, чья роль должна смениться.
func (c *Coordinator) Assign(snaps []Snapshot, tick int) map[int]domain.Role {
	ordered := append([]Snapshot(nil), snaps...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].AgentID < ordered[j].AgentID })

	view := BuildTeamView(ordered)
	changes := make(map[int]domain.Role)

	// 1. Мета-агенты: пересмотр не чаще раза в cooldown тиков
	for _, s := range ordered {
		if !s.Meta {
			continue
		}
		if last, ok := c.lastEval[s.AgentID]; ok && tick-last < c.cooldown {
			continue
		}
		c.lastEval[s.AgentID] = tick

		if s.Role != domain.RoleMeta {
			view.Roles[s.Role]--
		}
		r := ChooseRole(view)
		view.Roles[r]++
		if r != s.Role {
			changes[s.AgentID] = r
		}
	}

	// 2. Фиксированные роли: периодическая перебалансировка
	if c.changeInterval > 0 && tick > 0 && tick%c.changeInterval == 0 && view.Team.Known {
		for _, s := range ordered {
			if s.Meta {
				continue
			}
			if r, ok := rebalance(s, view.Team, tick); ok {
				changes[s.AgentID] = r
			}
		}
	}

	if len(changes) > 0 {
		c.log.WithFields(logrus.Fields{
			"tick":    tick,
			"changes": len(changes),
		}).Info("Roles reassigned")
	}
	return changes
}

func rebalance(s Snapshot, team domain.TeamResources, tick int) (domain.Role, bool) {
	switch s.Role {
	case domain.RoleGatherer:
		for _, r := range domain.Resources {
			if team.Amount(r) <= richThreshold {
				return s.Role, false
			}
		}
		if s.AgentID%2 == 0 {
			return domain.RoleCapturer, true
		}
		return domain.RoleDenier, true
	case domain.RoleCapturer, domain.RoleDenier:
		if tick <= poorAfterTicks {
			return s.Role, false
		}
		for _, r := range domain.Resources {
			if team.Amount(r) < poorThreshold {
				return domain.RoleGatherer, true
			}
		}
	}
	return s.Role, false
}
