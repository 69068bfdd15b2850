package agent

import (
	"sync"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/roles"
	"cogsguard-agent/pkg/logger"
)

// Batch ведет несколько агентов одного процесса.
// Агенты не видят друг друга: общая только копия пула команды на тик
// и роли, которые координатор раздает между тиками.
type Batch struct {
	agents []*Agent
	byID   map[int]*Agent
	coord  *roles.Coordinator
	log    *logrus.Entry
}

// NewBatch создает пакет. coord может быть nil: тогда роли не меняются.
func NewBatch(agents []*Agent, coord *roles.Coordinator) *Batch {
	b := &Batch{
		agents: agents,
		byID:   make(map[int]*Agent, len(agents)),
		coord:  coord,
		log:    logger.Log.WithField("component", "batch"),
	}
	for _, a := range agents {
		b.byID[a.ID()] = a
	}
	return b
}

// Agents возвращает агентов пакета.
func (b *Batch) Agents() []*Agent { return b.agents }

// Agent ищет агента по id.
func (b *Batch) Agent(id int) (*Agent, bool) {
	a, ok := b.byID[id]
	return a, ok
}

// Step выполняет один тик для всех агентов, у которых есть наблюдение.
// Возвращает id действий по id агента.
func (b *Batch) Step(tick int, inputs map[int]Input) map[int]int {
	// 1. Пул команды снимается один раз на тик
	team := sharedTeam(inputs)

	// 2. Агенты независимы: каждый в своей горутине
	type result struct {
		id     int
		action int
	}
	results := make([]result, 0, len(inputs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for id, in := range inputs {
		a, ok := b.byID[id]
		if !ok {
			b.log.WithField("agent", id).Warn("Observation for unknown agent")
			continue
		}
		if !in.Team.Known {
			in.Team = copyTeam(team)
		}
		in.Tick = tick

		wg.Add(1)
		go func(a *Agent, in Input) {
			defer wg.Done()
			action := a.Step(in)
			mu.Lock()
			results = append(results, result{id: a.ID(), action: action})
			mu.Unlock()
		}(a, in)
	}
	wg.Wait()

	actions := make(map[int]int, len(results))
	for _, r := range results {
		actions[r.id] = r.action
	}

	// 3. Координатор работает вне тика агентов, роли применятся на следующем тике
	if b.coord != nil {
		snaps := make([]roles.Snapshot, 0, len(b.agents))
		for _, a := range b.agents {
			snaps = append(snaps, a.Snapshot())
		}
		for id, r := range b.coord.Assign(snaps, tick) {
			b.byID[id].SetRole(r)
		}
	}
	return actions
}

func copyTeam(t domain.TeamResources) domain.TeamResources {
	if !t.Known {
		return domain.TeamResources{}
	}
	amounts := make(map[string]int, len(t.Amounts))
	for k, v := range t.Amounts {
		amounts[k] = v
	}
	return domain.TeamResources{Amounts: amounts, Known: true}
}

// sharedTeam выбирает первый известный пул (по возрастанию id агента).
func sharedTeam(inputs map[int]Input) domain.TeamResources {
	best := -1
	var team domain.TeamResources
	for id, in := range inputs {
		if in.Team.Known && (best < 0 || id < best) {
			best, team = id, in.Team
		}
	}
	return copyTeam(team)
}
