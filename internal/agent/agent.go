package agent

import (
	"math/rand"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/discovery"
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/internal/roles"
	"cogsguard-agent/internal/systems"
	"cogsguard-agent/internal/world"
	"cogsguard-agent/pkg/logger"
)

// Episode - то, что среда сообщает один раз в начале эпизода.
type Episode struct {
	Vocab       *obs.Vocabulary
	Radius      int
	MaxTokens   int
	ActionNames []string
	VibeNames   []string
	Collectives discovery.Collectives
}

// Options - параметры построения агента.
type Options struct {
	ID   int
	Role domain.Role
	// Meta - роль выбирает координатор.
	Meta bool
	Seed int64

	Policy     world.UnknownPolicy
	Navigation systems.NavConfig
	Motion     systems.MotionConfig
	Economy    roles.Economy
}

// Input - данные одного тика.
type Input struct {
	Tick   int
	Tokens []byte
	// Team - общий пул команды от среды. Known=false, если среда его не сообщила.
	Team domain.TeamResources
}

// State - открытое состояние агента для логов и тестов.
type State struct {
	Tick          int
	Pose          domain.Location
	Role          domain.Role
	Intent        domain.Intent
	Bumped        bool
	Seen          int
	Unreachable   int
	Structures    int
	Disagreements int
	Resets        int
}

// Agent — движок решений одного агента. Все его состояние принадлежит только ему.
//
// Тик:
//  1. Decode -> токены в эгоцентричное наблюдение, чтение своего инвентаря.
//  2. Resolve -> сверка прошлого намерения с наблюдением (удар или шаг).
//  3. Fuse -> слияние наблюдения с картой по уточненной позиции.
//  4. Observe -> обновление реестра структур.
//  5. Decide -> программа роли выбирает намерение, навигатор - шаг.
//  6. Emit -> id действия для среды.
type Agent struct {
	id      int
	meta    bool
	ep      Episode
	actions ActionTable
	vibes   map[string]bool

	model    *world.Model
	registry *discovery.Registry
	motion   *systems.MotionTracker
	nav      *systems.Navigator
	program  *roles.Program

	team   domain.TeamResources
	last   State
	resets int

	log *logrus.Entry
}

// New строит агента для эпизода.
func New(opts Options, ep Episode) *Agent {
	l := logger.ForAgent(opts.ID)

	motionCfg := opts.Motion
	// Самопроверка возможна, только если среда вообще размечает агентов
	if _, ok := ep.Vocab.TagID("agent"); !ok {
		motionCfg.SelfCheck = false
	}

	model := world.NewModel(ep.Vocab, opts.Policy)
	role := opts.Role
	if opts.Meta {
		role = domain.RoleMeta
	}
	actions := NewActionTable(ep.ActionNames)

	a := &Agent{
		id:       opts.ID,
		meta:     opts.Meta,
		ep:       ep,
		actions:  actions,
		vibes:    actions.Vibes(),
		model:    model,
		registry: discovery.NewRegistry(ep.Collectives).WithLogger(l),
		motion:   systems.NewMotionTracker(motionCfg, ep.Vocab).WithLogger(l),
		nav:      systems.NewNavigator(opts.Navigation, model, rand.New(rand.NewSource(opts.Seed))).WithLogger(l),
		program:  roles.NewProgram(role, opts.Economy).WithLogger(l),
		log:      l.WithField("component", "agent"),
	}
	a.last.Role = role
	return a
}

// ID возвращает id агента.
func (a *Agent) ID() int { return a.id }

// Meta - роль агента выбирает координатор.
func (a *Agent) Meta() bool { return a.meta }

// Role возвращает текущую роль.
func (a *Agent) Role() domain.Role { return a.program.Role() }

// SetRole назначает роль. Вступает в силу на следующем тике.
func (a *Agent) SetRole(r domain.Role) { a.program.SetRole(r) }

// State возвращает итог последнего тика.
func (a *Agent) State() State { return a.last }

// Step обрабатывает одно наблюдение и возвращает id действия.
// Никогда не паникует наружу: сбой тика превращается в noop.
func (a *Agent) Step(in Input) (action int) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logrus.Fields{
				"tick":  in.Tick,
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic in agent step")
			a.motion.Commit(domain.Noop())
			action = a.actions.Noop()
		}
	}()

	// 1. Наблюдение
	o := obs.Decode(in.Tokens, a.ep.Radius, a.ep.MaxTokens)
	if o.Truncated {
		a.log.WithField("tick", in.Tick).Warn("Observation truncated on malformed token")
	}
	self := obs.ReadSelf(o, a.ep.Vocab, a.ep.ActionNames, a.ep.VibeNames)

	// 2. Где мы
	res := a.motion.Resolve(a.model, o, self)
	if res.ResetMap {
		a.resetMapping(in.Tick)
	}
	pose := a.motion.Pose()

	// 3-4. Карта и структуры
	fused := a.model.Fuse(o, pose)
	if n := a.registry.Observe(a.model, fused, in.Tick); n > 0 {
		a.log.WithFields(logrus.Fields{"tick": in.Tick, "new": n}).Debug("Structures discovered")
	}
	a.nav.Observe(pose, res.Bumped)

	// 5. Решение роли
	a.team = in.Team
	if !a.team.Known {
		a.team = a.registry.TeamResources()
	}
	intent := a.program.Decide(roles.Context{
		Tick:       in.Tick,
		Pose:       pose,
		Bumped:     res.Bumped,
		Inventory:  self.Inventory,
		Vibe:       self.Vibe,
		Team:       a.team,
		Structures: a.registry,
		Nav:        a.nav,
		Vibes:      a.vibes,
	})
	if !a.actions.Supports(intent) {
		intent = domain.Noop()
	}

	// 6. Действие
	action = a.actions.Emit(intent)
	a.motion.Commit(intent)

	a.last = State{
		Tick:          in.Tick,
		Pose:          pose,
		Role:          a.program.Role(),
		Intent:        intent,
		Bumped:        res.Bumped,
		Seen:          a.model.SeenCount(),
		Unreachable:   a.model.UnreachableCount(),
		Structures:    a.registry.Len(),
		Disagreements: a.motion.Disagreements(),
		Resets:        a.resets,
	}
	target, hasTarget := a.program.Target()
	entry := a.log.WithFields(logrus.Fields{
		"tick":   in.Tick,
		"role":   a.last.Role.String(),
		"intent": intent.String(),
		"pose":   pose.String(),
		"bump":   res.Bumped,
	})
	if hasTarget {
		entry = entry.WithField("target", target.String())
	}
	entry.Debug("Tick decided")

	return action
}

// resetMapping забывает карту эпизода: позиция агента больше не надежна.
func (a *Agent) resetMapping(tick int) {
	a.resets++
	a.log.WithFields(logrus.Fields{
		"tick":   tick,
		"seen":   a.model.SeenCount(),
		"resets": a.resets,
	}).Warn("Resetting episode map")
	a.model.Reset()
	a.registry.Reset()
	a.motion.Reset()
	a.nav.Reset()
	a.program.Reset()
}

// Snapshot - то, что агент открыто сообщает координатору.
func (a *Agent) Snapshot() roles.Snapshot {
	return roles.Snapshot{
		AgentID:    a.id,
		Role:       a.program.Role(),
		Meta:       a.meta,
		Pose:       a.motion.Pose(),
		Structures: a.registry.Snapshot(),
		Team:       a.team,
	}
}
