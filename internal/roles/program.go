package roles

import (
	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/systems"
	"cogsguard-agent/pkg/logger"
)

// state - рабочая память роли. Сбрасывается при смене роли.
type state struct {
	target    domain.Location
	hasTarget bool

	// Последнее взаимодействие (удар в клетку), нужно для подсчета ударов.
	interacted    domain.Location
	hasInteracted bool

	// Снаряжение
	gearSteps     int
	gearBumps     int
	gearRetryAt   int
	vibeRequested bool

	// Добыча
	extractor    domain.Location
	hasExtractor bool
	idleAdjacent int
	lastCargo    int
	failedAt     map[uint64]int

	// Точки территории
	junction      domain.Location
	hasJunction   bool
	junctionBumps int
	setAsideAt    map[uint64]int

	// Сундук
	chestBumps   int
	chestRetryAt int
}

func newState() state {
	return state{
		failedAt:   make(map[uint64]int),
		setAsideAt: make(map[uint64]int),
	}
}

// Program исполняет программу поведения одной роли.
type Program struct {
	role  domain.Role
	econ  Economy
	state state
	log   *logrus.Entry
}

// NewProgram создает программу для роли.
func NewProgram(role domain.Role, econ Economy) *Program {
	return &Program{
		role:  role,
		econ:  econ,
		state: newState(),
		log:   logger.Log.WithField("component", "roles"),
	}
}

// WithLogger подменяет логгер.
func (p *Program) WithLogger(l *logrus.Entry) *Program {
	p.log = l.WithField("component", "roles")
	return p
}

// Role возвращает текущую роль.
func (p *Program) Role() domain.Role { return p.role }

// SetRole переключает роль. Рабочая память старой роли забывается.
func (p *Program) SetRole(r domain.Role) {
	if r == p.role {
		return
	}
	p.log.WithFields(logrus.Fields{
		"from": p.role.String(),
		"to":   r.String(),
	}).Info("Role changed")
	p.role = r
	p.state = newState()
}

// Reset забывает рабочую память, роль сохраняется.
func (p *Program) Reset() { p.state = newState() }

// Target - текущая пространственная цель, если есть.
func (p *Program) Target() (domain.Location, bool) {
	return p.state.target, p.state.hasTarget
}

// Decide выбирает намерение на этот тик.
func (p *Program) Decide(ctx Context) domain.Intent {
	p.state.hasTarget = false

	var intent domain.Intent
	switch p.role {
	case domain.RoleGatherer:
		intent = p.gather(ctx)
	case domain.RoleExplorer:
		intent = p.scout(ctx)
	case domain.RoleCapturer:
		intent = p.capture(ctx)
	case domain.RoleDenier:
		intent = p.deny(ctx)
	case domain.RoleMeta:
		// Роль еще не выбрана координатором
		intent = p.explore(ctx)
	default:
		intent = p.explore(ctx)
	}

	if intent.Kind == domain.IntentInteract {
		p.state.interacted = ctx.Pose.Step(intent.Dir)
		p.state.hasInteracted = true
	} else {
		p.state.hasInteracted = false
	}
	return intent
}

// bumpedInto - на прошлом тике агент ударил клетку loc и сейчас стоит рядом с ней.
func (p *Program) bumpedInto(ctx Context, loc domain.Location) bool {
	return p.state.hasInteracted && p.state.interacted == loc && ctx.Pose.IsAdjacent(loc)
}

func (p *Program) aim(loc domain.Location) {
	p.state.target = loc
	p.state.hasTarget = true
}

func (p *Program) explore(ctx Context) domain.Intent {
	return ctx.Nav.Explore(ctx.Pose, ctx.Tick, systems.ExploreOptions{
		PreferUnseen: p.role == domain.RoleExplorer,
	})
}

// approach ведет к структуре и бьет в нее. ok=false, если пути нет.
func (p *Program) approach(ctx Context, loc domain.Location) (domain.Intent, bool) {
	p.aim(loc)
	intent := ctx.Nav.Approach(ctx.Pose, loc, ctx.Tick)
	if intent.IsNoop() {
		p.state.hasTarget = false
		return intent, false
	}
	return intent, true
}

func (p *Program) scout(ctx Context) domain.Intent {
	if intent, ok := p.gearStep(ctx); ok {
		return intent
	}
	return p.explore(ctx)
}
