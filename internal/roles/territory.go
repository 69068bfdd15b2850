package roles

import (
	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
)

// capture - захват нейтральных точек территории.
func (p *Program) capture(ctx Context) domain.Intent {
	if intent, ok := p.gearStep(ctx); ok {
		return intent
	}
	if !ctx.Inventory.Has(domain.ItemHeart) {
		return p.fetchHeart(ctx)
	}
	p.state.chestBumps = 0

	// Точки возле вражеских все равно отберут: пропускаем
	hostile := hostileJunctions(ctx)
	awayFromHostile := func(s domain.Structure) bool {
		return !nearAny(s.Location, hostile, p.econ.HostileAvoidDistance)
	}
	j, ok := p.pickJunction(ctx, domain.Neutral, awayFromHostile, nil)
	if !ok {
		return p.explore(ctx)
	}
	if intent, ok := p.convert(ctx, j); ok {
		return intent
	}
	return p.explore(ctx)
}

// deny - нейтрализация вражеских точек территории.
func (p *Program) deny(ctx Context) domain.Intent {
	if intent, ok := p.gearStep(ctx); ok {
		return intent
	}
	if !ctx.Inventory.Has(domain.ItemHeart) {
		return p.fetchHeart(ctx)
	}
	p.state.chestBumps = 0

	// Давно не виденная вражеская точка, скорее всего, так и осталась вражеской
	stale := func(s domain.Structure) bool {
		return ctx.Tick-s.LastSeen > p.econ.StaleAfter
	}
	j, ok := p.pickJunction(ctx, domain.Hostile, nil, stale)
	if !ok {
		return p.explore(ctx)
	}
	if intent, ok := p.convert(ctx, j); ok {
		return intent
	}
	return p.explore(ctx)
}

// pickJunction выбирает точку с принадлежностью want.
// require обязателен, prefer лишь предпочтителен. Оба могут быть nil.
func (p *Program) pickJunction(ctx Context, want domain.Alignment, require, prefer func(domain.Structure) bool) (domain.Structure, bool) {
	usable := func(s domain.Structure) bool {
		if s.Alignment != want {
			return false
		}
		if at, ok := p.state.setAsideAt[s.Location.Key()]; ok && ctx.Tick-at < p.econ.JunctionRetryAfter {
			return false
		}
		if ctx.Nav.RecentlyStuck(s.Location, ctx.Tick) {
			return false
		}
		return require == nil || require(s)
	}

	if p.state.hasJunction {
		if s, ok := ctx.Structures.Get(p.state.junction); ok && usable(s) {
			return s, true
		}
		p.dropJunction()
	}

	filters := []func(domain.Structure) bool{usable}
	if prefer != nil {
		filters = []func(domain.Structure) bool{
			func(s domain.Structure) bool { return usable(s) && prefer(s) },
			usable,
		}
	}
	for _, keep := range filters {
		if s, ok := ctx.Structures.Nearest(domain.Junction, ctx.Pose, keep); ok {
			p.state.junction, p.state.hasJunction = s.Location, true
			p.state.junctionBumps = 0
			return s, true
		}
	}
	return domain.Structure{}, false
}

// convert ведет к точке и бьет в нее. Точка, которая не сменила принадлежность
// за JunctionBumpLimit ударов, откладывается на JunctionRetryAfter тиков.
func (p *Program) convert(ctx Context, j domain.Structure) (domain.Intent, bool) {
	if p.bumpedInto(ctx, j.Location) {
		p.state.junctionBumps++
	}
	if p.state.junctionBumps >= p.econ.JunctionBumpLimit {
		p.setAside(ctx, j, "bump limit")
		return domain.Noop(), false
	}

	intent, ok := p.approach(ctx, j.Location)
	if !ok {
		p.setAside(ctx, j, "no path")
	}
	return intent, ok
}

func (p *Program) setAside(ctx Context, j domain.Structure, reason string) {
	p.log.WithFields(logrus.Fields{
		"junction":  j.Location.String(),
		"alignment": j.Alignment.String(),
		"reason":    reason,
	}).Debug("Junction set aside")
	p.state.setAsideAt[j.Location.Key()] = ctx.Tick
	p.dropJunction()
}

func (p *Program) dropJunction() {
	p.state.hasJunction = false
	p.state.junctionBumps = 0
}
