package roles

import (
	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/systems"
)

func (p *Program) gather(ctx Context) domain.Intent {
	// 1. В начале эпизода, пока экстракторы не найдены, разведка важнее снаряжения
	if ctx.Tick < p.econ.EarlyExploreTicks &&
		ctx.Inventory.Cargo() < p.econ.Capacity(ctx.Inventory) &&
		len(ctx.Structures.All(domain.Extractor)) == 0 {
		return p.explore(ctx)
	}

	// 2. Снаряжение
	if intent, ok := p.gearStep(ctx); ok {
		return intent
	}

	// 3. Сдача груза или добыча
	if intent, ok := p.harvest(ctx); ok {
		return intent
	}

	// 4. Ничего не известно
	return p.explore(ctx)
}

// harvest везет полный груз на склад, иначе добывает в экстракторе.
func (p *Program) harvest(ctx Context) (domain.Intent, bool) {
	if ctx.Inventory.Cargo() >= p.econ.Capacity(ctx.Inventory) {
		p.dropExtractor()
		depot, ok := p.nearestDepot(ctx)
		if !ok {
			return domain.Noop(), false
		}
		return p.approach(ctx, depot.Location)
	}

	ex, ok := p.pickExtractor(ctx)
	if !ok {
		return domain.Noop(), false
	}
	return p.mine(ctx, ex)
}

// nearestDepot - ближайшая из точек сдачи: hub или дружественная точка территории.
func (p *Program) nearestDepot(ctx Context) (domain.Structure, bool) {
	hub, hubOK := ctx.Structures.Nearest(domain.Hub, ctx.Pose, nil)
	j, jOK := ctx.Structures.Nearest(domain.Junction, ctx.Pose, func(s domain.Structure) bool {
		return s.Alignment == domain.Friendly
	})
	switch {
	case hubOK && jOK:
		if ctx.Pose.Manhattan(j.Location) < ctx.Pose.Manhattan(hub.Location) {
			return j, true
		}
		return hub, true
	case hubOK:
		return hub, true
	case jOK:
		return j, true
	}
	return domain.Structure{}, false
}

func (p *Program) pickExtractor(ctx Context) (domain.Structure, bool) {
	usable := func(s domain.Structure) bool {
		if s.Depleted() {
			return false
		}
		if at, ok := p.state.failedAt[s.Location.Key()]; ok && ctx.Tick-at < p.econ.ExtractorCooldown {
			return false
		}
		return !ctx.Nav.RecentlyStuck(s.Location, ctx.Tick)
	}

	if p.state.hasExtractor {
		if s, ok := ctx.Structures.Get(p.state.extractor); ok && usable(s) {
			return s, true
		}
		p.dropExtractor()
	}

	hostile := hostileJunctions(ctx)
	safe := func(s domain.Structure) bool {
		return !routeNearAny(ctx.Pose, s.Location, hostile, p.econ.HostileAvoidDistance)
	}
	want := ""
	if ctx.Team.Known {
		want = ctx.Team.Lowest()
	}

	filters := []func(domain.Structure) bool{
		func(s domain.Structure) bool { return usable(s) && s.Resource == want && safe(s) },
		func(s domain.Structure) bool { return usable(s) && safe(s) },
		func(s domain.Structure) bool { return usable(s) && s.Resource == want },
		usable,
	}
	for _, keep := range filters {
		if s, ok := ctx.Structures.Nearest(domain.Extractor, ctx.Pose, keep); ok {
			p.state.extractor, p.state.hasExtractor = s.Location, true
			p.state.idleAdjacent = 0
			p.state.lastCargo = ctx.Inventory.Cargo()
			return s, true
		}
	}
	return domain.Structure{}, false
}

// mine ведет к экстрактору и бьет в него. Если рядом с экстрактором груз
// не растет ExtractorPatience тиков подряд, экстрактор откладывается.
func (p *Program) mine(ctx Context, ex domain.Structure) (domain.Intent, bool) {
	cargo := ctx.Inventory.Cargo()
	if ctx.Pose.IsAdjacent(ex.Location) {
		if cargo > p.state.lastCargo {
			p.state.idleAdjacent = 0
		} else {
			p.state.idleAdjacent++
		}
		p.state.lastCargo = cargo
		if p.state.idleAdjacent >= p.econ.ExtractorPatience {
			p.failExtractor(ctx, ex)
			return domain.Noop(), false
		}
	} else {
		p.state.idleAdjacent = 0
		p.state.lastCargo = cargo
	}

	intent, ok := p.approach(ctx, ex.Location)
	if !ok {
		p.failExtractor(ctx, ex)
	}
	return intent, ok
}

func (p *Program) failExtractor(ctx Context, ex domain.Structure) {
	p.log.WithFields(logrus.Fields{
		"extractor": ex.Location.String(),
		"resource":  ex.Resource,
	}).Debug("Extractor skipped")
	p.state.failedAt[ex.Location.Key()] = ctx.Tick
	p.dropExtractor()
}

func (p *Program) dropExtractor() {
	p.state.hasExtractor = false
	p.state.idleAdjacent = 0
}

func hostileJunctions(ctx Context) []domain.Location {
	var out []domain.Location
	for _, s := range ctx.Structures.All(domain.Junction) {
		if s.Alignment == domain.Hostile {
			out = append(out, s.Location)
		}
	}
	return out
}

func nearAny(l domain.Location, points []domain.Location, dist int) bool {
	for _, h := range points {
		if l.Manhattan(h) <= dist {
			return true
		}
	}
	return false
}

// routeNearAny - прямая от from до to проходит ближе dist к одной из точек.
func routeNearAny(from, to domain.Location, points []domain.Location, dist int) bool {
	if len(points) == 0 {
		return false
	}
	for _, l := range systems.Line(from, to) {
		if nearAny(l, points, dist) {
			return true
		}
	}
	return false
}
