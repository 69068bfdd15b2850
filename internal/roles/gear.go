package roles

import (
	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
)

// gearStep - общая для всех ролей попытка получить снаряжение своей роли.
// ok=false: снаряжение уже есть, недоступно или попытка отложена,
// и роль переходит к следующему правилу.
func (p *Program) gearStep(ctx Context) (domain.Intent, bool) {
	item := p.role.GearItem()
	if item == "" || ctx.Inventory.Has(item) {
		p.resetGear()
		return domain.Noop(), false
	}
	if ctx.Tick < p.state.gearRetryAt {
		return domain.Noop(), false
	}
	// Неизвестный пул не дает права тратить ресурсы команды
	if !ctx.Team.CanAfford(p.econ.GearCosts[p.role]) {
		return domain.Noop(), false
	}
	station, ok := ctx.Structures.Nearest(p.role.Station(), ctx.Pose, nil)
	if !ok {
		return domain.Noop(), false
	}

	p.state.gearSteps++
	if p.bumpedInto(ctx, station.Location) {
		p.state.gearBumps++
	}
	if p.state.gearBumps >= p.econ.GearBumpLimit || p.state.gearSteps >= p.econ.GearStepLimit {
		p.log.WithFields(logrus.Fields{
			"role":    p.role.String(),
			"station": station.Location.String(),
			"bumps":   p.state.gearBumps,
			"steps":   p.state.gearSteps,
		}).Info("Gear attempt abandoned")
		p.resetGear()
		p.state.gearRetryAt = ctx.Tick + p.econ.GearRetryAfter
		return domain.Noop(), false
	}

	// Станция выдает снаряжение только агенту с vibe своей роли
	if ctx.Pose.IsAdjacent(station.Location) && !p.state.vibeRequested {
		if v := p.role.Vibe(); ctx.Vibe != v && ctx.Vibes[v] {
			p.state.vibeRequested = true
			p.aim(station.Location)
			return domain.ChangeVibe(v), true
		}
	}
	return p.approach(ctx, station.Location)
}

func (p *Program) resetGear() {
	p.state.gearSteps = 0
	p.state.gearBumps = 0
	p.state.vibeRequested = false
}

// fetchHeart добывает расходник для захвата и нейтрализации.
func (p *Program) fetchHeart(ctx Context) domain.Intent {
	chest, ok := ctx.Structures.Nearest(domain.Chest, ctx.Pose, nil)
	if !ok {
		return p.explore(ctx)
	}

	if p.bumpedInto(ctx, chest.Location) {
		p.state.chestBumps++
	}
	if p.econ.ChestBumpLimit > 0 && p.state.chestBumps >= p.econ.ChestBumpLimit {
		// Сундук не отдает сердце, хотя пул говорит обратное: пул устарел
		p.log.WithFields(logrus.Fields{
			"chest": chest.Location.String(),
			"bumps": p.state.chestBumps,
		}).Info("Chest set aside")
		p.state.chestBumps = 0
		p.state.chestRetryAt = ctx.Tick + p.econ.ChestRetryAfter
	}
	if ctx.Tick < p.state.chestRetryAt {
		if intent, ok := p.harvest(ctx); ok {
			return intent
		}
		return p.explore(ctx)
	}

	switch {
	case ctx.Team.CanAfford(p.econ.HeartCost):
		if intent, ok := p.approach(ctx, chest.Location); ok {
			return intent
		}
		return p.explore(ctx)
	case !ctx.Team.Known:
		// Пул еще не виден. Без hub его не узнать, поэтому сначала разведка.
		if _, ok := ctx.Structures.Nearest(domain.Hub, ctx.Pose, nil); !ok {
			return p.explore(ctx)
		}
		if intent, ok := p.approach(ctx, chest.Location); ok {
			return intent
		}
		return p.explore(ctx)
	}

	// Ресурсов точно не хватает: помогаем добычей, иначе ждем у сундука
	if intent, ok := p.harvest(ctx); ok {
		return intent
	}
	if ctx.Pose.Manhattan(chest.Location) > 2 {
		if intent, ok := p.approach(ctx, chest.Location); ok {
			return intent
		}
	}
	return domain.Noop()
}
