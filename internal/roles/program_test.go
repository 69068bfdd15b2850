package roles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/roles"
	"cogsguard-agent/internal/systems"
)

// deadNav - навигация, для которой любая цель недостижима.
type deadNav struct{ fakeNav }

func (d *deadNav) StepToward(domain.Location, domain.Location, int) domain.Intent {
	return domain.Noop()
}

func (d *deadNav) Approach(domain.Location, domain.Location, int) domain.Intent {
	return domain.Noop()
}

func (d *deadNav) Explore(domain.Location, int, systems.ExploreOptions) domain.Intent {
	d.explored++
	return domain.Noop()
}

func TestProgram_FallbackTotality(t *testing.T) {
	states := map[string]fakeStructures{
		"Nothing known": {},
		"Depleted only": {extractor(loc(0, 2), domain.Carbon, 0)},
		"Everything known": {
			hub(loc(0, 5)), chest(loc(2, 2)), extractor(loc(-3, 0), domain.Oxygen, 3),
			junction(loc(4, 4), domain.Neutral, 0), junction(loc(-4, 4), domain.Hostile, 0),
			station(domain.RoleGatherer, loc(1, -1)), station(domain.RoleExplorer, loc(-1, 1)),
			station(domain.RoleCapturer, loc(1, 1)), station(domain.RoleDenier, loc(-1, -1)),
		},
	}
	teams := map[string]domain.TeamResources{
		"unknown": {},
		"poor":    poor(),
		"rich":    rich(),
	}
	inventories := map[string]domain.Inventory{
		"empty": {},
		"full":  {domain.Carbon: 4},
		"heart": {domain.ItemHeart: 1},
	}
	valid := map[domain.IntentKind]bool{
		domain.IntentNoop: true, domain.IntentMove: true, domain.IntentInteract: true, domain.IntentChangeVibe: true,
	}

	for _, role := range append([]domain.Role{domain.RoleMeta}, domain.AllRoles[:]...) {
		for sName, st := range states {
			for tName, team := range teams {
				for iName, inv := range inventories {
					for _, unreachable := range []bool{false, true} {
						var nav roles.Navigation = &fakeNav{}
						if unreachable {
							nav = &deadNav{}
						}
						ctx := newCtx(nil, st)
						ctx.Nav = nav
						ctx.Team = team
						ctx.Inventory = inv
						prog := roles.NewProgram(role, roles.DefaultEconomy())

						for tick := 0; tick < 3; tick++ {
							ctx.Tick = 50 + tick*100
							var intent domain.Intent
							assert.NotPanics(t, func() { intent = prog.Decide(ctx) },
								"%s/%s/%s/%s unreachable=%v", role, sName, tName, iName, unreachable)
							assert.True(t, valid[intent.Kind])
						}
					}
				}
			}
		}
	}
}

func TestProgram_SetRoleResetsScratch(t *testing.T) {
	nav := &fakeNav{}
	ctx := withHeart(newCtx(nav, fakeStructures{junction(loc(0, 3), domain.Neutral, 0)}))
	prog := roles.NewProgram(domain.RoleCapturer, roles.DefaultEconomy())

	prog.Decide(ctx)
	_, ok := prog.Target()
	assert.True(t, ok)

	prog.SetRole(domain.RoleExplorer)

	assert.Equal(t, domain.RoleExplorer, prog.Role())
	_, ok = prog.Target()
	assert.False(t, ok)
	prog.Decide(ctx)
	assert.Equal(t, 1, nav.explored)
}

func TestProgram_MetaExploresUntilAssigned(t *testing.T) {
	nav := &fakeNav{}
	ctx := newCtx(nav, fakeStructures{hub(loc(0, 1))})

	roles.NewProgram(domain.RoleMeta, roles.DefaultEconomy()).Decide(ctx)

	assert.Equal(t, 1, nav.explored)
}
