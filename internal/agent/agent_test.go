package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/internal/obs/obstest"
	"cogsguard-agent/internal/roles"
	"cogsguard-agent/internal/systems"
	"cogsguard-agent/internal/world"
)

const testRadius = 4

func testEpisode() Episode {
	return Episode{
		Vocab:       obstest.Vocab(),
		Radius:      testRadius,
		MaxTokens:   1000,
		ActionNames: obstest.ActionNames,
		VibeNames:   obstest.VibeNames,
	}
}

func newTestAgent(id int, role domain.Role) *Agent {
	return New(Options{
		ID:         id,
		Role:       role,
		Seed:       int64(id) + 1,
		Policy:     world.Optimistic,
		Navigation: systems.DefaultNavConfig(),
		Motion:     systems.MotionConfig{SelfCheck: true},
		Economy:    roles.DefaultEconomy(),
	}, testEpisode())
}

var room = []string{
	"##############",
	"#0...........#",
	"#....#####...#",
	"#....#.......#",
	"#............#",
	"#..######....#",
	"#............#",
	"##############",
}

func TestAgent_PoseMatchesTruePositionWhileExploring(t *testing.T) {
	t.Parallel()

	sim := parseWorld(testRadius, room...)
	a := newTestAgent(0, domain.RoleExplorer)

	prevSeen := 0
	sim.run(a, 300, func(tick int) {
		st := a.State()
		require.GreaterOrEqual(t, st.Seen, prevSeen, "SeenSet shrank at tick %d", tick)
		prevSeen = st.Seen
	})

	for tick := 300; tick < 400; tick++ {
		want := sim.relative(0)
		action := a.Step(Input{Tick: tick, Tokens: sim.render(0)})
		require.Equal(t, want, a.State().Pose, "pose drift at tick %d", tick)
		sim.apply(0, action)
	}

	st := a.State()
	assert.Zero(t, st.Resets)
	// Внутренность комнаты 12x6 = 72 клетки, плюс стены
	assert.GreaterOrEqual(t, st.Seen, 72)
}

func TestAgent_PoseTrackedEveryTick(t *testing.T) {
	t.Parallel()

	sim := parseWorld(testRadius, room...)
	a := newTestAgent(0, domain.RoleExplorer)

	for tick := 0; tick < 250; tick++ {
		want := sim.relative(0)
		action := a.Step(Input{Tick: tick, Tokens: sim.render(0)})
		require.Equal(t, want, a.State().Pose, "pose drift at tick %d", tick)
		sim.apply(0, action)
	}
}

func TestAgent_LastActionAgreesWithVerdict(t *testing.T) {
	t.Parallel()

	sim := parseWorld(testRadius, room...)
	sim.reportLast = true
	a := newTestAgent(0, domain.RoleExplorer)

	sim.run(a, 200, nil)

	assert.Zero(t, a.State().Disagreements)
}

func TestAgent_GathererDeliversCargo(t *testing.T) {
	t.Parallel()

	sim := parseWorld(testRadius,
		"##########",
		"#0..c....#",
		"#........#",
		"#......H.#",
		"##########",
	)
	a := newTestAgent(0, domain.RoleGatherer)

	sim.run(a, 150, nil)

	assert.GreaterOrEqual(t, sim.delivered["carbon"], 4)
	assert.Equal(t, 2, a.State().Structures)
}

func TestAgent_SelfCheckResetsMapping(t *testing.T) {
	t.Parallel()

	sim := parseWorld(testRadius, room...)
	a := newTestAgent(0, domain.RoleExplorer)

	sim.run(a, 20, nil)
	require.Zero(t, a.State().Resets)

	sim.hideSelf = true
	for tick := 20; tick < 20+systems.DefaultSelfCheckLimit; tick++ {
		sim.apply(0, a.Step(Input{Tick: tick, Tokens: sim.render(0)}))
	}

	st := a.State()
	assert.Equal(t, 1, st.Resets)
	assert.Equal(t, domain.Origin, st.Pose)
	// После сброса в карте только текущее окно
	assert.LessOrEqual(t, st.Seen, (2*testRadius+1)*(2*testRadius+1))
}

func TestAgent_NoSelfCheckWithoutAgentTag(t *testing.T) {
	t.Parallel()

	ep := testEpisode()
	ep.Vocab = obs.NewVocabulary(obstest.Features, []string{"wall", "hub"})
	a := New(Options{ID: 1, Role: domain.RoleExplorer, Motion: systems.MotionConfig{SelfCheck: true}}, ep)

	empty := obstest.NewFrame(testRadius).Bytes()
	for tick := 0; tick < 10; tick++ {
		a.Step(Input{Tick: tick, Tokens: empty})
	}
	assert.Zero(t, a.State().Resets)
}

func TestAgent_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	a := newTestAgent(0, domain.RoleExplorer)
	// Без словаря чтение своей клетки падает
	a.ep.Vocab = nil

	var action int
	require.NotPanics(t, func() {
		action = a.Step(Input{Tick: 0, Tokens: obstest.NewFrame(testRadius).Self().Bytes()})
	})
	assert.Equal(t, 0, action)
}

func TestAgent_MalformedTokensYieldValidAction(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	a := newTestAgent(0, domain.RoleGatherer)

	for tick := 0; tick < 50; tick++ {
		buf := make([]byte, 3*rng.Intn(40))
		rng.Read(buf)
		action := a.Step(Input{Tick: tick, Tokens: buf})
		require.GreaterOrEqual(t, action, 0)
		require.Less(t, action, len(obstest.ActionNames))
	}
}

func TestAgent_TeamFromInputWins(t *testing.T) {
	t.Parallel()

	a := newTestAgent(0, domain.RoleGatherer)
	team := domain.TeamResources{Amounts: map[string]int{"carbon": 9}, Known: true}
	a.Step(Input{Tick: 0, Tokens: obstest.NewFrame(testRadius).Self().Bytes(), Team: team})

	assert.Equal(t, team, a.Snapshot().Team)
}

func TestAgent_MetaStartsUndecided(t *testing.T) {
	t.Parallel()

	a := New(Options{ID: 3, Role: domain.RoleGatherer, Meta: true}, testEpisode())
	assert.True(t, a.Meta())
	assert.Equal(t, domain.RoleMeta, a.Role())

	a.SetRole(domain.RoleCapturer)
	assert.Equal(t, domain.RoleCapturer, a.Role())
}
