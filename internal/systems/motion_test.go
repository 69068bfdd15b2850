package systems

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/internal/obs/obstest"
	"cogsguard-agent/internal/world"
)

var visible = obs.SelfState{AgentVisible: true}

// frameAt строит кадр, который увидел бы агент в точке center.
func frameAt(walls map[domain.Location]bool, center domain.Location, radius int) *obstest.Frame {
	f := obstest.NewFrame(radius).Self()
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			off := loc(dr, dc)
			if walls[center.Add(off)] {
				f.Tag(off, "wall")
			}
		}
	}
	return f
}

func newTracker() *MotionTracker {
	return NewMotionTracker(MotionConfig{}, obstest.Vocab())
}

func TestMotion_MoveConsistentWithObservation(t *testing.T) {
	walls := map[domain.Location]bool{loc(0, 2): true}
	m := world.NewModel(obstest.Vocab(), world.Optimistic)
	m.Fuse(frameAt(walls, domain.Origin, 3).Observation(), domain.Origin)
	tr := newTracker()

	tr.Commit(domain.Move(domain.East))
	// Стена была в двух клетках к востоку, теперь в одной
	next := obstest.NewFrame(3).Self().Tag(loc(0, 1), "wall")
	res := tr.Resolve(m, next.Observation(), visible)

	assert.True(t, res.Moved)
	assert.False(t, res.Bumped)
	assert.False(t, tr.Bumped())
	assert.Equal(t, loc(0, 1), tr.Pose())
	assert.Greater(t, res.Compared, 0)
}

func TestMotion_BumpIntoWall(t *testing.T) {
	walls := map[domain.Location]bool{loc(-1, 0): true}
	m := world.NewModel(obstest.Vocab(), world.Optimistic)
	m.Fuse(frameAt(walls, domain.Origin, 3).Observation(), domain.Origin)
	tr := newTracker()

	tr.Commit(domain.Move(domain.North))
	// Стена осталась на том же относительном смещении
	res := tr.Resolve(m, frameAt(walls, domain.Origin, 3).Observation(), visible)

	assert.True(t, res.Bumped)
	assert.False(t, res.Moved)
	assert.True(t, tr.Bumped())
	assert.Equal(t, domain.Origin, tr.Pose())
	assert.True(t, res.HasMismatch)
}

func TestMotion_NoIntentNoMove(t *testing.T) {
	m := world.NewModel(obstest.Vocab(), world.Optimistic)
	m.Fuse(obstest.NewFrame(2).Self().Observation(), domain.Origin)
	tr := newTracker()

	tr.Commit(domain.ChangeVibe("miner"))
	res := tr.Resolve(m, obstest.NewFrame(2).Self().Observation(), visible)

	assert.False(t, res.Moved)
	assert.False(t, res.Bumped)
	assert.Equal(t, domain.Origin, tr.Pose())
}

func TestMotion_AgentsDoNotCauseMismatch(t *testing.T) {
	m := world.NewModel(obstest.Vocab(), world.Optimistic)
	m.Fuse(obstest.NewFrame(2).Self().Tag(loc(1, 1), "agent").Observation(), domain.Origin)
	tr := newTracker()

	tr.Commit(domain.Move(domain.South))
	// Другой агент ушел, зато появился новый
	next := obstest.NewFrame(2).Self().Tag(loc(-1, -1), "agent")
	res := tr.Resolve(m, next.Observation(), visible)

	assert.True(t, res.Moved)
	assert.Equal(t, loc(1, 0), tr.Pose())
}

func TestMotion_BlockedByAgentInOpenArea(t *testing.T) {
	m := world.NewModel(obstest.Vocab(), world.Optimistic)
	m.Fuse(obstest.NewFrame(3).Self().Tag(loc(0, 1), "agent").Observation(), domain.Origin)
	tr := newTracker()

	tr.Commit(domain.Move(domain.East))
	// Соседний агент не сдвинулся: мы уперлись в него
	res := tr.Resolve(m, obstest.NewFrame(3).Self().Tag(loc(0, 1), "agent").Observation(), visible)

	assert.True(t, res.AgentBlocked)
	assert.True(t, res.Bumped)
	assert.False(t, res.Moved)
	assert.Equal(t, domain.Origin, tr.Pose())

	// Агент ушел с дороги: шаг засчитывается
	tr.Commit(domain.Move(domain.East))
	res = tr.Resolve(m, obstest.NewFrame(3).Self().Observation(), visible)
	assert.True(t, res.Moved)
	assert.Equal(t, loc(0, 1), tr.Pose())
}

// Движение признается успешным тогда и только тогда, когда окрестность
// полностью совпадает с картой.
func TestMotion_SuccessIffNeighborhoodAgrees(t *testing.T) {
	const radius = 3
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 40; trial++ {
		walls := make(map[domain.Location]bool)
		for r := -8; r <= 8; r++ {
			for c := -8; c <= 8; c++ {
				if rng.Intn(10) < 3 && (r != 0 || c != 0) {
					walls[loc(r, c)] = true
				}
			}
		}
		d := domain.Directions[rng.Intn(len(domain.Directions))]
		target := domain.Origin.Step(d)
		delete(walls, target)

		freshModel := func() *world.Model {
			m := world.NewModel(obstest.Vocab(), world.Optimistic)
			m.Fuse(frameAt(walls, domain.Origin, radius).Observation(), domain.Origin)
			return m
		}

		// Согласованный кадр
		tr := newTracker()
		tr.Commit(domain.Move(d))
		res := tr.Resolve(freshModel(), frameAt(walls, target, radius).Observation(), visible)
		require.True(t, res.Moved, "trial %d: consistent frame rejected", trial)
		require.Equal(t, target, tr.Pose())

		// Несогласованный кадр: меняем одну клетку, которая попадает в пересечение окон
		flip := target.Add(loc(rng.Intn(3)-1, rng.Intn(3)-1))
		if flip == target || flip == domain.Origin {
			// В клетке агента стены не бывает: меняем клетку позади старта
			flip = domain.Origin.Step(d.Opposite())
		}
		changed := make(map[domain.Location]bool, len(walls)+1)
		for k, v := range walls {
			changed[k] = v
		}
		changed[flip] = !walls[flip]

		tr = newTracker()
		tr.Commit(domain.Move(d))
		res = tr.Resolve(freshModel(), frameAt(changed, target, radius).Observation(), visible)
		assert.True(t, res.Bumped, "trial %d: inconsistent frame at %v accepted", trial, flip)
		assert.Equal(t, domain.Origin, tr.Pose())
	}
}

func TestMotion_SelfCheckResetsMap(t *testing.T) {
	m := world.NewModel(obstest.Vocab(), world.Optimistic)
	tr := NewMotionTracker(MotionConfig{SelfCheck: true}, obstest.Vocab())
	empty := obstest.NewFrame(1).Observation()

	for i := 1; i < DefaultSelfCheckLimit; i++ {
		res := tr.Resolve(m, empty, obs.SelfState{})
		assert.False(t, res.ResetMap, "miss %d", i)
	}
	res := tr.Resolve(m, empty, obs.SelfState{})
	assert.True(t, res.ResetMap)

	// Тег агента на месте: счетчик сбрасывается
	tr.Resolve(m, empty, obs.SelfState{})
	tr.Resolve(m, empty, visible)
	res = tr.Resolve(m, empty, obs.SelfState{})
	assert.False(t, res.ResetMap)
}

func TestMotion_ExecutedActionCrossCheck(t *testing.T) {
	tests := []struct {
		name       string
		lastAction string
		bump       bool
		disagrees  bool
	}{
		{name: "MovedAndExecuted", lastAction: "move_east", disagrees: false},
		{name: "BumpStillExecuted", lastAction: "move_east", bump: true, disagrees: false},
		{name: "MovedButNoop", lastAction: "noop", disagrees: true},
		{name: "OtherDirection", lastAction: "move_west", disagrees: true},
		{name: "NotReported", lastAction: "", disagrees: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			walls := map[domain.Location]bool{}
			if tt.bump {
				walls[loc(0, 1)] = true
			}
			m := world.NewModel(obstest.Vocab(), world.Optimistic)
			m.Fuse(frameAt(walls, domain.Origin, 2).Observation(), domain.Origin)
			tr := newTracker()
			tr.Commit(domain.Move(domain.East))

			next := frameAt(walls, loc(0, 1), 2)
			if tt.bump {
				next = frameAt(walls, domain.Origin, 2)
			}
			self := visible
			self.LastAction = tt.lastAction
			res := tr.Resolve(m, next.Observation(), self)

			assert.Equal(t, tt.bump, res.Bumped)
			assert.Equal(t, tt.disagrees, res.ExecutedDisagrees)
		})
	}
}
