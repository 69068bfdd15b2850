package engine_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/engine"
	"cogsguard-agent/internal/obs/obstest"
	"cogsguard-agent/pkg/api"
)

func newService(t *testing.T, cfg engine.Config) *engine.Service {
	t.Helper()
	s, err := engine.NewService(cfg)
	require.NoError(t, err)
	return s
}

func episodeMsg(id string, agents int) api.EpisodeMsg {
	msg := api.EpisodeMsg{
		Type:        api.TypeEpisode,
		EpisodeID:   id,
		NumAgents:   agents,
		ObsRadius:   4,
		MaxTokens:   400,
		Tags:        obstest.Tags,
		ActionNames: obstest.ActionNames,
		VibeNames:   obstest.VibeNames,
		Collectives: &api.Collectives{Cogs: 0, Clips: 1},
		Seed:        7,
	}
	for _, f := range obstest.Features {
		msg.Features = append(msg.Features, api.FeatureSpec{ID: int(f.ID), Name: f.Name, Normalization: int(f.Normalization)})
	}
	return msg
}

func frame() []byte {
	f := obstest.NewFrame(4).Self()
	f.Tag(domain.Location{Row: 0, Col: 1}, "wall")
	f.Tag(domain.Location{Row: -2, Col: 0}, "hub")
	return f.Bytes()
}

func send(t *testing.T, s *engine.Service, msg interface{}) (interface{}, error) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return s.Handle(raw)
}

func TestService_EpisodeLifecycle(t *testing.T) {
	t.Parallel()

	s := newService(t, engine.NewConfig())

	reply, err := send(t, s, episodeMsg("e1", 2))
	require.NoError(t, err)
	assert.Nil(t, reply)
	require.NotNil(t, s.Current())
	assert.Equal(t, int64(7), s.Current().Seed)

	for tick := 0; tick < 5; tick++ {
		reply, err = send(t, s, api.ObsMsg{
			Type:      api.TypeObs,
			EpisodeID: "e1",
			Tick:      tick,
			Agents: []api.AgentObs{
				{AgentID: 1, Tokens: frame()},
				{AgentID: 0, Tokens: frame(), Team: map[string]int{"carbon": 3}},
			},
		})
		require.NoError(t, err)
		act, ok := reply.(api.ActMsg)
		require.True(t, ok)
		assert.Equal(t, tick, act.Tick)
		require.Len(t, act.Actions, 2)
		assert.Equal(t, 0, act.Actions[0].AgentID)
		assert.Equal(t, 1, act.Actions[1].AgentID)
		for _, a := range act.Actions {
			assert.Less(t, a.ActionID, len(obstest.ActionNames))
		}
	}
	assert.Equal(t, 5, s.Current().Steps)

	reply, err = send(t, s, api.EndMsg{Type: api.TypeEnd, EpisodeID: "e1", Reason: "max_steps"})
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.Nil(t, s.Current())
}

func TestService_Errors(t *testing.T) {
	t.Parallel()

	s := newService(t, engine.NewConfig())

	_, err := send(t, s, api.ObsMsg{Type: api.TypeObs, EpisodeID: "e1", Agents: []api.AgentObs{}})
	assert.True(t, errors.Is(err, engine.ErrNoEpisode))

	_, err = send(t, s, api.EndMsg{Type: api.TypeEnd, EpisodeID: "e1"})
	assert.True(t, errors.Is(err, engine.ErrNoEpisode))

	_, err = send(t, s, episodeMsg("e1", 1))
	require.NoError(t, err)

	_, err = send(t, s, api.ObsMsg{Type: api.TypeObs, EpisodeID: "other", Agents: []api.AgentObs{}})
	assert.True(t, errors.Is(err, engine.ErrEpisodeMismatch))

	_, err = send(t, s, s.Hello())
	assert.True(t, errors.Is(err, api.ErrUnknownMessage))

	_, err = s.Handle([]byte(`{"type":"OBS","episode_id":"e1","tick":"soon","agents":[]}`))
	assert.Error(t, err)
}

func TestService_EpisodeReplacedWithoutEnd(t *testing.T) {
	t.Parallel()

	s := newService(t, engine.NewConfig())
	_, err := send(t, s, episodeMsg("e1", 1))
	require.NoError(t, err)
	_, err = send(t, s, episodeMsg("e2", 3))
	require.NoError(t, err)

	require.NotNil(t, s.Current())
	assert.Equal(t, "e2", s.Current().ID)
	assert.Len(t, s.Current().Batch.Agents(), 3)
}

func TestService_ConfigSeedWins(t *testing.T) {
	t.Parallel()

	cfg := engine.NewConfig()
	cfg.Seed = 1234
	s := newService(t, cfg)
	_, err := send(t, s, episodeMsg("e1", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), s.Current().Seed)
}

func TestService_Hello(t *testing.T) {
	t.Parallel()

	cfg := engine.NewConfig()
	cfg.Agents = 3
	hello := newService(t, cfg).Hello()

	assert.Equal(t, api.TypeHello, hello.Type)
	assert.Equal(t, []int{0, 1, 2}, hello.Agents)
	assert.Contains(t, hello.Client, "cogsguard-agent/")
}
