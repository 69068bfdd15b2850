package engine

import (
	"sort"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/agent"
	"cogsguard-agent/internal/discovery"
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/pkg/api"
	"cogsguard-agent/pkg/logger"
)

// Instance представляет собой один запущенный эпизод.
// Все агенты эпизода живут и умирают вместе с ним.
type Instance struct {
	ID   string
	Seed int64

	Batch   *agent.Batch
	Episode agent.Episode

	CurrentTick int
	Steps       int

	log *logrus.Entry
}

// NewInstance строит агентов по конфигурации эпизода.
func NewInstance(cfg Config, msg api.EpisodeMsg, seed int64) *Instance {
	ep := episodeFromMsg(msg)

	agents := make([]*agent.Agent, 0, msg.NumAgents)
	for id := 0; id < msg.NumAgents; id++ {
		agents = append(agents, agent.New(cfg.AgentOptions(id, seed), ep))
	}

	inst := &Instance{
		ID:          msg.EpisodeID,
		Seed:        seed,
		Batch:       agent.NewBatch(agents, cfg.NewCoordinator(msg.NumAgents)),
		Episode:     ep,
		CurrentTick: -1,
		log:         logger.Log.WithFields(logrus.Fields{"component": "instance", "episode": msg.EpisodeID}),
	}

	roleCounts := make(map[string]int)
	for _, a := range agents {
		roleCounts[a.Role().String()]++
	}
	inst.log.WithFields(logrus.Fields{
		"agents": msg.NumAgents,
		"radius": ep.Radius,
		"seed":   seed,
		"roles":  roleCounts,
	}).Info("Episode started")
	return inst
}

// Step выполняет один тик и собирает ACT. Действия идут по возрастанию id агента.
func (i *Instance) Step(msg api.ObsMsg) api.ActMsg {
	inputs := make(map[int]agent.Input, len(msg.Agents))
	for _, a := range msg.Agents {
		in := agent.Input{Tick: msg.Tick, Tokens: a.Tokens}
		if a.Team != nil {
			in.Team = domain.TeamResources{Amounts: a.Team, Known: true}
		}
		inputs[a.AgentID] = in
	}

	actions := i.Batch.Step(msg.Tick, inputs)
	i.CurrentTick = msg.Tick
	i.Steps++

	act := api.ActMsg{
		Type:      api.TypeAct,
		EpisodeID: i.ID,
		Tick:      msg.Tick,
		Actions:   make([]api.AgentAction, 0, len(actions)),
	}
	for id, action := range actions {
		act.Actions = append(act.Actions, api.AgentAction{AgentID: id, ActionID: action})
	}
	sort.Slice(act.Actions, func(a, b int) bool { return act.Actions[a].AgentID < act.Actions[b].AgentID })
	return act
}

// Summary пишет итог эпизода в лог.
func (i *Instance) Summary(reason string) {
	for _, a := range i.Batch.Agents() {
		st := a.State()
		i.log.WithFields(logrus.Fields{
			"agent":         a.ID(),
			"role":          st.Role.String(),
			"seen":          st.Seen,
			"structures":    st.Structures,
			"resets":        st.Resets,
			"disagreements": st.Disagreements,
		}).Debug("Agent summary")
	}
	i.log.WithFields(logrus.Fields{
		"reason": reason,
		"ticks":  i.Steps,
		"last":   i.CurrentTick,
	}).Info("Episode ended")
}

func episodeFromMsg(msg api.EpisodeMsg) agent.Episode {
	features := make([]obs.FeatureSpec, 0, len(msg.Features))
	for _, f := range msg.Features {
		features = append(features, obs.FeatureSpec{
			ID:            uint8(f.ID),
			Name:          f.Name,
			Normalization: float64(f.Normalization),
		})
	}
	ep := agent.Episode{
		Vocab:       obs.NewVocabulary(features, msg.Tags),
		Radius:      msg.ObsRadius,
		MaxTokens:   msg.MaxTokens,
		ActionNames: msg.ActionNames,
		VibeNames:   msg.VibeNames,
	}
	if ep.MaxTokens <= 0 {
		ep.MaxTokens = obs.DefaultMaxTokens
	}
	if msg.Collectives != nil {
		ep.Collectives = discovery.Collectives{
			Cogs:  msg.Collectives.Cogs,
			Clips: msg.Collectives.Clips,
			Known: true,
		}
	}
	return ep
}
