package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/engine/handlers"
	"cogsguard-agent/internal/version"
	"cogsguard-agent/pkg/api"
	"cogsguard-agent/pkg/logger"
	"cogsguard-agent/pkg/utils"
)

var (
	// ErrNoEpisode - OBS или END пришли до EPISODE.
	ErrNoEpisode = errors.New("no active episode")
	// ErrEpisodeMismatch - сообщение относится к другому эпизоду.
	ErrEpisodeMismatch = errors.New("episode id mismatch")
)

// Service ведет жизненный цикл эпизодов: EPISODE строит агентов,
// OBS превращается в ACT, END все сбрасывает.
type Service struct {
	cfg       Config
	validator *api.Validator
	handlers  map[string]handlers.HandlerFunc

	mu      sync.Mutex
	current *Instance

	log *logrus.Entry
}

// NewService создает сервис. Схемы протокола компилируются здесь один раз.
func NewService(cfg Config) (*Service, error) {
	v, err := api.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("protocol validator: %w", err)
	}
	s := &Service{
		cfg:       cfg,
		validator: v,
		handlers:  make(map[string]handlers.HandlerFunc),
		log:       logger.Log.WithField("component", "service"),
	}
	s.registerHandlers()
	return s, nil
}

func (s *Service) registerHandlers() {
	s.handlers[api.TypeEpisode] = handlers.WithMessage(handlers.HandleEpisode)
	s.handlers[api.TypeObs] = handlers.WithMessage(handlers.HandleObs)
	s.handlers[api.TypeEnd] = handlers.WithMessage(handlers.HandleEnd)
}

// Hello - первое сообщение клиента.
func (s *Service) Hello() api.HelloMsg {
	ids := make([]int, 0, s.cfg.Agents)
	for i := 0; i < s.cfg.Agents; i++ {
		ids = append(ids, i)
	}
	return api.HelloMsg{
		Type:            api.TypeHello,
		ProtocolVersion: api.Version,
		Client:          fmt.Sprintf("%s (%s)", s.cfg.Name, version.UserAgent()),
		Agents:          ids,
	}
}

// Handle проверяет кадр по схеме и передает его хендлеру.
// Возвращает ответ для среды или nil.
func (s *Service) Handle(raw []byte) (interface{}, error) {
	typ, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}
	h, ok := s.handlers[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not sent by the environment", api.ErrUnknownMessage, typ)
	}
	res, err := h(s, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	if res.Reply != nil {
		if err := s.validator.ValidateMessage(res.Reply); err != nil {
			return nil, fmt.Errorf("reply to %s: %w", typ, err)
		}
	}
	return res.Reply, nil
}

// Current возвращает активный эпизод или nil.
func (s *Service) Current() *Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// StartEpisode строит агентов. Эпизод без END заменяется новым.
func (s *Service) StartEpisode(msg api.EpisodeMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.log.WithField("episode", s.current.ID).Warn("Episode replaced without END")
		s.current.Summary("replaced")
	}
	s.current = NewInstance(s.cfg, msg, s.resolveSeed(msg.Seed))
	return nil
}

// StepEpisode выполняет тик активного эпизода.
func (s *Service) StepEpisode(msg api.ObsMsg) (api.ActMsg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.active(msg.EpisodeID)
	if err != nil {
		return api.ActMsg{}, err
	}
	if msg.Tick <= inst.CurrentTick {
		s.log.WithFields(logrus.Fields{
			"tick": msg.Tick,
			"last": inst.CurrentTick,
		}).Warn("Observation tick did not advance")
	}
	return inst.Step(msg), nil
}

// EndEpisode забывает агентов эпизода.
func (s *Service) EndEpisode(msg api.EndMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.active(msg.EpisodeID)
	if err != nil {
		return err
	}
	inst.Summary(msg.Reason)
	s.current = nil
	return nil
}

func (s *Service) active(id string) (*Instance, error) {
	if s.current == nil {
		return nil, ErrNoEpisode
	}
	if id != s.current.ID {
		return nil, fmt.Errorf("%w: got %q, active %q", ErrEpisodeMismatch, id, s.current.ID)
	}
	return s.current, nil
}

// resolveSeed: зерно из конфига, затем зерно эпизода, затем случайное.
func (s *Service) resolveSeed(episodeSeed int64) int64 {
	switch {
	case s.cfg.Seed != 0:
		return s.cfg.Seed
	case episodeSeed != 0:
		return episodeSeed
	}
	seed := utils.RandomSeed()
	s.log.WithField("seed", seed).Info("Using random master seed")
	return seed
}

// AgentView - открытое состояние агента для отладки.
type AgentView struct {
	ID            int    `json:"id"`
	Role          string `json:"role"`
	Meta          bool   `json:"meta"`
	Tick          int    `json:"tick"`
	Pose          string `json:"pose"`
	Intent        string `json:"intent"`
	Bumped        bool   `json:"bumped"`
	Seen          int    `json:"seen"`
	Unreachable   int    `json:"unreachable"`
	Structures    int    `json:"structures"`
	Disagreements int    `json:"disagreements"`
	Resets        int    `json:"resets"`
}

// EpisodeView - сводка активного эпизода.
type EpisodeView struct {
	ID     string      `json:"episode_id"`
	Seed   int64       `json:"seed"`
	Tick   int         `json:"tick"`
	Steps  int         `json:"steps"`
	Agents []AgentView `json:"agents"`
}

// Describe снимает сводку под блокировкой: тик в это время не идет.
func (s *Service) Describe() (EpisodeView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return EpisodeView{}, false
	}
	inst := s.current
	view := EpisodeView{
		ID:    inst.ID,
		Seed:  inst.Seed,
		Tick:  inst.CurrentTick,
		Steps: inst.Steps,
	}
	for _, a := range inst.Batch.Agents() {
		st := a.State()
		view.Agents = append(view.Agents, AgentView{
			ID:            a.ID(),
			Role:          a.Role().String(),
			Meta:          a.Meta(),
			Tick:          st.Tick,
			Pose:          st.Pose.String(),
			Intent:        st.Intent.String(),
			Bumped:        st.Bumped,
			Seen:          st.Seen,
			Unreachable:   st.Unreachable,
			Structures:    st.Structures,
			Disagreements: st.Disagreements,
			Resets:        st.Resets,
		})
	}
	return view, true
}
