package engine

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cogsguard-agent/internal/agent"
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/roles"
	"cogsguard-agent/internal/systems"
	"cogsguard-agent/internal/world"
	"cogsguard-agent/pkg/utils"
)

// Config хранит параметры запуска агентов
type Config struct {
	// Seed - мастер-зерно. 0 - взять зерно эпизода или случайное.
	// Зерно агента N = DeriveSeed(Seed, N)
	Seed int64 `yaml:"seed"`
	// URL среды и имя клиента в рукопожатии.
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
	// Agents - сколько агентов объявлять в HELLO. 0 - сколько скажет среда.
	Agents int `yaml:"agents"`
	// DebugAddr - адрес отладочного HTTP (health, version, debug/agents). Пусто - выключен.
	DebugAddr string `yaml:"debug_addr"`

	Log         LogConfig         `yaml:"log"`
	Roles       RolesConfig       `yaml:"roles"`
	Navigation  NavigationConfig  `yaml:"navigation"`
	Motion      MotionConfig      `yaml:"motion"`
	Economy     EconomyConfig     `yaml:"economy"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RolesConfig - роль агента по индексу. Если индекс вне Agents,
// роль берется из Order по кругу. "meta" - роль выбирает координатор.
type RolesConfig struct {
	Agents         []string `yaml:"agents"`
	Order          []string `yaml:"order"`
	ChangeInterval int      `yaml:"change_interval"`
}

type NavigationConfig struct {
	UnknownPolicy       string `yaml:"unknown_policy"`
	MaxExpansions       int    `yaml:"max_expansions"`
	FrontierSearchLimit int    `yaml:"frontier_search_limit"`
	HeadingPersistence  int    `yaml:"heading_persistence"`
	StuckThreshold      int    `yaml:"stuck_threshold"`
	StuckCooldown       int    `yaml:"stuck_cooldown"`
	OscillationWindow   int    `yaml:"oscillation_window"`
	PathTTL             int    `yaml:"path_ttl"`
}

type MotionConfig struct {
	CheckRadius    int  `yaml:"check_radius"`
	SelfCheck      bool `yaml:"self_check"`
	SelfCheckLimit int  `yaml:"self_check_limit"`
}

type EconomyConfig struct {
	CargoCapacity        int                       `yaml:"cargo_capacity"`
	GearCargoBonus       int                       `yaml:"gear_cargo_bonus"`
	GearCosts            map[string]map[string]int `yaml:"gear_costs"`
	HeartCost            map[string]int            `yaml:"heart_cost"`
	GearBumpLimit        int                       `yaml:"gear_bump_limit"`
	GearStepLimit        int                       `yaml:"gear_step_limit"`
	GearRetryAfter       int                       `yaml:"gear_retry_after"`
	ExtractorPatience    int                       `yaml:"extractor_patience"`
	ExtractorCooldown    int                       `yaml:"extractor_cooldown"`
	HostileAvoidDistance int                       `yaml:"hostile_avoid_distance"`
	StaleAfter           int                       `yaml:"stale_after"`
	JunctionBumpLimit    int                       `yaml:"junction_bump_limit"`
	JunctionRetryAfter   int                       `yaml:"junction_retry_after"`
	ChestBumpLimit       int                       `yaml:"chest_bump_limit"`
	ChestRetryAfter      int                       `yaml:"chest_retry_after"`
	EarlyExploreTicks    int                       `yaml:"early_explore_ticks"`
}

type CoordinatorConfig struct {
	Cooldown int `yaml:"cooldown"`
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	nav := systems.DefaultNavConfig()
	econ := roles.DefaultEconomy()

	gearCosts := make(map[string]map[string]int, len(econ.GearCosts))
	for r, c := range econ.GearCosts {
		gearCosts[r.String()] = copyCounts(c)
	}

	var order []string
	for _, r := range domain.DefaultRoleCycle {
		order = append(order, r.String())
	}

	return Config{
		URL:  "ws://localhost:8080/v1/ws",
		Name: "cogsguard",
		Log:  LogConfig{Level: "info", Format: "text"},
		Roles: RolesConfig{
			Order: order,
		},
		Navigation: NavigationConfig{
			UnknownPolicy:       "optimistic",
			MaxExpansions:       nav.MaxExpansions,
			FrontierSearchLimit: nav.FrontierSearchLimit,
			HeadingPersistence:  nav.HeadingPersistence,
			StuckThreshold:      nav.StuckThreshold,
			StuckCooldown:       nav.StuckCooldown,
			OscillationWindow:   nav.OscillationWindow,
			PathTTL:             nav.PathTTL,
		},
		Motion: MotionConfig{
			CheckRadius:    systems.DefaultBumpCheckRadius,
			SelfCheck:      true,
			SelfCheckLimit: systems.DefaultSelfCheckLimit,
		},
		Economy: EconomyConfig{
			CargoCapacity:        econ.CargoCapacity,
			GearCargoBonus:       econ.GearCargoBonus,
			GearCosts:            gearCosts,
			HeartCost:            copyCounts(econ.HeartCost),
			GearBumpLimit:        econ.GearBumpLimit,
			GearStepLimit:        econ.GearStepLimit,
			GearRetryAfter:       econ.GearRetryAfter,
			ExtractorPatience:    econ.ExtractorPatience,
			ExtractorCooldown:    econ.ExtractorCooldown,
			HostileAvoidDistance: econ.HostileAvoidDistance,
			StaleAfter:           econ.StaleAfter,
			JunctionBumpLimit:    econ.JunctionBumpLimit,
			JunctionRetryAfter:   econ.JunctionRetryAfter,
			ChestBumpLimit:       econ.ChestBumpLimit,
			ChestRetryAfter:      econ.ChestRetryAfter,
			EarlyExploreTicks:    econ.EarlyExploreTicks,
		},
		Coordinator: CoordinatorConfig{Cooldown: 40},
	}
}

// LoadConfig накладывает YAML-файл на значения по умолчанию.
// Поля, которых нет в файле, сохраняют значения NewConfig.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет имена ролей, политику и стоимости.
func (c Config) Validate() error {
	for _, name := range append(append([]string(nil), c.Roles.Agents...), c.Roles.Order...) {
		if _, ok := domain.ParseRole(name); !ok {
			return fmt.Errorf("unknown role %q", name)
		}
	}
	switch strings.ToLower(c.Navigation.UnknownPolicy) {
	case "", "optimistic", "conservative":
	default:
		return fmt.Errorf("unknown navigation.unknown_policy %q", c.Navigation.UnknownPolicy)
	}
	for name := range c.Economy.GearCosts {
		r, ok := domain.ParseRole(name)
		if !ok || r == domain.RoleMeta {
			return fmt.Errorf("gear cost for unknown role %q", name)
		}
	}
	if c.Agents < 0 {
		return fmt.Errorf("agents must be non-negative, got %d", c.Agents)
	}
	return nil
}

// RoleFor возвращает роль агента с индексом i и признак мета-агента.
func (c Config) RoleFor(i int) (domain.Role, bool) {
	name := ""
	switch {
	case i < len(c.Roles.Agents):
		name = c.Roles.Agents[i]
	case len(c.Roles.Order) > 0:
		name = c.Roles.Order[(i-len(c.Roles.Agents))%len(c.Roles.Order)]
	default:
		cycle := domain.DefaultRoleCycle
		return cycle[i%len(cycle)], false
	}
	r, _ := domain.ParseRole(name)
	return r, r == domain.RoleMeta
}

// AgentOptions собирает параметры агента с индексом id для эпизода с мастер-зерном seed.
func (c Config) AgentOptions(id int, seed int64) agent.Options {
	role, meta := c.RoleFor(id)
	n := c.Navigation
	return agent.Options{
		ID:     id,
		Role:   role,
		Meta:   meta,
		Seed:   utils.DeriveSeed(seed, id),
		Policy: world.ParseUnknownPolicy(n.UnknownPolicy),
		Navigation: systems.NavConfig{
			MaxExpansions:       n.MaxExpansions,
			FrontierSearchLimit: n.FrontierSearchLimit,
			HeadingPersistence:  n.HeadingPersistence,
			StuckThreshold:      n.StuckThreshold,
			StuckCooldown:       n.StuckCooldown,
			OscillationWindow:   n.OscillationWindow,
			PathTTL:             n.PathTTL,
		},
		Motion: systems.MotionConfig{
			CheckRadius:    c.Motion.CheckRadius,
			SelfCheck:      c.Motion.SelfCheck,
			SelfCheckLimit: c.Motion.SelfCheckLimit,
		},
		Economy: c.economy(),
	}
}

func (c Config) economy() roles.Economy {
	e := c.Economy
	out := roles.Economy{
		CargoCapacity:        e.CargoCapacity,
		GearCargoBonus:       e.GearCargoBonus,
		GearCosts:            make(map[domain.Role]domain.Cost, len(e.GearCosts)),
		HeartCost:            domain.Cost(copyCounts(e.HeartCost)),
		GearBumpLimit:        e.GearBumpLimit,
		GearStepLimit:        e.GearStepLimit,
		GearRetryAfter:       e.GearRetryAfter,
		ExtractorPatience:    e.ExtractorPatience,
		ExtractorCooldown:    e.ExtractorCooldown,
		HostileAvoidDistance: e.HostileAvoidDistance,
		StaleAfter:           e.StaleAfter,
		JunctionBumpLimit:    e.JunctionBumpLimit,
		JunctionRetryAfter:   e.JunctionRetryAfter,
		ChestBumpLimit:       e.ChestBumpLimit,
		ChestRetryAfter:      e.ChestRetryAfter,
		EarlyExploreTicks:    e.EarlyExploreTicks,
	}
	for name, cost := range e.GearCosts {
		if r, ok := domain.ParseRole(name); ok {
			out.GearCosts[r] = domain.Cost(copyCounts(cost))
		}
	}
	return out
}

// NewCoordinator создает координатора ролей или nil, если мета-агентов нет
// и ротация по интервалу выключена.
func (c Config) NewCoordinator(numAgents int) *roles.Coordinator {
	anyMeta := false
	for i := 0; i < numAgents; i++ {
		if _, meta := c.RoleFor(i); meta {
			anyMeta = true
			break
		}
	}
	if !anyMeta && c.Roles.ChangeInterval <= 0 {
		return nil
	}
	return roles.NewCoordinator(c.Coordinator.Cooldown, c.Roles.ChangeInterval)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
