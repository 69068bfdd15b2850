package systems

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/world"
	"cogsguard-agent/pkg/logger"
)

// NavMap - то, что навигатор читает из карты мира.
type NavMap interface {
	Grid
	Seen(loc domain.Location) bool
	IsFrontier(loc domain.Location) bool
	IsUnreachable(loc domain.Location) bool
	MarkUnreachable(loc domain.Location)
	UnseenAround(loc domain.Location, r int) int
	Bounds() (lo, hi domain.Location)
	Policy() world.UnknownPolicy
}

// NavConfig - параметры навигатора.
type NavConfig struct {
	MaxExpansions       int
	FrontierSearchLimit int
	HeadingPersistence  int
	StuckThreshold      int
	StuckCooldown       int
	OscillationWindow   int
	PathTTL             int
	BoundsMargin        int
	ExploreAttempts     int
}

// DefaultNavConfig возвращает параметры по умолчанию.
func DefaultNavConfig() NavConfig {
	return NavConfig{
		MaxExpansions:       DefaultMaxExpansions,
		FrontierSearchLimit: 3000,
		HeadingPersistence:  8,
		StuckThreshold:      5,
		StuckCooldown:       50,
		OscillationWindow:   6,
		PathTTL:             40,
		BoundsMargin:        4,
		ExploreAttempts:     3,
	}
}

// headingCycle - порядок перебора направлений при смене курса.
var headingCycle = [4]domain.Direction{domain.East, domain.South, domain.West, domain.North}

// navTarget - цель с закешированным путем.
// path[0] - следующая клетка, в которую нужно шагнуть из at.
type navTarget struct {
	valid    bool
	target   domain.Location
	adjacent bool
	at       domain.Location
	path     []domain.Location
	tick     int
}

func (c *navTarget) invalidate() {
	c.valid = false
	c.path = nil
}

// Navigator выбирает следующий шаг: A* к цели, фронтир без цели,
// удержание курса, если фронтира нет.
type Navigator struct {
	cfg NavConfig
	m   NavMap
	rng *rand.Rand

	cache    navTarget
	searches int

	history []domain.Location

	heading      domain.Direction
	headingSteps int

	exploreTarget    domain.Location
	hasExploreTarget bool

	lastPose, lastTarget domain.Location
	hasLast              bool
	noProgress           int
	stuck                map[uint64]int

	log *logrus.Entry
}

// NewNavigator создает навигатор. rng используется только для разрешения ничьих.
func NewNavigator(cfg NavConfig, m NavMap, rng *rand.Rand) *Navigator {
	def := DefaultNavConfig()
	if cfg.MaxExpansions <= 0 {
		cfg.MaxExpansions = def.MaxExpansions
	}
	if cfg.FrontierSearchLimit <= 0 {
		cfg.FrontierSearchLimit = def.FrontierSearchLimit
	}
	if cfg.HeadingPersistence <= 0 {
		cfg.HeadingPersistence = def.HeadingPersistence
	}
	if cfg.StuckThreshold <= 0 {
		cfg.StuckThreshold = def.StuckThreshold
	}
	if cfg.StuckCooldown <= 0 {
		cfg.StuckCooldown = def.StuckCooldown
	}
	if cfg.OscillationWindow <= 2 {
		cfg.OscillationWindow = def.OscillationWindow
	}
	if cfg.PathTTL <= 0 {
		cfg.PathTTL = def.PathTTL
	}
	if cfg.BoundsMargin <= 0 {
		cfg.BoundsMargin = def.BoundsMargin
	}
	if cfg.ExploreAttempts <= 0 {
		cfg.ExploreAttempts = def.ExploreAttempts
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Navigator{
		cfg:   cfg,
		m:     m,
		rng:   rng,
		stuck: make(map[uint64]int),
		log:   logger.Log.WithField("component", "navigator"),
	}
}

// WithLogger подменяет логгер.
func (n *Navigator) WithLogger(l *logrus.Entry) *Navigator {
	n.log = l.WithField("component", "navigator")
	return n
}

// Reset забывает кеш, историю и курс. Вызывается вместе со сбросом карты.
func (n *Navigator) Reset() {
	n.cache.invalidate()
	n.history = nil
	n.heading = domain.NoDirection
	n.headingSteps = 0
	n.hasExploreTarget = false
	n.hasLast = false
	n.noProgress = 0
	n.stuck = make(map[uint64]int)
}

// Observe сообщает навигатору итог движения за тик.
func (n *Navigator) Observe(pose domain.Location, bumped bool) {
	n.history = append(n.history, pose)
	if len(n.history) > 4*n.cfg.OscillationWindow {
		n.history = n.history[len(n.history)-n.cfg.OscillationWindow:]
	}
	if bumped {
		n.cache.invalidate()
		// Упершийся курс меняем сразу
		n.headingSteps = n.cfg.HeadingPersistence
	}
}

// Invalidate сбрасывает закешированный путь.
func (n *Navigator) Invalidate() { n.cache.invalidate() }

// Searches — сколько раз запускался A*.
func (n *Navigator) Searches() int { return n.searches }

// CachedPath возвращает остаток закешированного пути.
func (n *Navigator) CachedPath() []domain.Location {
	if !n.cache.valid {
		return nil
	}
	return append([]domain.Location(nil), n.cache.path...)
}

// RecentlyStuck - цель недавно признана точкой застревания.
func (n *Navigator) RecentlyStuck(loc domain.Location, tick int) bool {
	at, ok := n.stuck[loc.Key()]
	return ok && tick-at < n.cfg.StuckCooldown
}

// Oscillating: последние OscillationWindow позиций чередуют две клетки (A,B,A,B,...).
// Стоянка на месте с последующим шагом колебанием не считается.
func (n *Navigator) Oscillating() bool {
	w := n.cfg.OscillationWindow
	if len(n.history) < w {
		return false
	}
	win := n.history[len(n.history)-w:]
	for i := 1; i < len(win); i++ {
		if win[i] == win[i-1] {
			return false
		}
		if i >= 2 && win[i] != win[i-2] {
			return false
		}
	}
	return true
}

// StepToward возвращает шаг к клетке target.
// Noop, если агент уже там или пути нет: что делать дальше, решает роль.
func (n *Navigator) StepToward(pose, target domain.Location, tick int) domain.Intent {
	if pose == target {
		n.hasLast = false
		return domain.Noop()
	}
	return n.step(pose, target, false, tick)
}

// Approach подводит агента к соседней с target клетке и затем толкает target.
// Так происходит взаимодействие со структурами.
func (n *Navigator) Approach(pose, target domain.Location, tick int) domain.Intent {
	if pose.IsAdjacent(target) {
		n.hasLast = false
		return domain.Interact(pose.DirectionTo(target))
	}
	if pose == target {
		return domain.Noop()
	}
	return n.step(pose, target, true, tick)
}

func (n *Navigator) step(pose, target domain.Location, adjacent bool, tick int) domain.Intent {
	path, ok := n.route(pose, target, adjacent, tick)
	if !ok || len(path) == 0 {
		// Пути нет: застреванием это не считаем, решение за ролью
		n.hasLast = false
		return domain.Noop()
	}

	if n.trackProgress(pose, target) {
		n.log.WithFields(logrus.Fields{
			"pose":   pose.String(),
			"target": target.String(),
		}).Debug("Stuck on target, breaking out")
		n.cache.invalidate()
		n.stuck[target.Key()] = tick
		return n.fallback(pose)
	}
	if n.Oscillating() {
		n.log.WithField("pose", pose.String()).Debug("Oscillation detected")
		n.history = nil
		n.cache.invalidate()
		return n.fallback(pose)
	}
	return domain.Move(pose.DirectionTo(path[0]))
}

// trackProgress считает тики без продвижения для одной пары (pose, target).
func (n *Navigator) trackProgress(pose, target domain.Location) bool {
	if n.hasLast && pose == n.lastPose && target == n.lastTarget {
		n.noProgress++
	} else {
		n.lastPose, n.lastTarget, n.hasLast = pose, target, true
		n.noProgress = 0
	}
	if n.noProgress > n.cfg.StuckThreshold {
		n.noProgress = 0
		return true
	}
	return false
}

// route возвращает путь из кеша или считает новый.
// Сначала ищем только по известным клеткам, затем, при оптимистичной политике,
// разрешаем невиданные.
func (n *Navigator) route(pose, target domain.Location, adjacent bool, tick int) ([]domain.Location, bool) {
	if path, ok := n.cached(pose, target, adjacent, tick); ok {
		return path, true
	}

	opt := PathOptions{
		AdjacentGoal:  adjacent,
		MaxExpansions: n.cfg.MaxExpansions,
		Bounded:       true,
	}
	opt.Min, opt.Max = n.searchBounds(pose, target)

	n.searches++
	path, ok := FindPath(n.m, pose, target, opt)
	if !ok && n.m.Policy() == world.Optimistic {
		opt.AllowUnknown = true
		path, ok = FindPath(n.m, pose, target, opt)
	}
	if !ok || len(path) == 0 {
		n.cache.invalidate()
		return nil, ok
	}

	n.cache = navTarget{
		valid:    true,
		target:   target,
		adjacent: adjacent,
		at:       pose,
		path:     path,
		tick:     tick,
	}
	return path, true
}

func (n *Navigator) cached(pose, target domain.Location, adjacent bool, tick int) ([]domain.Location, bool) {
	c := &n.cache
	if !c.valid || c.target != target || c.adjacent != adjacent || tick-c.tick > n.cfg.PathTTL {
		return nil, false
	}
	switch {
	case pose == c.at:
	case len(c.path) > 0 && pose == c.path[0]:
		c.path = c.path[1:]
		c.at = pose
	default:
		c.invalidate()
		return nil, false
	}
	if len(c.path) == 0 || !n.m.Passable(c.path[0], true) {
		c.invalidate()
		return nil, false
	}
	return c.path, true
}

func (n *Navigator) searchBounds(pose, target domain.Location) (lo, hi domain.Location) {
	lo, hi = n.m.Bounds()
	for _, l := range [2]domain.Location{pose, target} {
		if l.Row < lo.Row {
			lo.Row = l.Row
		}
		if l.Col < lo.Col {
			lo.Col = l.Col
		}
		if l.Row > hi.Row {
			hi.Row = l.Row
		}
		if l.Col > hi.Col {
			hi.Col = l.Col
		}
	}
	mg := n.cfg.BoundsMargin
	return domain.Location{Row: lo.Row - mg, Col: lo.Col - mg}, domain.Location{Row: hi.Row + mg, Col: hi.Col + mg}
}

// fallback - удержание курса HeadingPersistence шагов, затем смена направления
// по кругу восток, юг, запад, север. Предпочитаем направления с большим числом невиданных клеток.
func (n *Navigator) fallback(pose domain.Location) domain.Intent {
	if n.heading != domain.NoDirection && n.headingSteps < n.cfg.HeadingPersistence &&
		n.m.Passable(pose.Step(n.heading), true) {
		n.headingSteps++
		return domain.Move(n.heading)
	}

	start := 0
	for i, d := range headingCycle {
		if d == n.heading {
			start = i + 1
		}
	}

	bestScore := -1
	var best []domain.Direction
	for i := 0; i < len(headingCycle); i++ {
		d := headingCycle[(start+i)%len(headingCycle)]
		if !n.m.Passable(pose.Step(d), true) {
			continue
		}
		// Смотрим на несколько клеток вперед по направлению
		ahead := pose.Add(domain.Location{Row: 4 * d.Offset().Row, Col: 4 * d.Offset().Col})
		score := n.m.UnseenAround(ahead, 2)
		switch {
		case score > bestScore:
			bestScore = score
			best = []domain.Direction{d}
		case score == bestScore:
			best = append(best, d)
		}
	}
	if len(best) == 0 {
		return domain.Noop()
	}

	d := best[0]
	if len(best) > 1 {
		d = best[n.rng.Intn(len(best))]
	}
	n.heading = d
	n.headingSteps = 1
	return domain.Move(d)
}
