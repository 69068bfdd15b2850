package systems

import (
	"strings"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/pkg/logger"
)

// Значения по умолчанию для трекера.
const (
	DefaultBumpCheckRadius = 5
	DefaultSelfCheckLimit  = 3
)

// MotionMap - уже слитая карта, с которой сверяется новое наблюдение.
type MotionMap interface {
	Seen(loc domain.Location) bool
	View(loc domain.Location) obs.CellView
}

// MotionConfig — параметры трекера.
type MotionConfig struct {
	// CheckRadius - радиус окрестности, которая сверяется при проверке удара.
	CheckRadius int
	// SelfCheck включает проверку собственного тега агента в центре кадра.
	SelfCheck bool
	// SelfCheckLimit - сколько тиков подряд без своего тега до сброса карты.
	SelfCheckLimit int
}

// MotionResult - результат сверки позиции с наблюдением
type MotionResult struct {
	Predicted domain.Location
	Pose      domain.Location
	Moved     bool
	Bumped    bool
	// Compared - сколько клеток реально сравнивалось.
	Compared int
	// Mismatch - первая клетка, где карта разошлась с наблюдением.
	Mismatch    domain.Location
	HasMismatch bool
	// AgentBlocked: окрестность без объектов, а агент стоит по курсу до и после хода.
	AgentBlocked bool
	// ResetMap: самопроверка провалена слишком много раз подряд.
	ResetMap bool
	// ExecutedDisagrees - среда сообщила выполненное действие, и оно не совпало с вердиктом.
	ExecutedDisagrees bool
}

// MotionTracker держит позицию агента. Позицию он выводит счислением
// по последнему намерению и подтверждает сверкой с наблюдением.
type MotionTracker struct {
	cfg   MotionConfig
	vocab *obs.Vocabulary

	pose       domain.Location
	lastIntent domain.Direction
	bumped     bool

	selfMisses    int
	disagreements int

	log *logrus.Entry
}

// NewMotionTracker создает трекер с позицией в начале координат.
func NewMotionTracker(cfg MotionConfig, vocab *obs.Vocabulary) *MotionTracker {
	if cfg.CheckRadius <= 0 {
		cfg.CheckRadius = DefaultBumpCheckRadius
	}
	if cfg.SelfCheckLimit <= 0 {
		cfg.SelfCheckLimit = DefaultSelfCheckLimit
	}
	return &MotionTracker{
		cfg:   cfg,
		vocab: vocab,
		log:   logger.Log.WithField("component", "motion"),
	}
}

// WithLogger подменяет логгер.
func (t *MotionTracker) WithLogger(l *logrus.Entry) *MotionTracker {
	t.log = l.WithField("component", "motion")
	return t
}

// Pose возвращает текущую позицию.
func (t *MotionTracker) Pose() domain.Location { return t.pose }

// Bumped - последнее движение не удалось.
func (t *MotionTracker) Bumped() bool { return t.bumped }

// Disagreements — сколько раз вердикт разошелся с выполненным действием от среды.
func (t *MotionTracker) Disagreements() int { return t.disagreements }

// Commit запоминает намерение, отправленное в среду на этом тике.
func (t *MotionTracker) Commit(intent domain.Intent) {
	t.lastIntent = intent.Direction()
}

// Reset возвращает трекер в начало координат.
func (t *MotionTracker) Reset() {
	t.pose = domain.Origin
	t.lastIntent = domain.NoDirection
	t.bumped = false
	t.selfMisses = 0
}

// Resolve применяет последнее намерение и сверяет его с новым наблюдением.
// Вызывается до слияния наблюдения с картой.
//
// Для каждой смещенной клетки окрестности сравнивается то, что карта знает
// об абсолютной клетке predicted+off, с тем, что наблюдение показывает по смещению off.
// Агенты нормализуются (они двигаются). Любое расхождение означает удар, позиция не меняется.
func (t *MotionTracker) Resolve(m MotionMap, o obs.Observation, self obs.SelfState) MotionResult {
	res := MotionResult{Predicted: t.pose.Step(t.lastIntent), Pose: t.pose}

	// 1. Самопроверка: в центре кадра должен стоять наш агент
	if t.cfg.SelfCheck {
		if self.AgentVisible {
			t.selfMisses = 0
		} else {
			t.selfMisses++
			if t.selfMisses >= t.cfg.SelfCheckLimit {
				t.log.WithField("misses", t.selfMisses).Warn("Own agent tag missing at origin, resetting map")
				t.selfMisses = 0
				res.ResetMap = true
			}
		}
	}

	// 2. Не было движения - нечего проверять
	if t.lastIntent == domain.NoDirection {
		t.bumped = false
		return res
	}

	// 3. Сверка окрестности
	r := t.cfg.CheckRadius
	if o.Radius < r {
		r = o.Radius
	}
	landmarks := 0
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			off := domain.Location{Row: dr, Col: dc}
			abs := res.Predicted.Add(off)
			if !m.Seen(abs) {
				continue
			}
			res.Compared++
			expected := m.View(abs).Signature()
			observed := t.vocab.Describe(o.At(off)).Signature()
			if expected != "" || observed != "" {
				landmarks++
			}
			if expected != observed && !res.HasMismatch {
				res.Mismatch = abs
				res.HasMismatch = true
			}
		}
	}

	// 4. Агенты в подписи не входят, поэтому без ориентиров упор в агента
	// неотличим от шага. Агент, который стоял по курсу и по курсу же виден, держит нас на месте.
	if !res.HasMismatch && landmarks == 0 &&
		m.View(res.Predicted).HasAgent() &&
		t.vocab.Describe(o.At(t.lastIntent.Offset())).HasAgent() {
		res.AgentBlocked = true
	}

	// 5. Вердикт
	if res.HasMismatch || res.AgentBlocked {
		res.Bumped = true
	} else {
		res.Moved = true
		res.Pose = res.Predicted
		t.pose = res.Predicted
	}
	t.bumped = res.Bumped

	// 6. Перекрестная проверка с выполненным действием, если среда его сообщает
	if self.LastAction != "" {
		// Упершееся движение среда тоже считает выполненным move_*.
		executed := domain.NoDirection
		if strings.HasPrefix(self.LastAction, "move_") {
			executed = domain.ParseDirection(strings.TrimPrefix(self.LastAction, "move_"))
		}
		switch {
		case executed == domain.NoDirection && res.Moved:
			res.ExecutedDisagrees = true
		case executed != domain.NoDirection && executed != t.lastIntent:
			res.ExecutedDisagrees = true
		}
		if res.ExecutedDisagrees {
			t.disagreements++
			t.log.WithFields(logrus.Fields{
				"intended": t.lastIntent.String(),
				"executed": self.LastAction,
				"moved":    res.Moved,
			}).Debug("Executed action disagrees with motion verdict")
		}
	}

	t.log.WithFields(logrus.Fields{
		"pose":     res.Pose.String(),
		"intended": t.lastIntent.String(),
		"bumped":   res.Bumped,
		"compared": res.Compared,
	}).Debug("Motion resolved")

	return res
}
