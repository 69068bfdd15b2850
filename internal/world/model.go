package world

import (
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
)

// UnknownPolicy — как трактовать клетки, которые агент никогда не видел.
type UnknownPolicy uint8

const (
	// Optimistic - невиданная клетка проходима, пока не доказано обратное.
	Optimistic UnknownPolicy = iota
	// Conservative - невиданная клетка непроходима, пока ее не увидели.
	Conservative
)

// ParseUnknownPolicy: "conservative" -> Conservative, все остальное -> Optimistic.
func ParseUnknownPolicy(s string) UnknownPolicy {
	if s == "conservative" {
		return Conservative
	}
	return Optimistic
}

func (p UnknownPolicy) String() string {
	if p == Conservative {
		return "conservative"
	}
	return "optimistic"
}

// BootstrapRadius - окрестность начала координат, которая считается
// увиденной после первого слияния.
const BootstrapRadius = 1

// Model - постоянная карта, собранная из эгоцентричных наблюдений.
// Ключи - упакованные domain.Location (Location.Key).
type Model struct {
	vocab  *obs.Vocabulary
	policy UnknownPolicy

	cells       map[uint64][]obs.FeatureRecord
	views       map[uint64]obs.CellView
	seen        map[uint64]struct{}
	unreachable map[uint64]struct{}

	minRow, maxRow int
	minCol, maxCol int

	fused bool
}

// NewModel создает пустую карту.
func NewModel(vocab *obs.Vocabulary, policy UnknownPolicy) *Model {
	m := &Model{vocab: vocab, policy: policy}
	m.Reset()
	return m
}

// Reset очищает всю карту. Вызывается только на границе эпизода
// или при аварийном сбросе картографии.
func (m *Model) Reset() {
	m.cells = make(map[uint64][]obs.FeatureRecord)
	m.views = make(map[uint64]obs.CellView)
	m.seen = make(map[uint64]struct{})
	m.unreachable = make(map[uint64]struct{})
	m.minRow, m.maxRow, m.minCol, m.maxCol = 0, 0, 0, 0
	m.fused = false
}

// Fused - было ли хотя бы одно слияние в этом эпизоде.
func (m *Model) Fused() bool { return m.fused }

// Policy возвращает политику для невиданных клеток.
func (m *Model) Policy() UnknownPolicy { return m.policy }

// Vocabulary возвращает словарь эпизода.
func (m *Model) Vocabulary() *obs.Vocabulary { return m.vocab }

// Fuse переписывает клетки окна наблюдения с центром в pose.
// Каждая клетка окна перезаписывается целиком: клетка, которая теперь пуста,
// тоже получает пустой список. Возвращает абсолютные координаты слитых клеток.
func (m *Model) Fuse(o obs.Observation, pose domain.Location) []domain.Location {
	if !m.fused {
		m.seedBootstrap()
		m.fused = true
	}

	r := o.Radius
	fused := make([]domain.Location, 0, (2*r+1)*(2*r+1))
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			off := domain.Location{Row: dr, Col: dc}
			abs := pose.Add(off)
			k := abs.Key()

			records := o.Cells[off]
			if len(records) == 0 {
				delete(m.cells, k)
				delete(m.views, k)
			} else {
				m.cells[k] = append([]obs.FeatureRecord(nil), records...)
				m.views[k] = m.vocab.Describe(records)
			}
			m.markSeen(abs)
			fused = append(fused, abs)
		}
	}
	return fused
}

func (m *Model) seedBootstrap() {
	for dr := -BootstrapRadius; dr <= BootstrapRadius; dr++ {
		for dc := -BootstrapRadius; dc <= BootstrapRadius; dc++ {
			m.markSeen(domain.Location{Row: dr, Col: dc})
		}
	}
}

func (m *Model) markSeen(loc domain.Location) {
	if len(m.seen) == 0 {
		m.minRow, m.maxRow, m.minCol, m.maxCol = loc.Row, loc.Row, loc.Col, loc.Col
	}
	m.seen[loc.Key()] = struct{}{}
	if loc.Row < m.minRow {
		m.minRow = loc.Row
	}
	if loc.Row > m.maxRow {
		m.maxRow = loc.Row
	}
	if loc.Col < m.minCol {
		m.minCol = loc.Col
	}
	if loc.Col > m.maxCol {
		m.maxCol = loc.Col
	}
}

// Bounds возвращает углы прямоугольника, охватывающего SeenSet.
func (m *Model) Bounds() (lo, hi domain.Location) {
	return domain.Location{Row: m.minRow, Col: m.minCol}, domain.Location{Row: m.maxRow, Col: m.maxCol}
}

// Cell возвращает последние известные записи клетки.
func (m *Model) Cell(loc domain.Location) []obs.FeatureRecord {
	return m.cells[loc.Key()]
}

// View возвращает интерпретацию клетки. Для пустых и невиданных клеток — нулевое значение.
func (m *Model) View(loc domain.Location) obs.CellView {
	return m.views[loc.Key()]
}

// Seen - клетка хотя бы раз была в окне наблюдения.
func (m *Model) Seen(loc domain.Location) bool {
	_, ok := m.seen[loc.Key()]
	return ok
}

// SeenCount возвращает размер SeenSet.
func (m *Model) SeenCount() int { return len(m.seen) }

// IsWalkable - true, если в последних известных записях клетки нет блокирующего объекта.
// Невиданная клетка трактуется по политике.
func (m *Model) IsWalkable(loc domain.Location) bool {
	if !m.Seen(loc) {
		return m.policy == Optimistic
	}
	return !m.View(loc).Blocking()
}

// Passable - проходимость с явным разрешением неизвестных клеток.
// allowUnknown=false запрещает невиданные клетки независимо от политики.
func (m *Model) Passable(loc domain.Location, allowUnknown bool) bool {
	if !m.Seen(loc) {
		return allowUnknown && m.policy == Optimistic
	}
	return !m.View(loc).Blocking()
}

// IsFrontier - клетка увидена, проходима и соседствует хотя бы с одной невиданной.
func (m *Model) IsFrontier(loc domain.Location) bool {
	if !m.Seen(loc) || m.View(loc).Blocking() {
		return false
	}
	for _, n := range loc.Neighbors() {
		if !m.Seen(n) {
			return true
		}
	}
	return false
}

// UnseenAround считает невиданные клетки в квадрате радиуса r вокруг loc.
func (m *Model) UnseenAround(loc domain.Location, r int) int {
	n := 0
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			if !m.Seen(loc.Add(domain.Location{Row: dr, Col: dc})) {
				n++
			}
		}
	}
	return n
}

// MarkUnreachable добавляет клетку в UnreachableSet.
func (m *Model) MarkUnreachable(loc domain.Location) {
	m.unreachable[loc.Key()] = struct{}{}
}

// IsUnreachable - клетка в UnreachableSet.
func (m *Model) IsUnreachable(loc domain.Location) bool {
	_, ok := m.unreachable[loc.Key()]
	return ok
}

// UnreachableCount возвращает размер UnreachableSet.
func (m *Model) UnreachableCount() int { return len(m.unreachable) }
