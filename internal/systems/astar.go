package systems

import (
	"container/heap"

	"cogsguard-agent/internal/domain"
)

// DefaultMaxExpansions - предел раскрытых узлов A* на один поиск.
const DefaultMaxExpansions = 4000

// Grid - карта, по которой ищется путь.
type Grid interface {
	Passable(loc domain.Location, allowUnknown bool) bool
}

// PathOptions - параметры одного поиска.
type PathOptions struct {
	// AllowUnknown разрешает проходить через невиданные клетки.
	AllowUnknown bool
	// AdjacentGoal - цель достигнута в любой соседней с goal клетке.
	// Нужен для структур: они непроходимы, с ними взаимодействуют ударом.
	AdjacentGoal bool
	// MaxExpansions ограничивает работу поиска. 0: DefaultMaxExpansions.
	MaxExpansions int
	// Bounded ограничивает поиск прямоугольником [Min, Max].
	Bounded  bool
	Min, Max domain.Location
}

// FindPath ищет кратчайший 4-связный путь A* с манхэттенской эвристикой.
// Возвращает клетки пути без start. Если start уже удовлетворяет цели, путь пуст.
func FindPath(g Grid, start, goal domain.Location, opt PathOptions) ([]domain.Location, bool) {
	reached := func(l domain.Location) bool {
		if opt.AdjacentGoal {
			return l.IsAdjacent(goal)
		}
		return l == goal
	}
	h := func(l domain.Location) int {
		d := l.Manhattan(goal)
		if opt.AdjacentGoal && d > 0 {
			d--
		}
		return d
	}
	inBounds := func(l domain.Location) bool {
		if !opt.Bounded {
			return true
		}
		return l.Row >= opt.Min.Row && l.Row <= opt.Max.Row && l.Col >= opt.Min.Col && l.Col <= opt.Max.Col
	}

	if reached(start) {
		return nil, true
	}

	limit := opt.MaxExpansions
	if limit <= 0 {
		limit = DefaultMaxExpansions
	}

	open := &pathQueue{}
	heap.Init(open)
	nodes := make(map[uint64]*pathNode)
	closed := make(map[uint64]struct{})
	came := make(map[uint64]domain.Location)

	seq := 0
	startNode := &pathNode{Loc: start, G: 0, F: h(start), Seq: seq}
	nodes[start.Key()] = startNode
	heap.Push(open, startNode)

	expansions := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		ck := cur.Loc.Key()
		if _, done := closed[ck]; done {
			continue
		}
		closed[ck] = struct{}{}

		if reached(cur.Loc) {
			return reconstruct(came, start, cur.Loc), true
		}

		expansions++
		if expansions > limit {
			return nil, false
		}

		for _, n := range cur.Loc.Neighbors() {
			if !inBounds(n) || !g.Passable(n, opt.AllowUnknown) {
				continue
			}
			nk := n.Key()
			if _, done := closed[nk]; done {
				continue
			}
			ng := cur.G + 1
			if node, ok := nodes[nk]; ok {
				if ng < node.G {
					open.Update(node, ng, ng+h(n))
					came[nk] = cur.Loc
				}
				continue
			}
			seq++
			node := &pathNode{Loc: n, G: ng, F: ng + h(n), Seq: seq}
			nodes[nk] = node
			came[nk] = cur.Loc
			heap.Push(open, node)
		}
	}
	return nil, false
}

func reconstruct(came map[uint64]domain.Location, start, end domain.Location) []domain.Location {
	var rev []domain.Location
	for cur := end; cur != start; cur = came[cur.Key()] {
		rev = append(rev, cur)
	}
	path := make([]domain.Location, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
