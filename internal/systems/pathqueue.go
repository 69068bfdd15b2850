package systems

import (
	"container/heap"

	"cogsguard-agent/internal/domain"
)

// pathNode обертка для клетки в открытом списке A*
type pathNode struct {
	Loc   domain.Location
	G     int // Пройденная стоимость от старта
	F     int // G + эвристика. Чем меньше, тем раньше раскрываем.
	Seq   int // Порядок вставки, для детерминированного выбора при равенстве
	Index int // Индекс в куче (нужен для update)
}

// pathQueue реализует heap.Interface и хранит pathNode
type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	// MinHeap по F. При равенстве F раскрываем более глубокий узел (больше G),
	// затем - вставленный раньше.
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	if pq[i].G != pq[j].G {
		return pq[i].G > pq[j].G
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *pathQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*pathNode)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// Update изменяет стоимость узла, уже лежащего в очереди
func (pq *pathQueue) Update(item *pathNode, g, f int) {
	item.G = g
	item.F = f
	heap.Fix(pq, item.Index)
}
