package systems

import (
	"cogsguard-agent/internal/domain"
)

// ExploreOptions - поведение исследования для конкретной роли.
type ExploreOptions struct {
	// PreferUnseen: среди ближайших клеток фронтира выбирать ту, вокруг которой
	// больше невиданного. Так разведчик тянется в неисследованные области.
	PreferUnseen bool
}

const (
	// preferUnseenBand — насколько дальше ближайшей можно взять клетку фронтира.
	preferUnseenBand = 4
	// preferUnseenRadius - радиус подсчета невиданных клеток.
	preferUnseenRadius = 3
)

// Explore ведет агента к ближайшей клетке фронтира, которая не отмечена
// недостижимой. Если фронтир пуст или недостижим, работает удержание курса.
func (n *Navigator) Explore(pose domain.Location, tick int, opts ExploreOptions) domain.Intent {
	for attempt := 0; attempt < n.cfg.ExploreAttempts; attempt++ {
		target, ok := n.pickFrontier(pose, tick, opts)
		if !ok {
			break
		}
		intent := n.StepToward(pose, target, tick)
		if !intent.IsNoop() {
			n.exploreTarget, n.hasExploreTarget = target, true
			return intent
		}
		n.log.WithField("frontier", target.String()).Debug("Frontier unreachable")
		n.m.MarkUnreachable(target)
		n.hasExploreTarget = false
	}
	n.hasExploreTarget = false
	return n.fallback(pose)
}

// ExploreTarget возвращает текущую клетку фронтира.
func (n *Navigator) ExploreTarget() (domain.Location, bool) {
	return n.exploreTarget, n.hasExploreTarget
}

func (n *Navigator) usableFrontier(loc, pose domain.Location, tick int) bool {
	return loc != pose && n.m.IsFrontier(loc) && !n.m.IsUnreachable(loc) && !n.RecentlyStuck(loc, tick)
}

// pickFrontier - BFS по известным проходимым клеткам от pose.
// Поиск ограничен FrontierSearchLimit посещенными клетками.
func (n *Navigator) pickFrontier(pose domain.Location, tick int, opts ExploreOptions) (domain.Location, bool) {
	if n.hasExploreTarget && n.usableFrontier(n.exploreTarget, pose, tick) {
		return n.exploreTarget, true
	}

	type item struct {
		loc  domain.Location
		dist int
	}
	band := 0
	if opts.PreferUnseen {
		band = preferUnseenBand
	}

	visited := map[uint64]struct{}{pose.Key(): {}}
	queue := []item{{loc: pose, dist: 0}}
	var found []item
	firstDist := -1

	for head := 0; head < len(queue) && len(visited) <= n.cfg.FrontierSearchLimit; head++ {
		cur := queue[head]
		if firstDist >= 0 && cur.dist > firstDist+band {
			break
		}
		if n.usableFrontier(cur.loc, pose, tick) {
			if firstDist < 0 {
				firstDist = cur.dist
			}
			found = append(found, cur)
			if !opts.PreferUnseen {
				break
			}
		}
		for _, nb := range cur.loc.Neighbors() {
			k := nb.Key()
			if _, ok := visited[k]; ok {
				continue
			}
			if !n.m.Seen(nb) || !n.m.Passable(nb, false) {
				continue
			}
			visited[k] = struct{}{}
			queue = append(queue, item{loc: nb, dist: cur.dist + 1})
		}
	}

	if len(found) == 0 {
		return domain.Location{}, false
	}
	if !opts.PreferUnseen {
		return found[0].loc, true
	}

	best := found[0]
	bestScore := n.m.UnseenAround(best.loc, preferUnseenRadius)
	for _, f := range found[1:] {
		if s := n.m.UnseenAround(f.loc, preferUnseenRadius); s > bestScore {
			best, bestScore = f, s
		}
	}
	return best.loc, true
}
