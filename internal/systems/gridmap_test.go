package systems

import (
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/world"
)

// gridMap - карта для тестов навигации из ASCII-схемы.
// '#' стена, '.' пол, '?' невиданная клетка, буквы: пол с меткой.
// Все, что за пределами схемы, считается невиданным.
type gridMap struct {
	seen        map[domain.Location]bool
	walls       map[domain.Location]bool
	unreachable map[domain.Location]bool
	marks       map[rune]domain.Location
	policy      world.UnknownPolicy
	lo, hi      domain.Location
}

func parseGrid(policy world.UnknownPolicy, rows ...string) *gridMap {
	g := &gridMap{
		seen:        make(map[domain.Location]bool),
		walls:       make(map[domain.Location]bool),
		unreachable: make(map[domain.Location]bool),
		marks:       make(map[rune]domain.Location),
		policy:      policy,
	}
	for r, row := range rows {
		for c, ch := range row {
			l := domain.Location{Row: r, Col: c}
			switch ch {
			case '?':
				continue
			case '#':
				g.walls[l] = true
			case '.':
			default:
				g.marks[ch] = l
			}
			g.seen[l] = true
			if l.Col > g.hi.Col {
				g.hi.Col = l.Col
			}
			if l.Row > g.hi.Row {
				g.hi.Row = l.Row
			}
		}
	}
	return g
}

func (g *gridMap) at(mark rune) domain.Location { return g.marks[mark] }

func (g *gridMap) Passable(l domain.Location, allowUnknown bool) bool {
	if !g.seen[l] {
		return allowUnknown && g.policy == world.Optimistic
	}
	return !g.walls[l]
}

func (g *gridMap) Seen(l domain.Location) bool { return g.seen[l] }

func (g *gridMap) IsFrontier(l domain.Location) bool {
	if !g.seen[l] || g.walls[l] {
		return false
	}
	for _, n := range l.Neighbors() {
		if !g.seen[n] {
			return true
		}
	}
	return false
}

func (g *gridMap) IsUnreachable(l domain.Location) bool { return g.unreachable[l] }
func (g *gridMap) MarkUnreachable(l domain.Location)    { g.unreachable[l] = true }

func (g *gridMap) UnseenAround(l domain.Location, r int) int {
	n := 0
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			if !g.seen[l.Add(domain.Location{Row: dr, Col: dc})] {
				n++
			}
		}
	}
	return n
}

func (g *gridMap) Bounds() (lo, hi domain.Location) { return g.lo, g.hi }
func (g *gridMap) Policy() world.UnknownPolicy      { return g.policy }

// openGrid - полностью известная комната без препятствий.
func openGrid(rows, cols int) []string {
	out := make([]string, rows)
	line := make([]byte, cols)
	for i := range line {
		line[i] = '.'
	}
	for i := range out {
		out[i] = string(line)
	}
	return out
}
