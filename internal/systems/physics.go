package systems

import "cogsguard-agent/internal/domain"

// Line возвращает клетки прямой от a до b включительно.
// Алгоритм Брезенхэма, только целочисленная арифметика.
func Line(a, b domain.Location) []domain.Location {
	if a == b {
		return []domain.Location{a}
	}

	r0, c0 := a.Row, a.Col
	dc := abs(b.Col - c0)
	dr := abs(b.Row - r0)
	sc, sr := sign(b.Col-c0), sign(b.Row-r0)

	out := make([]domain.Location, 0, max(dc, dr)+1)
	err := dc - dr
	for {
		out = append(out, domain.Location{Row: r0, Col: c0})
		if r0 == b.Row && c0 == b.Col {
			break
		}
		e2 := err * 2
		if e2 > -dr {
			err -= dr
			c0 += sc
		}
		if e2 < dc {
			err += dc
			r0 += sr
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
