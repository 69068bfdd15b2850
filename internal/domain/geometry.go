package domain

import "fmt"

// Location - абсолютная клетка сетки в системе координат эпизода.
// Начало координат (0,0): клетка спавна агента.
// Север — уменьшение Row, юг — увеличение Row, восток — увеличение Col.
type Location struct {
	Row int
	Col int
}

// Origin - клетка спавна.
var Origin = Location{}

// Упаковка Location в один uint64 для ключей карты.
//
//	[ Row (32) | Col (32) ]
//
// Каждая половина хранит int32 в дополнительном коде, поэтому
// отрицательные координаты упаковываются без смещения.
const (
	bitsCol  = 32
	shiftRow = bitsCol
	maskCol  = (1 << bitsCol) - 1
)

// Key возвращает упакованный ключ клетки.
func (l Location) Key() uint64 {
	return uint64(uint32(int32(l.Row)))<<shiftRow | uint64(uint32(int32(l.Col)))
}

// LocationFromKey распаковывает ключ, полученный из Key.
func LocationFromKey(k uint64) Location {
	return Location{
		Row: int(int32(uint32(k >> shiftRow))),
		Col: int(int32(uint32(k & maskCol))),
	}
}

// Add возвращает сумму двух векторов.
func (l Location) Add(o Location) Location {
	return Location{Row: l.Row + o.Row, Col: l.Col + o.Col}
}

// Sub возвращает разность l - o.
func (l Location) Sub(o Location) Location {
	return Location{Row: l.Row - o.Row, Col: l.Col - o.Col}
}

// Step возвращает соседнюю клетку в направлении d.
func (l Location) Step(d Direction) Location {
	return l.Add(d.Offset())
}

// Manhattan возвращает манхэттенское расстояние.
func (l Location) Manhattan(o Location) int {
	return abs(l.Row-o.Row) + abs(l.Col-o.Col)
}

// IsAdjacent - true, если клетки соседние по стороне (4-связность).
func (l Location) IsAdjacent(o Location) bool {
	return l.Manhattan(o) == 1
}

// Neighbors возвращает 4 соседние клетки в порядке Directions.
func (l Location) Neighbors() [4]Location {
	return [4]Location{
		l.Step(North),
		l.Step(South),
		l.Step(East),
		l.Step(West),
	}
}

// DirectionTo возвращает направление к соседней клетке.
// Для несоседних клеток возвращает NoDirection.
func (l Location) DirectionTo(o Location) Direction {
	for _, d := range Directions {
		if l.Step(d) == o {
			return d
		}
	}
	return NoDirection
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.Row, l.Col)
}

// Direction - одно из четырех направлений движения.
type Direction uint8

const (
	NoDirection Direction = iota
	North
	South
	East
	West
)

// Directions - фиксированный порядок обхода соседей.
var Directions = [4]Direction{North, South, East, West}

var directionOffsets = map[Direction]Location{
	North: {Row: -1, Col: 0},
	South: {Row: 1, Col: 0},
	East:  {Row: 0, Col: 1},
	West:  {Row: 0, Col: -1},
}

var directionNames = map[Direction]string{
	North: "north",
	South: "south",
	East:  "east",
	West:  "west",
}

// Offset возвращает вектор смещения. Для NoDirection нулевой.
func (d Direction) Offset() Location {
	return directionOffsets[d]
}

// Opposite возвращает обратное направление.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return NoDirection
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "none"
}

// ParseDirection конвертирует "north"/"south"/"east"/"west".
func ParseDirection(s string) Direction {
	for d, name := range directionNames {
		if name == s {
			return d
		}
	}
	return NoDirection
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
