package agent

import (
	"strings"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/internal/obs/obstest"
)

// simCell - объект на клетке истинной карты.
type simCell struct {
	tags     []string
	features map[string]int
}

// simulator — упрощенная среда для сквозных тестов: рисует эгоцентричные
// кадры из истинной карты и исполняет действия. Наблюдение тика t отражает
// действие, выданное на тике t-1.
type simulator struct {
	radius  int
	walls   map[domain.Location]bool
	objects map[domain.Location]*simCell

	pos   map[int]domain.Location
	spawn map[int]domain.Location
	inv   map[int]domain.Inventory
	vibe  map[int]int
	last  map[int]int

	hideSelf   bool
	reportLast bool

	delivered domain.Inventory
	bumps     int
}

// parseWorld: '#' стена, '.' пол, 'H' hub, 'C' сундук, 'J' точка территории,
// 'c'/'o' экстракторы углерода и кислорода, 'm' станция добытчика,
// цифры - стартовые клетки агентов.
func parseWorld(radius int, rows ...string) *simulator {
	s := &simulator{
		radius:    radius,
		walls:     make(map[domain.Location]bool),
		objects:   make(map[domain.Location]*simCell),
		pos:       make(map[int]domain.Location),
		spawn:     make(map[int]domain.Location),
		inv:       make(map[int]domain.Inventory),
		vibe:      make(map[int]int),
		last:      make(map[int]int),
		delivered: domain.Inventory{},
	}
	for r, row := range rows {
		for c, ch := range row {
			l := domain.Location{Row: r, Col: c}
			switch {
			case ch == '#':
				s.walls[l] = true
			case ch == 'H':
				s.objects[l] = &simCell{tags: []string{"hub"}}
			case ch == 'C':
				s.objects[l] = &simCell{tags: []string{"chest"}}
			case ch == 'J':
				s.objects[l] = &simCell{tags: []string{"junction"}}
			case ch == 'm':
				s.objects[l] = &simCell{tags: []string{"miner_station"}}
			case ch == 'c':
				s.objects[l] = &simCell{tags: []string{"carbon_extractor"}, features: map[string]int{obs.FeatureRemainingUses: 10}}
			case ch == 'o':
				s.objects[l] = &simCell{tags: []string{"oxygen_extractor"}, features: map[string]int{obs.FeatureRemainingUses: 10}}
			case ch >= '0' && ch <= '9':
				id := int(ch - '0')
				s.pos[id] = l
				s.spawn[id] = l
				s.inv[id] = domain.Inventory{}
			}
		}
	}
	return s
}

// relative - истинная позиция агента в его собственной системе координат.
func (s *simulator) relative(id int) domain.Location {
	return s.pos[id].Sub(s.spawn[id])
}

func (s *simulator) render(id int) []byte {
	f := obstest.NewFrame(s.radius)
	pos := s.pos[id]
	center := domain.Location{}
	for dr := -s.radius; dr <= s.radius; dr++ {
		for dc := -s.radius; dc <= s.radius; dc++ {
			off := domain.Location{Row: dr, Col: dc}
			abs := pos.Add(off)
			if s.walls[abs] {
				f.Tag(off, "wall")
			}
			if c := s.objects[abs]; c != nil {
				for _, tag := range c.tags {
					f.Tag(off, tag)
				}
				for name, v := range c.features {
					f.Feature(off, name, v)
				}
			}
			for other, p := range s.pos {
				if other != id && p == abs {
					f.Tag(off, "agent")
				}
			}
		}
	}
	if !s.hideSelf {
		f.Self()
	}
	for item, n := range s.inv[id] {
		if n > 0 {
			f.Feature(center, obs.InventoryPrefix+item, n)
		}
	}
	f.Feature(center, obs.FeatureVibe, s.vibe[id])
	if s.reportLast {
		f.Feature(center, obs.FeatureLastAction, s.last[id])
	}
	return f.Bytes()
}

func (s *simulator) apply(id, action int) {
	s.last[id] = action
	name := obstest.ActionNames[action]
	switch {
	case strings.HasPrefix(name, "move_"):
		d := domain.ParseDirection(strings.TrimPrefix(name, "move_"))
		target := s.pos[id].Step(d)
		if s.walls[target] {
			s.bumps++
			return
		}
		if c := s.objects[target]; c != nil {
			s.bumps++
			s.interact(id, c)
			return
		}
		for other, p := range s.pos {
			if other != id && p == target {
				return
			}
		}
		s.pos[id] = target
	case strings.HasPrefix(name, "change_vibe_"):
		v := strings.TrimPrefix(name, "change_vibe_")
		for i, n := range obstest.VibeNames {
			if n == v {
				s.vibe[id] = i
			}
		}
	}
}

func (s *simulator) interact(id int, c *simCell) {
	inv := s.inv[id]
	for _, tag := range c.tags {
		switch {
		case tag == "hub":
			for _, r := range domain.Resources {
				s.delivered[r] += inv[r]
				delete(inv, r)
			}
		case strings.HasSuffix(tag, "_extractor"):
			res := strings.TrimSuffix(tag, "_extractor")
			if c.features[obs.FeatureRemainingUses] > 0 && inv.Cargo() < 4 {
				inv[res]++
				c.features[obs.FeatureRemainingUses]--
			}
		case tag == "miner_station":
			inv["miner"] = 1
		}
	}
}

// run прогоняет одного агента ticks тиков и вызывает check перед каждым шагом.
func (s *simulator) run(a *Agent, ticks int, check func(tick int)) {
	for tick := 0; tick < ticks; tick++ {
		if check != nil {
			check(tick)
		}
		action := a.Step(Input{Tick: tick, Tokens: s.render(a.ID())})
		s.apply(a.ID(), action)
	}
}
