package discovery

import (
	"strings"

	"github.com/sirupsen/logrus"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/pkg/logger"
)

// CellSource - источник интерпретированных клеток (world.Model).
type CellSource interface {
	View(loc domain.Location) obs.CellView
}

// Collectives - id коллективов для признака "collective".
type Collectives struct {
	Cogs  int
	Clips int
	Known bool
}

// Registry хранит обнаруженные ориентиры: одна структура на клетку,
// плюс индекс по типу в порядке обнаружения.
type Registry struct {
	collectives Collectives

	byKey  map[uint64]*domain.Structure
	byType map[domain.StructureType][]domain.Location

	log *logrus.Entry
}

// NewRegistry создает пустой реестр.
func NewRegistry(collectives Collectives) *Registry {
	r := &Registry{
		collectives: collectives,
		log:         logger.Log.WithField("component", "discovery"),
	}
	r.Reset()
	return r
}

// WithLogger подменяет логгер (обычно на логгер агента).
func (r *Registry) WithLogger(l *logrus.Entry) *Registry {
	r.log = l.WithField("component", "discovery")
	return r
}

// Reset забывает все структуры.
func (r *Registry) Reset() {
	r.byKey = make(map[uint64]*domain.Structure)
	r.byType = make(map[domain.StructureType][]domain.Location)
}

// Observe просматривает только что слитые клетки и обновляет реестр.
// Возвращает число новых структур.
func (r *Registry) Observe(src CellSource, fused []domain.Location, tick int) int {
	created := 0
	for _, loc := range fused {
		view := src.View(loc)
		if view.Empty() {
			continue
		}
		st, resource, ok := Classify(view)
		if !ok {
			continue
		}
		if r.upsert(loc, st, resource, view, tick) {
			created++
		}
	}
	return created
}

func (r *Registry) upsert(loc domain.Location, st domain.StructureType, resource string, view obs.CellView, tick int) bool {
	k := loc.Key()
	s, exists := r.byKey[k]
	if !exists {
		s = &domain.Structure{
			Location:      loc,
			Type:          st,
			RemainingUses: domain.UnknownUses,
			FirstSeen:     tick,
		}
		r.byKey[k] = s
		r.byType[st] = append(r.byType[st], loc)
		r.log.WithFields(logrus.Fields{
			"type":     st.String(),
			"location": loc.String(),
			"tick":     tick,
		}).Debug("Structure discovered")
	} else if s.Type != st {
		r.removeFromIndex(s.Type, loc)
		s.Type = st
		r.byType[st] = append(r.byType[st], loc)
	}

	s.Name = view.PrimaryTag()
	s.Resource = resource
	s.Alignment = r.alignment(st, view)
	s.LastSeen = tick
	if uses, ok := view.Feature(obs.FeatureRemainingUses); ok {
		s.RemainingUses = uses
	}
	if cd, ok := view.Feature(obs.FeatureCooldown); ok {
		s.Cooldown = cd
	} else {
		s.Cooldown = 0
	}
	if view.Inventory != nil {
		s.Inventory = copyInventory(view.Inventory)
	} else if st == domain.Hub && s.Inventory != nil {
		// Центр видит пустой склад: все ресурсы израсходованы.
		s.Inventory = map[string]int{}
	}
	return !exists
}

func (r *Registry) removeFromIndex(st domain.StructureType, loc domain.Location) {
	locs := r.byType[st]
	for i, l := range locs {
		if l == loc {
			r.byType[st] = append(locs[:i], locs[i+1:]...)
			return
		}
	}
}

// Classify определяет тип ориентира по основному тегу клетки.
// Стены и агенты ориентирами не являются.
func Classify(view obs.CellView) (domain.StructureType, string, bool) {
	name := strings.ToLower(view.PrimaryTag())
	switch {
	case name == "unknown", name == "wall", obs.IsAgentTag(name):
		return domain.StructureUnknown, "", false
	case strings.Contains(name, "miner_station"):
		return domain.MinerStation, "", true
	case strings.Contains(name, "scout_station"):
		return domain.ScoutStation, "", true
	case strings.Contains(name, "aligner_station"):
		return domain.AlignerStation, "", true
	case strings.Contains(name, "scrambler_station"):
		return domain.ScramblerStation, "", true
	case strings.Contains(name, "junction"), strings.Contains(name, "supply_depot"):
		return domain.Junction, "", true
	case strings.Contains(name, "hub"), strings.Contains(name, "nexus"):
		return domain.Hub, "", true
	case strings.Contains(name, "extractor"):
		for _, res := range domain.Resources {
			if strings.HasPrefix(name, res) {
				return domain.Extractor, res, true
			}
		}
		return domain.Extractor, "", true
	case strings.Contains(name, "chest"):
		return domain.Chest, "", true
	}
	return domain.StructureUnknown, "", false
}

// alignment выводит принадлежность. Порядок приоритета:
//  1. признак collective с известным id коллектива
//  2. тег или имя, содержащие cogs/clips
//  3. флаг clipped > 0 (территория захвачена противником)
//  4. нейтральная для точек территории, неизвестная для прочих
//
// Hub всегда свой.
func (r *Registry) alignment(st domain.StructureType, view obs.CellView) domain.Alignment {
	if st == domain.Hub {
		return domain.Friendly
	}
	if id, ok := view.Feature(obs.FeatureCollective); ok && r.collectives.Known {
		switch id {
		case r.collectives.Cogs:
			return domain.Friendly
		case r.collectives.Clips:
			return domain.Hostile
		}
	}
	for _, t := range view.Tags {
		t = strings.ToLower(t)
		if strings.Contains(t, "cogs") {
			return domain.Friendly
		}
		if strings.Contains(t, "clips") {
			return domain.Hostile
		}
	}
	if clipped, ok := view.Feature(obs.FeatureClipped); ok && clipped > 0 {
		return domain.Hostile
	}
	if st == domain.Junction {
		return domain.Neutral
	}
	return domain.AlignmentUnknown
}

// Get возвращает копию структуры в клетке.
func (r *Registry) Get(loc domain.Location) (domain.Structure, bool) {
	s, ok := r.byKey[loc.Key()]
	if !ok {
		return domain.Structure{}, false
	}
	return *s, true
}

// All возвращает структуры типа st в порядке обнаружения.
func (r *Registry) All(st domain.StructureType) []domain.Structure {
	locs := r.byType[st]
	out := make([]domain.Structure, 0, len(locs))
	for _, l := range locs {
		out = append(out, *r.byKey[l.Key()])
	}
	return out
}

// Nearest ищет ближайшую по Манхэттену структуру типа st, проходящую фильтр.
// При равенстве расстояний побеждает обнаруженная раньше.
func (r *Registry) Nearest(st domain.StructureType, from domain.Location, keep func(domain.Structure) bool) (domain.Structure, bool) {
	var best domain.Structure
	found := false
	bestDist := 0
	for _, l := range r.byType[st] {
		s := *r.byKey[l.Key()]
		if keep != nil && !keep(s) {
			continue
		}
		d := from.Manhattan(l)
		if !found || d < bestDist {
			best, bestDist, found = s, d, true
		}
	}
	return best, found
}

// Count возвращает число известных структур типа st.
func (r *Registry) Count(st domain.StructureType) int {
	return len(r.byType[st])
}

// CountAligned считает структуры типа st с принадлежностью a.
func (r *Registry) CountAligned(st domain.StructureType, a domain.Alignment) int {
	n := 0
	for _, l := range r.byType[st] {
		if r.byKey[l.Key()].Alignment == a {
			n++
		}
	}
	return n
}

// Len возвращает общее число структур.
func (r *Registry) Len() int { return len(r.byKey) }

// Snapshot возвращает копии всех структур, сгруппированные по типу.
func (r *Registry) Snapshot() []domain.Structure {
	out := make([]domain.Structure, 0, len(r.byKey))
	for st := domain.StructureUnknown; st <= domain.Chest; st++ {
		for _, l := range r.byType[st] {
			s := *r.byKey[l.Key()]
			if s.Inventory != nil {
				s.Inventory = copyInventory(s.Inventory)
			}
			out = append(out, s)
		}
	}
	return out
}

// TeamResources выводит общий пул команды из последнего наблюдения склада hub.
// Если hub не найден или его инвентарь не виден, пул неизвестен.
func (r *Registry) TeamResources() domain.TeamResources {
	hub, ok := r.Nearest(domain.Hub, domain.Origin, func(s domain.Structure) bool { return s.Inventory != nil })
	if !ok {
		return domain.TeamResources{}
	}
	return domain.TeamResources{Amounts: copyInventory(hub.Inventory), Known: true}
}

func copyInventory(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
