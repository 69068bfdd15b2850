package obs

import (
	"cogsguard-agent/internal/domain"
)

// DefaultVibe — vibe, если признак отсутствует или id вне таблицы.
const DefaultVibe = "default"

// SelfState - то, что агент узнает о себе из центральной клетки.
type SelfState struct {
	Inventory domain.Inventory
	Vibe      string
	// LastAction - имя действия, которое среда реально выполнила на прошлом тике.
	// Пусто, если среда этот признак не сообщает.
	LastAction   string
	AgentVisible bool
}

// ReadSelf читает инвентарь, vibe и последнее выполненное действие из клетки (0,0).
func ReadSelf(o Observation, v *Vocabulary, actionNames, vibeNames []string) SelfState {
	s := SelfState{Inventory: domain.Inventory{}, Vibe: DefaultVibe}

	center := o.At(domain.Location{})
	view := v.Describe(center)
	for item, n := range view.Inventory {
		s.Inventory[item] = n
	}
	s.AgentVisible = view.HasAgent()

	if id, ok := view.Feature(FeatureVibe); ok && id >= 0 && id < len(vibeNames) {
		s.Vibe = vibeNames[id]
	}
	if id, ok := view.Feature(FeatureLastAction); ok && id >= 0 && id < len(actionNames) {
		s.LastAction = actionNames[id]
	}
	return s
}
