package agent

import (
	"strings"

	"cogsguard-agent/internal/domain"
)

const (
	noopAction       = "noop"
	movePrefix       = "move_"
	changeVibePrefix = "change_vibe_"
)

// ActionTable переводит намерения в id действий среды.
// Таблица строится один раз из имен действий в начале эпизода.
type ActionTable struct {
	names []string
	noop  int
	moves map[domain.Direction]int
	vibes map[string]int
}

// NewActionTable разбирает имена действий. Если "noop" нет, безопасным
// действием считается id 0.
func NewActionTable(names []string) ActionTable {
	t := ActionTable{
		names: append([]string(nil), names...),
		moves: make(map[domain.Direction]int, len(domain.Directions)),
		vibes: make(map[string]int),
	}
	for id, name := range names {
		switch {
		case name == noopAction:
			t.noop = id
		case strings.HasPrefix(name, movePrefix):
			if d := domain.ParseDirection(strings.TrimPrefix(name, movePrefix)); d != domain.NoDirection {
				t.moves[d] = id
			}
		case strings.HasPrefix(name, changeVibePrefix):
			t.vibes[strings.TrimPrefix(name, changeVibePrefix)] = id
		}
	}
	return t
}

// Noop возвращает id безопасного действия.
func (t ActionTable) Noop() int { return t.noop }

// Name возвращает имя действия по id.
func (t ActionTable) Name(id int) string {
	if id < 0 || id >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Vibes - vibe, для которых есть действие смены.
func (t ActionTable) Vibes() map[string]bool {
	out := make(map[string]bool, len(t.vibes))
	for v := range t.vibes {
		out[v] = true
	}
	return out
}

// Supports - у намерения есть собственное действие (не подмена на noop).
func (t ActionTable) Supports(i domain.Intent) bool {
	switch i.Kind {
	case domain.IntentMove, domain.IntentInteract:
		_, ok := t.moves[i.Dir]
		return ok
	case domain.IntentChangeVibe:
		_, ok := t.vibes[i.Vibe]
		return ok
	case domain.IntentNoop:
		return true
	}
	return false
}

// Emit возвращает id действия для намерения. Взаимодействие - это движение
// в занятую клетку. Все, что не отображается, становится noop.
func (t ActionTable) Emit(i domain.Intent) int {
	switch i.Kind {
	case domain.IntentMove, domain.IntentInteract:
		if id, ok := t.moves[i.Dir]; ok {
			return id
		}
	case domain.IntentChangeVibe:
		if id, ok := t.vibes[i.Vibe]; ok {
			return id
		}
	}
	return t.noop
}
