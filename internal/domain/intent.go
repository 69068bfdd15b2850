package domain

import "fmt"

// IntentKind - тип намерения, выбранного программой роли на текущий тик.
type IntentKind uint8

const (
	IntentNoop IntentKind = iota
	// IntentMove — шаг в соседнюю клетку.
	IntentMove
	// IntentInteract - шаг в занятую клетку (bump). Взаимодействие со
	// структурой в игре происходит именно так.
	IntentInteract
	// IntentChangeVibe - смена отображаемого состояния агента.
	IntentChangeVibe
)

var intentKindNames = map[IntentKind]string{
	IntentNoop:       "noop",
	IntentMove:       "move",
	IntentInteract:   "interact",
	IntentChangeVibe: "change_vibe",
}

func (k IntentKind) String() string {
	if name, ok := intentKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent - результат решения на тик до перевода в id действия.
type Intent struct {
	Kind IntentKind
	Dir  Direction
	Vibe string
}

// Noop - ничего не делать.
func Noop() Intent { return Intent{Kind: IntentNoop} }

// Move - шаг в направлении d.
func Move(d Direction) Intent {
	if d == NoDirection {
		return Noop()
	}
	return Intent{Kind: IntentMove, Dir: d}
}

// Interact - толкнуть соседнюю клетку в направлении d.
func Interact(d Direction) Intent {
	if d == NoDirection {
		return Noop()
	}
	return Intent{Kind: IntentInteract, Dir: d}
}

// ChangeVibe — сменить vibe на указанный.
func ChangeVibe(vibe string) Intent {
	return Intent{Kind: IntentChangeVibe, Vibe: vibe}
}

// IsNoop - true для пустого намерения.
func (i Intent) IsNoop() bool { return i.Kind == IntentNoop }

// Direction возвращает направление движения, если намерение его содержит.
// Interact тоже является движением с точки зрения симуляции.
func (i Intent) Direction() Direction {
	if i.Kind == IntentMove || i.Kind == IntentInteract {
		return i.Dir
	}
	return NoDirection
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentMove, IntentInteract:
		return fmt.Sprintf("%s:%s", i.Kind, i.Dir)
	case IntentChangeVibe:
		return fmt.Sprintf("%s:%s", i.Kind, i.Vibe)
	}
	return i.Kind.String()
}
