package domain

import "strings"

// Role - закрытый набор программ поведения агента.
type Role uint8

const (
	// RoleMeta - роль не назначена, ее выбирает координатор.
	RoleMeta Role = iota
	RoleGatherer
	RoleExplorer
	RoleCapturer
	RoleDenier
)

// AllRoles - роли, которые реально исполняются (без RoleMeta).
var AllRoles = [4]Role{RoleGatherer, RoleExplorer, RoleCapturer, RoleDenier}

// Имена ролей совпадают с именами снаряжения и vibe в игре.
var roleStringToRole = map[string]Role{
	"meta":      RoleMeta,
	"miner":     RoleGatherer,
	"scout":     RoleExplorer,
	"aligner":   RoleCapturer,
	"scrambler": RoleDenier,
	// Синонимы из конфигов
	"gatherer": RoleGatherer,
	"explorer": RoleExplorer,
	"capturer": RoleCapturer,
	"denier":   RoleDenier,
}

var roleToString = map[Role]string{
	RoleMeta:     "meta",
	RoleGatherer: "miner",
	RoleExplorer: "scout",
	RoleCapturer: "aligner",
	RoleDenier:   "scrambler",
}

// ParseRole конвертирует имя роли. Неизвестные имена дают RoleMeta и false.
func ParseRole(s string) (Role, bool) {
	r, ok := roleStringToRole[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

func (r Role) String() string {
	if name, ok := roleToString[r]; ok {
		return name
	}
	return "unknown"
}

// GearItem - предмет инвентаря, который выдает станция роли.
func (r Role) GearItem() string {
	if r == RoleMeta {
		return ""
	}
	return r.String()
}

// Station - тип станции снаряжения для роли.
func (r Role) Station() StructureType {
	switch r {
	case RoleGatherer:
		return MinerStation
	case RoleExplorer:
		return ScoutStation
	case RoleCapturer:
		return AlignerStation
	case RoleDenier:
		return ScramblerStation
	}
	return StructureUnknown
}

// Vibe — имя vibe, соответствующее роли.
func (r Role) Vibe() string {
	if r == RoleMeta {
		return "default"
	}
	return r.String()
}

// DefaultRoleCycle - порядок ролей для агентов без явного назначения.
var DefaultRoleCycle = []Role{
	RoleCapturer, RoleCapturer, RoleDenier, RoleGatherer, RoleCapturer,
	RoleDenier, RoleCapturer, RoleDenier, RoleCapturer, RoleGatherer,
}
