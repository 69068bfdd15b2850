package domain

// StructureType - тип ориентира на карте.
type StructureType uint8

const (
	StructureUnknown StructureType = iota
	Hub
	Junction
	MinerStation
	ScoutStation
	AlignerStation
	ScramblerStation
	Extractor
	Chest
)

var structureTypeNames = map[StructureType]string{
	StructureUnknown: "unknown",
	Hub:              "hub",
	Junction:         "junction",
	MinerStation:     "miner_station",
	ScoutStation:     "scout_station",
	AlignerStation:   "aligner_station",
	ScramblerStation: "scrambler_station",
	Extractor:        "extractor",
	Chest:            "chest",
}

func (t StructureType) String() string {
	if name, ok := structureTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsStation - true для станций снаряжения.
func (t StructureType) IsStation() bool {
	return t >= MinerStation && t <= ScramblerStation
}

// Alignment - принадлежность точки территории.
type Alignment uint8

const (
	AlignmentUnknown Alignment = iota
	Friendly
	Neutral
	Hostile
)

func (a Alignment) String() string {
	switch a {
	case Friendly:
		return "friendly"
	case Neutral:
		return "neutral"
	case Hostile:
		return "hostile"
	}
	return "unknown"
}

// UnknownUses - значение RemainingUses, пока счетчик не наблюдался.
const UnknownUses = -1

// Structure - обнаруженный ориентир.
// Location не меняется после создания, остальные поля обновляются при каждом наблюдении.
type Structure struct {
	Location Location
	Type     StructureType
	Name     string
	// Resource заполнен только для экстракторов.
	Resource      string
	Alignment     Alignment
	RemainingUses int
	Cooldown      int
	Inventory     map[string]int
	FirstSeen     int
	LastSeen      int
}

// Depleted — true, если экстрактор точно исчерпан.
func (s *Structure) Depleted() bool {
	return s.RemainingUses == 0
}
