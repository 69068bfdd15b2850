package obs

import "strings"

// Имена признаков, которые имеют смысл для агента.
const (
	FeatureTag           = "tag"
	FeatureRemainingUses = "remaining_uses"
	FeatureClipped       = "clipped"
	FeatureCooldown      = "cooldown_remaining"
	FeatureCollective    = "collective"
	FeatureVibe          = "vibe"
	FeatureLastAction    = "last_action"

	InventoryPrefix = "inv:"
	// InventoryTokenBase - основание многотокенной записи inv:X:pN.
	InventoryTokenBase = 256
)

// FeatureSpec описывает один признак из словаря эпизода.
type FeatureSpec struct {
	ID            uint8
	Name          string
	Normalization float64
}

// Vocabulary - словарь признаков и тегов, фиксированный на эпизод.
type Vocabulary struct {
	features  map[uint8]FeatureSpec
	byName    map[string]uint8
	tags      []string
	tagByName map[string]int
}

// NewVocabulary строит словарь. tags индексируется id тега.
func NewVocabulary(features []FeatureSpec, tags []string) *Vocabulary {
	v := &Vocabulary{
		features:  make(map[uint8]FeatureSpec, len(features)),
		byName:    make(map[string]uint8, len(features)),
		tags:      append([]string(nil), tags...),
		tagByName: make(map[string]int, len(tags)),
	}
	for _, f := range features {
		v.features[f.ID] = f
		v.byName[f.Name] = f.ID
	}
	for i, t := range tags {
		v.tagByName[t] = i
	}
	return v
}

// FeatureName возвращает имя признака или "" для неизвестного id.
func (v *Vocabulary) FeatureName(id uint8) string {
	return v.features[id].Name
}

// FeatureID ищет id признака по имени.
func (v *Vocabulary) FeatureID(name string) (uint8, bool) {
	id, ok := v.byName[name]
	return id, ok
}

// TagName возвращает имя тега или "" для неизвестного id.
func (v *Vocabulary) TagName(id int) string {
	if id < 0 || id >= len(v.tags) {
		return ""
	}
	return v.tags[id]
}

// TagID ищет id тега по имени.
func (v *Vocabulary) TagID(name string) (int, bool) {
	id, ok := v.tagByName[name]
	return id, ok
}

// IsAgentTag - true для тегов агентов. Агенты двигаются и не считаются препятствием на карте.
func IsAgentTag(tag string) bool {
	return tag == "agent" || strings.HasPrefix(tag, "agent:") || strings.HasPrefix(tag, "agent_")
}

// IsCollectiveTag - true для тегов принадлежности.
func IsCollectiveTag(tag string) bool {
	return strings.HasPrefix(tag, "collective:")
}
