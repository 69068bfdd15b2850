// Package obstest собирает синтетические наблюдения для тестов.
package obstest

import (
	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
)

// Features - словарь признаков, которым пользуются тесты.
var Features = []obs.FeatureSpec{
	{ID: 0, Name: obs.FeatureTag, Normalization: 1},
	{ID: 1, Name: obs.FeatureRemainingUses, Normalization: 1},
	{ID: 2, Name: obs.FeatureClipped, Normalization: 1},
	{ID: 3, Name: obs.FeatureCooldown, Normalization: 1},
	{ID: 4, Name: obs.FeatureCollective, Normalization: 1},
	{ID: 5, Name: obs.FeatureVibe, Normalization: 1},
	{ID: 6, Name: obs.FeatureLastAction, Normalization: 1},
	{ID: 10, Name: "inv:carbon", Normalization: 256},
	{ID: 11, Name: "inv:oxygen", Normalization: 256},
	{ID: 12, Name: "inv:germanium", Normalization: 256},
	{ID: 13, Name: "inv:silicon", Normalization: 256},
	{ID: 14, Name: "inv:heart", Normalization: 256},
	{ID: 15, Name: "inv:energy", Normalization: 256},
	{ID: 16, Name: "inv:miner", Normalization: 256},
	{ID: 17, Name: "inv:scout", Normalization: 256},
	{ID: 18, Name: "inv:aligner", Normalization: 256},
	{ID: 19, Name: "inv:scrambler", Normalization: 256},
	{ID: 20, Name: "inv:carbon:p1", Normalization: 256},
	{ID: 21, Name: "inv:oxygen:p1", Normalization: 256},
	{ID: 22, Name: "inv:germanium:p1", Normalization: 256},
	{ID: 23, Name: "inv:silicon:p1", Normalization: 256},
}

// Tags - таблица тегов по id.
var Tags = []string{
	"wall",
	"agent",
	"hub",
	"junction",
	"chest",
	"miner_station",
	"scout_station",
	"aligner_station",
	"scrambler_station",
	"carbon_extractor",
	"oxygen_extractor",
	"germanium_extractor",
	"silicon_extractor",
	"collective:cogs",
	"collective:clips",
}

// ActionNames - таблица действий среды.
var ActionNames = []string{
	"noop",
	"move_north",
	"move_south",
	"move_east",
	"move_west",
	"change_vibe_default",
	"change_vibe_miner",
	"change_vibe_scout",
	"change_vibe_aligner",
	"change_vibe_scrambler",
}

// VibeNames - таблица vibe по id.
var VibeNames = []string{"default", "miner", "scout", "aligner", "scrambler"}

// Vocab возвращает словарь для тестов.
func Vocab() *obs.Vocabulary {
	return obs.NewVocabulary(Features, Tags)
}

// Frame - построитель эгоцентричного кадра.
type Frame struct {
	vocab  *obs.Vocabulary
	Radius int
	Cells  map[domain.Location][]obs.FeatureRecord
}

// NewFrame создает пустой кадр радиуса radius.
func NewFrame(radius int) *Frame {
	return &Frame{
		vocab:  Vocab(),
		Radius: radius,
		Cells:  make(map[domain.Location][]obs.FeatureRecord),
	}
}

// Tag ставит тег в клетку по смещению.
func (f *Frame) Tag(off domain.Location, tag string) *Frame {
	id, ok := f.vocab.TagID(tag)
	if !ok {
		panic("obstest: unknown tag " + tag)
	}
	return f.Feature(off, obs.FeatureTag, id)
}

// Feature добавляет числовой признак. Значения инвентаря больше 255
// раскладываются на inv:X и inv:X:p1.
func (f *Frame) Feature(off domain.Location, name string, value int) *Frame {
	if value > 255 {
		f.add(off, name+":p1", value/obs.InventoryTokenBase)
		value %= obs.InventoryTokenBase
	}
	f.add(off, name, value)
	return f
}

// Self ставит тег агента в центр кадра.
func (f *Frame) Self() *Frame {
	return f.Tag(domain.Location{}, "agent")
}

// Observation возвращает кадр как уже расшифрованное наблюдение.
func (f *Frame) Observation() obs.Observation {
	buf := f.Bytes()
	return obs.Decode(buf, f.Radius, len(buf)/obs.TokenSize)
}

// Bytes кодирует кадр в буфер токенов с терминатором.
func (f *Frame) Bytes() []byte {
	buf := obs.Encode(f.Cells, f.Radius)
	return append(buf, obs.SentinelByte, obs.SentinelByte, obs.SentinelByte)
}

func (f *Frame) add(off domain.Location, name string, value int) {
	id, ok := f.vocab.FeatureID(name)
	if !ok {
		panic("obstest: unknown feature " + name)
	}
	f.Cells[off] = append(f.Cells[off], obs.FeatureRecord{ID: id, Value: uint8(value)})
}
