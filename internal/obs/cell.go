package obs

import (
	"sort"
	"strconv"
	"strings"
)

// CellView — интерпретация записей одной клетки через словарь.
type CellView struct {
	Tags      []string
	Features  map[string]int
	Inventory map[string]int
}

// Объекты, которые важнее тегов принадлежности при выборе основного тега.
var priorityObjects = map[string]struct{}{
	"miner_station":       {},
	"scout_station":       {},
	"aligner_station":     {},
	"scrambler_station":   {},
	"carbon_extractor":    {},
	"oxygen_extractor":    {},
	"germanium_extractor": {},
	"silicon_extractor":   {},
	"junction":            {},
	"hub":                 {},
	"chest":               {},
	"wall":                {},
	"agent":               {},
}

// Describe раскладывает записи клетки на теги, числовые признаки и инвентарь.
// Неизвестные id признаков пропускаются.
func (v *Vocabulary) Describe(records []FeatureRecord) CellView {
	c := CellView{}
	for _, rec := range records {
		name := v.FeatureName(rec.ID)
		switch {
		case name == "":
			continue
		case name == FeatureTag:
			if tag := v.TagName(int(rec.Value)); tag != "" {
				c.Tags = append(c.Tags, tag)
			}
		case strings.HasPrefix(name, InventoryPrefix):
			item, power := parseInventoryFeature(name)
			if c.Inventory == nil {
				c.Inventory = make(map[string]int)
			}
			c.Inventory[item] += int(rec.Value) * pow(InventoryTokenBase, power)
		default:
			if c.Features == nil {
				c.Features = make(map[string]int)
			}
			c.Features[name] = int(rec.Value)
		}
	}
	return c
}

// Feature возвращает числовой признак клетки.
func (c CellView) Feature(name string) (int, bool) {
	val, ok := c.Features[name]
	return val, ok
}

// HasAgent - true, если в клетке стоит агент.
func (c CellView) HasAgent() bool {
	for _, t := range c.Tags {
		if IsAgentTag(t) {
			return true
		}
	}
	return false
}

// Empty - в клетке нет ни одного тега.
func (c CellView) Empty() bool {
	return len(c.Tags) == 0
}

// PrimaryTag выбирает основной тег объекта:
//  1. тег type:<name> (префикс отрезается)
//  2. тег из приоритетного списка объектов
//  3. любой тег, кроме collective:
//  4. первый тег
//
// Пустая клетка дает "unknown".
func (c CellView) PrimaryTag() string {
	if len(c.Tags) == 0 {
		return "unknown"
	}
	for _, t := range c.Tags {
		if strings.HasPrefix(t, "type:") {
			return strings.TrimPrefix(t, "type:")
		}
	}
	for _, t := range c.Tags {
		if _, ok := priorityObjects[t]; ok {
			return t
		}
	}
	for _, t := range c.Tags {
		if !IsCollectiveTag(t) {
			return t
		}
	}
	return c.Tags[0]
}

// Signature - отсортированный набор тегов неподвижных объектов клетки.
// Теги агентов и принадлежности не входят: первые двигаются, вторые меняются
// при захвате территории. Пустая строка означает свободную клетку.
func (c CellView) Signature() string {
	objs := c.objectTags()
	if len(objs) == 0 {
		return ""
	}
	sort.Strings(objs)
	return strings.Join(objs, ",")
}

// Blocking - true, если в клетке есть объект, в который нельзя войти.
func (c CellView) Blocking() bool {
	return len(c.objectTags()) > 0
}

func (c CellView) objectTags() []string {
	var objs []string
	for _, t := range c.Tags {
		if IsAgentTag(t) || IsCollectiveTag(t) {
			continue
		}
		objs = append(objs, t)
	}
	return objs
}

// parseInventoryFeature: "inv:carbon" -> (carbon, 0), "inv:carbon:p2" -> (carbon, 2).
func parseInventoryFeature(name string) (string, int) {
	suffix := strings.TrimPrefix(name, InventoryPrefix)
	if idx := strings.LastIndex(suffix, ":p"); idx >= 0 {
		if power, err := strconv.Atoi(suffix[idx+2:]); err == nil && power >= 0 {
			return suffix[:idx], power
		}
	}
	return suffix, 0
}

func pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
