package domain

// Ресурсы команды. Порядок фиксирован и используется при выборе
// наименее обеспеченного ресурса.
const (
	Carbon    = "carbon"
	Oxygen    = "oxygen"
	Germanium = "germanium"
	Silicon   = "silicon"
)

// Resources - все добываемые ресурсы.
var Resources = [4]string{Carbon, Oxygen, Germanium, Silicon}

// Прочие предметы инвентаря.
const (
	ItemHeart  = "heart"
	ItemEnergy = "energy"
)

// Cost - стоимость в ресурсах команды.
type Cost map[string]int

// Inventory - снимок инвентаря агента на текущий тик.
type Inventory map[string]int

// Count возвращает количество предмета (0, если его нет).
func (inv Inventory) Count(item string) int {
	return inv[item]
}

// Has - true, если предмет есть хотя бы в одном экземпляре.
func (inv Inventory) Has(item string) bool {
	return inv[item] > 0
}

// Cargo - суммарное количество добываемых ресурсов.
func (inv Inventory) Cargo() int {
	total := 0
	for _, r := range Resources {
		total += inv[r]
	}
	return total
}

// TeamResources — общий пул ресурсов команды.
// Known=false означает, что пул еще не наблюдался: это не то же самое,
// что "ресурсов не хватает".
type TeamResources struct {
	Amounts map[string]int
	Known   bool
}

// Amount возвращает количество ресурса в пуле.
func (t TeamResources) Amount(resource string) int {
	return t.Amounts[resource]
}

// CanAfford - true, если пул известен и покрывает стоимость.
func (t TeamResources) CanAfford(c Cost) bool {
	if !t.Known {
		return false
	}
	for res, amt := range c {
		if t.Amounts[res] < amt {
			return false
		}
	}
	return true
}

// Lowest возвращает ресурс с наименьшим запасом (первый при равенстве).
func (t TeamResources) Lowest() string {
	best := Resources[0]
	for _, r := range Resources[1:] {
		if t.Amounts[r] < t.Amounts[best] {
			best = r
		}
	}
	return best
}
