package obs

import (
	"sort"

	"cogsguard-agent/internal/domain"
)

// Формат токена наблюдения: 3 байта.
//
//	[ Location (8) | FeatureID (8) | Value (8) ]
//
// Location упаковывает относительное смещение:
//   - старший полубайт: строка + радиус окна
//   - младший полубайт: столбец + радиус окна
//   - 0xFF — центр окна (0,0), не раскладывается на полубайты
//
// Запись из трех 0xFF - терминатор.
const (
	TokenSize = 3

	CenterByte   = 0xFF
	SentinelByte = 0xFF

	shiftRow = 4
	maskCol  = 0x0F

	// MaxRadius - наибольший радиус окна, который помещается в полубайт.
	MaxRadius = 7
	// DefaultMaxTokens - предел числа токенов на тик по умолчанию.
	DefaultMaxTokens = 200
)

// FeatureRecord - пара (feature id, value) в одной клетке.
type FeatureRecord struct {
	ID    uint8
	Value uint8
}

// Observation - расшифрованное эгоцентричное наблюдение.
type Observation struct {
	Radius int
	Cells  map[domain.Location][]FeatureRecord
	// Tokens - сколько записей было принято.
	Tokens int
	// Truncated — декодирование остановлено на некорректной записи.
	Truncated bool
}

// InWindow - true, если смещение попадает в окно наблюдения.
func (o Observation) InWindow(off domain.Location) bool {
	return inWindow(off, o.Radius)
}

// At возвращает записи по относительному смещению.
func (o Observation) At(off domain.Location) []FeatureRecord {
	return o.Cells[off]
}

// DecodeLocation раскладывает упакованный байт смещения.
// ok=false, если смещение выходит за окно.
func DecodeLocation(b byte, radius int) (domain.Location, bool) {
	if b == CenterByte {
		return domain.Location{}, true
	}
	off := domain.Location{
		Row: int(b>>shiftRow) - radius,
		Col: int(b&maskCol) - radius,
	}
	return off, inWindow(off, radius)
}

// EncodeLocation упаковывает смещение. Центр кодируется как CenterByte.
func EncodeLocation(off domain.Location, radius int) (byte, bool) {
	if off == (domain.Location{}) {
		return CenterByte, true
	}
	if !inWindow(off, radius) || radius > MaxRadius {
		return 0, false
	}
	return byte((off.Row+radius)<<shiftRow | (off.Col + radius)), true
}

// Decode разбирает буфер токенов.
// Останавливается на терминаторе, на maxTokens записей или на первой
// некорректной записи. Ошибок не возвращает: все, что успели разобрать, остается.
func Decode(buf []byte, radius, maxTokens int) Observation {
	o := Observation{
		Radius: radius,
		Cells:  make(map[domain.Location][]FeatureRecord),
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	for i := 0; i+TokenSize <= len(buf) && o.Tokens < maxTokens; i += TokenSize {
		loc, feature, value := buf[i], buf[i+1], buf[i+2]
		if loc == SentinelByte && feature == SentinelByte && value == SentinelByte {
			break
		}

		off, ok := DecodeLocation(loc, radius)
		if !ok {
			o.Truncated = true
			break
		}

		o.Cells[off] = append(o.Cells[off], FeatureRecord{ID: feature, Value: value})
		o.Tokens++
	}

	return o
}

// Encode собирает буфер токенов из карты смещений.
// Порядок детерминирован: по строке, затем по столбцу, записи клетки в исходном порядке.
// Смещения вне окна пропускаются.
func Encode(cells map[domain.Location][]FeatureRecord, radius int) []byte {
	offs := make([]domain.Location, 0, len(cells))
	for off := range cells {
		offs = append(offs, off)
	}
	sort.Slice(offs, func(i, j int) bool {
		if offs[i].Row != offs[j].Row {
			return offs[i].Row < offs[j].Row
		}
		return offs[i].Col < offs[j].Col
	})

	buf := make([]byte, 0, len(cells)*TokenSize)
	for _, off := range offs {
		b, ok := EncodeLocation(off, radius)
		if !ok {
			continue
		}
		for _, rec := range cells[off] {
			buf = append(buf, b, rec.ID, rec.Value)
		}
	}
	return buf
}

// Pad дополняет буфер терминаторами до maxTokens записей, как это делает среда.
func Pad(buf []byte, maxTokens int) []byte {
	for len(buf) < maxTokens*TokenSize {
		buf = append(buf, SentinelByte, SentinelByte, SentinelByte)
	}
	return buf
}

func inWindow(off domain.Location, radius int) bool {
	return off.Row >= -radius && off.Row <= radius && off.Col >= -radius && off.Col <= radius
}
