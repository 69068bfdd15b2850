package obs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogsguard-agent/internal/domain"
)

func TestDecodeLocation(t *testing.T) {
	tests := []struct {
		name   string
		b      byte
		radius int
		want   domain.Location
		ok     bool
	}{
		{"center byte", CenterByte, 5, domain.Location{}, true},
		{"split center", 0x55, 5, domain.Location{}, true},
		{"north west corner", 0x00, 5, domain.Location{Row: -5, Col: -5}, true},
		{"south east corner", 0xAA, 5, domain.Location{Row: 5, Col: 5}, true},
		{"one east", 0x56, 5, domain.Location{Row: 0, Col: 1}, true},
		{"one north", 0x45, 5, domain.Location{Row: -1, Col: 0}, true},
		{"outside window", 0xB5, 5, domain.Location{Row: 6, Col: 0}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := DecodeLocation(tt.b, tt.radius)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cells := map[domain.Location][]FeatureRecord{
		{Row: 0, Col: 0}:   {{ID: 0, Value: 1}, {ID: 10, Value: 3}},
		{Row: -2, Col: 3}:  {{ID: 0, Value: 0}},
		{Row: 5, Col: -5}:  {{ID: 1, Value: 7}},
		{Row: -5, Col: 5}:  {{ID: 0, Value: 2}, {ID: 2, Value: 1}},
		{Row: 1, Col: 0}:   {{ID: 3, Value: 255}},
		{Row: -1, Col: -1}: {{ID: 0, Value: 4}},
	}

	buf := Encode(cells, 5)
	got := Decode(Pad(buf, 50), 5, 50)

	require.False(t, got.Truncated)
	assert.Equal(t, 8, got.Tokens)
	assert.Equal(t, cells, got.Cells)
}

func TestDecode_SentinelStopsRegardlessOfTrailingData(t *testing.T) {
	buf := []byte{
		0x56, 0, 1,
		SentinelByte, SentinelByte, SentinelByte,
		0x45, 0, 2, // мусор после терминатора
	}

	got := Decode(buf, 5, 10)

	assert.Equal(t, 1, got.Tokens)
	assert.Len(t, got.Cells, 1)
	assert.Equal(t, []FeatureRecord{{ID: 0, Value: 1}}, got.At(domain.Location{Row: 0, Col: 1}))
}

func TestDecode_CenterByteWithRealFeatureIsNotSentinel(t *testing.T) {
	buf := []byte{CenterByte, 0, 1, CenterByte, SentinelByte, 0}

	got := Decode(buf, 5, 10)

	assert.Equal(t, 2, got.Tokens)
	assert.Len(t, got.At(domain.Location{}), 2)
}

func TestDecode_MaxTokens(t *testing.T) {
	var buf []byte
	for i := 0; i < 10; i++ {
		buf = append(buf, 0x55, 0, byte(i))
	}

	got := Decode(buf, 5, 4)

	assert.Equal(t, 4, got.Tokens)
	assert.Len(t, got.At(domain.Location{}), 4)
}

func TestDecode_MalformedInputTruncates(t *testing.T) {
	t.Run("offset outside window", func(t *testing.T) {
		buf := []byte{0x56, 0, 1, 0xC0, 0, 1, 0x45, 0, 1}
		got := Decode(buf, 5, 10)
		assert.True(t, got.Truncated)
		assert.Equal(t, 1, got.Tokens)
	})

	t.Run("partial trailing record", func(t *testing.T) {
		buf := []byte{0x56, 0, 1, 0x45, 0}
		got := Decode(buf, 5, 10)
		assert.Equal(t, 1, got.Tokens)
	})

	t.Run("empty buffer", func(t *testing.T) {
		got := Decode(nil, 5, 10)
		assert.Equal(t, 0, got.Tokens)
		assert.Empty(t, got.Cells)
	})
}

func TestEncode_SkipsOffsetsOutsideWindow(t *testing.T) {
	cells := map[domain.Location][]FeatureRecord{
		{Row: 9, Col: 0}: {{ID: 0, Value: 1}},
		{Row: 1, Col: 1}: {{ID: 0, Value: 1}},
	}
	buf := Encode(cells, 3)
	assert.Len(t, buf, TokenSize)
}
