package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(ms int64) *time.Time {
	t := time.UnixMilli(ms).UTC()
	return &t
}

func TestNewHistory_SingleOriginal(t *testing.T) {
	h, err := NewHistory([]NameRecord{{Name: "Notch"}})
	require.NoError(t, err)

	assert.Equal(t, "Notch", h.Current.Name)
	assert.True(t, h.Current.IsOriginal())
	assert.False(t, h.HasPrevious())
	assert.Empty(t, h.Previous)
}

func TestNewHistory_SplitsCurrent(t *testing.T) {
	records := []NameRecord{
		{Name: "first"},
		{Name: "second", ChangedAt: at(1_423_059_891_000)},
		{Name: "third", ChangedAt: at(1_500_000_000_000)},
	}

	h, err := NewHistory(records)
	require.NoError(t, err)

	assert.Equal(t, "third", h.Current.Name)
	require.Len(t, h.Previous, 2)
	assert.Equal(t, "first", h.Previous[0].Name)
	assert.Equal(t, "second", h.Previous[1].Name)

	// Input must be left untouched.
	assert.Equal(t, "first", records[0].Name)
	assert.Len(t, records, 3)
}

func TestNewHistory_Empty(t *testing.T) {
	_, err := NewHistory(nil)
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestHistory_NewestFirst(t *testing.T) {
	h, err := NewHistory([]NameRecord{
		{Name: "a"},
		{Name: "b", ChangedAt: at(1)},
		{Name: "c", ChangedAt: at(2)},
		{Name: "d", ChangedAt: at(3)},
	})
	require.NoError(t, err)

	got := h.NewestFirst()
	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
	assert.Equal(t, "a", h.Previous[0].Name, "NewestFirst must not reorder Previous")
}

func TestSeparatorWidth(t *testing.T) {
	tests := []struct {
		name    string
		current string
		want    int
	}{
		{"one char", "x", 19},
		{"typical", "Notch", 23},
		{"max length", "abcdefghijklmnop", 34},
		{"accented", "Jéb", 21},
		{"outside BMP", "\U0001D49Cbc", 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeparatorWidth(tt.current))
		})
	}
}

func TestAccountID_UUID(t *testing.T) {
	u, ok := AccountID("069a79f444e94726a5befca90e38aaf5").UUID()
	require.True(t, ok)
	assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", u.String())

	_, ok = AccountID("not-a-uuid").UUID()
	assert.False(t, ok)
}
