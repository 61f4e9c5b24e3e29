package domain

import (
	"errors"
	"time"
	"unicode/utf16"
)

// separatorPadding is added to the current name's length to size the rule
// printed under the report header.
const separatorPadding = 18

// ErrEmptyHistory is returned when the provider hands back no names at all.
var ErrEmptyHistory = errors.New("name history is empty")

// NameRecord is one entry of an account's name history. ChangedAt is nil for
// the name the account was created with.
type NameRecord struct {
	Name      string
	ChangedAt *time.Time
}

// IsOriginal reports whether this is the account's first name.
func (r NameRecord) IsOriginal() bool {
	return r.ChangedAt == nil
}

// History is a name history split into the current name and everything
// before it. Previous is ordered oldest first.
type History struct {
	Current  NameRecord
	Previous []NameRecord
}

// NewHistory builds a History from records in provider order (oldest to
// newest). The input slice is not modified.
func NewHistory(records []NameRecord) (History, error) {
	if len(records) == 0 {
		return History{}, ErrEmptyHistory
	}

	last := len(records) - 1
	previous := make([]NameRecord, last)
	copy(previous, records[:last])

	return History{
		Current:  records[last],
		Previous: previous,
	}, nil
}

// NewestFirst returns the previous names with the most recent first.
func (h History) NewestFirst() []NameRecord {
	out := make([]NameRecord, len(h.Previous))
	for i, r := range h.Previous {
		out[len(out)-1-i] = r
	}
	return out
}

// HasPrevious reports whether the account was ever renamed.
func (h History) HasPrevious() bool {
	return len(h.Previous) > 0
}

// SeparatorWidth returns the number of dashes drawn under a report header
// for the given current name. Length is counted in UTF-16 code units, the
// way game clients measure chat text.
func SeparatorWidth(current string) int {
	return len(utf16.Encode([]rune(current))) + separatorPadding
}
