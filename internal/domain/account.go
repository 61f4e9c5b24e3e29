package domain

import (
	"strings"

	"github.com/google/uuid"
)

// AccountID is the opaque identifier the identity provider assigns to a
// player account. Unlike the username it never changes.
type AccountID string

func (id AccountID) String() string {
	return string(id)
}

// UUID parses the identifier as a UUID. The provider hands out undashed hex,
// which uuid.Parse accepts. ok is false for anything else.
func (id AccountID) UUID() (u uuid.UUID, ok bool) {
	u, err := uuid.Parse(strings.TrimSpace(string(id)))
	if err != nil {
		return uuid.Nil, false
	}
	return u, true
}
