package cli

import (
	"time"

	"github.com/lu-zhengda/aliases/internal/store"
)

// ---------------------------------------------------------------------------
// Permission JSON types (perm list)
// ---------------------------------------------------------------------------

type jsonPermission struct {
	Player    string `json:"player"`
	Node      string `json:"node"`
	Allowed   bool   `json:"allowed"`
	UpdatedAt string `json:"updated_at"`
}

func toJSONPermissions(perms []store.Permission) []jsonPermission {
	out := make([]jsonPermission, 0, len(perms))
	for _, p := range perms {
		out = append(out, jsonPermission{
			Player:    p.Player,
			Node:      p.Node,
			Allowed:   p.Allowed,
			UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Action JSON type (perm set, perm unset)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK      bool   `json:"ok"`
	Action  string `json:"action"`
	Player  string `json:"player"`
	Node    string `json:"node"`
	Allowed *bool  `json:"allowed,omitempty"`
}
