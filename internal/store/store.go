package store

import (
	"context"
	"time"
)

// PermissionStore persists per-player permission grants. Player names are
// case-insensitive.
type PermissionStore interface {
	SetPermission(ctx context.Context, player, node string, allowed bool) error
	// Permission reports the stored value for node. found is false when the
	// player has no entry, in which case callers apply their own default.
	Permission(ctx context.Context, player, node string) (allowed, found bool, err error)
	ListPermissions(ctx context.Context, player string) ([]Permission, error)
	DeletePermission(ctx context.Context, player, node string) error

	Close() error
}

// Permission is one stored grant or denial.
type Permission struct {
	Player    string
	Node      string
	Allowed   bool
	UpdatedAt time.Time
}
