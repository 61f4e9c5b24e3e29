package provider

import (
	"context"

	"github.com/lu-zhengda/aliases/internal/domain"
)

//go:generate mockgen -source=provider.go -destination=mocks/mocks.go -package=mocks IdentityProvider

// IdentityProvider resolves usernames to accounts and accounts to their name
// history.
type IdentityProvider interface {
	// AccountID returns the account behind username. It returns
	// ErrUnknownUsername when no account has that name.
	AccountID(ctx context.Context, username string) (domain.AccountID, error)

	// NameHistory returns every name the account has held, oldest first.
	NameHistory(ctx context.Context, id domain.AccountID) ([]domain.NameRecord, error)
}

// Stage names the lookup step an error came from.
type Stage string

const (
	StageIdentity Stage = "identity"
	StageHistory  Stage = "history"
)
