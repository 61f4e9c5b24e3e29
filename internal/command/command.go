// Package command implements a small host-agnostic command surface: a
// registry of named commands with permission gating, argument-count checks
// and tab completion.
package command

import (
	"context"

	"github.com/lu-zhengda/aliases/internal/chat"
)

// Source is whoever issued a command. Hosts (the lobby, tests) implement it.
type Source interface {
	Name() string
	// HasPermission reports whether the source holds node, falling back to
	// def when nothing is configured for it.
	HasPermission(node string, def bool) bool
	// PlayerNames lists the players currently online on the host.
	PlayerNames() []string
	SendFeedback(msg chat.Component)
}

// SuggestFunc returns completions for the argument being typed.
type SuggestFunc func(src Source, partial string) []string

// ExecuteFunc runs a command. args never includes the command name.
type ExecuteFunc func(ctx context.Context, src Source, args []string) int

// Command describes one registered command.
type Command struct {
	Name  string
	Usage string
	// Args is the exact number of arguments accepted; negative accepts any.
	Args int
	// Permission gates the command when non-empty.
	Permission        string
	PermissionDefault bool
	Suggest           SuggestFunc
	Execute           ExecuteFunc
}

// Allowed reports whether src may see and run the command.
func (c Command) Allowed(src Source) bool {
	if c.Permission == "" {
		return true
	}
	return src.HasPermission(c.Permission, c.PermissionDefault)
}
