package command

import (
	"context"
	"sort"
	"strings"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/domain"
)

// DefaultPermission is the node gating the aliases command.
const DefaultPermission = "aliases.use"

// Resolver runs a lookup in the background and reports the result through
// done. app.LookupService satisfies it.
type Resolver interface {
	ResolveAsync(ctx context.Context, username string, done func(domain.LookupResult))
}

// AliasesOptions configures NewAliasesCommand.
type AliasesOptions struct {
	// Permission gates the command; empty registers it ungated.
	Permission        string
	PermissionDefault bool
	Report            chat.ReportOptions
}

// NewAliasesCommand builds "aliases <username>". The command returns as soon
// as the lookup has started; the report reaches the source later.
func NewAliasesCommand(svc Resolver, opts AliasesOptions) Command {
	return Command{
		Name:              "aliases",
		Usage:             "/aliases <username>",
		Args:              1,
		Permission:        opts.Permission,
		PermissionDefault: opts.PermissionDefault,
		Suggest:           SuggestPlayers,
		Execute: func(ctx context.Context, src Source, args []string) int {
			// The lookup outlives the command invocation.
			ctx = context.WithoutCancel(ctx)
			svc.ResolveAsync(ctx, args[0], func(res domain.LookupResult) {
				src.SendFeedback(chat.Report(res, opts.Report))
			})
			return 1
		},
	}
}

// SuggestPlayers completes online player names by case-insensitive prefix.
func SuggestPlayers(src Source, partial string) []string {
	return MatchPrefix(src.PlayerNames(), partial)
}

// MatchPrefix returns the names starting with partial, ignoring case, sorted
// case-insensitively.
func MatchPrefix(names []string, partial string) []string {
	prefix := strings.ToLower(partial)
	var out []string
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
