package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/command"
	"github.com/lu-zhengda/aliases/internal/httpapi"
)

const completionTimeout = 2 * time.Second

func newLookupCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "lookup <username>",
		Short: "Show the name history of a player",
		Long: "Resolve a username to its account and print every name it has used.\n" +
			"Lookup failures are reported in the message; the exit status is only\n" +
			"non-zero for usage or configuration errors.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePlayers,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.UI.Format
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			svc, _, err := newLookupService(cfg, logger, nil)
			if err != nil {
				return err
			}

			res := svc.Resolve(cmd.Context(), args[0])
			opts := cfg.ReportOptions()

			if jsonFlag {
				resp, err := httpapi.NewLookupResponse(res, opts)
				if err != nil {
					return err
				}
				return fprintJSON(cmd.OutOrStdout(), resp)
			}

			out, err := renderReport(chat.Report(res, opts), format, lipgloss.NewRenderer(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			if !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: ansi, plain or json (default from config)")
	cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"ansi", "plain", "json"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// completePlayers suggests players online in a running lobby. Any failure
// yields no suggestions.
func completePlayers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	players, err := httpapi.FetchPlayers(ctx, nil, cfg.Server.HTTPAddr)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return command.MatchPrefix(players, toComplete), cobra.ShellCompDirectiveNoFileComp
}
