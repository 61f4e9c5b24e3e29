package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newPermCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perm",
		Short: "Manage lobby permissions",
	}
	cmd.AddCommand(newPermSetCmd())
	cmd.AddCommand(newPermUnsetCmd())
	cmd.AddCommand(newPermListCmd())
	return cmd
}

func parseAllowed(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "allow", "true", "yes":
		return true, nil
	case "deny", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q (use allow or deny)", s)
	}
}

func newPermSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <player> <node> <allow|deny>",
		Short: "Grant or deny a permission node",
		Args:  cobra.ExactArgs(3),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 2 {
				return []string{"allow", "deny"}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			allowed, err := parseAllowed(args[2])
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			player, node := args[0], args[1]
			if err := db.SetPermission(cmd.Context(), player, node, allowed); err != nil {
				return err
			}

			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), jsonAction{OK: true, Action: "set", Player: player, Node: node, Allowed: &allowed})
			}
			verb := "Denied"
			if allowed {
				verb = "Granted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s\n", verb, node, player)
			return nil
		},
	}
}

func newPermUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <player> <node>",
		Short: "Remove a stored permission so the default applies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			player, node := args[0], args[1]
			if err := db.DeletePermission(cmd.Context(), player, node); err != nil {
				return err
			}

			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), jsonAction{OK: true, Action: "unset", Player: player, Node: node})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s for %s\n", node, player)
			return nil
		},
	}
}

func newPermListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <player>",
		Short: "List stored permissions of a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			perms, err := db.ListPermissions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), toJSONPermissions(perms))
			}

			if len(perms) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No permissions stored for %s.\n", args[0])
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NODE\tVALUE\tUPDATED")
			for _, p := range perms {
				value := "deny"
				if p.Allowed {
					value = "allow"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Node, value, p.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}
