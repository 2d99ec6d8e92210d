package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/access"
)

var canCmd = &cobra.Command{
	Use:   "can",
	Short: "Show what each role may do",
	Long: `Print the permission table used by the showcase.

Columns are a viewer, a creator acting on their own post, a creator acting
on someone else's post, and an admin.`,
	Args: cobra.NoArgs,
	RunE: runCan,
}

func init() {
	rootCmd.AddCommand(canCmd)
}

func runCan(cmd *cobra.Command, args []string) error {
	rows := access.Table()

	if JSONOutput() {
		return printJSON(rows)
	}

	table := NewTable("ACTION", "POST", "VIEWER", "OWN", "OTHER", "ADMIN")
	for _, r := range rows {
		table.Row(r.Action, string(r.Subject),
			StatusIcon(r.Viewer), StatusIcon(r.Own), StatusIcon(r.Other), StatusIcon(r.Admin))
	}
	table.Flush()

	if Verbose() {
		fmt.Println()
		for _, role := range access.Roles {
			u := &access.User{ID: string(role), Role: role}
			fmt.Printf("%-8s upload=%v  admin tools=%v  garbage bin=%v  new posts start %s\n",
				role.Label(), access.CanUpload(u), access.CanAccessAdminTools(u),
				access.CanAccessGarbageBin(u), access.InitialStatus(u))
		}
	}
	return nil
}
