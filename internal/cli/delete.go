package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/inventory"
)

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a local book",
		Long: `Delete removes the local book with the given id. Deleting an id that
is not stored locally succeeds and changes nothing; remote books cannot be
deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInventory(nil, func(inv *inventory.Inventory) error {
				if err := inv.Delete(ctxOf(cmd), args[0]); err != nil {
					return classify(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
				return nil
			})
		},
	}
}
