package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/inventory"
)

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a book by id",
		Long: `Get looks the id up in the local collection first and falls back to
the remote collection.

Example:
  shelf get 3
  shelf get 01928f5e-6c1a-7d3e-9b1f-2f6a0c1d4e5f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInventory(nil, func(inv *inventory.Inventory) error {
				book, err := inv.Get(ctxOf(cmd), args[0])
				if err != nil {
					return classify(err)
				}
				return printJSON(cmd.OutOrStdout(), book)
			})
		},
	}
}
