package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/inventory"
)

func (a *app) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <json>",
		Short: "Add a local book",
		Long: `Add validates the book and stores it locally with a new id. Pass "-"
to read the JSON from stdin. Any "id" in the input is replaced.

Example:
  shelf add '{"title":"Dune","author":"Frank Herbert","publisher":"Chilton","pages":412}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := readBookArg(cmd, args[0])
			if err != nil {
				return err
			}
			if err := validateOrFail(cmd, book); err != nil {
				return err
			}

			return a.withInventory(nil, func(inv *inventory.Inventory) error {
				created, err := inv.Create(ctxOf(cmd), book)
				if err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Created", created.ID)
				return nil
			})
		},
	}
}
