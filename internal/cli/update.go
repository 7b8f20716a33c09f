package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/inventory"
)

func (a *app) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <json>",
		Short: "Replace a local book",
		Long: `Update replaces the local book with the given id. The record is
replaced whole; fields left out of the JSON are cleared. Books that exist
only in the remote collection cannot be updated unless promote_remote is
enabled in config.yaml.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			book, err := readBookArg(cmd, args[1])
			if err != nil {
				return err
			}
			if err := validateOrFail(cmd, book); err != nil {
				return err
			}

			return a.withInventory(nil, func(inv *inventory.Inventory) error {
				updated, err := inv.Update(ctxOf(cmd), id, book)
				if err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Updated", updated.ID)
				return nil
			})
		},
	}
}
