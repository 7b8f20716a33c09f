package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/inventory"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List remote and local books",
		Long: `List prints the remote collection followed by local books. A local
book shadows a remote book with the same id. When the remote collection is
unreachable only local books are listed and a warning is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInventory(nil, func(inv *inventory.Inventory) error {
				listing, err := inv.ListAll(ctxOf(cmd))
				if err != nil {
					return classify(err)
				}
				if listing.Degraded() {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote collection unavailable, showing local books only (%v)\n", listing.RemoteErr)
				}

				books := listing.Books
				if books == nil {
					books = []types.Book{}
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), books)
				}
				return printTable(cmd, books)
			})
		},
	}
}

func printTable(cmd *cobra.Command, books []types.Book) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tPAGES")
	for _, b := range books {
		year := "-"
		if b.PublicationYear != nil {
			year = strconv.Itoa(*b.PublicationYear)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, year, b.Pages)
	}
	return tw.Flush()
}
