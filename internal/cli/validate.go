package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
	"github.com/mesh-intelligence/shelf/pkg/validator"
)

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <json>",
		Short: "Check a book against the field rules",
		Long: `Validate reports every field that fails its rule without storing
anything. It exits 1 when any field is invalid. Pass "-" to read the JSON
from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := readBookArg(cmd, args[0])
			if err != nil {
				return err
			}

			errs := validator.Book(&book)
			if a.flags.jsonMode {
				if errs == nil {
					errs = types.ValidationErrors{}
				}
				if err := printJSON(cmd.OutOrStdout(), map[string]any{"errors": errs}); err != nil {
					return err
				}
			} else if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid:")
				printValidation(cmd.OutOrStdout(), errs)
			}

			if len(errs) > 0 {
				return userError(errs)
			}
			return nil
		},
	}
}
