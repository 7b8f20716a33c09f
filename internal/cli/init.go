package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/store"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize shelf storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// config.yaml was created by setup.
			cfg, err := a.storeConfig()
			if err != nil {
				return sysError(err)
			}

			s, err := store.Open(cfg, a.logger)
			if err != nil {
				return sysError(fmt.Errorf("initialize storage: %w", err))
			}
			if err := s.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Shelf initialized successfully")
			fmt.Fprintln(out, "  config: ", a.configDir)
			fmt.Fprintln(out, "  data:   ", cfg.DataDir)
			fmt.Fprintln(out, "  backend:", cfg.Backend)
			return nil
		},
	}
}
