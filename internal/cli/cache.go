package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"calpersonal/internal/store"
)

func newCacheCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the files backing the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range store.Paths(app.cfg) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})
	return cmd
}
