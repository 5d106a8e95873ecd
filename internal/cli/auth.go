package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"calpersonal/internal/google"
)

func newAuthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "auth [events|tasks]",
		Short:     "Authorize access to Google Calendar and Google Tasks",
		Long:      "Run the browser consent flow and store the resulting token. Without an argument both kinds are authorized in turn.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(google.KindEvents), string(google.KindTasks)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []google.Kind{google.KindEvents, google.KindTasks}
			if len(args) == 1 {
				kinds = []google.Kind{google.Kind(args[0])}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p := app.provider()
			for _, k := range kinds {
				if err := p.Authorize(ctx, k, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("authorize %s: %w", k, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s token in %s\n", k, p.TokenPath(k))
			}
			return nil
		},
	}
}
