package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"calpersonal/internal/ics"
	"calpersonal/internal/model"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		out      string
		from, to string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write cached events as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ics.Options{Name: name}
			var err error
			if from != "" {
				if opts.From, err = model.ParseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if opts.To, err = model.ParseDate(to); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cache, err := loadCache(ctx, app)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return ics.Write(cmd.OutOrStdout(), cache.Events, opts)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := ics.Write(f, cache.Events, opts); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			app.log.WithField("path", out).Info("exported events")
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&name, "name", "calpersonal", "Calendar name")
	return cmd
}
