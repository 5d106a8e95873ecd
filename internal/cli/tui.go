package cli

import (
	"context"

	"github.com/spf13/cobra"

	"calpersonal/internal/store"
	"calpersonal/internal/syncer"
	"calpersonal/internal/tui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(ctx, app.cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := syncer.New(ctx, syncer.Options{
		Store:           st,
		Location:        app.loc,
		Log:             app.log.WithField("component", "syncer"),
		DefaultCalendar: app.cfg.DefaultCalendar,
		RefreshCron:     app.cfg.RefreshCron,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	app.log.WithField("backend", app.cfg.CacheBackend).Info("starting tui")
	eng.Start(app.provider())

	return tui.Run(tui.Options{
		Engine:   eng,
		Location: app.loc,
		Log:      app.log.WithField("component", "tui"),
		Tick:     app.cfg.TickInterval(),
	})
}

// loadCache reads the local cache without touching the network.
func loadCache(ctx context.Context, app *App) (store.Cache, error) {
	st, err := store.Open(ctx, app.cfg)
	if err != nil {
		return store.Cache{}, err
	}
	defer st.Close()
	return st.Load(ctx), nil
}
