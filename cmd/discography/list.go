package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createListCommand создает команду list, показывающую весь каталог
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracks and releases",
		Long:  `Load both collections from the store at once and display them.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.loadAll(ctx); err != nil {
				return err
			}
			app.printTracks(app.Tracks.Items())
			app.printReleases(app.Releases.Items())
			return nil
		},
	}
}
