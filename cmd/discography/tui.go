package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-discography/internal/notify"
	"github.com/hazadus/go-discography/internal/tui"
	tuiapp "github.com/hazadus/go-discography/internal/tui/app"
)

const noticeQueueSize = 32

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Launch TUI (Terminal User Interface)",
		Long:        `Launch interactive terminal admin with tabs for tracks and releases.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(ctx)
		},
	}
}

func (app *Application) launchTUI(ctx context.Context) error {
	// Уведомления показывает сам интерфейс, копия уходит в журнал
	queue := notify.NewQueue(noticeQueueSize)
	app.Dispatcher.Register(queue)
	app.Dispatcher.Register(notify.NewLogSender(app.Logger))
	defer app.Dispatcher.Unregister(queue.Name())

	tuiApp := tui.NewApp(tuiapp.Options{
		Tracks:    app.Tracks,
		Releases:  app.Releases,
		Notices:   queue.C(),
		NoticeTTL: app.Config.NoticeTTL,
	})
	return tuiApp.Run(ctx)
}
