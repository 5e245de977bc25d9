package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
	"github.com/hazadus/go-discography/internal/config"
	"github.com/hazadus/go-discography/internal/notify"
	"github.com/hazadus/go-discography/internal/syncclient"
)

// Команды с этой аннотацией занимают терминал целиком:
// уведомления уходят в очередь интерфейса, журнал пишется в файл
const annotationInteractive = "interactive"

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "discography",
		Short: "Manage a musician's tracks and releases",
		Long: `Command line tool and terminal admin for the tracks and releases
of a musician's discography, kept in a remote store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", config.DefaultPath, "Путь к файлу конфигурации")
	flags.StringVar(&app.apiURL, "api-url", "", "Адрес API хранилища (перекрывает api_url)")
	flags.DurationVar(&app.timeout, "timeout", 0, "Таймаут одного запроса к хранилищу")
	flags.StringVar(&app.logLevel, "log-level", "", "Уровень журнала: debug, info, warn, error")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createTracksCommand(ctx))
	rootCmd.AddCommand(app.createReleasesCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))

	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)
	return rootCmd
}

// setup загружает конфигурацию и создает клиента, менеджеры и диспетчер уведомлений
func (app *Application) setup(cmd *cobra.Command) error {
	if app.Config == nil {
		cfg, err := config.LoadConfig(app.configPath)
		if err != nil {
			return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
		}
		app.Config = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		app.Config.APIURL = app.apiURL
	}
	if flags.Changed("timeout") {
		app.Config.RequestTimeout = app.timeout
	}
	if flags.Changed("log-level") {
		app.Config.LogLevel = app.logLevel
	}
	if err := app.Config.Validate(); err != nil {
		return err
	}

	interactive := cmd.Annotations[annotationInteractive] == "true"

	logOut := app.Err
	if interactive {
		w, err := app.openLogFile()
		if err != nil {
			return err
		}
		logOut = w
	}
	logger, err := app.Config.NewLogger(logOut)
	if err != nil {
		return err
	}
	app.Logger = logger

	client, err := syncclient.New(&syncclient.Config{
		BaseURL:    app.Config.APIURL,
		Timeout:    app.Config.RequestTimeout,
		HTTPClient: app.httpClient,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	app.Dispatcher = notify.NewDispatcher(notify.WithLogger(logger))
	if !interactive {
		app.Dispatcher.Register(notify.NewConsoleSender(app.Out))
	}

	app.Tracks = collection.NewManager[catalog.TrackFields](syncclient.Tracks(client), app.Dispatcher, logger)
	app.Releases = collection.NewManager[catalog.ReleaseFields](syncclient.Releases(client), app.Dispatcher, logger)

	logger.Debug("приложение настроено",
		"api_url", app.Config.APIURL,
		"timeout", app.Config.RequestTimeout,
		"command", cmd.CommandPath())
	return nil
}

// openLogFile открывает файл журнала для интерактивного режима
func (app *Application) openLogFile() (io.Writer, error) {
	path := filepath.Join(os.TempDir(), "discography.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла журнала %s: %w", path, err)
	}
	app.logFile = f
	return f, nil
}

// printf печатает в поток вывода приложения
func (app *Application) printf(format string, args ...any) {
	fmt.Fprintf(app.Out, format, args...)
}
