package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/collection"
	"github.com/hazadus/go-discography/internal/config"
	"github.com/hazadus/go-discography/internal/notify"
	"github.com/hazadus/go-discography/internal/youtube"
)

// Application содержит зависимости, общие для всех команд
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Dispatcher *notify.Dispatcher
	Tracks     *collection.Manager[catalog.TrackFields]
	Releases   *collection.Manager[catalog.ReleaseFields]

	Out io.Writer
	Err io.Writer

	// Значения глобальных флагов
	configPath string
	apiURL     string
	timeout    time.Duration
	logLevel   string

	httpClient      *http.Client
	videoFetcher    youtube.VideoFetcher
	newCoverStorage func(cfg *config.Config) (coverStorage, error)
	logFile         *os.File
}

// NewApplication создает приложение, печатающее в out и err
func NewApplication(out, errOut io.Writer) *Application {
	return &Application{
		Out:             out,
		Err:             errOut,
		newCoverStorage: newS3CoverStorage,
	}
}

// Close освобождает ресурсы приложения
func (app *Application) Close() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := NewApplication(os.Stdout, os.Stderr)
	err := app.createRootCommand(ctx).ExecuteContext(ctx)

	app.Close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка: %v\n", err)
		os.Exit(1)
	}
}
