package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/config"
	"github.com/hazadus/go-discography/internal/s3"
	"github.com/hazadus/go-discography/internal/uploader"
	"github.com/hazadus/go-discography/internal/utils"
)

const coverUploadTimeout = 10 * time.Minute

// coverStorage - хранилище обложек: загрузка, удаление и разбор собственных адресов
type coverStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

func newS3CoverStorage(cfg *config.Config) (coverStorage, error) {
	u, err := s3.NewUploader(&s3.Config{
		Region:     cfg.AwsRegion,
		AccessKey:  cfg.AwsAccessKey,
		SecretKey:  cfg.AwsSecretKey,
		Endpoint:   cfg.AwsEndpoint,
		BucketName: cfg.AwsBucketName,
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// createReleasesCoverCommand создает команду загрузки обложки релиза
func (app *Application) createReleasesCoverCommand(ctx context.Context) *cobra.Command {
	var keepOld bool
	cmd := &cobra.Command{
		Use:   "cover [ID] [image or audio file]",
		Short: "Upload a release cover to S3 storage",
		Long: `Upload a cover image (jpg, png, webp, gif) or the artwork embedded
in an audio file's tags, then set the release's cover_url.
The previous cover is removed from the bucket unless --keep-old is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			// Создаем контекст с таймаутом для загрузки
			uploadCtx, cancel := context.WithTimeout(ctx, coverUploadTimeout)
			defer cancel()
			return app.uploadCover(uploadCtx, id, args[1], keepOld)
		},
	}
	cmd.Flags().BoolVar(&keepOld, "keep-old", false, "Не удалять предыдущую обложку из бакета")
	return cmd
}

// uploadCover загружает обложку и сохраняет ее адрес в релизе
func (app *Application) uploadCover(ctx context.Context, id int, filePath string, keepOld bool) error {
	if !app.Config.HasCoverStorage() {
		return errors.New("хранилище обложек не настроено: задайте aws_bucket_name, aws_access_key и aws_secret_key")
	}

	release, err := findEntity(ctx, app.Releases, id)
	if err != nil {
		return err
	}

	storage, err := app.newCoverStorage(app.Config)
	if err != nil {
		return fmt.Errorf("ошибка создания S3 uploader: %w", err)
	}

	app.printf("📤 Загружаем обложку релиза %q:\n", release.Fields.Title)
	app.printf("   Файл: %s\n", filePath)
	app.printf("   Бакет: %s\n", app.Config.AwsBucketName)
	app.printf("\n")

	service := uploader.NewService(storage, app.Config.CoversPrefix)
	progress, stop := app.reportProgress()
	result, err := service.UploadCover(ctx, id, filePath, progress)
	stop()
	if err != nil {
		return fmt.Errorf("ошибка загрузки обложки: %w", err)
	}

	source := "файл изображения"
	if result.FromAudio {
		source = "теги аудиофайла"
	}
	app.printf("\n✅ Обложка загружена (%s, %s)\n", uploader.FormatFileSize(result.Size), source)
	app.printf("   URL: %s\n", result.URL)

	oldURL := release.Fields.CoverURL
	patch := catalog.Patch[catalog.ReleaseFields](catalog.ReleasePatch{CoverURL: &result.URL})
	if err := editEntity(ctx, app.Releases, id, patch); err != nil {
		// Релиз не ссылается на новый объект, он больше не нужен
		if delErr := storage.DeleteFile(context.WithoutCancel(ctx), result.Key); delErr != nil {
			app.Logger.Warn("не удалось удалить загруженную обложку", slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return err
	}

	if keepOld || oldURL == "" || oldURL == result.URL {
		return nil
	}
	key, ok := storage.KeyFromURL(oldURL)
	if !ok {
		app.Logger.Debug("предыдущая обложка хранится вне бакета", slog.String("url", oldURL))
		return nil
	}
	if err := storage.DeleteFile(ctx, key); err != nil {
		app.printf("⚠️  Не удалось удалить предыдущую обложку %s: %v\n", key, err)
		return nil
	}
	app.printf("🗑️  Предыдущая обложка удалена: %s\n", key)
	return nil
}

// reportProgress печатает ход загрузки. stop дожидается последней строки.
func (app *Application) reportProgress() (progress func(int64), stop func()) {
	progressChan := make(chan int64, 16)
	done := make(chan struct{})

	// Запускаем горутину для отображения прогресса
	go func() {
		defer close(done)
		startTime := time.Now()

		for bytesRead := range progressChan {
			elapsed := time.Since(startTime)
			if bytesRead <= 0 || elapsed <= 0 {
				continue
			}
			speed := float64(bytesRead) / elapsed.Seconds()
			app.printf("\r📊 Загружено: %s | Скорость: %s/s | Прошло: %s",
				uploader.FormatFileSize(bytesRead),
				uploader.FormatFileSize(int64(speed)),
				utils.FormatClock(elapsed))
		}
	}()

	progress = func(bytesRead int64) {
		// Промежуточные значения можно пропустить
		select {
		case progressChan <- bytesRead:
		default:
		}
	}
	stop = func() {
		close(progressChan)
		<-done
	}
	return progress, stop
}
