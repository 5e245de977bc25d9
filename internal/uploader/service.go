// Package uploader загружает обложки релизов в объектное хранилище
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/hazadus/go-discography/internal/metadata"
)

// ObjectStorage - хранилище, выдающее публичный адрес загруженного объекта
type ObjectStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
}

// CoverExtractor извлекает обложку, встроенную в аудиофайл
type CoverExtractor interface {
	ExtractCover(filePath string) (*metadata.Picture, error)
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

var audioExts = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
}

// Service управляет загрузкой обложек
type Service struct {
	storage   ObjectStorage
	extractor CoverExtractor
	prefix    string
	newID     func() string
}

// NewService создает новый сервис загрузки
func NewService(storage ObjectStorage, prefix string) *Service {
	return &Service{
		storage:   storage,
		extractor: metadata.NewExtractor(),
		prefix:    prefix,
		newID:     func() string { return uuid.NewString()[:8] },
	}
}

// UploadResult содержит результат загрузки
type UploadResult struct {
	URL         string
	Key         string
	ContentType string
	Size        int64
	FromAudio   bool // Обложка извлечена из тегов аудиофайла
}

// UploadCover загружает обложку релиза из изображения или из тегов аудиофайла
func (s *Service) UploadCover(ctx context.Context, releaseID int, filePath string, progressCallback func(int64)) (*UploadResult, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("файл не найден: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	var (
		body        io.Reader
		size        int64
		contentType string
		fromAudio   bool
	)

	switch {
	case imageTypes[ext] != "":
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла: %w", err)
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
		}
		body, size, contentType = file, info.Size(), imageTypes[ext]

	case audioExts[ext]:
		picture, err := s.extractor.ExtractCover(filePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка извлечения обложки: %w", err)
		}
		body, size, contentType = bytes.NewReader(picture.Data), int64(len(picture.Data)), picture.MIMEType
		ext = "." + picture.Ext
		fromAudio = true

	default:
		return nil, fmt.Errorf("неподдерживаемый формат обложки: %s", filepath.Base(filePath))
	}

	if progressCallback != nil {
		body = &ProgressReader{Reader: body, Size: size, OnProgress: progressCallback}
	}

	key := fmt.Sprintf("%srelease-%d-%s%s", s.prefix, releaseID, s.newID(), ext)
	url, err := s.storage.UploadFile(ctx, body, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	return &UploadResult{
		URL:         url,
		Key:         key,
		ContentType: contentType,
		Size:        size,
		FromAudio:   fromAudio,
	}, nil
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
