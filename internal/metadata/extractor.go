// Package metadata извлекает из аудиофайлов данные для черновика трека и обложки релиза
package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/utils"
)

// ErrNoPicture - в файле нет встроенной обложки
var ErrNoPicture = errors.New("в файле нет встроенной обложки")

// TrackInfo хранит теги трека
type TrackInfo struct {
	Artist  string
	Title   string
	Album   string
	Picture *Picture
}

// Picture - встроенное изображение
type Picture struct {
	MIMEType string
	Ext      string // Расширение без точки: jpg, png
	Data     []byte
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает теги из io.ReadSeeker.
// Если тегов нет, название берется из имени файла.
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackInfo {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	m, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	info := TrackInfo{
		Artist: m.Artist(),
		Title:  m.Title(),
		Album:  m.Album(),
	}
	if info.Title == "" {
		fallback := e.getDefaultMetadata(source)
		info.Title = fallback.Title
		if info.Artist == "" {
			info.Artist = fallback.Artist
		}
	}
	if p := m.Picture(); p != nil && len(p.Data) > 0 {
		info.Picture = &Picture{MIMEType: p.MIMEType, Ext: pictureExt(p.MIMEType, p.Ext), Data: p.Data}
	}
	return info
}

// ExtractFromFile извлекает теги из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackInfo {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// TrackDraft готовит поля нового трека по аудиофайлу.
// Если длительность определить не удалось, поле остается пустым.
func (e *Extractor) TrackDraft(filePath string) (catalog.TrackFields, error) {
	if _, err := os.Stat(filePath); err != nil {
		return catalog.TrackFields{}, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	fields := catalog.NewTrackDraft()
	fields.Title = e.ExtractFromFile(filePath).Title
	if duration, err := e.GetDuration(filePath); err == nil {
		fields.Duration = utils.FormatClock(duration)
	}
	return fields, nil
}

// ExtractCover возвращает обложку, встроенную в аудиофайл
func (e *Extractor) ExtractCover(filePath string) (*Picture, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тегов %s: %w", filepath.Base(filePath), err)
	}
	p := m.Picture()
	if p == nil || len(p.Data) == 0 {
		return nil, ErrNoPicture
	}
	return &Picture{MIMEType: p.MIMEType, Ext: pictureExt(p.MIMEType, p.Ext), Data: p.Data}, nil
}

func pictureExt(mimeType, ext string) string {
	if ext != "" {
		return strings.ToLower(ext)
	}
	switch mimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackInfo {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackInfo{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return TrackInfo{
		Artist: "Unknown Artist",
		Title:  nameWithoutExt,
	}
}
