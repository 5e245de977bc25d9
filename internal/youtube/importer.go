// Package youtube готовит черновик трека по опубликованному видео
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/utils"
)

var (
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	}
	videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	// Приписки, которые не относятся к названию трека
	titleNoise = regexp.MustCompile(`(?i)\s*[\(\[](official\s+)?(music\s+)?(video|audio|lyric video|visualizer)[\)\]]\s*$`)
)

// VideoFetcher получает сведения о видео
type VideoFetcher interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
}

// Importer превращает видео в поля нового трека
type Importer struct {
	fetcher VideoFetcher
}

// NewImporter создает импортер; без fetcher используется клиент YouTube
func NewImporter(fetcher VideoFetcher) *Importer {
	if fetcher == nil {
		fetcher = &youtube.Client{}
	}
	return &Importer{fetcher: fetcher}
}

// TrackDraft получает видео и возвращает поля черновика трека
func (i *Importer) TrackDraft(ctx context.Context, url string) (catalog.TrackFields, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return catalog.TrackFields{}, err
	}

	video, err := i.fetcher.GetVideoContext(ctx, videoID)
	if err != nil {
		return catalog.TrackFields{}, fmt.Errorf("ошибка получения информации о видео: %w", err)
	}

	fields := catalog.NewTrackDraft()
	fields.Title = cleanTitle(video.Title, video.Author)
	if video.Duration > 0 {
		fields.Duration = utils.FormatClock(video.Duration)
	}
	if video.Views > 0 {
		fields.Plays = utils.FormatPlays(uint64(video.Views))
	}
	return fields, nil
}

// ExtractVideoID извлекает ID видео из различных форматов YouTube URL
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoURLPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1], nil
		}
	}

	if videoIDPattern.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("не удалось извлечь ID видео из URL: %s", url)
}

// cleanTitle убирает из названия имя автора и приписки вроде "(Official Video)"
func cleanTitle(title, author string) string {
	title = strings.TrimSpace(title)
	author = strings.TrimSuffix(strings.TrimSpace(author), " - Topic")
	if author != "" {
		if rest, ok := strings.CutPrefix(title, author+" - "); ok {
			title = rest
		}
	}
	return strings.TrimSpace(titleNoise.ReplaceAllString(title, ""))
}
