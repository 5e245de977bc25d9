package storetest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-discography/internal/catalog"
)

type trackRecord struct {
	ID                  int `yaml:"id"`
	catalog.TrackFields `yaml:",inline"`
}

type releaseRecord struct {
	ID                    int `yaml:"id"`
	catalog.ReleaseFields `yaml:",inline"`
}

// Data - начальное содержимое хранилища
type Data struct {
	Tracks   []catalog.Track
	Releases []catalog.Release
}

type seedFile struct {
	Tracks   []trackRecord   `yaml:"tracks"`
	Releases []releaseRecord `yaml:"releases"`
}

// LoadData загружает начальные данные из YAML-файла
func LoadData(filePath string) (Data, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Data{}, err
	}
	path := strings.Replace(filePath, "~", home, 1)

	raw, err := os.ReadFile(path)
	if err != nil {
		// Если файл не найден, хранилище начинается пустым
		if os.IsNotExist(err) {
			return Data{}, nil
		}
		return Data{}, fmt.Errorf("ошибка чтения файла данных: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Data{}, fmt.Errorf("ошибка разбора данных: %w", err)
	}

	data := Data{
		Tracks:   make([]catalog.Track, 0, len(seed.Tracks)),
		Releases: make([]catalog.Release, 0, len(seed.Releases)),
	}
	for _, r := range seed.Tracks {
		data.Tracks = append(data.Tracks, catalog.Track{ID: r.ID, Fields: r.TrackFields})
	}
	for _, r := range seed.Releases {
		data.Releases = append(data.Releases, catalog.Release{ID: r.ID, Fields: r.ReleaseFields})
	}
	return data, nil
}

// SaveData сохраняет текущее содержимое хранилища в YAML-файл
func (s *Server) SaveData(filePath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := strings.Replace(filePath, "~", home, 1)

	var seed seedFile
	for _, t := range s.Tracks() {
		seed.Tracks = append(seed.Tracks, trackRecord{ID: t.ID, TrackFields: t.Fields})
	}
	for _, r := range s.Releases() {
		seed.Releases = append(seed.Releases, releaseRecord{ID: r.ID, ReleaseFields: r.Fields})
	}

	raw, err := yaml.Marshal(seed)
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	return nil
}
