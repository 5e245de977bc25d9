// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath - путь к файлу конфигурации по умолчанию
	DefaultPath = "~/.discography"
	// APIURLEnv - переменная окружения с адресом API, имеет приоритет над файлом
	APIURLEnv = "DISCOGRAPHY_API_URL"

	defaultRequestTimeout = 15 * time.Second
	defaultNoticeTTL      = 4 * time.Second
	defaultCoversPrefix   = "covers/"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	NoticeTTL      time.Duration `yaml:"notice_ttl"`

	// Хранилище обложек релизов
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
	CoversPrefix  string `yaml:"covers_prefix"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не считается ошибкой: используются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := strings.Replace(filePath, "~", home, 1)

	config := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
		}
	}

	if env := os.Getenv(APIURLEnv); env != "" {
		config.APIURL = env
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults устанавливает значения по умолчанию, если они не заданы
func (c *Config) applyDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.NoticeTTL <= 0 {
		c.NoticeTTL = defaultNoticeTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.CoversPrefix == "" {
		c.CoversPrefix = defaultCoversPrefix
	}
}

// Validate проверяет настройки, без которых приложение не может работать
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("не задан api_url (в файле %s или переменной %s)", DefaultPath, APIURLEnv)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("неверный api_url: %q", c.APIURL)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("неизвестный log_format %q: ожидается text или json", c.LogFormat)
	}
	return nil
}

// HasCoverStorage сообщает, настроено ли хранилище обложек
func (c *Config) HasCoverStorage() bool {
	return c.AwsBucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}
