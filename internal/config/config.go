package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration позволяет записывать длительности в yaml строками вида "5s"
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("некорректная длительность %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config - конфигурация клиента Tuiter
type Config struct {
	API struct {
		BaseURL string   `yaml:"base_url"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"api"`
	Feed struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"feed"`
	Storage struct {
		FilePath string `yaml:"file_path"`
	} `yaml:"storage"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
}

// Load читает конфигурацию из yaml-файла и подставляет значения по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать файл конфигурации: %w", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url обязателен")
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = Duration(5 * time.Second)
	}
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = 10
	}
	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = "tuiter.json"
	}
	return cfg, nil
}
