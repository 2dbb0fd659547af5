// Package static loads the card catalog and reading configs, either from
// the embedded defaults or from files on disk.
package static

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randomtoy/tarotbot/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

const (
	defaultCatalog  = "data/cards.json"
	defaultReadings = "data/readings.json"
)

// LoadCatalog reads the card catalog from path, or the embedded default
// when path is empty.
func LoadCatalog(path string) (domain.Catalog, error) {
	var cards []domain.Card
	if err := load(path, defaultCatalog, &cards); err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	catalog, err := domain.NewCatalog(cards)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}

// LoadRegistry reads reading configs from path, or the embedded default
// when path is empty.
func LoadRegistry(path string) (domain.Registry, error) {
	var configs map[string]domain.ReadingConfig
	if err := load(path, defaultReadings, &configs); err != nil {
		return domain.Registry{}, fmt.Errorf("load readings: %w", err)
	}
	if len(configs) == 0 {
		return domain.Registry{}, fmt.Errorf("load readings: no configs defined")
	}
	return domain.NewRegistry(configs), nil
}

func load(path, fallback string, v any) error {
	var (
		raw []byte
		err error
	)
	if path == "" {
		path = fallback
		raw, err = dataFS.ReadFile(fallback)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, v)
	default:
		err = json.Unmarshal(raw, v)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
