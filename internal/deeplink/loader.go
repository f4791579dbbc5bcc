package deeplink

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat - корневой документ YAML-файла стратегий.
type fileFormat struct {
	// Replace отключает встроенные стратегии.
	Replace    bool   `yaml:"replace"`
	Strategies []Plan `yaml:"strategies"`
}

// LoadCatalog читает стратегии из YAML-файла и объединяет их со встроенными.
// Пустой путь возвращает DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deeplink strategies: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog разбирает YAML со стратегиями.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode deeplink strategies: %w", err)
	}

	var plans []Plan
	if !doc.Replace {
		plans = DefaultPlans()
	}
	plans = append(plans, doc.Strategies...)
	if len(plans) == 0 {
		return nil, ErrCatalogEmpty
	}
	return NewCatalog(plans...)
}
