package taxonomy

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source supplies the raw topic list once at startup. Implementations are
// expected to be cheap to call repeatedly; Manager handles caching.
type Source interface {
	Topics(ctx context.Context) ([]Topic, error)
}

// StaticSource serves a fixed in-memory topic list.
type StaticSource []Topic

func (s StaticSource) Topics(ctx context.Context) ([]Topic, error) {
	return append([]Topic(nil), s...), nil
}

// FileSource reads a YAML topic catalog from disk.
type FileSource struct {
	Path string
}

// topicsFile is the on-disk YAML layout.
type topicsFile struct {
	Topics []Topic `yaml:"topics"`
}

func (s FileSource) Topics(ctx context.Context) ([]Topic, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file %s: %w", s.Path, err)
	}
	var f topicsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing taxonomy file %s: %w", s.Path, err)
	}
	return f.Topics, nil
}

// DefaultSource returns the built-in topic catalog.
func DefaultSource() Source {
	return StaticSource(defaultTopics)
}
