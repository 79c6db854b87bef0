package fooddata

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

//go:embed foods.json
var bundledFoods []byte

// FileSource reads the dataset from a local JSON file.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a source for the dataset at path.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

// LoadFoods reads and decodes the file.
func (s *FileSource) LoadFoods(ctx context.Context) ([]domain.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetLoad, err)
	}
	return Decode(data, s.logger.With(zap.String("source", s.Describe())))
}

// Describe names the source for logs.
func (s *FileSource) Describe() string {
	return "file:" + s.path
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct {
	data   []byte
	logger *zap.Logger
}

// NewEmbeddedSource returns the bundled dataset of common Japanese foods.
func NewEmbeddedSource(logger *zap.Logger) *EmbeddedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmbeddedSource{data: bundledFoods, logger: logger}
}

// LoadFoods decodes the bundled dataset.
func (s *EmbeddedSource) LoadFoods(ctx context.Context) ([]domain.Food, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(s.data, s.logger.With(zap.String("source", s.Describe())))
}

// Describe names the source for logs.
func (s *EmbeddedSource) Describe() string {
	return "embedded"
}
