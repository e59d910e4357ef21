// Package storage persists run artifacts locally and archives them to
// Google Drive.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bikkkubo/news-bot/internal/interfaces"
)

// LocalStore writes artifacts under a base directory, one
// subdirectory per run.
type LocalStore struct {
	baseDir string
}

var _ interfaces.ArtifactStore = (*LocalStore)(nil)

func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Save writes content to baseDir/dir/filename and returns the
// absolute path.
func (s *LocalStore) Save(content, filename, dir string) (string, error) {
	target := filepath.Join(s.baseDir, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", target, err)
	}

	path := filepath.Join(target, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
