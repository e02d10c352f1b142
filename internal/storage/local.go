package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage はローカルファイルシステムにバナーを保存する Storage 実装。
type LocalStorage struct {
	baseDir   string // ディスク上のルートディレクトリ (例: "./uploads")
	urlPrefix string // HTTP で配信する際の URL プレフィックス (例: "/uploads")
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage は LocalStorage を生成する。
func NewLocalStorage(baseDir, urlPrefix string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// BaseDir returns the directory files are written to.
func (s *LocalStorage) BaseDir() string { return s.baseDir }

func (s *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean[1:] != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

// Save writes to a temporary file first so readers never see a partial banner.
func (s *LocalStorage) Save(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	dest, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	return s.urlPrefix + "/" + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	dest, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}

func (s *LocalStorage) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok {
		return "", false
	}
	if _, err := s.resolve(key); err != nil {
		return "", false
	}
	return key, true
}
