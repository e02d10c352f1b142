// Package storage keeps uploaded project banners.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that are empty or leave the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage はバナー画像の保存・削除を抽象化するインターフェース。
// ローカルファイルシステム実装の他、S3 等に差し替え可能。
type Storage interface {
	// Save stores data under key and returns its public URL.
	// key は "banners/<project id>/<random>.jpg" の形式。
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)

	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// KeyFromURL reverses Save's URL. ok is false for URLs this storage did
	// not issue, such as banners linked from elsewhere.
	KeyFromURL(url string) (key string, ok bool)
}
