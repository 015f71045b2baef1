package interfaces

import (
	"context"
	"time"
)

// BlobStore - объектное хранилище ассетов страниц артефактов (изображения,
// 3D-модели). Используется только авторскими потоками.
type BlobStore interface {
	// PutObject загружает объект по ключу.
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	// PresignedGetURL выдаёт временную ссылку на чтение объекта.
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
