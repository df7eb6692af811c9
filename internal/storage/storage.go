package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, когда значение по ключу отсутствует
var ErrNotFound = errors.New("ключ не найден")

// Storage - небольшое key-value хранилище для локального состояния клиента
// (избранное, токен, кэш профиля, черновики). Значения - сериализованный JSON.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
