package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ButyrinIA/tuiter/internal/storage"
)

// FileStorage хранит все значения в одном JSON-файле.
// Файл перезаписывается целиком при каждом изменении.
type FileStorage struct {
	path   string
	values map[string]json.RawMessage
	mu     sync.RWMutex
}

func New(path string) (*FileStorage, error) {
	s := &FileStorage{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл хранилища: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("не удалось разобрать файл хранилища: %w", err)
		}
	}
	return s, nil
}

func (s *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !json.Valid(value) {
		return fmt.Errorf("значение по ключу %q не является корректным JSON", key)
	}
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	s.values[key] = stored
	return s.flush()
}

func (s *FileStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.values[key]; !exists {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

func (s *FileStorage) Close() error {
	return nil
}

// flush сохраняет текущее содержимое на диск. Вызывается под мьютексом.
func (s *FileStorage) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("не удалось сериализовать хранилище: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("не удалось записать файл хранилища: %w", err)
	}
	return nil
}
