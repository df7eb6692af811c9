package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ButyrinIA/tuiter/internal/storage"
)

// Фиксированный ключ черновика нового поста
const draftKey = "draft:post"

// Store сохраняет черновик текста поста между запусками клиента
type Store struct {
	store storage.Storage
}

func New(store storage.Storage) *Store {
	return &Store{store: store}
}

func (s *Store) Save(ctx context.Context, text string) error {
	data, err := json.Marshal(text)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать черновик: %w", err)
	}
	return s.store.Set(ctx, draftKey, data)
}

// Load возвращает сохраненный черновик; отсутствие черновика - пустая строка
func (s *Store) Load(ctx context.Context) (string, error) {
	data, err := s.store.Get(ctx, draftKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return "", fmt.Errorf("не удалось разобрать черновик: %w", err)
	}
	return text, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, draftKey)
}
