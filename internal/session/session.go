package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/storage"
	"github.com/golang-jwt/jwt/v5"
)

// Фиксированные ключи локального хранилища
const (
	tokenKey = "auth:token"
	userKey  = "auth:user"

	// DefaultFavoritesKey используется, пока пользователь не известен
	DefaultFavoritesKey = "favorites:default"
)

// Session - текущий пользователь и его токен. Состояние переживает
// перезапуск клиента за счет локального хранилища.
type Session struct {
	store storage.Storage

	mu    sync.RWMutex
	user  *models.User
	token string
}

func New(store storage.Storage) *Session {
	return &Session{store: store}
}

// Restore загружает токен и кэшированный профиль из хранилища.
// Отсутствие записей не является ошибкой: сессия просто остается пустой.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenData, err := s.store.Get(ctx, tokenKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("не удалось загрузить токен: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(tokenData, &s.token); err != nil {
			return fmt.Errorf("не удалось разобрать токен: %w", err)
		}
	}

	data, err := s.store.Get(ctx, userKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("не удалось загрузить профиль: %w", err)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("не удалось разобрать профиль: %w", err)
	}
	s.user = &user
	return nil
}

// Establish сохраняет токен и профиль после успешного входа или регистрации
func (s *Session) Establish(ctx context.Context, token string, user models.User) error {
	tokenData, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать токен: %w", err)
	}
	if err := s.store.Set(ctx, tokenKey, tokenData); err != nil {
		return fmt.Errorf("не удалось сохранить токен: %w", err)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать профиль: %w", err)
	}
	if err := s.store.Set(ctx, userKey, data); err != nil {
		return fmt.Errorf("не удалось сохранить профиль: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// UpdateUser обновляет кэшированный профиль (редактирование профиля)
func (s *Session) UpdateUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать профиль: %w", err)
	}
	if err := s.store.Set(ctx, userKey, data); err != nil {
		return fmt.Errorf("не удалось сохранить профиль: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Clear завершает сессию и удаляет локальные записи
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, tokenKey); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userKey); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User возвращает копию профиля или nil, если пользователь не известен
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// FavoritesKey возвращает ключ избранного текущего пользователя.
// Без известного пользователя используется общий ключ по умолчанию.
func (s *Session) FavoritesKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.Email == "" {
		return DefaultFavoritesKey
	}
	return "favorites:" + s.user.Email
}

// TokenExpired проверяет срок действия токена по claim exp.
// Подпись не проверяется: секрет известен только серверу.
func (s *Session) TokenExpired() bool {
	token := s.Token()
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
