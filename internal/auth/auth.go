package auth

import (
	"context"
	"fmt"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/session"
)

// API - удаленные операции аутентификации (реализуется api.Client)
type API interface {
	Login(ctx context.Context, email, password string) (string, models.User, error)
	Register(ctx context.Context, username, email, password string) (string, models.User, error)
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)
}

// Service связывает вход, регистрацию и редактирование профиля с сессией
type Service struct {
	api     API
	session *session.Session
}

func NewService(api API, sess *session.Session) *Service {
	return &Service{api: api, session: sess}
}

// Login выполняет вход и сохраняет токен с профилем в сессии
func (s *Service) Login(ctx context.Context, email, password string) error {
	token, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("вход не выполнен: %w", err)
	}
	return s.session.Establish(ctx, token, user)
}

// Register регистрирует пользователя и сразу открывает сессию
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	token, user, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("регистрация не выполнена: %w", err)
	}
	return s.session.Establish(ctx, token, user)
}

// UpdateProfile сохраняет изменения профиля на сервере и в сессии
func (s *Service) UpdateProfile(ctx context.Context, user models.User) error {
	updated, err := s.api.UpdateProfile(ctx, user)
	if err != nil {
		return fmt.Errorf("профиль не обновлен: %w", err)
	}
	return s.session.UpdateUser(ctx, updated)
}

// Logout завершает сессию
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}
