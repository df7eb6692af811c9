package session

import (
	"context"
	"testing"
	"time"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/storage/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user1",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("server-secret"))
	assert.NoError(t, err, "Не удалось подписать тестовый токен")
	return signed
}

func TestSessionEstablishAndRestore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	sess := New(store)
	user := models.User{Email: "alice@example.com", Username: "alice"}
	err := sess.Establish(ctx, "token123", user)
	assert.NoError(t, err, "Ошибка при открытии сессии")
	assert.Equal(t, "token123", sess.Token(), "Токен не совпадает")
	assert.Equal(t, &user, sess.User(), "Профиль не совпадает")

	// Новая сессия над тем же хранилищем восстанавливает состояние
	restored := New(store)
	assert.NoError(t, restored.Restore(ctx), "Ошибка при восстановлении сессии")
	assert.Equal(t, "token123", restored.Token(), "Токен должен восстановиться")
	assert.Equal(t, &user, restored.User(), "Профиль должен восстановиться")
}

func TestSessionRestoreEmpty(t *testing.T) {
	sess := New(memory.New())
	assert.NoError(t, sess.Restore(context.Background()), "Пустое хранилище не является ошибкой")
	assert.Empty(t, sess.Token(), "Токен должен быть пустым")
	assert.Nil(t, sess.User(), "Пользователь должен отсутствовать")
}

func TestSessionClear(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	sess := New(store)
	assert.NoError(t, sess.Establish(ctx, "token123", models.User{Email: "alice@example.com"}))
	assert.NoError(t, sess.Clear(ctx), "Ошибка при завершении сессии")
	assert.Empty(t, sess.Token(), "Токен должен очиститься")
	assert.Nil(t, sess.User(), "Пользователь должен очиститься")

	restored := New(store)
	assert.NoError(t, restored.Restore(ctx))
	assert.Empty(t, restored.Token(), "Токен не должен восстановиться после выхода")
}

func TestFavoritesKey(t *testing.T) {
	ctx := context.Background()

	sess := New(memory.New())
	assert.Equal(t, DefaultFavoritesKey, sess.FavoritesKey(), "Без пользователя используется общий ключ")

	assert.NoError(t, sess.Establish(ctx, "token123", models.User{Email: "alice@example.com"}))
	assert.Equal(t, "favorites:alice@example.com", sess.FavoritesKey(), "Ключ должен включать email")

	assert.NoError(t, sess.UpdateUser(ctx, models.User{Username: "anon"}))
	assert.Equal(t, DefaultFavoritesKey, sess.FavoritesKey(), "Без email используется общий ключ")
}

func TestTokenExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty token", func(t *testing.T) {
		sess := New(memory.New())
		assert.True(t, sess.TokenExpired(), "Пустой токен считается истекшим")
	})

	t.Run("Valid token", func(t *testing.T) {
		sess := New(memory.New())
		assert.NoError(t, sess.Establish(ctx, signedToken(t, time.Now().Add(time.Hour)), models.User{}))
		assert.False(t, sess.TokenExpired(), "Действующий токен не истек")
	})

	t.Run("Expired token", func(t *testing.T) {
		sess := New(memory.New())
		assert.NoError(t, sess.Establish(ctx, signedToken(t, time.Now().Add(-time.Hour)), models.User{}))
		assert.True(t, sess.TokenExpired(), "Просроченный токен должен считаться истекшим")
	})

	t.Run("Malformed token", func(t *testing.T) {
		sess := New(memory.New())
		assert.NoError(t, sess.Establish(ctx, "не-токен", models.User{}))
		assert.True(t, sess.TokenExpired(), "Нечитаемый токен считается истекшим")
	})
}
