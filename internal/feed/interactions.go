package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/storage"
	"github.com/ButyrinIA/tuiter/internal/toast"
)

// LikeAPI - удаленные операции лайка (реализуется api.Client)
type LikeAPI interface {
	Like(ctx context.Context, postID int64) error
	Unlike(ctx context.Context, postID int64) error
}

// PostStore - доступ к материализованным постам ленты (реализуется Pager)
type PostStore interface {
	Find(id int64) (models.Post, bool)
	Replace(post models.Post) bool
}

// FavoritesKeyer выдает ключ избранного текущего пользователя
// (реализуется сессией)
type FavoritesKeyer interface {
	FavoritesKey() string
}

// Interactions применяет мутации к постам ленты: лайки, подтверждаемые
// сервером, и чисто локальное избранное авторов.
type Interactions struct {
	api      LikeAPI
	posts    PostStore
	store    storage.Storage
	keys     FavoritesKeyer
	notifier toast.Notifier

	mu       sync.Mutex
	inFlight map[int64]bool
}

func NewInteractions(api LikeAPI, posts PostStore, store storage.Storage, keys FavoritesKeyer, notifier toast.Notifier) *Interactions {
	return &Interactions{
		api:      api,
		posts:    posts,
		store:    store,
		keys:     keys,
		notifier: notifier,
		inFlight: make(map[int64]bool),
	}
}

// ToggleLike переключает лайк поста. Локальное состояние меняется только
// после подтверждения сервером. Повторный вызов для того же поста,
// пока запрос выполняется, игнорируется.
func (e *Interactions) ToggleLike(ctx context.Context, postID int64) {
	e.mu.Lock()
	if e.inFlight[postID] {
		e.mu.Unlock()
		return
	}
	e.inFlight[postID] = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.inFlight, postID)
		e.mu.Unlock()
	}()

	post, exists := e.posts.Find(postID)
	if !exists {
		log.Printf("Пост %d отсутствует в текущем состоянии ленты", postID)
		return
	}

	var err error
	if post.LikedByCurrentUser {
		err = e.api.Unlike(ctx, postID)
	} else {
		err = e.api.Like(ctx, postID)
	}
	if err != nil {
		log.Printf("Не удалось изменить лайк поста %d: %v", postID, err)
		e.notifier.Error("Не удалось изменить лайк")
		return
	}

	if post.LikedByCurrentUser {
		post.LikedByCurrentUser = false
		if post.LikesCount > 0 {
			post.LikesCount--
		}
	} else {
		post.LikedByCurrentUser = true
		post.LikesCount++
	}
	e.posts.Replace(post)
}

// AddToFavorites добавляет автора в избранное текущего пользователя.
// Операция идемпотентна: повторное добавление не пишет в хранилище.
func (e *Interactions) AddToFavorites(ctx context.Context, author, avatarURL string) {
	key := e.keys.FavoritesKey()
	favorites := e.loadFavorites(ctx, key)

	for _, entry := range favorites {
		if entry.Author == author {
			e.notifier.Info("Автор уже в избранном")
			return
		}
	}

	favorites = append(favorites, models.FavoriteEntry{Author: author, AvatarURL: avatarURL})
	data, err := json.Marshal(favorites)
	if err != nil {
		log.Printf("Не удалось сериализовать избранное: %v", err)
		e.notifier.Error("Не удалось сохранить избранное")
		return
	}
	if err := e.store.Set(ctx, key, data); err != nil {
		log.Printf("Не удалось сохранить избранное: %v", err)
		e.notifier.Error("Не удалось сохранить избранное")
		return
	}
	e.notifier.Success("Автор добавлен в избранное")
}

// Favorites возвращает избранных авторов текущего пользователя
func (e *Interactions) Favorites(ctx context.Context) []models.FavoriteEntry {
	return e.loadFavorites(ctx, e.keys.FavoritesKey())
}

// loadFavorites читает список из хранилища; отсутствующая или
// нечитаемая запись дает пустой список
func (e *Interactions) loadFavorites(ctx context.Context, key string) []models.FavoriteEntry {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Не удалось прочитать избранное: %v", err)
		}
		return nil
	}
	var favorites []models.FavoriteEntry
	if err := json.Unmarshal(data, &favorites); err != nil {
		log.Printf("Не удалось разобрать избранное: %v", err)
		return nil
	}
	return favorites
}
