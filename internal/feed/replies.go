package feed

import (
	"context"
	"log"
	"sync"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/graph-gophers/dataloader/v7"
)

// RepliesAPI запрашивает ответы на пост (реализуется api.Client)
type RepliesAPI interface {
	Replies(ctx context.Context, postID int64) ([]models.Post, error)
}

// ReplyCache - общий кэш ответов по идентификатору поста. Успешно
// загруженные ответы не перезапрашиваются до конца сессии; неудачная
// загрузка из кэша вычищается, чтобы ее можно было повторить.
type ReplyCache struct {
	loader *dataloader.Loader[int64, []models.Post]
}

func NewReplyCache(api RepliesAPI) *ReplyCache {
	batchFn := func(ctx context.Context, keys []int64) []*dataloader.Result[[]models.Post] {
		results := make([]*dataloader.Result[[]models.Post], len(keys))
		for i, key := range keys {
			replies, err := api.Replies(ctx, key)
			results[i] = &dataloader.Result[[]models.Post]{Data: replies, Error: err}
		}
		return results
	}
	return &ReplyCache{
		loader: dataloader.NewBatchedLoader(batchFn,
			dataloader.WithBatchCapacity[int64, []models.Post](1)),
	}
}

func (c *ReplyCache) Load(ctx context.Context, postID int64) ([]models.Post, error) {
	replies, err := c.loader.Load(ctx, postID)()
	if err != nil {
		c.loader.Clear(ctx, postID)
		return nil, err
	}
	return replies, nil
}

// ReplyLoader - видимость и кэш ответов одного поста
type ReplyLoader struct {
	postID int64
	cache  *ReplyCache

	mu      sync.Mutex
	visible bool
	loading bool
	replies []models.Post
}

// NewReplyLoader создает загрузчик; уже известные ответы показываются сразу
func NewReplyLoader(cache *ReplyCache, postID int64, initial []models.Post) *ReplyLoader {
	return &ReplyLoader{
		postID:  postID,
		cache:   cache,
		visible: len(initial) > 0,
		replies: initial,
	}
}

// ToggleReplies показывает или скрывает ответы. Скрытие не очищает кэш,
// повторный показ уже загруженных ответов не ходит в сеть.
func (l *ReplyLoader) ToggleReplies(ctx context.Context) {
	l.mu.Lock()
	if l.visible {
		l.visible = false
		l.mu.Unlock()
		return
	}
	if len(l.replies) > 0 {
		l.visible = true
		l.mu.Unlock()
		return
	}
	if l.loading {
		l.mu.Unlock()
		return
	}
	l.loading = true
	l.mu.Unlock()

	replies, err := l.cache.Load(ctx, l.postID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		log.Printf("Не удалось загрузить ответы на пост %d: %v", l.postID, err)
	} else {
		l.replies = replies
		l.visible = true
	}
	l.loading = false
}

func (l *ReplyLoader) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

func (l *ReplyLoader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Replies возвращает копию закэшированных ответов
func (l *ReplyLoader) Replies() []models.Post {
	l.mu.Lock()
	defer l.mu.Unlock()

	replies := make([]models.Post, len(l.replies))
	copy(replies, l.replies)
	return replies
}
