package feed

import (
	"context"
	"sync"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/storage"
	"github.com/ButyrinIA/tuiter/internal/toast"
)

// API - удаленные операции, необходимые ленте (реализуется api.Client)
type API interface {
	FeedSource
	LikeAPI
	RepliesAPI
}

// EventKind - тип изменения состояния ленты
type EventKind string

const (
	EventFeedUpdated    EventKind = "feed_updated"
	EventPostUpdated    EventKind = "post_updated"
	EventRepliesUpdated EventKind = "replies_updated"
)

// Event доставляется подписчикам после изменения состояния ленты.
// PostID заполняется только для событий конкретного поста.
type Event struct {
	Kind   EventKind
	PostID int64
}

// Feed объединяет пагинатор, движок взаимодействий и загрузчики ответов
// за единым интерфейсом и уведомляет подписчиков об изменениях.
type Feed struct {
	pager        *Pager
	interactions *Interactions
	replyCache   *ReplyCache

	mu          sync.RWMutex
	loaders     map[int64]*ReplyLoader
	subscribers map[int]chan Event
	nextSub     int
}

func New(api API, pageSize int, store storage.Storage, keys FavoritesKeyer, notifier toast.Notifier) *Feed {
	pager := NewPager(api, pageSize, notifier)
	return &Feed{
		pager:        pager,
		interactions: NewInteractions(api, pager, store, keys, notifier),
		replyCache:   NewReplyCache(api),
		loaders:      make(map[int64]*ReplyLoader),
		subscribers:  make(map[int]chan Event),
	}
}

// Open загружает первую страницу ленты
func (f *Feed) Open(ctx context.Context) {
	f.pager.LoadInitial(ctx)
	f.broadcast(Event{Kind: EventFeedUpdated})
}

// FetchMorePosts дописывает следующую страницу к ленте
func (f *Feed) FetchMorePosts(ctx context.Context) {
	f.pager.FetchMorePosts(ctx)
	f.broadcast(Event{Kind: EventFeedUpdated})
}

// RefreshFeed заменяет ленту заново загруженной первой страницей
func (f *Feed) RefreshFeed(ctx context.Context) {
	f.pager.RefreshFeed(ctx)
	f.broadcast(Event{Kind: EventFeedUpdated})
}

// ToggleLike переключает лайк поста
func (f *Feed) ToggleLike(ctx context.Context, postID int64) {
	f.interactions.ToggleLike(ctx, postID)
	f.broadcast(Event{Kind: EventPostUpdated, PostID: postID})
}

// AddToFavorites добавляет автора в избранное
func (f *Feed) AddToFavorites(ctx context.Context, author, avatarURL string) {
	f.interactions.AddToFavorites(ctx, author, avatarURL)
}

// Favorites возвращает избранных авторов текущего пользователя
func (f *Feed) Favorites(ctx context.Context) []models.FavoriteEntry {
	return f.interactions.Favorites(ctx)
}

// ToggleReplies показывает или скрывает ответы на пост
func (f *Feed) ToggleReplies(ctx context.Context, postID int64) {
	f.loaderFor(postID).ToggleReplies(ctx)
	f.broadcast(Event{Kind: EventRepliesUpdated, PostID: postID})
}

// Groups возвращает сгруппированное представление ленты: корневые посты
// в порядке поступления, с видимыми ответами из загрузчиков
func (f *Feed) Groups() []models.PostGroup {
	groups := BuildPostGroups(f.pager.Posts())

	f.mu.RLock()
	defer f.mu.RUnlock()
	for i := range groups {
		loader, exists := f.loaders[groups[i].Post.ID]
		if exists && loader.Visible() {
			groups[i].Replies = loader.Replies()
		}
	}
	return groups
}

func (f *Feed) Posts() []models.Post {
	return f.pager.Posts()
}

func (f *Feed) State() State {
	return f.pager.State()
}

func (f *Feed) ErrorMessage() string {
	return f.pager.ErrorMessage()
}

func (f *Feed) HasMore() bool {
	return f.pager.HasMore()
}

func (f *Feed) Page() int {
	return f.pager.Page()
}

// Subscribe возвращает канал событий ленты. Подписка снимается
// по завершении контекста.
func (f *Feed) Subscribe(ctx context.Context) <-chan Event {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	ch := make(chan Event, 1)
	f.subscribers[id] = ch
	f.mu.Unlock()

	// Очистка подписки после завершения контекста
	go func() {
		<-ctx.Done()
		f.mu.Lock()
		if ch, exists := f.subscribers[id]; exists {
			close(ch)
			delete(f.subscribers, id)
		}
		f.mu.Unlock()
	}()

	return ch
}

// broadcast рассылает событие без блокировки: медленный подписчик
// пропускает событие, а не тормозит ленту
func (f *Feed) broadcast(event Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// loaderFor возвращает загрузчик ответов поста, создавая его при первом
// обращении
func (f *Feed) loaderFor(postID int64) *ReplyLoader {
	f.mu.Lock()
	defer f.mu.Unlock()

	loader, exists := f.loaders[postID]
	if !exists {
		loader = NewReplyLoader(f.replyCache, postID, nil)
		f.loaders[postID] = loader
	}
	return loader
}
