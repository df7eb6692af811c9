package feed

import (
	"context"
	"log"
	"sync"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/toast"
)

// State - состояние пагинатора ленты
type State int

const (
	StateInitialLoading State = iota
	StateIdle
	StateLoadingMore
	StateRefreshing
	StateError
)

// Сообщения пользовательских состояний ленты
const (
	msgNoPosts    = "Постов пока нет"
	msgLoadFailed = "Не удалось загрузить ленту"
)

// FeedSource выдает страницы корневых постов (реализуется api.Client)
type FeedSource interface {
	FeedPage(ctx context.Context, page int) ([]models.Post, error)
}

// Pager владеет пагинацией ленты: накопленные посты, номер страницы,
// признак конца ленты и защита от конкурирующих запросов.
type Pager struct {
	source   FeedSource
	pageSize int
	notifier toast.Notifier

	mu         sync.Mutex
	state      State
	inFlight   bool
	posts      []models.Post
	page       int
	hasMore    bool
	errMessage string
}

func NewPager(source FeedSource, pageSize int, notifier toast.Notifier) *Pager {
	return &Pager{
		source:   source,
		pageSize: pageSize,
		notifier: notifier,
		state:    StateInitialLoading,
		hasMore:  true,
	}
}

// LoadInitial загружает первую страницу. Пустая первая страница и
// транспортная ошибка дают разные сообщения состояния ошибки.
// Повторный вызов из состояния ошибки выполняет повторную попытку.
func (p *Pager) LoadInitial(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight || (p.state != StateInitialLoading && p.state != StateError) {
		p.mu.Unlock()
		return
	}
	p.state = StateInitialLoading
	p.inFlight = true
	p.errMessage = ""
	p.mu.Unlock()

	posts, err := p.source.FeedPage(ctx, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		log.Printf("Не удалось загрузить первую страницу ленты: %v", err)
		p.state = StateError
		p.errMessage = msgLoadFailed
		return
	}
	if len(posts) == 0 {
		p.state = StateError
		p.errMessage = msgNoPosts
		p.hasMore = false
		return
	}
	p.state = StateIdle
	p.posts = posts
	p.page = 1
	p.hasMore = len(posts) >= p.pageSize
}

// FetchMorePosts загружает следующую страницу и дописывает ее к ленте.
// Ничего не делает, если лента закончилась или запрос уже выполняется.
func (p *Pager) FetchMorePosts(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight || p.state != StateIdle || !p.hasMore {
		p.mu.Unlock()
		return
	}
	page := p.page + 1
	p.state = StateLoadingMore
	p.inFlight = true
	p.mu.Unlock()

	posts, err := p.source.FeedPage(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateIdle
	p.inFlight = false
	if err != nil {
		log.Printf("Не удалось загрузить страницу %d: %v", page, err)
		p.notifier.Error("Не удалось загрузить больше постов")
		return
	}

	combined := make([]models.Post, 0, len(p.posts)+len(posts))
	combined = append(combined, p.posts...)
	combined = append(combined, posts...)
	p.posts = combined
	p.page = page
	if len(posts) < p.pageSize {
		p.hasMore = false
	}
}

// RefreshFeed заново загружает первую страницу и заменяет ленту целиком.
// Пустой результат и транспортная ошибка не считаются состоянием ошибки:
// пользователь получает уведомление, прежние посты при ошибке сохраняются.
func (p *Pager) RefreshFeed(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight || (p.state != StateIdle && p.state != StateError) {
		p.mu.Unlock()
		return
	}
	p.state = StateRefreshing
	p.inFlight = true
	p.errMessage = ""
	p.mu.Unlock()

	posts, err := p.source.FeedPage(ctx, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateIdle
	p.inFlight = false
	if err != nil {
		log.Printf("Не удалось обновить ленту: %v", err)
		p.notifier.Error("Не удалось обновить ленту")
		return
	}

	p.posts = posts
	p.page = 1
	p.hasMore = len(posts) >= p.pageSize
	if len(posts) == 0 {
		p.notifier.Info(msgNoPosts)
	}
}

// Posts возвращает копию накопленных постов в порядке поступления
func (p *Pager) Posts() []models.Post {
	p.mu.Lock()
	defer p.mu.Unlock()

	posts := make([]models.Post, len(p.posts))
	copy(posts, p.posts)
	return posts
}

func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ErrorMessage возвращает сообщение состояния ошибки (пустая строка вне его)
func (p *Pager) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMessage
}

func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Find ищет пост по идентификатору среди материализованных постов
func (p *Pager) Find(id int64) (models.Post, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, post := range p.posts {
		if post.ID == id {
			return post, true
		}
	}
	return models.Post{}, false
}

// Replace заменяет пост с тем же идентификатором новым значением.
// Список постов собирается заново, чтобы прежний срез остался нетронутым.
func (p *Pager) Replace(updated models.Post) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, post := range p.posts {
		if post.ID != updated.ID {
			continue
		}
		posts := make([]models.Post, len(p.posts))
		copy(posts, p.posts)
		posts[i] = updated
		p.posts = posts
		return true
	}
	return false
}
