package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// мок для интерфейса FeedSource
type mockSource struct {
	mock.Mock
}

func (m *mockSource) FeedPage(ctx context.Context, page int) ([]models.Post, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

// мок для интерфейса toast.Notifier
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Success(message string) { m.Called(message) }
func (m *mockNotifier) Info(message string)    { m.Called(message) }
func (m *mockNotifier) Error(message string)   { m.Called(message) }

// noopNotifier для тестов, которым уведомления не важны
type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Info(string)    {}
func (noopNotifier) Error(string)   {}

func makeRoots(ids ...int64) []models.Post {
	posts := make([]models.Post, len(ids))
	for i, id := range ids {
		posts[i] = rootPost(id)
	}
	return posts
}

func TestPagerLoadInitial(t *testing.T) {
	ctx := context.Background()

	t.Run("Full first page", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil)

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)

		assert.Equal(t, StateIdle, pager.State(), "Ожидалось состояние idle")
		assert.Len(t, pager.Posts(), 2, "Ожидались два поста")
		assert.Equal(t, 1, pager.Page(), "Неверный номер страницы")
		assert.True(t, pager.HasMore(), "Полная страница означает продолжение ленты")
		source.AssertExpectations(t)
	})

	t.Run("Short first page ends the feed", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1), nil)

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)

		assert.Equal(t, StateIdle, pager.State(), "Ожидалось состояние idle")
		assert.False(t, pager.HasMore(), "Неполная страница означает конец ленты")
	})

	t.Run("Empty first page", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return([]models.Post{}, nil)

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)

		assert.Equal(t, StateError, pager.State(), "Пустая первая страница дает состояние ошибки")
		assert.Equal(t, "Постов пока нет", pager.ErrorMessage(), "Неверное сообщение")
		assert.False(t, pager.HasMore(), "Пустая лента закончилась")
	})

	t.Run("Transport failure and retry", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(nil, assert.AnError).Once()
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil).Once()

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)

		assert.Equal(t, StateError, pager.State(), "Ожидалось состояние ошибки")
		assert.Equal(t, "Не удалось загрузить ленту", pager.ErrorMessage(), "Неверное сообщение")

		// Повторная попытка из состояния ошибки
		pager.LoadInitial(ctx)
		assert.Equal(t, StateIdle, pager.State(), "Повтор должен вывести из ошибки")
		assert.Len(t, pager.Posts(), 2, "Ожидались два поста после повтора")
		source.AssertExpectations(t)
	})
}

func TestPagerFetchMore(t *testing.T) {
	ctx := context.Background()

	t.Run("Appends next page", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil)
		source.On("FeedPage", mock.Anything, 2).Return(makeRoots(3, 4), nil)

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)
		before := pager.Posts()
		pager.FetchMorePosts(ctx)

		posts := pager.Posts()
		assert.Len(t, posts, 4, "Ожидались четыре поста")
		assert.Equal(t, append(before, makeRoots(3, 4)...), posts, "Новая страница должна дописываться в конец")
		assert.Equal(t, 2, pager.Page(), "Неверный номер страницы")
		assert.True(t, pager.HasMore(), "Полная страница означает продолжение")
	})

	t.Run("Short page terminates pagination", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil)
		source.On("FeedPage", mock.Anything, 2).Return(makeRoots(3), nil)

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)
		pager.FetchMorePosts(ctx)

		assert.False(t, pager.HasMore(), "Неполная страница означает конец ленты")

		// Дальнейшие вызовы не ходят в сеть
		pager.FetchMorePosts(ctx)
		pager.FetchMorePosts(ctx)
		source.AssertNumberOfCalls(t, "FeedPage", 2)
	})

	t.Run("Transport failure keeps posts", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil)
		source.On("FeedPage", mock.Anything, 2).Return(nil, assert.AnError)
		notifier := &mockNotifier{}
		notifier.On("Error", "Не удалось загрузить больше постов").Once()

		pager := NewPager(source, 2, notifier)
		pager.LoadInitial(ctx)
		pager.FetchMorePosts(ctx)

		assert.Equal(t, StateIdle, pager.State(), "После ошибки пагинатор возвращается в idle")
		assert.Len(t, pager.Posts(), 2, "Прежние посты должны сохраниться")
		assert.Equal(t, 1, pager.Page(), "Номер страницы не должен увеличиться")
		notifier.AssertExpectations(t)
	})

	t.Run("No-op before initial load", func(t *testing.T) {
		source := &mockSource{}
		pager := NewPager(source, 2, noopNotifier{})
		pager.FetchMorePosts(ctx)
		source.AssertNotCalled(t, "FeedPage", mock.Anything, mock.Anything)
	})
}

func TestPagerRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces posts wholesale", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil).Once()
		source.On("FeedPage", mock.Anything, 2).Return(makeRoots(3, 4), nil).Once()
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(9, 10), nil).Once()

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)
		pager.FetchMorePosts(ctx)
		pager.RefreshFeed(ctx)

		assert.Equal(t, makeRoots(9, 10), pager.Posts(), "Лента должна быть заменена целиком")
		assert.Equal(t, 1, pager.Page(), "После обновления нумерация начинается заново")
		source.AssertExpectations(t)
	})

	t.Run("Empty refresh is a notice, not an error", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil).Once()
		source.On("FeedPage", mock.Anything, 1).Return([]models.Post{}, nil).Once()
		notifier := &mockNotifier{}
		notifier.On("Info", "Постов пока нет").Once()

		pager := NewPager(source, 2, notifier)
		pager.LoadInitial(ctx)
		pager.RefreshFeed(ctx)

		assert.Equal(t, StateIdle, pager.State(), "Пустое обновление не является ошибкой")
		assert.Empty(t, pager.Posts(), "Лента должна опустеть")
		notifier.AssertExpectations(t)
	})

	t.Run("Failed refresh keeps posts", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil).Once()
		source.On("FeedPage", mock.Anything, 1).Return(nil, assert.AnError).Once()
		notifier := &mockNotifier{}
		notifier.On("Error", "Не удалось обновить ленту").Once()

		pager := NewPager(source, 2, notifier)
		pager.LoadInitial(ctx)
		pager.RefreshFeed(ctx)

		assert.Equal(t, StateIdle, pager.State(), "После ошибки пагинатор возвращается в idle")
		assert.Equal(t, makeRoots(1, 2), pager.Posts(), "Прежние посты должны сохраниться")
		notifier.AssertExpectations(t)
	})

	t.Run("Refresh recovers from error state", func(t *testing.T) {
		source := &mockSource{}
		source.On("FeedPage", mock.Anything, 1).Return(nil, assert.AnError).Once()
		source.On("FeedPage", mock.Anything, 1).Return(makeRoots(1, 2), nil).Once()

		pager := NewPager(source, 2, noopNotifier{})
		pager.LoadInitial(ctx)
		assert.Equal(t, StateError, pager.State(), "Ожидалось состояние ошибки")

		pager.RefreshFeed(ctx)
		assert.Equal(t, StateIdle, pager.State(), "Обновление должно вывести из ошибки")
		assert.Len(t, pager.Posts(), 2, "Ожидались два поста")
	})
}

// blockingSource удерживает запрос до сигнала release
type blockingSource struct {
	release chan struct{}
	calls   int32
}

func (s *blockingSource) FeedPage(ctx context.Context, page int) ([]models.Post, error) {
	atomic.AddInt32(&s.calls, 1)
	<-s.release
	return makeRoots(int64(page*10), int64(page*10+1)), nil
}

func TestPagerConcurrencyGuard(t *testing.T) {
	ctx := context.Background()
	source := &blockingSource{release: make(chan struct{}, 1)}
	pager := NewPager(source, 2, noopNotifier{})

	source.release <- struct{}{}
	pager.LoadInitial(ctx)
	assert.Equal(t, StateIdle, pager.State(), "Ожидалось состояние idle")

	done := make(chan struct{})
	go func() {
		pager.FetchMorePosts(ctx)
		close(done)
	}()

	// Дожидаемся, пока первый запрос повиснет в полете
	for i := 0; i < 1000 && pager.State() != StateLoadingMore; i++ {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, StateLoadingMore, pager.State(), "Запрос должен быть в полете")

	// Конкурирующие вызовы должны быть проигнорированы
	pager.FetchMorePosts(ctx)
	pager.RefreshFeed(ctx)

	source.release <- struct{}{}
	<-done

	assert.Equal(t, int32(2), atomic.LoadInt32(&source.calls), "Ожидались ровно два запроса: начальный и одна страница")
	assert.Len(t, pager.Posts(), 4, "Ожидались четыре поста")
}
