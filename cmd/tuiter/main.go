package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ButyrinIA/tuiter/internal/api"
	"github.com/ButyrinIA/tuiter/internal/auth"
	"github.com/ButyrinIA/tuiter/internal/config"
	"github.com/ButyrinIA/tuiter/internal/drafts"
	"github.com/ButyrinIA/tuiter/internal/feed"
	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/ButyrinIA/tuiter/internal/session"
	"github.com/ButyrinIA/tuiter/internal/storage"
	"github.com/ButyrinIA/tuiter/internal/storage/file"
	"github.com/ButyrinIA/tuiter/internal/storage/memory"
	"github.com/ButyrinIA/tuiter/internal/storage/postgres"
	"github.com/ButyrinIA/tuiter/internal/toast"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	storageType := flag.String("storage", "file", "тип хранилища: memory, file или postgres")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	var store storage.Storage
	switch *storageType {
	case "postgres":
		log.Println("Инициализация хранилища PostgreSQL")
		store, err = postgres.New(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Не удалось инициализировать PostgreSQL: %v", err)
		}
	case "file":
		log.Println("Инициализация файлового хранилища")
		store, err = file.New(cfg.Storage.FilePath)
		if err != nil {
			log.Fatalf("Не удалось инициализировать файловое хранилище: %v", err)
		}
	case "memory":
		log.Println("Инициализация хранилища Memory")
		store = memory.New()
	default:
		log.Fatalf("Неизвестный тип хранилища: %s", *storageType)
	}
	defer store.Close()

	ctx := context.Background()
	sess := session.New(store)
	if err := sess.Restore(ctx); err != nil {
		log.Printf("Не удалось восстановить сессию: %v", err)
	}
	if sess.TokenExpired() {
		log.Println("Сессия отсутствует или истекла, выполните вход командой login")
	}

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.Timeout), sess)
	authService := auth.NewService(client, sess)
	draftStore := drafts.New(store)
	notifier := toast.NewLogNotifier()
	lenta := feed.New(client, cfg.Feed.PageSize, store, sess, notifier)

	log.Println("Загрузка ленты")
	lenta.Open(ctx)
	printFeed(lenta)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "feed":
			printFeed(lenta)
		case "more":
			lenta.FetchMorePosts(ctx)
			printFeed(lenta)
		case "refresh":
			lenta.RefreshFeed(ctx)
			printFeed(lenta)
		case "like":
			if id, ok := parseID(fields); ok {
				lenta.ToggleLike(ctx, id)
			}
		case "replies":
			if id, ok := parseID(fields); ok {
				lenta.ToggleReplies(ctx, id)
				printFeed(lenta)
			}
		case "fav":
			if id, ok := parseID(fields); ok {
				if post, found := findPost(lenta, id); found {
					lenta.AddToFavorites(ctx, post.Author, post.AvatarURL)
				} else {
					fmt.Println("Пост не найден в ленте")
				}
			}
		case "favs":
			for _, entry := range lenta.Favorites(ctx) {
				fmt.Printf("  %s\n", entry.Author)
			}
		case "post":
			text := strings.TrimSpace(strings.TrimPrefix(line, "post"))
			if text == "" {
				// Без текста публикуется сохраненный черновик
				text, err = draftStore.Load(ctx)
				if err != nil || text == "" {
					fmt.Println("Черновик пуст")
					continue
				}
			}
			if _, err := client.CreatePost(ctx, text, nil); err != nil {
				log.Printf("Не удалось опубликовать пост: %v", err)
				continue
			}
			if err := draftStore.Clear(ctx); err != nil {
				log.Printf("Не удалось очистить черновик: %v", err)
			}
			lenta.RefreshFeed(ctx)
			printFeed(lenta)
		case "draft":
			text := strings.TrimSpace(strings.TrimPrefix(line, "draft"))
			if err := draftStore.Save(ctx, text); err != nil {
				log.Printf("Не удалось сохранить черновик: %v", err)
			}
		case "login":
			if len(fields) != 3 {
				fmt.Println("Использование: login <email> <пароль>")
				continue
			}
			if err := authService.Login(ctx, fields[1], fields[2]); err != nil {
				log.Printf("%v", err)
				continue
			}
			fmt.Println("Вход выполнен")
		case "register":
			if len(fields) != 4 {
				fmt.Println("Использование: register <имя> <email> <пароль>")
				continue
			}
			if err := authService.Register(ctx, fields[1], fields[2], fields[3]); err != nil {
				log.Printf("%v", err)
				continue
			}
			fmt.Println("Регистрация выполнена")
		case "logout":
			if err := authService.Logout(ctx); err != nil {
				log.Printf("Не удалось выйти: %v", err)
			}
		case "quit", "exit":
			return
		default:
			fmt.Println("Команды: feed, more, refresh, like N, replies N, fav N, favs, post [текст], draft <текст>, login, register, logout, quit")
		}
	}
}

func parseID(fields []string) (int64, bool) {
	if len(fields) < 2 {
		fmt.Println("Укажите идентификатор поста")
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		fmt.Println("Некорректный идентификатор поста")
		return 0, false
	}
	return id, true
}

func findPost(lenta *feed.Feed, id int64) (models.Post, bool) {
	for _, post := range lenta.Posts() {
		if post.ID == id {
			return post, true
		}
	}
	return models.Post{}, false
}

func printFeed(lenta *feed.Feed) {
	if lenta.State() == feed.StateError {
		fmt.Println(lenta.ErrorMessage())
		return
	}
	for _, group := range lenta.Groups() {
		liked := " "
		if group.Post.LikedByCurrentUser {
			liked = "*"
		}
		fmt.Printf("[%d]%s @%s: %s (лайков: %d, ответов: %d)\n",
			group.Post.ID, liked, group.Post.Author, group.Post.Message,
			group.Post.LikesCount, group.Post.RepliesCount)
		for _, reply := range group.Replies {
			fmt.Printf("      @%s: %s\n", reply.Author, reply.Message)
		}
	}
	if lenta.HasMore() {
		fmt.Println("-- more: загрузить еще --")
	}
}
