package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ButyrinIA/tuiter/internal/models"
	"github.com/google/uuid"
)

// TokenSource выдает текущий токен авторизации (реализуется сессией)
type TokenSource interface {
	Token() string
}

// Client - REST-клиент бэкенда Tuiter
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// apiPost - формат поста на проводе. ParentID == 0 означает корневой пост.
type apiPost struct {
	ID                 int64  `json:"id"`
	ParentID           int64  `json:"parentId"`
	Author             string `json:"author"`
	AvatarURL          string `json:"avatarUrl"`
	Message            string `json:"message"`
	CreatedAt          string `json:"createdAt"`
	LikesCount         int    `json:"likesCount"`
	LikedByCurrentUser bool   `json:"likedByCurrentUser"`
	RepliesCount       int    `json:"repliesCount"`
}

// toModel переводит проводной формат в доменную модель:
// сентинель 0 в parentId становится nil
func (p apiPost) toModel() models.Post {
	post := models.Post{
		ID:                 p.ID,
		Author:             p.Author,
		AvatarURL:          p.AvatarURL,
		Message:            p.Message,
		CreatedAt:          p.CreatedAt,
		LikesCount:         p.LikesCount,
		LikedByCurrentUser: p.LikedByCurrentUser,
		RepliesCount:       p.RepliesCount,
	}
	if p.ParentID != 0 {
		parentID := p.ParentID
		post.ParentID = &parentID
	}
	return post
}

func toModels(apiPosts []apiPost) []models.Post {
	posts := make([]models.Post, len(apiPosts))
	for i, p := range apiPosts {
		posts[i] = p.toModel()
	}
	return posts
}

// FeedPage запрашивает страницу корневых постов ленты (нумерация с 1)
func (c *Client) FeedPage(ctx context.Context, page int) ([]models.Post, error) {
	var apiPosts []apiPost
	path := fmt.Sprintf("/feed?page=%d&only_parents=true", page)
	if err := c.do(ctx, http.MethodGet, path, nil, &apiPosts); err != nil {
		return nil, err
	}
	return toModels(apiPosts), nil
}

// Replies запрашивает ответы на пост
func (c *Client) Replies(ctx context.Context, postID int64) ([]models.Post, error) {
	var apiPosts []apiPost
	path := fmt.Sprintf("/tuits/%d/replies", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &apiPosts); err != nil {
		return nil, err
	}
	return toModels(apiPosts), nil
}

// Like ставит лайк посту
func (c *Client) Like(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/tuits/%d/like", postID), nil, nil)
}

// Unlike снимает лайк с поста
func (c *Client) Unlike(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tuits/%d/like", postID), nil, nil)
}

// CreatePost создает пост; при parentID != nil это ответ
func (c *Client) CreatePost(ctx context.Context, message string, parentID *int64) (models.Post, error) {
	payload := struct {
		Message  string `json:"message"`
		ParentID int64  `json:"parentId,omitempty"`
	}{Message: message}
	if parentID != nil {
		payload.ParentID = *parentID
	}

	var created apiPost
	if err := c.do(ctx, http.MethodPost, "/tuits", payload, &created); err != nil {
		return models.Post{}, err
	}
	return created.toModel(), nil
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login выполняет вход и возвращает токен с профилем
func (c *Client) Login(ctx context.Context, email, password string) (string, models.User, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/login", payload, &resp); err != nil {
		return "", models.User{}, err
	}
	return resp.Token, resp.User, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, username, email, password string) (string, models.User, error) {
	payload := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Username: username, Email: email, Password: password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/register", payload, &resp); err != nil {
		return "", models.User{}, err
	}
	return resp.Token, resp.User, nil
}

// UpdateProfile сохраняет изменения профиля и возвращает обновленный профиль
func (c *Client) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	var updated models.User
	if err := c.do(ctx, http.MethodPut, "/profile", user, &updated); err != nil {
		return models.User{}, err
	}
	return updated, nil
}

// do выполняет запрос и декодирует ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("не удалось сериализовать запрос: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api: %s %s: статус %d: %s", method, path, resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("не удалось разобрать ответ: %w", err)
	}
	return nil
}
