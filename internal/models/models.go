package models

import "strconv"

// Post - сообщение ленты. ParentID == nil означает корневой пост,
// иначе пост является ответом на пост с этим идентификатором.
type Post struct {
	ID                 int64  `json:"id"`
	ParentID           *int64 `json:"parentId,omitempty"`
	Author             string `json:"author"`
	AvatarURL          string `json:"avatarUrl"`
	Message            string `json:"message"`
	CreatedAt          string `json:"createdAt"`
	LikesCount         int    `json:"likesCount"`
	LikedByCurrentUser bool   `json:"likedByCurrentUser"`
	RepliesCount       int    `json:"repliesCount"`
}

// IsRoot сообщает, является ли пост корневым (не ответом)
func (p Post) IsRoot() bool {
	return p.ParentID == nil
}

// PostGroup - корневой пост вместе с его ответами
type PostGroup struct {
	Post    Post   `json:"post"`
	Replies []Post `json:"replies"`
	Key     string `json:"key"`
}

// GroupKey формирует стабильный ключ группы по идентификатору корневого поста
func GroupKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FavoriteEntry - запись списка избранных авторов
type FavoriteEntry struct {
	Author    string `json:"author"`
	AvatarURL string `json:"avatarUrl"`
}

// User - профиль текущего пользователя, кэшируемый локально
type User struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}
