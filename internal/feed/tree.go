package feed

import "github.com/ButyrinIA/tuiter/internal/models"

// BuildPostGroups превращает плоский список постов в группы
// "корневой пост + его ответы". Группы идут в порядке первого появления
// корневых постов во входе, ответы внутри группы сохраняют свой
// относительный порядок. Ответы на неизвестные посты отбрасываются.
func BuildPostGroups(posts []models.Post) []models.PostGroup {
	groups := make([]models.PostGroup, 0, len(posts))
	index := make(map[int64]int)

	for _, post := range posts {
		if !post.IsRoot() {
			continue
		}
		if _, exists := index[post.ID]; exists {
			continue
		}
		index[post.ID] = len(groups)
		groups = append(groups, models.PostGroup{
			Post: post,
			Key:  models.GroupKey(post.ID),
		})
	}

	for _, post := range posts {
		if post.IsRoot() {
			continue
		}
		if i, exists := index[*post.ParentID]; exists {
			groups[i].Replies = append(groups[i].Replies, post)
		}
	}

	return groups
}
