package model

import "fmt"

// Display templates for notification titles and bodies.
const (
	LikeTitle = "Nova curtida"
	LikeBody  = "Alguém curtiu seu post"

	CommentTitle        = "Novo comentário"
	CommentFallbackBody = "Alguém comentou no seu post"

	FollowTitle = "Novo seguidor"
	FollowBody  = "Alguém começou a seguir você"
)

// AggregatedCommentTitle templates the rolling title for n comments.
func AggregatedCommentTitle(n int) string {
	return fmt.Sprintf("%d novos comentários", n)
}

// AggregatedCommentBody templates the rolling body for n comments.
func AggregatedCommentBody(n int) string {
	return fmt.Sprintf("%d pessoas comentaram no seu post", n)
}

// CommentExcerpt truncates comment content for display, capped at max runes.
func CommentExcerpt(content string, max int) string {
	runes := []rune(content)
	if len(runes) > max {
		return string(runes[:max])
	}
	return content
}
