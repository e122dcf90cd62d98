package model

import (
	"errors"
	"time"
)

var ErrPostNotFound = errors.New("post not found")

// PostMetadata is the denormalized engagement row the feed engine scores.
type PostMetadata struct {
	PostID        string    `db:"post_id" json:"post_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	LikesCount    int64     `db:"likes_count" json:"likes_count"`
	CommentsCount int64     `db:"comments_count" json:"comments_count"`
	SharesCount   int64     `db:"shares_count" json:"shares_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Post is a feed item: metadata plus its computed relevance score.
// Content is delivered empty; the body lives in the content service's store.
type Post struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	LikesCount     int64     `json:"likes_count"`
	CommentsCount  int64     `json:"comments_count"`
	SharesCount    int64     `json:"shares_count"`
	CreatedAt      time.Time `json:"created_at"`
	RelevanceScore float64   `json:"relevance_score"`
}

// FeedResponse is a page of ranked posts.
type FeedResponse struct {
	Posts   []Post  `json:"posts"`
	Cursor  *string `json:"cursor"`
	HasMore bool    `json:"has_more"`
}

// ScoreRequest asks for the relevance score of one post.
type ScoreRequest struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
}

// ScoreResponse carries a computed relevance score.
type ScoreResponse struct {
	PostID         string  `json:"post_id"`
	RelevanceScore float64 `json:"relevance_score"`
}
