package model

import "encoding/json"

// Search types accepted by the query API.
const (
	SearchTypePosts    = "posts"
	SearchTypeUsers    = "users"
	SearchTypeHashtags = "hashtags"
	SearchTypeAll      = "all"
)

// PostDocument is the shape indexed into the posts index.
type PostDocument struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Content       string   `json:"content"`
	Hashtags      []string `json:"hashtags"`
	MediaURLs     []string `json:"media_urls"`
	LikesCount    int64    `json:"likes_count"`
	CommentsCount int64    `json:"comments_count"`
	SharesCount   int64    `json:"shares_count"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// UserDocument is the shape indexed into the users index.
type UserDocument struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int64  `json:"followers_count"`
	FollowingCount    int64  `json:"following_count"`
	CreatedAt         string `json:"created_at"`
}

// HashtagDocument is the shape indexed into the hashtags index, keyed by tag.
type HashtagDocument struct {
	Tag        string `json:"tag"`
	PostsCount int64  `json:"posts_count"`
	Trending   bool   `json:"trending"`
	LastUsed   string `json:"last_used"`
}

// SearchResponse is the per-type query payload.
type SearchResponse struct {
	Type     string            `json:"type"`
	Results  []json.RawMessage `json:"results"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasMore  bool              `json:"has_more"`
}

// CompositeSearchResponse is returned when no type filter is given.
// Pagination for the composite is fixed to page 1.
type CompositeSearchResponse struct {
	Type     string                       `json:"type"`
	Results  map[string][]json.RawMessage `json:"results"`
	Total    map[string]int               `json:"total"`
	Page     int                          `json:"page"`
	PageSize int                          `json:"page_size"`
}
