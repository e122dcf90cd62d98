package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/search"
)

var (
	// ErrQueryTooShort rejects queries under two characters.
	ErrQueryTooShort = errors.New("search query must have at least 2 characters")

	// ErrInvalidSearchType rejects unknown type filters.
	ErrInvalidSearchType = errors.New("invalid search type")
)

// queryTimeout caps a single index round trip.
const queryTimeout = 500 * time.Millisecond

// SearchService validates and executes search queries.
type SearchService interface {
	// Search runs a typed query. searchType must be posts, users or hashtags.
	Search(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error)

	// SearchAll fans the query out to all three indices concurrently and
	// returns the combined first page.
	SearchAll(ctx context.Context, query string, pageSize int) (model.CompositeSearchResponse, error)
}

type searchService struct {
	store search.Querier
}

func NewSearchService(store search.Querier) SearchService {
	return &searchService{store: store}
}

// ValidateQuery normalizes and checks a raw query string.
func ValidateQuery(query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < 2 {
		return "", ErrQueryTooShort
	}
	return trimmed, nil
}

func postsQuery(query string, from, size int) map[string]any {
	tag := strings.ToLower(strings.TrimPrefix(query, "#"))
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"match": map[string]any{
						"content": map[string]any{"query": query, "boost": 3.0},
					}},
					map[string]any{"match": map[string]any{
						"content": map[string]any{"query": query, "fuzziness": "AUTO", "boost": 1.0},
					}},
					map[string]any{"term": map[string]any{
						"hashtags": map[string]any{"value": tag, "boost": 2.0},
					}},
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"created_at": map[string]any{"order": "desc"}},
		},
		"from": from,
		"size": size,
	}
}

func usersQuery(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"match": map[string]any{
						"name": map[string]any{"query": query, "boost": 3.0},
					}},
					map[string]any{"match": map[string]any{
						"name": map[string]any{"query": query, "fuzziness": "AUTO", "boost": 2.0},
					}},
					map[string]any{"match": map[string]any{
						"bio": map[string]any{"query": query, "fuzziness": "AUTO", "boost": 1.0},
					}},
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"followers_count": map[string]any{"order": "desc"}},
		},
		"from": from,
		"size": size,
	}
}

func hashtagsQuery(query string, from, size int) map[string]any {
	tag := strings.ToLower(strings.TrimPrefix(query, "#"))
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"prefix": map[string]any{
						"tag": map[string]any{"value": tag, "boost": 3.0},
					}},
					map[string]any{"fuzzy": map[string]any{
						"tag": map[string]any{"value": tag, "fuzziness": "AUTO", "boost": 1.0},
					}},
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"posts_count": map[string]any{"order": "desc"}},
			map[string]any{"last_used": map[string]any{"order": "desc"}},
		},
		"from": from,
		"size": size,
	}
}

func queryFor(searchType, query string, from, size int) (string, map[string]any, error) {
	switch searchType {
	case model.SearchTypePosts:
		return search.PostsIndex, postsQuery(query, from, size), nil
	case model.SearchTypeUsers:
		return search.UsersIndex, usersQuery(query, from, size), nil
	case model.SearchTypeHashtags:
		return search.HashtagsIndex, hashtagsQuery(query, from, size), nil
	default:
		return "", nil, ErrInvalidSearchType
	}
}

func (s *searchService) Search(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error) {
	trimmed, err := ValidateQuery(query)
	if err != nil {
		return model.SearchResponse{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	from := (page - 1) * pageSize
	index, body, err := queryFor(searchType, trimmed, from, pageSize)
	if err != nil {
		return model.SearchResponse{}, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	hits, total, err := s.store.Search(queryCtx, index, body)
	if err != nil {
		return model.SearchResponse{}, err
	}

	logrus.Debugf("[Search] Query OK: type=%s total=%d page=%d", searchType, total, page)
	return model.SearchResponse{
		Type:     searchType,
		Results:  hits,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  from+pageSize < total,
	}, nil
}

// SearchAll queries all indices in parallel, splitting the page size across
// the three types. A failing index contributes an empty slot rather than
// failing the whole response.
func (s *searchService) SearchAll(ctx context.Context, query string, pageSize int) (model.CompositeSearchResponse, error) {
	trimmed, err := ValidateQuery(query)
	if err != nil {
		return model.CompositeSearchResponse{}, err
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	perType := pageSize/3 + 1

	type slot struct {
		searchType string
		index      string
		body       map[string]any
	}
	slots := []slot{
		{model.SearchTypePosts, search.PostsIndex, postsQuery(trimmed, 0, perType)},
		{model.SearchTypeUsers, search.UsersIndex, usersQuery(trimmed, 0, perType)},
		{model.SearchTypeHashtags, search.HashtagsIndex, hashtagsQuery(trimmed, 0, perType)},
	}

	results := make(map[string][]json.RawMessage, len(slots))
	totals := make(map[string]int, len(slots))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, sl := range slots {
		wg.Add(1)
		go func(sl slot) {
			defer wg.Done()

			queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
			defer cancel()

			hits, total, err := s.store.Search(queryCtx, sl.index, sl.body)
			if err != nil {
				logrus.Warnf("[Search] Composite slot FAILED: type=%s err=%v", sl.searchType, err)
				hits, total = []json.RawMessage{}, 0
			}

			mu.Lock()
			results[sl.searchType] = hits
			totals[sl.searchType] = total
			mu.Unlock()
		}(sl)
	}
	wg.Wait()

	return model.CompositeSearchResponse{
		Type:     model.SearchTypeAll,
		Results:  results,
		Total:    totals,
		Page:     1,
		PageSize: pageSize,
	}, nil
}
