package search

import (
	"fmt"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
)

const (
	PostsIndex    = "posts"
	UsersIndex    = "users"
	HashtagsIndex = "hashtags"
)

const postsMapping = `{
	"mappings": {
		"properties": {
			"id":             {"type": "keyword"},
			"user_id":        {"type": "keyword"},
			"content":        {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}},
			"hashtags":       {"type": "keyword"},
			"media_urls":     {"type": "keyword"},
			"likes_count":    {"type": "integer"},
			"comments_count": {"type": "integer"},
			"shares_count":   {"type": "integer"},
			"created_at":     {"type": "date"},
			"updated_at":     {"type": "date"}
		}
	}
}`

const usersMapping = `{
	"mappings": {
		"properties": {
			"id":                  {"type": "keyword"},
			"email":               {"type": "keyword"},
			"name":                {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}},
			"bio":                 {"type": "text"},
			"profile_picture_url": {"type": "keyword"},
			"followers_count":     {"type": "integer"},
			"following_count":     {"type": "integer"},
			"created_at":          {"type": "date"}
		}
	}
}`

const hashtagsMapping = `{
	"mappings": {
		"properties": {
			"tag":         {"type": "keyword"},
			"posts_count": {"type": "integer"},
			"trending":    {"type": "boolean"},
			"last_used":   {"type": "date"}
		}
	}
}`

// EnsureIndices creates the three search indices if they do not exist yet.
// Safe to call on every startup.
func EnsureIndices(es *elasticsearch.Client) error {
	indices := map[string]string{
		PostsIndex:    postsMapping,
		UsersIndex:    usersMapping,
		HashtagsIndex: hashtagsMapping,
	}

	for name, mapping := range indices {
		exists, err := es.Indices.Exists([]string{name})
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		exists.Body.Close()
		if exists.StatusCode == 200 {
			continue
		}

		res, err := es.Indices.Create(name, es.Indices.Create.WithBody(strings.NewReader(mapping)))
		if err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("create index %s: %s", name, res.String())
		}
		logrus.Infof("[Search] Index created: name=%s", name)
	}
	return nil
}
