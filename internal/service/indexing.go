package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/search"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the lowercased hashtags of a text, deduplicated in
// first-occurrence order, without the leading '#'.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// IndexingService writes post and user documents into the search indices and
// maintains the hashtag index.
type IndexingService interface {
	IndexPost(ctx context.Context, doc model.PostDocument) error
	IndexUser(ctx context.Context, doc model.UserDocument) error
}

type indexingService struct {
	store search.Indexer
}

func NewIndexingService(store search.Indexer) IndexingService {
	return &indexingService{store: store}
}

// IndexPost stores the post document and upserts every hashtag found in its
// content. A document without an id is rejected.
func (s *indexingService) IndexPost(ctx context.Context, doc model.PostDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("post document missing id")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if doc.CreatedAt == "" {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt == "" {
		doc.UpdatedAt = now
	}
	if len(doc.Hashtags) == 0 {
		doc.Hashtags = ExtractHashtags(doc.Content)
	}
	if doc.MediaURLs == nil {
		doc.MediaURLs = []string{}
	}

	if err := s.store.IndexPost(ctx, doc); err != nil {
		return err
	}
	logrus.Infof("[Indexing] Post indexed: id=%s hashtags=%d", doc.ID, len(doc.Hashtags))

	for _, tag := range doc.Hashtags {
		if err := s.upsertHashtag(ctx, tag, now); err != nil {
			// One bad tag must not undo the post indexing.
			logrus.Warnf("[Indexing] Hashtag upsert FAILED: tag=%s err=%v", tag, err)
		}
	}
	return nil
}

func (s *indexingService) upsertHashtag(ctx context.Context, tag, lastUsed string) error {
	existing, found, err := s.store.GetHashtag(ctx, tag)
	if err != nil {
		return err
	}

	doc := model.HashtagDocument{Tag: tag, PostsCount: 1, LastUsed: lastUsed}
	if found {
		doc.PostsCount = existing.PostsCount + 1
		doc.Trending = existing.Trending
	}
	return s.store.IndexHashtag(ctx, doc)
}

func (s *indexingService) IndexUser(ctx context.Context, doc model.UserDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("user document missing id")
	}
	if doc.CreatedAt == "" {
		doc.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.store.IndexUser(ctx, doc); err != nil {
		return err
	}
	logrus.Infof("[Indexing] User indexed: id=%s", doc.ID)
	return nil
}
