package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/model"
)

// Indexer writes documents into the search indices.
type Indexer interface {
	IndexPost(ctx context.Context, doc model.PostDocument) error
	IndexUser(ctx context.Context, doc model.UserDocument) error

	// GetHashtag returns the stored hashtag document, or found=false when the
	// tag has never been indexed.
	GetHashtag(ctx context.Context, tag string) (model.HashtagDocument, bool, error)
	IndexHashtag(ctx context.Context, doc model.HashtagDocument) error
}

// Querier executes search queries against an index.
type Querier interface {
	// Search runs the query body against index and returns the raw hit
	// sources plus the total hit count.
	Search(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, int, error)
}

// Store implements Indexer and Querier on an Elasticsearch client.
type Store struct {
	es *elasticsearch.Client
}

func NewStore(es *elasticsearch.Client) *Store {
	return &Store{es: es}
}

func (s *Store) indexDoc(ctx context.Context, index, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", index, err)
	}

	res, err := s.es.Index(index, bytes.NewReader(raw),
		s.es.Index.WithDocumentID(id),
		s.es.Index.WithRefresh("true"),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index %s document: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index %s document: %s", index, res.String())
	}

	logrus.Debugf("[Search] Indexed OK: index=%s id=%s", index, id)
	return nil
}

func (s *Store) IndexPost(ctx context.Context, doc model.PostDocument) error {
	return s.indexDoc(ctx, PostsIndex, doc.ID, doc)
}

func (s *Store) IndexUser(ctx context.Context, doc model.UserDocument) error {
	return s.indexDoc(ctx, UsersIndex, doc.ID, doc)
}

func (s *Store) GetHashtag(ctx context.Context, tag string) (model.HashtagDocument, bool, error) {
	res, err := s.es.Get(HashtagsIndex, tag, s.es.Get.WithContext(ctx))
	if err != nil {
		return model.HashtagDocument{}, false, fmt.Errorf("get hashtag: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return model.HashtagDocument{}, false, nil
	}
	if res.IsError() {
		return model.HashtagDocument{}, false, fmt.Errorf("get hashtag: %s", res.String())
	}

	var envelope struct {
		Source model.HashtagDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return model.HashtagDocument{}, false, fmt.Errorf("decode hashtag: %w", err)
	}
	return envelope.Source, true, nil
}

func (s *Store) IndexHashtag(ctx context.Context, doc model.HashtagDocument) error {
	return s.indexDoc(ctx, HashtagsIndex, doc.Tag, doc)
}

func (s *Store) Search(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search %s: %s", index, res.String())
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]json.RawMessage, 0, len(envelope.Hits.Hits))
	for _, h := range envelope.Hits.Hits {
		hits = append(hits, h.Source)
	}
	return hits, envelope.Hits.Total.Value, nil
}
