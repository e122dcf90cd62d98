package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redesocial/engine/internal/handler"
	"github.com/redesocial/engine/internal/httputil"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/service"
	transport "github.com/redesocial/engine/internal/transport/http"
)

type mockSearchService struct {
	SearchFunc    func(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error)
	SearchAllFunc func(ctx context.Context, query string, pageSize int) (model.CompositeSearchResponse, error)
}

func (m *mockSearchService) Search(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error) {
	return m.SearchFunc(ctx, query, searchType, page, pageSize)
}

func (m *mockSearchService) SearchAll(ctx context.Context, query string, pageSize int) (model.CompositeSearchResponse, error) {
	return m.SearchAllFunc(ctx, query, pageSize)
}

func searchServer(svc *mockSearchService) http.Handler {
	health := handler.NewHealthHandler("search-service", nil)
	return transport.NewSearchRouter(handler.NewSearchHandler(svc), health)
}

func TestSearch_ShortQueryReturnsCode(t *testing.T) {
	// ARRANGE
	svc := &mockSearchService{
		SearchFunc: func(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error) {
			return model.SearchResponse{}, service.ErrQueryTooShort
		},
	}
	router := searchServer(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=a&type=posts", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body httputil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != httputil.ErrCodeQueryTooShort {
		t.Errorf("expected QUERY_TOO_SHORT, got %s", body.Error.Code)
	}
}

func TestSearch_InvalidTypeReturnsCode(t *testing.T) {
	// ARRANGE
	svc := &mockSearchService{
		SearchFunc: func(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error) {
			return model.SearchResponse{}, service.ErrInvalidSearchType
		},
	}
	router := searchServer(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=golang&type=videos", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body httputil.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Error.Code != httputil.ErrCodeInvalidType {
		t.Errorf("expected INVALID_TYPE, got %s", body.Error.Code)
	}
}

func TestSearch_MissingTypeFansOut(t *testing.T) {
	// ARRANGE
	fanned := false
	svc := &mockSearchService{
		SearchAllFunc: func(ctx context.Context, query string, pageSize int) (model.CompositeSearchResponse, error) {
			fanned = true
			return model.CompositeSearchResponse{Type: model.SearchTypeAll, Page: 1}, nil
		},
	}
	router := searchServer(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=golang", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !fanned {
		t.Error("expected composite search without a type filter")
	}
}

func TestSearch_BackendFailureReturnsSearchError(t *testing.T) {
	// ARRANGE
	svc := &mockSearchService{
		SearchFunc: func(ctx context.Context, query, searchType string, page, pageSize int) (model.SearchResponse, error) {
			return model.SearchResponse{}, context.DeadlineExceeded
		},
	}
	router := searchServer(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=golang&type=posts", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body httputil.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Error.Code != httputil.ErrCodeSearchError {
		t.Errorf("expected SEARCH_ERROR, got %s", body.Error.Code)
	}
}
