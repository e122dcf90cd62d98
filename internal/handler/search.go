package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/httputil"
	"github.com/redesocial/engine/internal/model"
	"github.com/redesocial/engine/internal/service"
)

// SearchHandler serves GET /search.
type SearchHandler struct {
	search service.SearchService
}

func NewSearchHandler(search service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /search?q=&type=&page=&page_size=
// An empty or "all" type fans out to every index.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	searchType := r.URL.Query().Get("type")
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	if searchType == "" || searchType == model.SearchTypeAll {
		resp, err := h.search.SearchAll(r.Context(), query, pageSize)
		if err != nil {
			h.writeSearchError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := h.search.Search(r.Context(), query, searchType, page, pageSize)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *SearchHandler) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQueryTooShort):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeQueryTooShort, "Query must have at least 2 characters")
	case errors.Is(err, service.ErrInvalidSearchType):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidType, "Type must be posts, users, hashtags or all")
	default:
		logrus.Errorf("[Handler] Search FAILED: err=%v", err)
		httputil.WriteInternalErrorWithCode(w, httputil.ErrCodeSearchError, "Search is unavailable")
	}
}
