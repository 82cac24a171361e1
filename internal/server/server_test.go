package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohmanhakim/searchcrawl/internal/indexer"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/server"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	index    indexer.InvertedIndex
	docStore indexer.DocStore
}

func (s *stubSearcher) Search(process func(indexer.InvertedIndex, indexer.DocStore) []indexer.SearchResult) []indexer.SearchResult {
	return process(s.index, s.docStore)
}

func TestHandleHome_ReturnsHTMLSearchForm(t *testing.T) {
	srv := server.New(&stubSearcher{}, &metadata.NoopRecorder{}, 10, 50)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<form")
}

func TestHandleSearch_EmptyQueryReturnsEmptyArray(t *testing.T) {
	srv := server.New(&stubSearcher{}, &metadata.NoopRecorder{}, 10, 50)
	req := httptest.NewRequest(http.MethodGet, "/search?q=", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleSearch_ReturnsMatchedResults(t *testing.T) {
	index := indexer.InvertedIndex{"fox": {"doc1": 5}}
	docStore := indexer.DocStore{"doc1": indexer.DocStoreEntry{URL: "https://example.com/a", Title: "A"}}
	srv := server.New(&stubSearcher{index: index, docStore: docStore}, &metadata.NoopRecorder{}, 10, 50)

	req := httptest.NewRequest(http.MethodGet, "/search?q=fox", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var results []indexer.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	require.Equal(t, "doc1", results[0].DocID)
}

func TestHandleSearch_NoMatchReturnsEmptyArray(t *testing.T) {
	index := indexer.InvertedIndex{"fox": {"doc1": 5}}
	docStore := indexer.DocStore{"doc1": indexer.DocStoreEntry{URL: "https://example.com/a", Title: "A"}}
	srv := server.New(&stubSearcher{index: index, docStore: docStore}, &metadata.NoopRecorder{}, 10, 50)

	req := httptest.NewRequest(http.MethodGet, "/search?q=zzzzz", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}
