// Package server implements the search engine's HTTP front end: a static
// home page with a search form, and a JSON search endpoint over the
// indexer's in-memory index. It is a thin collaborator — the spec marks
// the HTTP boundary as non-core, so this package deliberately stays on
// net/http rather than pulling in a web framework, grounded on
// original_source/app.py's two-route Flask surface.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/indexer"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/query"
)

const homePage = `<!DOCTYPE html>
<html>
<head><title>searchcrawl</title></head>
<body>
	<h1>searchcrawl</h1>
	<form action="/search" method="get">
		<input type="text" name="q" placeholder="search the crawled index">
		<button type="submit">Search</button>
	</form>
</body>
</html>
`

// Searcher is the narrow surface Server needs from internal/indexer, so
// tests can inject a stub index without building a real Indexer.
type Searcher interface {
	Search(process func(indexer.InvertedIndex, indexer.DocStore) []indexer.SearchResult) []indexer.SearchResult
}

// Server serves the home page and the JSON search endpoint over idx.
type Server struct {
	idx          Searcher
	metadataSink metadata.MetadataSink
	responseSize int
	topKPerTerm  int
}

// New builds a Server answering queries against idx.
func New(idx Searcher, metadataSink metadata.MetadataSink, responseSize, topKPerTerm int) *Server {
	return &Server{
		idx:          idx,
		metadataSink: metadataSink,
		responseSize: responseSize,
		topKPerTerm:  topKPerTerm,
	}
}

// Handler returns the mux serving this Server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/search", s.handleSearch)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(homePage))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		json.NewEncoder(w).Encode([]indexer.SearchResult{})
		return
	}

	start := time.Now()
	results := s.idx.Search(func(index indexer.InvertedIndex, docStore indexer.DocStore) []indexer.SearchResult {
		return query.Process(index, docStore, q, s.responseSize, s.topKPerTerm)
	})
	s.metadataSink.RecordQuery(q, len(results), time.Since(start))
	if results == nil {
		results = []indexer.SearchResult{}
	}

	if err := json.NewEncoder(w).Encode(results); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	}
}
