package integration_tests

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// scriptServer serves JavaScript files from memory and counts requests per
// path. Paths listed in delays are answered after the given delay.
type scriptServer struct {
	*httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	files  map[string]string
	delays map[string]time.Duration
}

func newScriptServer(t *testing.T, files map[string]string, delays map[string]time.Duration) *scriptServer {
	t.Helper()
	s := &scriptServer{hits: make(map[string]int), files: files, delays: delays}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *scriptServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.files[r.URL.Path]
	delay := s.delays[r.URL.Path]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write([]byte(body))
}

func (s *scriptServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}
