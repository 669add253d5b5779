// Package dsstest provides a scripted fake DSS server for tests.
package dsstest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
)

// Request is one request seen by the fake server.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Server routes "METHOD /path" keys to handlers. Paths are relative to
// /public/api. Unrouted requests get 404 with a DSS-style error body.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// New starts a server that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers a handler for "METHOD /path".
func (s *Server) Handle(route string, h http.HandlerFunc) {
	s.mu.Lock()
	s.routes[route] = h
	s.mu.Unlock()
}

// JSON registers a handler that always answers with v.
func (s *Server) JSON(route string, v any) {
	s.Handle(route, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, v)
	})
}

// Sequence answers with each payload in turn and then repeats the last one.
func (s *Server) Sequence(route string, payloads ...any) {
	var mu sync.Mutex
	i := 0
	s.Handle(route, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		idx := i
		if i < len(payloads)-1 {
			i++
		}
		mu.Unlock()
		WriteJSON(w, payloads[idx])
	})
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched "METHOD /path".
func (s *Server) Count(route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method+" "+r.Path == route {
			n++
		}
	}
	return n
}

// Client returns a dss.Client pointed at the server.
func (s *Server) Client(t *testing.T) *dss.Client {
	t.Helper()
	c, err := dss.New(dss.Options{URL: s.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new dss client: %v", err)
	}
	return c
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/public/api")
	route := r.Method + " " + path

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: path, Query: r.URL.RawQuery, Body: string(body)})
	h := s.routes[route]
	s.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		WriteJSON(w, map[string]string{"errorType": "NotFound", "message": "no route for " + route})
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	_ = json.NewEncoder(w).Encode(v)
}
