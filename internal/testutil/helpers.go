// Package testutil wires an in-memory server for tests of packages that sit
// above the API.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/api"
	"github.com/TimurManjosov/gojungse/internal/engine"
	"github.com/TimurManjosov/gojungse/internal/source"
	"github.com/TimurManjosov/gojungse/internal/store"
)

// SampleTable is a small rule table with a header, a conditional rule and
// a prefix rule.
const SampleTable = "현대어,중세어,적용방식,조건,우선순위,비고\n" +
	"가나,A,그대로,,5,\n" +
	"다,라,일반,모음뒤,3,\n" +
	"하,ㅎ,앞,,0,\n"

// TestServer bundles a server with the pieces behind it.
type TestServer struct {
	Server *api.Server
	Engine *engine.Engine
	Store  *store.MemoryStore
}

// NewTestServer creates a server backed by an in-memory store under the
// table name "default". The store doubles as the reload source.
func NewTestServer(t *testing.T, adminKey string) *TestServer {
	t.Helper()
	memStore := store.NewMemoryStore()
	eng := engine.New(nil, zerolog.Nop())
	srv := api.NewServer(eng, api.Options{
		AdminAPIKey: adminKey,
		Store:       memStore,
		TableName:   "default",
		Source:      source.Stored{Store: memStore, Name: "default"},
		Logger:      zerolog.Nop(),
	})
	return &TestServer{Server: srv, Engine: eng, Store: memStore}
}

// Start serves ts over a real listener until the test ends.
func (ts *TestServer) Start(t *testing.T) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(ts.Server.Router())
	t.Cleanup(s.Close)
	return s
}

// Seed loads csv into the engine.
func (ts *TestServer) Seed(t *testing.T, csv string) engine.LoadResult {
	t.Helper()
	res, err := ts.Engine.LoadRuleTable(csv)
	if err != nil {
		t.Fatalf("seed rule table: %v", err)
	}
	return res
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
