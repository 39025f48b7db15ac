package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookgraph/internal/store"
	"bookgraph/internal/testutil"
)

// pingBackend is a memory backend with a mocked health check.
type pingBackend struct {
	*store.BookMemory
	mock.Mock
}

func (b *pingBackend) Ping(ctx context.Context) error {
	args := b.Called(ctx)
	return args.Error(0)
}

func setupTestHandler(t *testing.T, backend store.Backend) http.Handler {
	t.Helper()

	cfg, err := parseConfig(t, "--storage-backend=memory", "--rate-limit-rps=100")
	require.NoError(t, err)

	l := zap.NewNop()
	graphHandler, err := newGraphHandler(backend, prometheus.NewRegistry(), l)
	require.NoError(t, err)

	handler, stop := newHandler(cfg, newRouter(graphHandler, backend), l)
	t.Cleanup(stop)

	return handler
}

func TestRouter_GraphQL(t *testing.T) {
	handler := setupTestHandler(t, store.NewBookMemory())

	for _, path := range []string{"/graphql", "/"} {
		t.Run(path, func(t *testing.T) {
			body := `{"query": "{ books { id title author } }"}`
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"data": {"books": []}}`, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}

	t.Run("unknown path", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/books", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_CORSPreflight(t *testing.T) {
	handler := setupTestHandler(t, store.NewBookMemory())

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"), "only methods /graphql accepts")
}

func TestRouter_BookLifecycle(t *testing.T) {
	handler := setupTestHandler(t, store.NewBookMemory())

	do := func(query string, vars map[string]interface{}) testutil.RecordResponse {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, testutil.NewGraphQLRequest("/graphql", query, vars))
		resp := testutil.RecordHTTPResponse(w)
		testutil.AssertResponseCode(t, resp.Code, http.StatusOK)
		return resp
	}

	resp := do(`mutation($t: String!, $a: String!) { addBook(input: {title: $t, author: $a}) { id } }`,
		map[string]interface{}{"t": testutil.TestBook.Title, "a": testutil.TestBook.Author})
	require.Empty(t, resp.GraphQLErrors())
	id := resp.Body["data"].(map[string]interface{})["addBook"].(map[string]interface{})["id"].(string)

	resp = do(`mutation($id: String!) { deleteBook(input: {id: $id}) { title author } }`, map[string]interface{}{"id": id})
	require.Empty(t, resp.GraphQLErrors())
	assert.JSONEq(t, `{"data": {"deleteBook": {"title": "Dune", "author": "Frank Herbert"}}}`, string(resp.Raw))

	resp = do(`mutation($id: String!) { deleteBook(input: {id: $id}) { title } }`, map[string]interface{}{"id": id})
	errs := resp.GraphQLErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Error deleting book", errs[0]["message"])
	assert.Equal(t, map[string]interface{}{"code": "NOT_FOUND"}, errs[0]["extensions"])
}

func TestRouter_Health(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		handler := setupTestHandler(t, store.NewBookMemory())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ready"`)
	})

	t.Run("storage down", func(t *testing.T) {
		backend := &pingBackend{BookMemory: store.NewBookMemory()}
		backend.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
		handler := setupTestHandler(t, backend)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code, "liveness does not depend on storage")

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_READY")
		backend.AssertExpectations(t)
	})
}

func TestNewGraphHandler_DuplicateMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := newGraphHandler(store.NewBookMemory(), reg, zap.NewNop())
	require.NoError(t, err)

	_, err = newGraphHandler(store.NewBookMemory(), reg, zap.NewNop())
	assert.Error(t, err)
}

func TestServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, zap.NewNop()) }()

	cancel()
	assert.NoError(t, <-done)
}
