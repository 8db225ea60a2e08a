package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) router(opts ...func(*router)) http.Handler {
	base := []func(*router){
		withServerConfig(config.ServerConfig{
			AcceptedOrigins: []string{"http://localhost:3000"},
			MaxBodyBytes:    1 << 20,
		}),
		withExposeDetails(true),
	}
	return newRouter(e.deps, append(base, opts...)...)
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.Login(context.Background(), testAdminUsername, testAdminPassword)
	require.NoError(t, err)
	return token
}

// do sends body as JSON unless it is already a string.
func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
