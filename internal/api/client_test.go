package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL: srv.URL,
		Token:   func() string { return "test-token" },
	})
	require.NoError(t, err)
	return client, srv
}

func TestClientSendsBearerToken(t *testing.T) {
	var got string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "username": "casey"})
	}))

	_, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", got)
}

func TestClientErrorEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		status int
		detail string
		kind   Kind
	}{
		{"validation", http.StatusUnprocessableEntity, "title must not be empty", KindValidation},
		{"conflict", http.StatusConflict, "version mismatch", KindConflict},
		{"not found", http.StatusNotFound, "task not found", KindNotFound},
		{"unauthorized", http.StatusUnauthorized, "invalid token", KindUnauthorized},
		{"server error", http.StatusInternalServerError, "", KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"detail": tt.detail})
			}))

			_, err := client.Me(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestClientUnauthorizedHook(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:        srv.URL,
		OnUnauthorized: func() { calls++ },
	})
	require.NoError(t, err)

	_, err = client.Me(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, calls)
}

func TestClientNetworkErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Me(context.Background())
	assert.True(t, IsKind(err, KindNetwork))
}

func TestCreateCarriesIdempotencyKey(t *testing.T) {
	var keys []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "name": "ws"})
	}))

	_, err := client.CreateWorkspace(context.Background(), "ws")
	require.NoError(t, err)
	_, err = client.CreateWorkspace(context.Background(), "ws")
	require.NoError(t, err)

	require.Len(t, keys, 2)
	for _, k := range keys {
		_, err := uuid.Parse(k)
		assert.NoError(t, err, "Idempotency-Key must be a UUID")
	}
	assert.NotEqual(t, keys[0], keys[1], "each create gets a fresh key")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "fallback", Message(nil, "fallback"))
	assert.Equal(t, "fallback", Message(&Error{Kind: KindNetwork}, "fallback"))
	assert.Equal(t, "version mismatch", Message(&Error{Kind: KindConflict, Detail: "version mismatch"}, "fallback"))
}
