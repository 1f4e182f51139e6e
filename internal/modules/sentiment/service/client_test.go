package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFearGreed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"name":"Fear and Greed Index","data":[{"value":"23","value_classification":"Extreme Fear","timestamp":"1700000000"}]}`))
	}))
	defer srv.Close()

	v, err := New(srv.URL, nil).FearGreed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23, v)
}

func TestFearGreedErrors(t *testing.T) {
	bodies := map[string]int{
		`{"data":[]}`:                http.StatusOK,
		`{"data":[{"value":"abc"}]}`: http.StatusOK,
		`{"data":[{"value":"140"}]}`: http.StatusOK,
		`not json`:                   http.StatusOK,
		`{"error":"rate limited"}`:   http.StatusTooManyRequests,
	}
	for body, status := range bodies {
		body, status := body, status
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).FearGreed(context.Background())
			assert.Error(t, err)
		})
	}
}
