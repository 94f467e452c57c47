package liveusers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/live-users", r.URL.Path)
		_, _ = w.Write([]byte(`{"liveUsers":3,"byAgent":{"a1":2,"a2":1}}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.LiveUsers)
	assert.Equal(t, map[string]int{"a1": 2, "a2": 1}, out.ByAgent)
}

func TestFetch_MissingFieldsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.LiveUsers)
	assert.NotNil(t, out.ByAgent)
}

func TestFetch_Non2xxDoesNotRetry(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Backend returned 502", err.Error())
	assert.Equal(t, 1, hits)
}

func TestFetch_BadJSONAndUnconfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	assert.Error(t, err)

	_, err = NewClient("", time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
