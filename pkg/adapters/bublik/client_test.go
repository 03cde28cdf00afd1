package bublik_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/adapters/bublik"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
	"github.com/ts-factory/bublik-logtree/pkg/ports/tests"
)

var _ ports.TreeSource = (*bublik.Client)(nil)

const payload = `{"main_package":{"id":1,"name":"root","type":"pkg","children":[{"id":2,"name":"t","type":"test"}]}}`

func fixtureServer(t *testing.T, runs map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v2/tree/"), "/")
		body, ok := runs[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Contract(t *testing.T) {
	srv := fixtureServer(t, map[string]string{"42": payload})
	client, err := bublik.New(srv.URL, bublik.WithBackoff(time.Millisecond))
	require.NoError(t, err)

	tests.TreeSourceContractTest(t, client, map[int64][]byte{42: []byte(payload)})
}

func TestClient_TreeURL(t *testing.T) {
	client, err := bublik.New("https://ts-factory.io/bublik/")
	require.NoError(t, err)
	assert.Equal(t, "https://ts-factory.io/bublik/api/v2/tree/1234/", client.TreeURL(1234))
}

func TestClient_InvalidURL(t *testing.T) {
	_, err := bublik.New("ftp://example.org")
	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client, err := bublik.New(srv.URL, bublik.WithRetries(2), bublik.WithBackoff(time.Millisecond))
	require.NoError(t, err)

	body, err := client.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := bublik.New(srv.URL, bublik.WithRetries(1), bublik.WithBackoff(time.Millisecond))
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := bublik.New(srv.URL, bublik.WithBackoff(time.Millisecond))
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_PayloadLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	t.Run("oversized body is an upstream error", func(t *testing.T) {
		client, err := bublik.New(srv.URL,
			bublik.WithMaxPayload(int64(len(payload)-1)),
			bublik.WithBackoff(time.Millisecond),
		)
		require.NoError(t, err)

		before := atomic.LoadInt32(&calls)
		_, err = client.Fetch(context.Background(), 1)
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.NotErrorIs(t, err, domain.ErrInvalidPayload)
		assert.ErrorContains(t, err, "exceeds limit")
		assert.Equal(t, before+1, atomic.LoadInt32(&calls), "oversized bodies are not retried")
	})

	t.Run("body at the limit is accepted", func(t *testing.T) {
		client, err := bublik.New(srv.URL, bublik.WithMaxPayload(int64(len(payload))))
		require.NoError(t, err)

		body, err := client.Fetch(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
	})
}

func TestClient_TimeoutDoesNotModifySharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	_, err := bublik.New("http://bublik.local",
		bublik.WithHTTPClient(shared),
		bublik.WithTimeout(time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client, err := bublik.New(srv.URL, bublik.WithHeader("Cookie", "sessionid=abc"))
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "sessionid=abc", got.Get("Cookie"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestClient_CanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := bublik.New(srv.URL, bublik.WithRetries(5), bublik.WithBackoff(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Fetch(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
