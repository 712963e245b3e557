package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Workers:        5,
		Retries:        2,
		Timeout:        5 * time.Second,
		RequestsPerSec: 1000,
	}
}

func TestFetchAppliesBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(testConfig(), zap.NewNop())
	results := f.Fetch(context.Background(), []Request{{ID: 1, URL: server.URL}})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotLang, "et")
}

func TestFetchCapturesFinalURLAfterRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article/42":
			http.Redirect(w, r, "/rus/article/42", http.StatusFound)
		case "/rus/article/42":
			w.Write([]byte("содержание"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	f := New(testConfig(), zap.NewNop())
	results := f.Fetch(context.Background(), []Request{{ID: 42, URL: server.URL + "/article/42"}})

	require.Len(t, results, 1)
	result := results[0]
	require.NoError(t, result.Err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, server.URL+"/rus/article/42", result.FinalURL)
	assert.Equal(t, "содержание", string(result.Body))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(testConfig(), zap.NewNop())
	results := f.Fetch(context.Background(), []Request{{ID: 1, URL: server.URL}})

	require.Len(t, results, 1)
	assert.Equal(t, http.StatusNotFound, results[0].StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("taastatud"))
	}))
	defer server.Close()

	f := New(testConfig(), zap.NewNop())
	results := f.Fetch(context.Background(), []Request{{ID: 1, URL: server.URL}})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, http.StatusOK, results[0].StatusCode)
	assert.Equal(t, "taastatud", string(results[0].Body))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestFetchReportsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	f := New(testConfig(), zap.NewNop())
	results := f.Fetch(context.Background(), []Request{{ID: 1, URL: server.URL}})

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestFetchBoundsConcurrency(t *testing.T) {
	var current, peak int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	requests := make([]Request, 20)
	for i := range requests {
		requests[i] = Request{ID: int64(i + 1), URL: fmt.Sprintf("%s/%d", server.URL, i+1)}
	}

	cfg := testConfig()
	f := New(cfg, zap.NewNop())
	results := f.Fetch(context.Background(), requests)

	require.Len(t, results, len(requests))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(cfg.Workers))

	// Results come back in request order regardless of completion order.
	for i, result := range results {
		assert.Equal(t, requests[i].ID, result.ID)
		require.NoError(t, result.Err)
	}
}

func TestFetchHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := New(testConfig(), zap.NewNop())
	start := time.Now()
	results := f.Fetch(ctx, []Request{{ID: 1, URL: server.URL}})

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Less(t, time.Since(start), time.Second)
}
