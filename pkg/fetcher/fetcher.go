// Package fetcher issues bounded-concurrency HTTP requests for batches
// of candidate article URLs.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
}

// Request is one candidate identifier to fetch.
type Request struct {
	ID  int64
	URL string
}

// Result is the per-identifier fetch outcome. Either Err is set
// (transport failure after retries) or StatusCode/FinalURL/Body
// describe the HTTP response. FinalURL is the URL after any redirect
// chain; the source sites auto-route by edition, so classification
// must key off it rather than the requested URL.
type Result struct {
	ID         int64
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Err        error
}

// Config configures a Fetcher. It is threaded explicitly into New;
// the fetcher keeps no ambient global state.
type Config struct {
	Workers        int
	Retries        int
	Timeout        time.Duration
	RequestsPerSec int
}

// Fetcher runs batches of requests against a fixed-size worker pool.
// The transport (connection pool) is shared; cookie jars are not, so
// session affinity holds across retries of one request but never leaks
// between requests.
type Fetcher struct {
	transport *http.Transport
	timeout   time.Duration
	limiter   *rate.Limiter
	workers   int
	retries   int
	log       *zap.Logger
}

// New creates a Fetcher.
func New(cfg Config, log *zap.Logger) *Fetcher {
	return &Fetcher{
		transport: &http.Transport{
			MaxIdleConns:        cfg.Workers * 2,
			MaxIdleConnsPerHost: cfg.Workers * 2,
			IdleConnTimeout:     30 * time.Second,
		},
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestsPerSec),
		workers: cfg.Workers,
		retries: cfg.Retries,
		log:     log,
	}
}

// Fetch dispatches the requests to the worker pool and returns one
// Result per request, in request order. It returns only after every
// worker has drained.
func (f *Fetcher) Fetch(ctx context.Context, requests []Request) []Result {
	results := make([]Result, len(requests))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, req := range requests {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, req)
			return nil
		})
	}
	// Workers report outcomes through the results slice, never errors.
	_ = g.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, req Request) Result {
	result := Result{ID: req.ID, URL: req.URL}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Transport: f.transport,
		Timeout:   f.timeout,
		Jar:       jar,
	}

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, time.Duration(200*(1<<attempt))*time.Millisecond); err != nil {
				result.Err = err
				return result
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			result.Err = err
			return result
		}

		status, finalURL, body, err := f.doRequest(ctx, client, req.URL)
		if err != nil {
			f.log.Debug("fetch attempt failed",
				zap.Int64("article_id", req.ID),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			result.Err = err
			continue
		}

		result.Err = nil
		result.StatusCode = status
		result.FinalURL = finalURL
		result.Body = body

		// 429 and 5xx are transient; 4xx are terminal outcomes the
		// caller classifies, not worth another attempt.
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			continue
		}
		return result
	}

	return result
}

func (f *Fetcher) doRequest(ctx context.Context, client *http.Client, rawURL string) (status int, finalURL string, body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "et,ru;q=0.8,en;q=0.6")
	req.Header.Set("Connection", "keep-alive")

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return 0, "", nil, fmt.Errorf("read body: %w", err)
	}

	return resp.StatusCode, resp.Request.URL.String(), body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
