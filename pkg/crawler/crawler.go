// Package crawler implements the incremental crawl controller: it
// turns a resumable integer cursor into fixed-width fetch batches,
// classifies every outcome, persists successes, and decides when the
// run is over.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/amosWeiskopf/newsharvest/internal/models"
	"github.com/amosWeiskopf/newsharvest/pkg/fetcher"
	"github.com/amosWeiskopf/newsharvest/pkg/sites"
)

// ArticleStore is the persistence contract the controller depends on.
// Upsert must be idempotent on the (source, article id) identity.
type ArticleStore interface {
	MaxArticleID(ctx context.Context, sourceID int64) (int64, error)
	ExistingIDs(ctx context.Context, sourceID int64, ids []int64) (map[int64]struct{}, error)
	Upsert(ctx context.Context, article *models.Article) error
}

// Fetcher dispatches one batch of requests and returns a complete
// outcome list once its worker pool has drained.
type Fetcher interface {
	Fetch(ctx context.Context, requests []fetcher.Request) []fetcher.Result
}

// Options select the starting point of a run.
type Options struct {
	// StartID is the explicit starting cursor; 0 resumes from
	// max stored identifier + 1.
	StartID int64
	// Reverse walks the cursor downward instead of upward.
	Reverse bool
}

// Config holds the controller's tuning knobs.
type Config struct {
	BatchSize     int
	MaxFailures   int
	MinBatchDelay time.Duration
	MaxBatchDelay time.Duration
}

// Controller owns the cursor and the consecutive-failure counter. It
// is the only component with cross-batch state; everything below it is
// stateless per batch.
type Controller struct {
	site  sites.Site
	store ArticleStore
	fetch Fetcher
	cfg   Config
	log   *zap.Logger
}

// New creates a crawl controller for one source.
func New(site sites.Site, store ArticleStore, fetch Fetcher, cfg Config, log *zap.Logger) *Controller {
	return &Controller{
		site:  site,
		store: store,
		fetch: fetch,
		cfg:   cfg,
		log:   log,
	}
}

// batchTally aggregates one batch's outcomes. It is filled in from the
// controller goroutine after the fetch pool drains, so no locking is
// needed around the counters.
type batchTally struct {
	success int
	skip    int
	fail    int
}

// Run executes the crawl loop until the consecutive-failure ceiling is
// crossed, the cursor is exhausted, or the context is canceled.
// Repository and configuration errors before or between batches abort
// the run; per-identifier failures never do.
func (c *Controller) Run(ctx context.Context, opts Options) (*models.CrawlSummary, error) {
	src := c.site.Source()

	cursor, err := c.resolveCursor(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	summary := &models.CrawlSummary{
		Source:  src.Slug,
		StartID: cursor,
	}
	started := time.Now()
	consecutiveFailures := 0

	c.log.Info("starting crawl",
		zap.String("source", src.Slug),
		zap.Int64("cursor", cursor),
		zap.Bool("reverse", opts.Reverse),
		zap.Int("batch_size", c.cfg.BatchSize),
		zap.Int("max_failures", c.cfg.MaxFailures))

	for {
		if ctx.Err() != nil {
			summary.StopReason = models.StopCanceled
			break
		}
		if consecutiveFailures >= c.cfg.MaxFailures {
			summary.StopReason = models.StopFailureCeiling
			break
		}
		if cursor <= 0 {
			summary.StopReason = models.StopCursorExhausted
			break
		}

		// Throttle between batches; not correctness-critical.
		if summary.Batches > 0 {
			if err := c.batchDelay(ctx); err != nil {
				summary.StopReason = models.StopCanceled
				break
			}
		}

		tally, err := c.runBatch(ctx, src, cursor)
		if err != nil {
			summary.EndCursor = cursor
			summary.Elapsed = time.Since(started)
			return summary, err
		}

		summary.Batches++
		summary.Saved += tally.success
		summary.Skipped += tally.skip
		summary.Failed += tally.fail

		if tally.success > 0 {
			consecutiveFailures = 0
		} else if tally.fail > 0 {
			// All non-skipped requests failed; skips stay neutral.
			consecutiveFailures += tally.fail
		}

		if opts.Reverse {
			cursor -= int64(c.cfg.BatchSize)
		} else {
			cursor += int64(c.cfg.BatchSize)
		}

		c.log.Info("batch done",
			zap.Int64("next_cursor", cursor),
			zap.Int("saved", tally.success),
			zap.Int("skipped", tally.skip),
			zap.Int("failed", tally.fail),
			zap.Int("consecutive_failures", consecutiveFailures))
	}

	summary.EndCursor = cursor
	summary.Elapsed = time.Since(started)

	c.log.Info("crawl finished",
		zap.String("source", src.Slug),
		zap.String("stop_reason", string(summary.StopReason)),
		zap.Int("saved", summary.Saved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

// resolveCursor picks the starting identifier: explicit when supplied,
// otherwise max stored identifier + 1 (1 when nothing is stored).
func (c *Controller) resolveCursor(ctx context.Context, src models.Source, opts Options) (int64, error) {
	if opts.StartID > 0 {
		return opts.StartID, nil
	}
	maxID, err := c.store.MaxArticleID(ctx, src.ID)
	if err != nil {
		return 0, fmt.Errorf("resolve starting cursor for %s: %w", src.Slug, err)
	}
	return maxID + 1, nil
}

// runBatch processes one contiguous identifier range starting at
// cursor: skips already-stored identifiers, fetches the remainder, and
// classifies every outcome. The returned tally always accounts for the
// full batch width.
func (c *Controller) runBatch(ctx context.Context, src models.Source, cursor int64) (batchTally, error) {
	var tally batchTally

	ids := make([]int64, c.cfg.BatchSize)
	for i := range ids {
		ids[i] = cursor + int64(i)
	}

	existing, err := c.store.ExistingIDs(ctx, src.ID, ids)
	if err != nil {
		return tally, fmt.Errorf("existence check for batch at %d: %w", cursor, err)
	}

	requests := make([]fetcher.Request, 0, len(ids))
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			tally.skip++
			continue
		}
		requests = append(requests, fetcher.Request{ID: id, URL: src.ArticleURL(id)})
	}

	for _, result := range c.fetch.Fetch(ctx, requests) {
		c.classify(ctx, src, result, &tally)
	}

	return tally, nil
}

// classify applies the per-outcome policy: transport/HTTP failures
// count as failures, off-domain and unrecognized-edition redirects are
// skips, and only a fully extracted and persisted article is a success.
func (c *Controller) classify(ctx context.Context, src models.Source, result fetcher.Result, tally *batchTally) {
	if result.Err != nil {
		tally.fail++
		c.log.Warn("fetch failed",
			zap.Int64("article_id", result.ID),
			zap.String("url", result.URL),
			zap.Error(result.Err))
		return
	}
	if result.StatusCode >= 400 {
		tally.fail++
		c.log.Debug("http failure",
			zap.Int64("article_id", result.ID),
			zap.String("url", result.URL),
			zap.Int("status", result.StatusCode))
		return
	}

	if !sameBaseDomain(result.FinalURL, src.BaseDomain) {
		tally.skip++
		c.log.Debug("skipped off-domain redirect",
			zap.Int64("article_id", result.ID),
			zap.String("final_url", result.FinalURL))
		return
	}

	sub, ok := c.site.SubSourceFromURL(result.FinalURL)
	if !ok || !c.subSourceAllowed(sub) {
		tally.skip++
		c.log.Debug("skipped unrecognized edition",
			zap.Int64("article_id", result.ID),
			zap.String("final_url", result.FinalURL))
		return
	}

	article, err := c.site.ExtractArticle(result.Body, result.FinalURL, result.ID, sub)
	if err != nil {
		tally.fail++
		var extractErr *sites.ExtractError
		if errors.As(err, &extractErr) {
			c.log.Warn("extraction failed",
				zap.Int64("article_id", result.ID),
				zap.String("url", result.FinalURL),
				zap.String("missing_field", extractErr.Field))
		} else {
			c.log.Warn("extraction failed",
				zap.Int64("article_id", result.ID),
				zap.String("url", result.FinalURL),
				zap.Error(err))
		}
		return
	}

	if err := c.store.Upsert(ctx, article); err != nil {
		tally.fail++
		c.log.Error("persist failed",
			zap.Int64("article_id", result.ID),
			zap.Error(err))
		return
	}

	tally.success++
	c.log.Info("saved article",
		zap.Int64("article_id", result.ID),
		zap.String("sub_source", string(article.SubSource)),
		zap.String("title", article.Title))
}

func (c *Controller) subSourceAllowed(sub models.SubSource) bool {
	for _, allowed := range c.site.AllowedSubSources() {
		if sub == allowed {
			return true
		}
	}
	return false
}

// sameBaseDomain reports whether the URL's effective TLD+1 matches the
// source's base domain, which admits any subdomain of it.
func sameBaseDomain(rawURL, baseDomain string) bool {
	host := sites.Host(rawURL)
	if host == "" {
		return false
	}
	etld, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return etld == baseDomain
}

func (c *Controller) batchDelay(ctx context.Context) error {
	delay := c.cfg.MinBatchDelay
	if jitter := c.cfg.MaxBatchDelay - c.cfg.MinBatchDelay; jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter)))
	}
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
