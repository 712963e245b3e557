package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SubSource identifies the language/section edition an article belongs
// to. It is derived from the final URL after redirects, never from the
// requested URL.
type SubSource string

const (
	// SubSourcePrimary is the main (Estonian) edition sentinel.
	SubSourcePrimary SubSource = "primary"
	SubSourceRussian SubSource = "russian"
	SubSourceEnglish SubSource = "english"
)

// Source is a configured news origin. Immutable once loaded for a run.
type Source struct {
	Slug        string
	ID          int64
	Name        string
	BaseDomain  string
	URLTemplate string
}

// ArticleURL maps a numeric article identifier to a fetchable URL.
func (s Source) ArticleURL(articleID int64) string {
	return fmt.Sprintf(s.URLTemplate, articleID)
}

// Article is the persisted entity. Identity is (SourceID, ArticleID);
// SubSource is descriptive and not part of the key.
type Article struct {
	ID          int64          `db:"id" json:"id"`
	SourceID    int64          `db:"source_id" json:"source_id"`
	ArticleID   int64          `db:"article_id" json:"article_id"`
	SubSource   SubSource      `db:"sub_source" json:"sub_source"`
	URL         string         `db:"url" json:"url"`
	Title       string         `db:"title" json:"title"`
	PublishedAt time.Time      `db:"published_at" json:"published_at"`
	Authors     pq.StringArray `db:"authors" json:"authors"`
	Paywalled   bool           `db:"paywalled" json:"paywalled"`
	Category    string         `db:"category" json:"category"`
	ImageURL    string         `db:"image_url" json:"image_url"`
	Body        string         `db:"body" json:"body"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// StopReason explains why a crawl run terminated.
type StopReason string

const (
	StopFailureCeiling  StopReason = "failure ceiling reached"
	StopCursorExhausted StopReason = "cursor exhausted"
	StopCanceled        StopReason = "canceled"
)

// CrawlSummary is the terminal report of a crawl run.
type CrawlSummary struct {
	Source     string        `json:"source"`
	StartID    int64         `json:"start_id"`
	EndCursor  int64         `json:"end_cursor"`
	Batches    int           `json:"batches"`
	Saved      int           `json:"saved"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	StopReason StopReason    `json:"stop_reason"`
	Elapsed    time.Duration `json:"elapsed"`
}
