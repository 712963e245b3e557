// Package sites holds the per-source extraction plugins. Each source
// gets one Site implementation with its own markup rules; the
// controller selects one from the registry by slug.
package sites

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/amosWeiskopf/newsharvest/internal/models"
)

// Site is the capability interface a source plugin implements.
type Site interface {
	// Source returns the immutable source configuration.
	Source() models.Source

	// AllowedSubSources lists the editions this source accepts.
	AllowedSubSources() []models.SubSource

	// SubSourceFromURL derives the edition from the final URL after
	// redirects. ok is false when the host is not a recognized edition
	// (sports/culture subdomains and other unlisted sections).
	SubSourceFromURL(finalURL string) (sub models.SubSource, ok bool)

	// ExtractArticle parses fetched page content into an Article.
	// A missing required field is returned as *ExtractError.
	ExtractArticle(body []byte, finalURL string, articleID int64, sub models.SubSource) (*models.Article, error)
}

// ExtractError reports a required field that could not be extracted.
type ExtractError struct {
	Field string
	URL   string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("missing required field %q at %s", e.Field, e.URL)
}

var registry = map[string]Site{}

func register(s Site) {
	registry[s.Source().Slug] = s
}

// Lookup resolves a registered site by slug.
func Lookup(slug string) (Site, error) {
	site, ok := registry[slug]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (known: %s)", slug, strings.Join(Slugs(), ", "))
	}
	return site, nil
}

// Slugs returns the registered source slugs, sorted.
func Slugs() []string {
	slugs := make([]string, 0, len(registry))
	for slug := range registry {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Host extracts the lowercased hostname of a URL, or "" when the URL
// does not parse. Edition derivation and domain whitelisting both key
// off it.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
