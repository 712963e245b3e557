package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	spaceRe       = regexp.MustCompile(`\s+`)
	// \b is ASCII-only in RE2, so the conjunctions are matched with
	// explicit surrounding whitespace instead of word boundaries.
	authorSplitRe = regexp.MustCompile(`\s*[,;]\s*|\s+(?:ja|и|and)\s+`)
)

// CleanText collapses runs of whitespace and trims the result
func CleanText(text string) string {
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitAuthors splits a byline into individual author names. Estonian
// bylines separate names with commas or "ja"; Russian editions use "и".
// Credit prefixes like "Toimetas" are left to the caller's selectors.
func SplitAuthors(byline string) []string {
	byline = CleanText(byline)
	if byline == "" {
		return nil
	}

	parts := authorSplitRe.Split(byline, -1)
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, " .")
		if p != "" {
			authors = append(authors, p)
		}
	}
	if len(authors) == 0 {
		return nil
	}
	return authors
}

// ParsePublishedTime parses a publish timestamp. RFC 3339 (the format
// carried by article:published_time meta tags) is tried first, then
// dateparse handles the looser formats found in visible date nodes.
func ParsePublishedTime(raw string) (time.Time, error) {
	raw = CleanText(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return dateparse.ParseAny(raw)
}

// FirstNonEmpty returns the first non-blank string, cleaned.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if cleaned := CleanText(v); cleaned != "" {
			return cleaned
		}
	}
	return ""
}
