package sites

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"

	"github.com/amosWeiskopf/newsharvest/internal/models"
	"github.com/amosWeiskopf/newsharvest/pkg/utils"
)

// parserConfig holds the markup rules of one source. Selectors are
// tried in order; the first match wins.
type parserConfig struct {
	titleSelectors    []string
	bodySelectors     []string
	bylineSelectors   []string
	timeSelectors     []string
	categorySelectors []string
	paywallSelectors  []string
}

// extractArticle applies a parserConfig to fetched page content. It is
// shared by all site plugins; per-source behavior lives entirely in the
// config and the SubSourceFromURL tables.
func extractArticle(cfg parserConfig, src models.Source, body []byte, finalURL string, articleID int64, sub models.SubSource) (*models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", finalURL, err)
	}

	title := utils.FirstNonEmpty(
		metaContent(doc, "og:title"),
		firstText(doc, cfg.titleSelectors),
		doc.Find("title").First().Text(),
	)
	if title == "" {
		return nil, &ExtractError{Field: "title", URL: finalURL}
	}

	rawTime := utils.FirstNonEmpty(
		metaContent(doc, "article:published_time"),
		firstAttr(doc, cfg.timeSelectors, "datetime"),
		firstText(doc, cfg.timeSelectors),
	)
	if rawTime == "" {
		return nil, &ExtractError{Field: "published_at", URL: finalURL}
	}
	publishedAt, err := utils.ParsePublishedTime(rawTime)
	if err != nil {
		return nil, &ExtractError{Field: "published_at", URL: finalURL}
	}

	text := bodyText(doc, cfg.bodySelectors)
	if text == "" {
		// Selector miss: the generic extractor still recovers body
		// text from most article layouts.
		text = fallbackBodyText(body)
	}
	if text == "" {
		return nil, &ExtractError{Field: "body", URL: finalURL}
	}

	var authors []string
	for _, sel := range cfg.bylineSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			authors = append(authors, utils.SplitAuthors(s.Text())...)
		})
		if len(authors) > 0 {
			break
		}
	}
	if len(authors) == 0 {
		authors = utils.SplitAuthors(metaName(doc, "author"))
	}

	return &models.Article{
		SourceID:    src.ID,
		ArticleID:   articleID,
		SubSource:   sub,
		URL:         finalURL,
		Title:       title,
		PublishedAt: publishedAt,
		Authors:     authors,
		Paywalled:   matchesAny(doc, cfg.paywallSelectors),
		Category: utils.FirstNonEmpty(
			metaContent(doc, "article:section"),
			firstText(doc, cfg.categorySelectors),
		),
		ImageURL: metaContent(doc, "og:image"),
		Body:     text,
	}, nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := fmt.Sprintf(`meta[property=%q]`, property)
	content, _ := doc.Find(sel).First().Attr("content")
	return content
}

func metaName(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[name=%q]`, name)
	content, _ := doc.Find(sel).First().Attr("content")
	return content
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := utils.CleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if val, ok := doc.Find(sel).First().Attr(attr); ok && val != "" {
			return val
		}
	}
	return ""
}

// bodyText joins the paragraph texts under the first matching body
// selector.
func bodyText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var parts []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if p := utils.CleanText(s.Text()); p != "" {
				parts = append(parts, p)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}
	return ""
}

func matchesAny(doc *goquery.Document, selectors []string) bool {
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func fallbackBodyText(body []byte) string {
	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{})
	if err != nil || result == nil {
		return ""
	}
	return utils.CleanText(result.ContentText)
}
