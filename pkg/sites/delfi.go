package sites

import (
	"github.com/amosWeiskopf/newsharvest/internal/models"
)

// delfiHosts maps Delfi edition hostnames to sub-sources. Section
// subdomains (sport, kultuur, lemmikloom, ...) are deliberately
// absent: articles routed there are skipped, not harvested.
var delfiHosts = map[string]models.SubSource{
	"delfi.ee":     models.SubSourcePrimary,
	"www.delfi.ee": models.SubSourcePrimary,
	"rus.delfi.ee": models.SubSourceRussian,
}

type delfiSite struct {
	cfg parserConfig
}

func init() {
	register(&delfiSite{
		cfg: parserConfig{
			titleSelectors:    []string{"h1.article-headline__title", "article h1"},
			bodySelectors:     []string{"div.article-body p", "div[class*='fragment-html'] p", "article p"},
			bylineSelectors:   []string{"div.article-authors__name", "span.article-author"},
			timeSelectors:     []string{"time[datetime]", "div.article-metadata time"},
			categorySelectors: []string{"a.article-category", "nav.breadcrumbs a:last-of-type"},
			paywallSelectors:  []string{"div.paywall", "div.article-paywall", "span.icon--lock"},
		},
	})
}

func (s *delfiSite) Source() models.Source {
	return models.Source{
		Slug:        "delfi",
		ID:          1,
		Name:        "Delfi",
		BaseDomain:  "delfi.ee",
		URLTemplate: "https://www.delfi.ee/artikkel/%d",
	}
}

func (s *delfiSite) AllowedSubSources() []models.SubSource {
	return []models.SubSource{models.SubSourcePrimary, models.SubSourceRussian}
}

func (s *delfiSite) SubSourceFromURL(finalURL string) (models.SubSource, bool) {
	sub, ok := delfiHosts[Host(finalURL)]
	return sub, ok
}

func (s *delfiSite) ExtractArticle(body []byte, finalURL string, articleID int64, sub models.SubSource) (*models.Article, error) {
	return extractArticle(s.cfg, s.Source(), body, finalURL, articleID, sub)
}
