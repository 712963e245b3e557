package sites

import (
	"github.com/amosWeiskopf/newsharvest/internal/models"
)

// Õhtuleht publishes a single Estonian edition.
var ohtulehtHosts = map[string]models.SubSource{
	"ohtuleht.ee":     models.SubSourcePrimary,
	"www.ohtuleht.ee": models.SubSourcePrimary,
}

type ohtulehtSite struct {
	cfg parserConfig
}

func init() {
	register(&ohtulehtSite{
		cfg: parserConfig{
			titleSelectors:    []string{"h1.article-title", "article h1"},
			bodySelectors:     []string{"div.article-content p", "div#article-body p", "article p"},
			bylineSelectors:   []string{"div.article-author a", "span.article-author"},
			timeSelectors:     []string{"time[datetime]", "span.article-date"},
			categorySelectors: []string{"a.article-category", "div.breadcrumb a:last-of-type"},
			paywallSelectors:  []string{"div.paywall-container", "span.premium-label"},
		},
	})
}

func (s *ohtulehtSite) Source() models.Source {
	return models.Source{
		Slug:        "ohtuleht",
		ID:          3,
		Name:        "Õhtuleht",
		BaseDomain:  "ohtuleht.ee",
		URLTemplate: "https://www.ohtuleht.ee/%d",
	}
}

func (s *ohtulehtSite) AllowedSubSources() []models.SubSource {
	return []models.SubSource{models.SubSourcePrimary}
}

func (s *ohtulehtSite) SubSourceFromURL(finalURL string) (models.SubSource, bool) {
	sub, ok := ohtulehtHosts[Host(finalURL)]
	return sub, ok
}

func (s *ohtulehtSite) ExtractArticle(body []byte, finalURL string, articleID int64, sub models.SubSource) (*models.Article, error) {
	return extractArticle(s.cfg, s.Source(), body, finalURL, articleID, sub)
}
