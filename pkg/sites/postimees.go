package sites

import (
	"github.com/amosWeiskopf/newsharvest/internal/models"
)

var postimeesHosts = map[string]models.SubSource{
	"postimees.ee":      models.SubSourcePrimary,
	"www.postimees.ee":  models.SubSourcePrimary,
	"rus.postimees.ee":  models.SubSourceRussian,
	"news.postimees.ee": models.SubSourceEnglish,
}

type postimeesSite struct {
	cfg parserConfig
}

func init() {
	register(&postimeesSite{
		cfg: parserConfig{
			titleSelectors:    []string{"h1.article-superheader__headline", "h1.article__headline", "article h1"},
			bodySelectors:     []string{"div.article-body__item--htmlElement p", "div.article-body p", "article p"},
			bylineSelectors:   []string{"div.article-authors__name", "span.author__name"},
			timeSelectors:     []string{"time[datetime]", "div.article-metadata__datetime"},
			categorySelectors: []string{"a.article-superheader__category", "span.rubric"},
			paywallSelectors:  []string{"div.article-paywall", "div[class*='premium-badge']"},
		},
	})
}

func (s *postimeesSite) Source() models.Source {
	return models.Source{
		Slug:        "postimees",
		ID:          2,
		Name:        "Postimees",
		BaseDomain:  "postimees.ee",
		URLTemplate: "https://www.postimees.ee/%d",
	}
}

func (s *postimeesSite) AllowedSubSources() []models.SubSource {
	return []models.SubSource{
		models.SubSourcePrimary,
		models.SubSourceRussian,
		models.SubSourceEnglish,
	}
}

func (s *postimeesSite) SubSourceFromURL(finalURL string) (models.SubSource, bool) {
	sub, ok := postimeesHosts[Host(finalURL)]
	return sub, ok
}

func (s *postimeesSite) ExtractArticle(body []byte, finalURL string, articleID int64, sub models.SubSource) (*models.Article, error) {
	return extractArticle(s.cfg, s.Source(), body, finalURL, articleID, sub)
}
