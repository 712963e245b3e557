package sites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/newsharvest/internal/models"
)

func TestLookup(t *testing.T) {
	for _, slug := range []string{"delfi", "postimees", "ohtuleht"} {
		site, err := Lookup(slug)
		require.NoError(t, err)
		assert.Equal(t, slug, site.Source().Slug)
	}

	_, err := Lookup("aripaev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestSlugsSorted(t *testing.T) {
	assert.Equal(t, []string{"delfi", "ohtuleht", "postimees"}, Slugs())
}

func TestSubSourceDerivation(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		url     string
		want    models.SubSource
		derived bool
	}{
		{"delfi main", "delfi", "https://www.delfi.ee/artikkel/120345678", models.SubSourcePrimary, true},
		{"delfi bare host", "delfi", "https://delfi.ee/artikkel/120345678", models.SubSourcePrimary, true},
		{"delfi russian", "delfi", "https://rus.delfi.ee/statja/120345678", models.SubSourceRussian, true},
		{"delfi sport unlisted", "delfi", "https://sport.delfi.ee/artikkel/120345678", "", false},
		{"postimees main", "postimees", "https://www.postimees.ee/8012345", models.SubSourcePrimary, true},
		{"postimees russian", "postimees", "https://rus.postimees.ee/8012345", models.SubSourceRussian, true},
		{"postimees english", "postimees", "https://news.postimees.ee/8012345", models.SubSourceEnglish, true},
		{"postimees culture unlisted", "postimees", "https://kultuur.postimees.ee/8012345", "", false},
		{"ohtuleht main", "ohtuleht", "https://www.ohtuleht.ee/1098765", models.SubSourcePrimary, true},
		{"garbage url", "delfi", "://nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, err := Lookup(tt.slug)
			require.NoError(t, err)

			sub, ok := site.SubSourceFromURL(tt.url)
			assert.Equal(t, tt.derived, ok)
			if tt.derived {
				assert.Equal(t, tt.want, sub)
			}
		})
	}
}

func TestArticleURLTemplates(t *testing.T) {
	delfi, _ := Lookup("delfi")
	assert.Equal(t, "https://www.delfi.ee/artikkel/120345678", delfi.Source().ArticleURL(120345678))

	postimees, _ := Lookup("postimees")
	assert.Equal(t, "https://www.postimees.ee/8012345", postimees.Source().ArticleURL(8012345))
}

const delfiArticleHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Test pealkiri - Delfi</title>
	<meta property="og:title" content="Valitsus kiitis heaks uue eelarve"/>
	<meta property="article:published_time" content="2024-05-01T10:30:00+03:00"/>
	<meta property="og:image" content="https://images.delfi.ee/123.jpg"/>
	<meta property="article:section" content="Eesti"/>
</head>
<body>
<article>
	<h1 class="article-headline__title">Valitsus kiitis heaks uue eelarve</h1>
	<div class="article-authors__name">Mari Maasikas ja Jaan Tamm</div>
	<time datetime="2024-05-01T10:30:00+03:00">1. mai 2024</time>
	<p>Valitsus kiitis kolmapäeval heaks järgmise aasta riigieelarve.</p>
	<p>Eelarve maht on ligi 17 miljardit eurot.</p>
</article>
</body>
</html>`

func TestDelfiExtractArticle(t *testing.T) {
	site, err := Lookup("delfi")
	require.NoError(t, err)

	finalURL := "https://www.delfi.ee/artikkel/120345678"
	article, err := site.ExtractArticle([]byte(delfiArticleHTML), finalURL, 120345678, models.SubSourcePrimary)
	require.NoError(t, err)

	assert.Equal(t, int64(1), article.SourceID)
	assert.Equal(t, int64(120345678), article.ArticleID)
	assert.Equal(t, models.SubSourcePrimary, article.SubSource)
	assert.Equal(t, finalURL, article.URL)
	assert.Equal(t, "Valitsus kiitis heaks uue eelarve", article.Title)

	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("", 3*3600))
	assert.True(t, article.PublishedAt.Equal(want))

	assert.Equal(t, []string{"Mari Maasikas", "Jaan Tamm"}, []string(article.Authors))
	assert.False(t, article.Paywalled)
	assert.Equal(t, "Eesti", article.Category)
	assert.Equal(t, "https://images.delfi.ee/123.jpg", article.ImageURL)
	assert.Contains(t, article.Body, "riigieelarve")
	assert.Contains(t, article.Body, "17 miljardit")
}

func TestExtractArticlePaywallDetection(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="Tasuline lugu"/>
		<meta property="article:published_time" content="2024-06-10T08:00:00+03:00"/>
	</head><body>
	<article>
		<h1 class="article-headline__title">Tasuline lugu</h1>
		<div class="paywall">Artikli lugemiseks vormista tellimus</div>
		<p>Avalik sissejuhatus enne maksumüüri.</p>
	</article>
	</body></html>`

	site, _ := Lookup("delfi")
	article, err := site.ExtractArticle([]byte(html), "https://www.delfi.ee/artikkel/1", 1, models.SubSourcePrimary)
	require.NoError(t, err)
	assert.True(t, article.Paywalled)
}

func TestExtractArticleMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantField string
	}{
		{
			name:      "missing title",
			html:      `<html><head><meta property="article:published_time" content="2024-05-01T10:30:00+03:00"/></head><body><article><p>sisu</p></article></body></html>`,
			wantField: "title",
		},
		{
			name:      "missing publish time",
			html:      `<html><head><meta property="og:title" content="Pealkiri"/></head><body><article><p>sisu</p></article></body></html>`,
			wantField: "published_at",
		},
		{
			name:      "unparseable publish time",
			html:      `<html><head><meta property="og:title" content="Pealkiri"/><meta property="article:published_time" content="eile õhtul"/></head><body><article><p>sisu</p></article></body></html>`,
			wantField: "published_at",
		},
		{
			name:      "missing body",
			html:      `<html><head><meta property="og:title" content="Pealkiri"/><meta property="article:published_time" content="2024-05-01T10:30:00+03:00"/></head><body></body></html>`,
			wantField: "body",
		},
	}

	site, _ := Lookup("delfi")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := site.ExtractArticle([]byte(tt.html), "https://www.delfi.ee/artikkel/1", 1, models.SubSourcePrimary)
			require.Error(t, err)

			extractErr, ok := err.(*ExtractError)
			require.True(t, ok, "expected *ExtractError, got %T", err)
			assert.Equal(t, tt.wantField, extractErr.Field)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestPostimeesExtractUsesSelectors(t *testing.T) {
	html := `<html><head></head><body>
	<article>
		<h1 class="article-superheader__headline">Tallinn ehitab uue trammiliini</h1>
		<div class="article-body">
			<div class="article-body__item--htmlElement">
				<p>Tallinna linnavalitsus kinnitas trammiliini projekti.</p>
			</div>
		</div>
		<time datetime="2024-03-15T09:00:00+02:00">15.03.2024</time>
	</body></html>`

	site, _ := Lookup("postimees")
	article, err := site.ExtractArticle([]byte(html), "https://www.postimees.ee/8012345", 8012345, models.SubSourcePrimary)
	require.NoError(t, err)

	assert.Equal(t, "Tallinn ehitab uue trammiliini", article.Title)
	assert.Contains(t, article.Body, "trammiliini projekti")
	assert.Empty(t, []string(article.Authors))
}
