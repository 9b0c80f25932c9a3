package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

func testPage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPrefersOpenGraphTags(t *testing.T) {
	srv := testPage(t, `<!doctype html><html><head>
<title>Plain title</title>
<meta name="description" content="Plain description">
<meta property="og:title" content="Fiskebutiken">
<meta property="og:description" content="Allt för fisket">
<meta property="og:image" content="/img/hero.jpg">
<meta property="og:site_name" content="Fiskebutiken AB">
</head><body><p>hello</p></body></html>`)

	svc := NewService(zap.NewNop())
	meta, err := svc.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Fiskebutiken", meta.Title)
	assert.Equal(t, "Allt för fisket", meta.Description)
	assert.Equal(t, "Fiskebutiken AB", meta.SiteName)
	assert.Equal(t, srv.URL+"/img/hero.jpg", meta.Image)
}

func TestFetchTruncatesLongFieldsOnRuneBoundary(t *testing.T) {
	// The ö straddles the byte limit; the cut must not leave half a rune.
	title := strings.Repeat("a", maxFieldChars-1) + "öö"
	srv := testPage(t, fmt.Sprintf(`<!doctype html><html><head>
<meta property="og:title" content="%s">
</head><body></body></html>`, title))

	svc := NewService(zap.NewNop())
	meta, err := svc.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(meta.Title))
	assert.LessOrEqual(t, len(meta.Title), maxFieldChars)
	assert.Equal(t, strings.Repeat("a", maxFieldChars-1), meta.Title)
}

func TestFetchFallsBackToPlainTags(t *testing.T) {
	srv := testPage(t, `<html><head>
<title>Bara en titel</title>
<meta name="description" content="vanlig beskrivning">
</head><body></body></html>`)

	svc := NewService(zap.NewNop())
	meta, err := svc.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Bara en titel", meta.Title)
	assert.Equal(t, "vanlig beskrivning", meta.Description)
	assert.Empty(t, meta.Image)
}

func TestFetchSanitizesMarkupInMetadata(t *testing.T) {
	srv := testPage(t, `<html><head>
<meta property="og:title" content="Hej &lt;script&gt;alert(1)&lt;/script&gt; värld">
</head><body></body></html>`)

	svc := NewService(zap.NewNop())
	meta, err := svc.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.NotContains(t, meta.Title, "<script>")
	assert.Contains(t, meta.Title, "Hej")
}

func TestFetchRejectsNonHTTPURL(t *testing.T) {
	svc := NewService(zap.NewNop())

	_, err := svc.Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestFetchRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	svc := NewService(zap.NewNop())
	_, err := svc.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestFetchDropsNonHTTPImage(t *testing.T) {
	srv := testPage(t, `<html><head>
<meta property="og:image" content="javascript:alert(1)">
</head><body></body></html>`)

	svc := NewService(zap.NewNop())
	meta, err := svc.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, meta.Image)
}
