package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

const (
	fetchTimeout  = 10 * time.Second
	maxBodyBytes  = 2 << 20 // 2 MiB is plenty for a <head>
	userAgent     = "B8ShieldBot/1.0 (+https://b8shield.com)"
	maxFieldChars = 300
)

// Metadata is what the scraper extracts from a page's head section.
type Metadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SiteName    string `json:"site_name"`
}

// Service fetches a remote page and extracts title/description/image
// metadata, preferring OpenGraph tags over plain HTML ones. All extracted
// text is sanitized before it is returned.
type Service interface {
	Fetch(ctx context.Context, rawURL string) (*Metadata, error)
}

type service struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

func NewService(logger *zap.Logger) Service {
	return &service{
		client:    &http.Client{Timeout: fetchTimeout},
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// Fetch validates the target URL, downloads the page and parses its metadata.
// Only http and https targets are accepted.
func (s *service) Fetch(ctx context.Context, rawURL string) (*Metadata, error) {
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("%w: invalid url", domain.ErrBadRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d: %w", target.Host, resp.StatusCode, domain.ErrBadRequest)
	}

	doc, err := html.Parse(http.MaxBytesReader(nil, resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target.Host, err)
	}

	meta := &Metadata{URL: target.String()}
	s.walk(doc, meta)

	meta.Title = s.clean(meta.Title)
	meta.Description = s.clean(meta.Description)
	meta.SiteName = s.clean(meta.SiteName)
	meta.Image = cleanImageURL(meta.Image, target)

	s.logger.Debug("scraped metadata", zap.String("url", meta.URL), zap.String("title", meta.Title))
	return meta, nil
}

// walk traverses the document collecting <title> and relevant <meta> tags.
// OpenGraph values overwrite plain ones since they are usually curated.
func (s *service) walk(n *html.Node, meta *Metadata) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if meta.Title == "" && n.FirstChild != nil {
				meta.Title = n.FirstChild.Data
			}
		case "meta":
			name := attr(n, "name")
			property := attr(n, "property")
			content := attr(n, "content")
			switch {
			case property == "og:title":
				meta.Title = content
			case property == "og:description":
				meta.Description = content
			case property == "og:image":
				meta.Image = content
			case property == "og:site_name":
				meta.SiteName = content
			case name == "description" && meta.Description == "":
				meta.Description = content
			}
		case "body":
			// Everything we need lives in <head>.
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c, meta)
	}
}

func (s *service) clean(v string) string {
	v = strings.TrimSpace(s.sanitizer.Sanitize(v))
	if len(v) > maxFieldChars {
		// Cut on a rune boundary so a multi-byte character is never split.
		cut := maxFieldChars
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	return v
}

// cleanImageURL resolves relative image paths against the page URL and drops
// anything that isn't http(s).
func cleanImageURL(raw string, page *url.URL) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	resolved := page.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
