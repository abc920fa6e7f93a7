package mxs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/mangafetch/internal/providers"
	"github.com/brogergvhs/mangafetch/internal/ui"
)

const (
	DefaultBaseURL      = "https://mxs12.cc"
	DefaultCoverBaseURL = "https://www.wzd1.cc/static/upload/book"
	DefaultPageTimeout  = 10 * time.Second
)

type Options struct {
	BaseURL      string
	CoverBaseURL string
	PageTimeout  time.Duration
	Log          *ui.Logger
}

type Scraper struct {
	client  *http.Client
	base    string
	cover   string
	timeout time.Duration
	log     *ui.Logger
}

var _ providers.Provider = (*Scraper)(nil)

func NewScraper(c *http.Client, opts Options) *Scraper {
	if c == nil {
		c = http.DefaultClient
	}
	s := &Scraper{
		client:  c,
		base:    opts.BaseURL,
		cover:   opts.CoverBaseURL,
		timeout: opts.PageTimeout,
		log:     opts.Log,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultPageTimeout
	}

	return s
}

func (s *Scraper) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.log.Debugf("close body %s: %v", target, cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: HTTP %d", target, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// Title fetches the landing page and resolves its name and chapter list.
func (s *Scraper) Title(ctx context.Context, pageURL string) (providers.Title, error) {
	doc, err := s.fetchDOM(ctx, pageURL)
	if err != nil {
		return providers.Title{}, err
	}

	base := s.base
	if base == "" {
		base = pageURL
	}

	t, err := ParseTitle(doc, base)
	if err != nil {
		return providers.Title{}, err
	}

	t.URL = pageURL
	t.ID = providers.TitleID(pageURL)
	t.CoverURL = providers.CoverURL(s.cover, t.ID)
	s.log.Debugf("title=%q id=%s chapters=%d", t.Name, t.ID, len(t.Chapters))

	return t, nil
}

func (s *Scraper) ChapterImages(ctx context.Context, chapterURL string) ([]string, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	return ParseImages(doc, chapterURL)
}

// ParseTitle reads the title name and the ordered chapter links.
func ParseTitle(doc *goquery.Document, base string) (providers.Title, error) {
	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		return providers.Title{}, providers.ErrNoTitle
	}

	var chapters []string
	seen := map[string]bool{}

	doc.Find("ul#detail-list-select li a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}

		u := resolveURL(base, href)
		if seen[u] {
			return
		}
		seen[u] = true
		chapters = append(chapters, u)
	})

	if len(chapters) == 0 {
		return providers.Title{}, providers.ErrNoChapters
	}

	return providers.Title{Name: name, Chapters: chapters}, nil
}

// ParseImages returns the lazy-load image URLs in page order.
func ParseImages(doc *goquery.Document, chapterURL string) ([]string, error) {
	var out []string

	doc.Find("img.lazy").Each(func(_ int, img *goquery.Selection) {
		v, ok := img.Attr("data-original")
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return
		}
		out = append(out, resolveURL(chapterURL, v))
	})

	if len(out) == 0 {
		return nil, providers.ErrNoImages
	}

	return out, nil
}

// ParseReader is ParseTitle over a raw body.
func ParseReader(r io.Reader, base string) (providers.Title, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return providers.Title{}, err
	}
	return ParseTitle(doc, base)
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil || u == nil {
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
	}

	return b.ResolveReference(u).String()
}
