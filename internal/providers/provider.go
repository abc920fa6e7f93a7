package providers

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNoTitle    = errors.New("title not found on page")
	ErrNoChapters = errors.New("no chapters found on page")
	ErrNoImages   = errors.New("no images found on page")
)

// Title is what a landing page resolves to.
type Title struct {
	ID       string
	Name     string
	URL      string
	CoverURL string
	Chapters []string
}

// Provider extracts links from one site's markup.
type Provider interface {
	Title(ctx context.Context, url string) (Title, error)
	ChapterImages(ctx context.Context, chapterURL string) ([]string, error)
}

// TitleID is the last non-empty path segment of a title URL.
func TitleID(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}

	p = strings.Trim(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}

	return p
}

// CoverURL builds <base>/<id>/cover.jpg, or "" when either part is missing.
func CoverURL(base, id string) string {
	if base == "" || id == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + id + "/cover.jpg"
}
