package mxs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brogergvhs/mangafetch/internal/providers"
	"github.com/brogergvhs/mangafetch/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const titlePage = `<html><body>
<h1> Sample Title </h1>
<ul id="detail-list-select">
  <li><a href="/chapter/101">Ch 1</a></li>
  <li><a href="/chapter/102">Ch 2</a></li>
  <li><a href="/chapter/102">Ch 2 again</a></li>
  <li><a href="javascript:void(0)">bad</a></li>
  <li><a href="https://other.example/chapter/103">Ch 3</a></li>
</ul>
<ul class="other"><li><a href="/chapter/999">not a chapter</a></li></ul>
</body></html>`

const chapterPage = `<html><body>
<img class="lazy" data-original="https://img.example/1.jpg" src="/loading.gif">
<img class="lazy" src="/loading.gif">
<img class="logo" data-original="https://img.example/logo.jpg">
<img class="lazy page" data-original="/img/2.jpg">
</body></html>`

func TestParseTitle(t *testing.T) {
	title, err := ParseReader(strings.NewReader(titlePage), "https://mxs.example")
	require.NoError(t, err)

	assert.Equal(t, "Sample Title", title.Name)
	assert.Equal(t, []string{
		"https://mxs.example/chapter/101",
		"https://mxs.example/chapter/102",
		"https://other.example/chapter/103",
	}, title.Chapters)
}

func TestParseTitleMissingMarkup(t *testing.T) {
	_, err := ParseReader(strings.NewReader(`<html><body><ul id="detail-list-select"></ul></body></html>`), "https://x")
	assert.ErrorIs(t, err, providers.ErrNoTitle)

	_, err = ParseReader(strings.NewReader(`<html><body><h1>T</h1></body></html>`), "https://x")
	assert.ErrorIs(t, err, providers.ErrNoChapters)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/book/4321/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, titlePage)
	})
	mux.HandleFunc("/chapter/101", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, chapterPage)
	})
	mux.HandleFunc("/chapter/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body><p>nothing</p></body></html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestScraperTitle(t *testing.T) {
	srv := newServer(t)
	s := NewScraper(srv.Client(), Options{
		BaseURL:      srv.URL,
		CoverBaseURL: "https://cdn.example/book",
		Log:          ui.NewLoggerTo(io.Discard, true),
	})

	title, err := s.Title(context.Background(), srv.URL+"/book/4321/")
	require.NoError(t, err)

	assert.Equal(t, "4321", title.ID)
	assert.Equal(t, "https://cdn.example/book/4321/cover.jpg", title.CoverURL)
	assert.Equal(t, srv.URL+"/chapter/101", title.Chapters[0])
	assert.Len(t, title.Chapters, 3)
}

func TestScraperChapterImages(t *testing.T) {
	srv := newServer(t)
	s := NewScraper(srv.Client(), Options{BaseURL: srv.URL})

	images, err := s.ChapterImages(context.Background(), srv.URL+"/chapter/101")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example/1.jpg", srv.URL + "/img/2.jpg"}, images)

	_, err = s.ChapterImages(context.Background(), srv.URL+"/chapter/empty")
	assert.ErrorIs(t, err, providers.ErrNoImages)
}

func TestScraperHTTPError(t *testing.T) {
	srv := newServer(t)
	s := NewScraper(srv.Client(), Options{BaseURL: srv.URL})

	_, err := s.Title(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
