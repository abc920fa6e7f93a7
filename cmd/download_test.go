package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brogergvhs/mangafetch/internal/archive"
	"github.com/brogergvhs/mangafetch/internal/config"
	"github.com/brogergvhs/mangafetch/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
	0x54, 0x08, 0x99, 0x63, 0xF8, 0x0F, 0x00, 0x00,
	0x01, 0x01, 0x00, 0x05, 0x18, 0x0D, 0xA3, 0xD2,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44,
	0xAE, 0x42, 0x60, 0x82,
}

// siteServer serves a title with three chapters. Chapters missing from pages
// and the listed missing images answer with errors.
func siteServer(t *testing.T, pages map[string]int, missing ...string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/book/77/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body><h1>Test: Title</h1>
<ul id="detail-list-select">
<li><a href="/ch/1">1</a></li>
<li><a href="/ch/2">2</a></li>
<li><a href="/ch/3">3</a></li>
</ul></body></html>`)
	})
	mux.HandleFunc("/ch/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/ch/")
		n, ok := pages[id]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		var b strings.Builder
		b.WriteString("<html><body>")
		for p := 1; p <= n; p++ {
			fmt.Fprintf(&b, `<img class="lazy" data-original="/img/%s-%d.png">`, id, p)
		}
		b.WriteString("</body></html>")
		_, _ = io.WriteString(w, b.String())
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		for _, m := range missing {
			if r.URL.Path == m {
				http.NotFound(w, r)
				return
			}
		}
		_, _ = w.Write(pngData)
	})
	mux.HandleFunc("/covers/77/cover.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngData)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server, format string) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Output = t.TempDir()
	cfg.Format = format
	cfg.BaseURL = srv.URL
	cfg.CoverBaseURL = srv.URL + "/covers"
	cfg.Backoff = time.Millisecond
	cfg.ChapterAttempts = 2
	cfg.DefaultURL = srv.URL + "/book/77/"
	return cfg
}

func runTitle(t *testing.T, cfg *config.Config) (*download, string, error) {
	t.Helper()

	d, err := newDownload(cfg, io.Discard, ui.NewLoggerTo(io.Discard, false))
	require.NoError(t, err)

	ctx := context.Background()
	tc, err := d.title(ctx, cfg.DefaultURL)
	require.NoError(t, err)

	artifact, err := d.run(ctx, tc)
	return d, artifact, err
}

func TestDownloadZip(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 2, "2": 1})
	cfg := testConfig(t, srv, "zip")

	d, artifact, err := runTitle(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Output, "Test_ Title.zip"), artifact)
	names, err := archive.Contents(artifact)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test_ Title/01/01.jpg", "Test_ Title/01/02.jpg", "Test_ Title/02/01.jpg"}, names)

	assert.DirExists(t, filepath.Join(cfg.Output, "Test_ Title", "01"))
	assert.NoFileExists(t, d.coverPath(), "zip runs never fetch the cover")

	assert.EqualValues(t, 2, d.stats.Chapters.Load())
	assert.EqualValues(t, 1, d.stats.FailedChapters.Load())
	assert.EqualValues(t, 3, d.stats.Images.Load())
	assert.EqualValues(t, 3*len(pngData), d.stats.Bytes.Load())
}

func TestDownloadEPUBWithCover(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 2, "2": 1})
	cfg := testConfig(t, srv, "epub")
	cfg.KeepFolders = false

	d, artifact, err := runTitle(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, ".epub", filepath.Ext(artifact))
	assert.NoDirExists(t, filepath.Join(cfg.Output, "Test_ Title"))
	assert.NoFileExists(t, d.coverPath())

	names, err := archive.Contents(artifact)
	require.NoError(t, err)

	var xhtml int
	for _, n := range names {
		if strings.HasSuffix(n, ".xhtml") && strings.Contains(baseName(n), "_") {
			xhtml++
		}
	}
	assert.Equal(t, 3, xhtml)
	assert.Contains(t, strings.Join(names, " "), "cover.jpg")
}

func TestDownloadEPUBWithoutCover(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 1})
	cfg := testConfig(t, srv, "epub")
	cfg.CoverBaseURL = srv.URL + "/nocovers"

	d, artifact, err := runTitle(t, cfg)
	require.NoError(t, err)
	assert.NoFileExists(t, d.coverPath())

	names, err := archive.Contents(artifact)
	require.NoError(t, err)
	assert.NotContains(t, strings.Join(names, " "), "cover.jpg")
}

func baseName(name string) string {
	return filepath.Base(filepath.FromSlash(name))
}

func TestDownloadSelection(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 1, "2": 1})
	cfg := testConfig(t, srv, "zip")
	cfg.DefaultList = "2"

	_, artifact, err := runTitle(t, cfg)
	require.NoError(t, err)

	names, err := archive.Contents(artifact)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test_ Title/02/01.jpg"}, names, "folder keeps the chapter's list index")
}

func TestStrictFailedChapterLeftOutOfArchive(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 2, "2": 1}, "/img/1-2.png")
	cfg := testConfig(t, srv, "zip")
	cfg.Strict = true
	cfg.ImageAttempts = 1

	d, artifact, err := runTitle(t, cfg)
	require.NoError(t, err)

	assert.EqualValues(t, 2, d.stats.FailedChapters.Load())
	assert.FileExists(t, filepath.Join(cfg.Output, "Test_ Title", "01", "01.jpg"), "pages of the failed chapter stay on disk")

	names, err := archive.Contents(artifact)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test_ Title/02/01.jpg"}, names)
}

func TestRerunArchivesOnlyThisSelection(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 2, "2": 1})
	cfg := testConfig(t, srv, "zip")

	_, _, err := runTitle(t, cfg)
	require.NoError(t, err)

	cfg.DefaultList = "2"
	_, artifact, err := runTitle(t, cfg)
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(cfg.Output, "Test_ Title", "01"))

	names, err := archive.Contents(artifact)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test_ Title/02/01.jpg"}, names)
}

func TestDownloadNothingSucceeded(t *testing.T) {
	srv := siteServer(t, map[string]int{})
	cfg := testConfig(t, srv, "zip")

	_, _, err := runTitle(t, cfg)
	assert.ErrorIs(t, err, errNothingDownloaded)

	entries, rerr := os.ReadDir(cfg.Output)
	require.NoError(t, rerr)
	for _, e := range entries {
		assert.NotEqual(t, ".zip", filepath.Ext(e.Name()))
	}
}

func TestTitleFailureIsFatal(t *testing.T) {
	srv := siteServer(t, nil)
	cfg := testConfig(t, srv, "zip")

	d, err := newDownload(cfg, io.Discard, nil)
	require.NoError(t, err)

	_, err = d.title(context.Background(), srv.URL+"/missing/")
	assert.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Format = "cbr"

	_, err := newDownload(cfg, io.Discard, nil)
	assert.Error(t, err)
}

func TestPrintDryRun(t *testing.T) {
	srv := siteServer(t, map[string]int{"1": 1})
	cfg := testConfig(t, srv, "epub")
	cfg.DefaultRange = "2-3"

	d, err := newDownload(cfg, io.Discard, nil)
	require.NoError(t, err)
	tc, err := d.title(context.Background(), cfg.DefaultURL)
	require.NoError(t, err)

	var buf bytes.Buffer
	printDryRun(&buf, tc, d.mode)

	out := buf.String()
	assert.Contains(t, out, "2 chapters selected, epub output")
	assert.Contains(t, out, srv.URL+"/ch/2")
	assert.Contains(t, out, srv.URL+"/ch/3")
	assert.NotContains(t, out, srv.URL+"/ch/1\n")
}
