package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/mangafetch/internal/archive"
	"github.com/brogergvhs/mangafetch/internal/chapters"
	"github.com/brogergvhs/mangafetch/internal/config"
	"github.com/brogergvhs/mangafetch/internal/downloader"
	"github.com/brogergvhs/mangafetch/internal/fetch"
	"github.com/brogergvhs/mangafetch/internal/pipeline"
	"github.com/brogergvhs/mangafetch/internal/providers/mxs"
	"github.com/brogergvhs/mangafetch/internal/ui"
	"github.com/brogergvhs/mangafetch/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL    string
	flagRange  string
	flagList   string
	flagDryRun bool

	// runtime
	flagOutput          string
	flagFormat          string
	flagConcurrency     int
	flagImageAttempts   int
	flagChapterAttempts int
	flagBackoff         time.Duration
	flagPageTimeout     time.Duration
	flagImageTimeout    time.Duration
	flagStrict          bool
	flagKeepFolders     bool
	flagLang            string
	flagNoBanner        bool

	// site
	flagBaseURL      string
	flagCoverBaseURL string

	// network
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagProxy      string
	flagCloudflare bool
)

var errNothingDownloaded = errors.New("no chapter was downloaded")

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download a title and pack it as ZIP or EPUB. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagURL, "url", "", "title landing page URL")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific chapter indices (e.g. 1,3,5)")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder")
	downloadCmd.Flags().StringVar(&flagFormat, "format", "", "archive format: zip or epub")
	downloadCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "parallel image downloads per chapter")
	downloadCmd.Flags().IntVar(&flagImageAttempts, "image-attempts", 0, "attempts per image")
	downloadCmd.Flags().IntVar(&flagChapterAttempts, "chapter-attempts", 0, "attempts per chapter")
	downloadCmd.Flags().DurationVar(&flagBackoff, "backoff", 0, "base backoff unit, doubled after each failed attempt")
	downloadCmd.Flags().DurationVar(&flagPageTimeout, "page-timeout", 0, "timeout for landing and chapter pages")
	downloadCmd.Flags().DurationVar(&flagImageTimeout, "image-timeout", 0, "timeout for a single image request")
	downloadCmd.Flags().BoolVar(&flagStrict, "strict", false, "retry a chapter when any of its images failed")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", true, "keep the image folders after archiving")
	downloadCmd.Flags().StringVar(&flagLang, "lang", "", "EPUB language tag")
	downloadCmd.Flags().BoolVar(&flagNoBanner, "no-banner", false, "do not print the startup banner")

	// site
	downloadCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "base URL chapter links are resolved against")
	downloadCmd.Flags().StringVar(&flagCoverBaseURL, "cover-base-url", "", "base URL of title covers")

	// network
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	downloadCmd.Flags().StringVar(&flagProxy, "proxy", "", "proxy, e.g. socks5://127.0.0.1:1080")
	downloadCmd.Flags().BoolVar(&flagCloudflare, "cloudflare", false, "use a browser-like TLS transport")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	var keep *bool
	if cmd.Flags().Changed("keep-folders") {
		keep = &flagKeepFolders
	}

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:    flagIgnoreConfig,
		Debug:           flagDebug,
		Output:          flagOutput,
		Format:          flagFormat,
		Concurrency:     flagConcurrency,
		ImageAttempts:   flagImageAttempts,
		ChapterAttempts: flagChapterAttempts,
		Backoff:         flagBackoff,
		PageTimeout:     flagPageTimeout,
		ImageTimeout:    flagImageTimeout,
		Strict:          flagStrict,
		KeepFolders:     keep,
		Lang:            flagLang,
		BaseURL:         flagBaseURL,
		CoverBaseURL:    flagCoverBaseURL,
		DefaultURL:      flagURL,
		DefaultRange:    flagRange,
		DefaultList:     flagList,
		Cookie:          flagCookie,
		CookieFile:      flagCookieFile,
		UserAgent:       flagUserAgent,
		Proxy:           flagProxy,
		Cloudflare:      flagCloudflare,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	log := ui.NewLogger(cfg.Debug)

	if !flagNoBanner {
		ui.PrintBanner(out, ui.DefaultBanner(cfg.BaseURL))
	}
	if usedPath != "" {
		fmt.Fprintf(out, "Config file: %s\n", usedPath)
	}
	if cfg.Debug {
		fmt.Fprintln(out, "Full config:")
		cfg.Print()
		fmt.Fprintln(out)
	}

	if cfg.DefaultURL == "" {
		if cfg.DefaultURL, err = promptURL(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := newDownload(cfg, out, log)
	if err != nil {
		return err
	}

	tc, err := d.title(ctx, cfg.DefaultURL)
	if err != nil {
		return err
	}
	stop := util.SetupInterruptHandler(cancel, d.coverPath())
	defer stop()

	if flagDryRun {
		printDryRun(out, tc, d.mode)
		return nil
	}

	start := time.Now()
	artifact, err := d.run(ctx, tc)
	if err != nil {
		return err
	}

	d.stats.Print(out, time.Since(start))
	fmt.Fprintf(out, "Archive:  %s\n", artifact)
	fmt.Fprintln(out, "\nAll done.")
	return nil
}

func promptURL() (string, error) {
	prompt := promptui.Prompt{
		Label: "Title URL",
		Validate: func(s string) error {
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return errors.New("enter an http(s) URL")
			}
			return nil
		},
	}

	u, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("missing --url and no default_url in config")
	}

	return strings.TrimSpace(u), nil
}

// download is one title run: landing page, chapters, archive.
type download struct {
	cfg    *config.Config
	client *http.Client
	scr    *mxs.Scraper
	mode   archive.Mode
	log    *ui.Logger
	out    io.Writer
	stats  *ui.Stats

	id string
}

func newDownload(cfg *config.Config, out io.Writer, log *ui.Logger) (*download, error) {
	mode, err := archive.ParseMode(cfg.Format)
	if err != nil {
		return nil, err
	}

	// per-request timeouts come from contexts; page and image limits differ
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		UserAgent:   cfg.UserAgent,
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		Cloudflare:  cfg.Cloudflare,
		Proxy:       cfg.Proxy,
		DebugLogger: log,
	})
	if err != nil {
		return nil, err
	}

	scr := mxs.NewScraper(client, mxs.Options{
		BaseURL:      cfg.BaseURL,
		CoverBaseURL: cfg.CoverBaseURL,
		PageTimeout:  cfg.PageTimeout,
		Log:          log,
	})

	return &download{
		cfg:    cfg,
		client: client,
		scr:    scr,
		mode:   mode,
		log:    log,
		out:    out,
		stats:  &ui.Stats{},
	}, nil
}

// title resolves the landing page. Any failure here ends the run.
func (d *download) title(ctx context.Context, pageURL string) (*pipeline.TitleContext, error) {
	t, err := d.scr.Title(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("title %s: %w", pageURL, err)
	}
	d.id = t.ID

	all := chapters.FromURLs(t.Chapters)
	selected := chapters.Filter(all, d.cfg.DefaultRange, d.cfg.DefaultList)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no chapters selected out of %d", len(all))
	}

	d.log.Infof("title=%q chapters=%d selected=%d", t.Name, len(all), len(selected))
	return pipeline.NewTitleContext(t, d.cfg.Output, selected), nil
}

// coverPath is outside the title folder so the ZIP never picks it up.
func (d *download) coverPath() string {
	id := d.id
	if id == "" {
		id = "title"
	}
	return filepath.Join(d.cfg.Output, "."+id+"-cover.jpg")
}

// fetchCover downloads the cover once. A missing cover only means a book
// without one.
func (d *download) fetchCover(ctx context.Context, tc *pipeline.TitleContext) string {
	if tc.CoverURL == "" {
		return ""
	}

	f := fetch.New(d.client, fetch.Options{Timeout: d.cfg.PageTimeout, Log: d.log})
	res := f.Fetch(ctx, fetch.NewTask(tc.CoverURL, d.coverPath(), 1))
	if !res.OK() {
		d.log.Warnf("cover unavailable, continuing without it: %v", res.Err)
		return ""
	}

	return res.Task.Dest
}

func (d *download) run(ctx context.Context, tc *pipeline.TitleContext) (string, error) {
	cover := ""
	if d.mode == archive.ModeEPUB {
		cover = d.fetchCover(ctx, tc)
	}

	pm := ui.NewProgressManager(d.out)
	defer pm.Close()

	fetcher := fetch.New(d.client, fetch.Options{
		Timeout:     d.cfg.ImageTimeout,
		BackoffUnit: d.cfg.Backoff,
		Log:         d.log,
	})

	p := pipeline.New(d.scr, downloader.New(fetcher, nil), pipeline.Options{
		Concurrency:     d.cfg.Concurrency,
		ImageAttempts:   d.cfg.ImageAttempts,
		ChapterAttempts: d.cfg.ChapterAttempts,
		BackoffUnit:     d.cfg.Backoff,
		Reporter:        newProgressReporter(pm, d.stats),
		Log:             d.log,
		Strict:          d.cfg.Strict,
	})

	rep := p.Run(ctx, tc)
	pm.Close()

	done := downloadedChapters(rep)
	if len(done) == 0 {
		util.RemoveFile(cover)
		util.RemoveIfEmpty(tc.Root)
		return "", fmt.Errorf("%s: %w (%d failed)", tc.Title, errNothingDownloaded, len(rep.Failed))
	}
	if err := ctx.Err(); err != nil {
		util.RemoveFile(cover)
		return "", err
	}

	artifact := filepath.Join(d.cfg.Output, tc.Title+d.mode.Ext())
	err := archive.Write(d.mode, tc.Root, artifact, archive.Options{
		Title:      tc.Title,
		Lang:       d.cfg.Lang,
		Author:     "mangafetch",
		Identifier: tc.ID,
		Cover:      cover,
		Chapters:   done,
	})
	if err != nil {
		util.RemoveFile(cover)
		return "", fmt.Errorf("archive %s: %w", artifact, err)
	}
	d.log.Infof("archive=%s chapters=%d", artifact, len(done))

	if !d.cfg.KeepFolders {
		util.CleanupFolder(tc.Root)
	}

	return artifact, nil
}

// downloadedChapters names the folders this run filled. Failed chapters and
// folders left by earlier runs stay out of the archive.
func downloadedChapters(rep pipeline.Report) []string {
	var out []string
	for _, job := range rep.Complete {
		out = append(out, filepath.Base(job.Dir))
	}
	for _, job := range rep.Partial {
		out = append(out, filepath.Base(job.Dir))
	}
	return out
}

func printDryRun(w io.Writer, tc *pipeline.TitleContext, mode archive.Mode) {
	fmt.Fprintf(w, "Dry-run: %q, %d chapters selected, %s output.\n\n", tc.Title, len(tc.Chapters), mode)
	for _, job := range tc.Chapters {
		fmt.Fprintf(w, "%4d) %s\n      %s\n", job.Index, job.Dir, job.URL)
	}
}
