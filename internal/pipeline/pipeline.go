package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/mangafetch/internal/chapters"
	"github.com/brogergvhs/mangafetch/internal/downloader"
	"github.com/brogergvhs/mangafetch/internal/fetch"
	"github.com/brogergvhs/mangafetch/internal/ui"
)

const DefaultChapterAttempts = 3

type Resolver interface {
	ChapterImages(ctx context.Context, chapterURL string) ([]string, error)
}

type Dispatcher interface {
	DispatchAllTo(ctx context.Context, tasks []*fetch.Task, concurrency int, obs downloader.Observer) []fetch.Result
}

// Reporter follows chapters for display. Dispatching may return nil.
type Reporter interface {
	Dispatching(job *ChapterJob, images int) downloader.Observer
	Finished(job *ChapterJob)
}

type Options struct {
	Concurrency     int
	ImageAttempts   int
	ChapterAttempts int
	BackoffUnit     time.Duration
	Sleep           fetch.SleepFunc
	Reporter        Reporter
	Log             *ui.Logger

	// Strict retries a chapter when any of its images failed. Off by default:
	// a chapter with failed images still ends as Partial.
	Strict bool
}

type Pipeline struct {
	resolver Resolver
	dispatch Dispatcher
	opts     Options
	log      *ui.Logger
}

func New(r Resolver, d Dispatcher, opts Options) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = downloader.DefaultConcurrency
	}
	if opts.ImageAttempts < 1 {
		opts.ImageAttempts = fetch.DefaultMaxAttempts
	}
	if opts.ChapterAttempts < 1 {
		opts.ChapterAttempts = DefaultChapterAttempts
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = fetch.DefaultBackoffUnit
	}
	if opts.Sleep == nil {
		opts.Sleep = fetch.SleepContext
	}

	return &Pipeline{resolver: r, dispatch: d, opts: opts, log: opts.Log}
}

// Report summarizes a run. Failed lists every chapter that was skipped.
type Report struct {
	Complete     []*ChapterJob
	Partial      []*ChapterJob
	Failed       []*ChapterJob
	Images       int
	FailedImages int
	Bytes        int64
}

// Run processes the chapters of tc one after another. A failed chapter is
// logged and skipped; it never stops the run.
func (p *Pipeline) Run(ctx context.Context, tc *TitleContext) Report {
	var rep Report

	for _, job := range tc.Chapters {
		p.RunChapter(ctx, job)

		rep.Images += len(job.Results)
		rep.FailedImages += job.FailedImages()
		rep.Bytes += downloader.Bytes(job.Results)

		switch job.State {
		case Complete:
			rep.Complete = append(rep.Complete, job)
		case Partial:
			rep.Partial = append(rep.Partial, job)
		default:
			rep.Failed = append(rep.Failed, job)
		}
	}

	for _, job := range rep.Failed {
		p.log.Errorf("chapter=%s status=failed attempts=%d url=%s err=%v", job.Name, job.Attempts, job.URL, job.Err)
	}

	return rep
}

// RunChapter drives job to a terminal state.
func (p *Pipeline) RunChapter(ctx context.Context, job *ChapterJob) {
	limit := p.opts.ChapterAttempts

	for attempt := 0; ; attempt++ {
		job.Attempts = attempt + 1
		out := p.attempt(ctx, job)
		job.Err = out.Error(p.opts.Strict)
		job.State = Next(attempt, limit, out, p.opts.Strict)

		switch job.State {
		case Complete:
			p.log.Infof("chapter=%s status=complete pages=%d attempts=%d", job.Name, out.Images, job.Attempts)
		case Partial:
			p.log.Warnf("chapter=%s status=partial pages=%d failed=%d attempts=%d", job.Name, out.Images, out.Failed, job.Attempts)
		case Failed:
			p.log.Warnf("chapter=%s status=failed attempts=%d err=%v", job.Name, job.Attempts, job.Err)
		case Retrying:
			wait := fetch.Backoff(attempt, p.opts.BackoffUnit)
			p.log.Warnf("chapter=%s status=retrying attempt=%d/%d wait=%s err=%v", job.Name, job.Attempts, limit, wait, job.Err)

			if err := p.opts.Sleep(ctx, wait); err != nil {
				job.State = Failed
				job.Err = fmt.Errorf("%w (after %v)", err, job.Err)
			}
		}

		if job.State.Terminal() {
			if p.opts.Reporter != nil {
				p.opts.Reporter.Finished(job)
			}
			return
		}
	}
}

// attempt resolves the chapter from scratch and dispatches its images.
func (p *Pipeline) attempt(ctx context.Context, job *ChapterJob) Outcome {
	job.State = Resolving
	job.Tasks, job.Results = nil, nil

	urls, err := p.resolver.ChapterImages(ctx, job.URL)
	if err != nil {
		return Outcome{Err: fmt.Errorf("resolve %s: %w", job.URL, err)}
	}
	if len(urls) == 0 {
		return Outcome{Err: ErrNoImages}
	}

	job.State = Dispatching
	if err := os.MkdirAll(job.Dir, 0755); err != nil {
		return Outcome{Err: fmt.Errorf("create %s: %w", job.Dir, err)}
	}

	job.Tasks = BuildTasks(job.Dir, urls, p.opts.ImageAttempts)
	p.prune(job)

	var obs downloader.Observer
	if p.opts.Reporter != nil {
		obs = p.opts.Reporter.Dispatching(job, len(urls))
	}

	job.Results = p.dispatch.DispatchAllTo(ctx, job.Tasks, p.opts.Concurrency, obs)

	return Outcome{Images: len(urls), Failed: job.FailedImages()}
}

// BuildTasks names pages 01.jpg, 02.jpg, ... in list order. The same urls
// always map to the same files.
func BuildTasks(dir string, urls []string, maxAttempts int) []*fetch.Task {
	tasks := make([]*fetch.Task, len(urls))
	for i, u := range urls {
		tasks[i] = fetch.NewTask(u, chapters.PagePath(dir, i+1, len(urls)), maxAttempts)
	}
	return tasks
}

// prune drops files left in the chapter directory by an earlier attempt that
// the current task list no longer writes.
func (p *Pipeline) prune(job *ChapterJob) {
	keep := make(map[string]bool, len(job.Tasks))
	for _, t := range job.Tasks {
		keep[filepath.Base(t.Dest)] = true
	}

	entries, err := os.ReadDir(job.Dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || keep[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(job.Dir, e.Name())); err != nil {
			p.log.Debugf("prune %s: %v", e.Name(), err)
		}
	}
}
