package cmd

import (
	"sync"

	"github.com/brogergvhs/mangafetch/internal/downloader"
	"github.com/brogergvhs/mangafetch/internal/pipeline"
	"github.com/brogergvhs/mangafetch/internal/ui"
)

// progressReporter draws one bar per chapter and keeps the run totals.
type progressReporter struct {
	pm    *ui.MPBProgressManager
	stats *ui.Stats

	mu   sync.Mutex
	bars map[*pipeline.ChapterJob]*ui.ProgressHandle
}

var _ pipeline.Reporter = (*progressReporter)(nil)

func newProgressReporter(pm *ui.MPBProgressManager, stats *ui.Stats) *progressReporter {
	return &progressReporter{
		pm:    pm,
		stats: stats,
		bars:  make(map[*pipeline.ChapterJob]*ui.ProgressHandle),
	}
}

func (r *progressReporter) bar(job *pipeline.ChapterJob) *ui.ProgressHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.bars[job]
	if !ok {
		h = r.pm.Register("Ch." + job.Name)
		r.bars[job] = h
	}
	return h
}

func (r *progressReporter) Dispatching(job *pipeline.ChapterJob, images int) downloader.Observer {
	h := r.bar(job)
	h.Reset(images)

	return downloader.ObserverFunc(func(e downloader.Event) {
		h.Update(e.Done, e.Total, e.Result.Bytes, !e.Result.OK())
	})
}

func (r *progressReporter) Finished(job *pipeline.ChapterJob) {
	h := r.bar(job)

	failed := job.FailedImages()
	r.stats.Images.Add(int64(len(job.Results) - failed))
	r.stats.FailedImages.Add(int64(failed))
	r.stats.Bytes.Add(downloader.Bytes(job.Results))

	if job.State == pipeline.Failed {
		r.stats.FailedChapters.Add(1)
		h.Abort()
		return
	}

	r.stats.Chapters.Add(1)
	h.MarkDone()
}
