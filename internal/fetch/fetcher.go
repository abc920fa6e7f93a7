package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/mangafetch/internal/ui"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Options struct {
	Timeout     time.Duration
	BackoffUnit time.Duration
	Referer     string
	Sleep       SleepFunc
	Log         *ui.Logger
}

// Fetcher streams remote resources into files with bounded retries.
// It is safe for concurrent use; the shared http.Client carries keep-alive state.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	unit    time.Duration
	referer string
	sleep   SleepFunc
	log     *ui.Logger
}

func New(c *http.Client, opts Options) *Fetcher {
	if c == nil {
		c = http.DefaultClient
	}
	f := &Fetcher{
		client:  c,
		timeout: opts.Timeout,
		unit:    opts.BackoffUnit,
		referer: opts.Referer,
		sleep:   opts.Sleep,
		log:     opts.Log,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.unit <= 0 {
		f.unit = DefaultBackoffUnit
	}
	if f.sleep == nil {
		f.sleep = SleepContext
	}

	return f
}

// Fetch runs t until it succeeds or its attempt budget is spent. It never
// returns an error directly: failure is carried by Result.Err.
func (f *Fetcher) Fetch(ctx context.Context, t *Task) Result {
	if t == nil {
		return Result{Err: ErrNoTask}
	}

	limit := t.budget()
	var err error

	for i := 0; i < limit; i++ {
		t.Attempts++

		var n int64
		n, err = f.once(ctx, t)
		if err == nil {
			return Result{Task: t, Bytes: n}
		}

		f.log.Warnf("fetch attempt=%d/%d url=%s err=%v", i+1, limit, t.URL, err)

		if ctx.Err() != nil {
			break
		}
		if i == limit-1 {
			break
		}
		if serr := f.sleep(ctx, Backoff(i, f.unit)); serr != nil {
			err = serr
			break
		}
	}

	if rerr := os.Remove(t.Dest); rerr != nil && !os.IsNotExist(rerr) {
		f.log.Debugf("cleanup %s: %v", t.Dest, rerr)
	}
	f.log.Errorf("fetch failed file=%s attempts=%d err=%v", filepath.Base(t.Dest), t.Attempts, err)

	return Result{Task: t, Err: fmt.Errorf("%s: %w", t.URL, err)}
}

func (f *Fetcher) once(ctx context.Context, t *Task) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return 0, err
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return writeFile(t.Dest, resp.Body)
}

// writeFile truncates dst and copies src into it.
func writeFile(dst string, src io.Reader) (int64, error) {
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrEmptyBody
	}

	return n, nil
}

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
