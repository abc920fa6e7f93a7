package downloader

import (
	"context"
	"fmt"
	"sync"

	"github.com/brogergvhs/mangafetch/internal/fetch"
)

const DefaultConcurrency = 2

// Fetcher is the single-resource retrieval the pool runs on each worker.
type Fetcher interface {
	Fetch(ctx context.Context, t *fetch.Task) fetch.Result
}

// Event is emitted once per task, in completion order.
type Event struct {
	Done   int
	Total  int
	Result fetch.Result
}

// Observer receives progress events. Calls are serialized.
type Observer interface {
	Progress(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Progress(e Event) { f(e) }

type Dispatcher struct {
	fetcher  Fetcher
	observer Observer
}

func New(f Fetcher, obs Observer) *Dispatcher {
	return &Dispatcher{fetcher: f, observer: obs}
}

// DispatchAll runs tasks on at most concurrency workers and returns once every
// task is terminal. Results are indexed like tasks. A failed task never stops
// its siblings.
func (d *Dispatcher) DispatchAll(ctx context.Context, tasks []*fetch.Task, concurrency int) []fetch.Result {
	return d.DispatchAllTo(ctx, tasks, concurrency, d.observer)
}

// DispatchAllTo is DispatchAll with a per-batch observer.
func (d *Dispatcher) DispatchAllTo(ctx context.Context, tasks []*fetch.Task, concurrency int, obs Observer) []fetch.Result {
	total := len(tasks)
	results := make([]fetch.Result, total)
	if total == 0 {
		return results
	}

	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if concurrency > total {
		concurrency = total
	}

	var mu sync.Mutex
	done := 0
	finish := func(i int, r fetch.Result) {
		mu.Lock()
		defer mu.Unlock()

		results[i] = r
		done++
		if obs != nil {
			obs.Progress(Event{Done: done, Total: total, Result: r})
		}
	}

	queue := make([]int, 0, total)
	seen := make(map[string]int, total)
	for i, t := range tasks {
		if t == nil {
			finish(i, fetch.Result{Err: fetch.ErrNoTask})
			continue
		}
		if first, dup := seen[t.Dest]; dup {
			finish(i, fetch.Result{Task: t, Err: fmt.Errorf("destination %s already assigned to task %d", t.Dest, first)})
			continue
		}
		seen[t.Dest] = i
		queue = append(queue, i)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			finish(i, d.fetcher.Fetch(ctx, tasks[i]))
		}
	}

	wg.Add(concurrency)
	for w := 0; w < concurrency; w++ {
		go worker()
	}

	for _, i := range queue {
		jobs <- i
	}

	close(jobs)
	wg.Wait()

	return results
}

// Failed returns the failed results in input order.
func Failed(results []fetch.Result) []fetch.Result {
	var out []fetch.Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}

	return out
}

// Bytes sums the bytes written by successful results.
func Bytes(results []fetch.Result) int64 {
	var n int64
	for _, r := range results {
		if r.OK() {
			n += r.Bytes
		}
	}

	return n
}
