// Package batch runs a queue of independent generation tasks through a
// fixed-size worker pool. One task failing never cancels or blocks its
// siblings; callers observe per-task terminal status incrementally and get
// an aggregate verdict at the end.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

// Status is the lifecycle state of a single task. Tasks move from pending to
// exactly one terminal state and never transition again.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// ErrAllFailed is the aggregate result when every task in a run errored.
var ErrAllFailed = errors.New("all tasks failed")

// Task is one independent unit of work producing an artifact.
type Task struct {
	Key string
	Run func(ctx context.Context) (editor.Artifact, error)
}

// Result is the terminal outcome of one task.
type Result struct {
	Key      string          `json:"key"`
	Status   Status          `json:"status"`
	Artifact editor.Artifact `json:"-"`
	Err      string          `json:"error,omitempty"`
}

// Report collects per-task results for a finished run, in queue order.
type Report struct {
	results []Result
	byKey   map[string]int
	done    int
	failed  int
}

// Results returns all terminal results in the order tasks were queued.
func (r *Report) Results() []Result {
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Result returns the outcome recorded for key.
func (r *Report) Result(key string) (Result, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Result{}, false
	}
	return r.results[i], true
}

// Succeeded returns how many tasks finished with status done.
func (r *Report) Succeeded() int { return r.done }

// Failed returns how many tasks finished with status error.
func (r *Report) Failed() int { return r.failed }

// Partial reports whether the run mixed successes and failures.
func (r *Report) Partial() bool { return r.done > 0 && r.failed > 0 }

// Err returns the aggregate verdict: nil while at least one task succeeded,
// ErrAllFailed when none did. Partial failure is not an error; callers
// proceed with the successes and may surface a non-fatal notice.
func (r *Report) Err() error {
	if len(r.results) > 0 && r.done == 0 {
		return ErrAllFailed
	}
	return nil
}

// Artifacts returns the artifacts of the successful tasks in queue order.
func (r *Report) Artifacts() []editor.Artifact {
	out := make([]editor.Artifact, 0, r.done)
	for _, res := range r.results {
		if res.Status == StatusDone {
			out = append(out, res.Artifact)
		}
	}
	return out
}

// Pool bounds how many tasks run at once. Task start order follows queue
// order; completion order is whatever the network gives back. A dispatched
// task always runs to a terminal state: the run's context is only consulted
// between dispatches, matching an API whose in-flight calls cannot be
// aborted.
type Pool struct {
	concurrency int
}

// NewPool returns a pool limited to n concurrent tasks. Values below one are
// raised to one.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{concurrency: n}
}

// Concurrency returns the configured limit.
func (p *Pool) Concurrency() int { return p.concurrency }

// Run drains the queue and returns once every task has a terminal status.
// observe, when non-nil, is invoked with each terminal result as it lands;
// invocations are serialized. If ctx expires before a task is dispatched,
// that task and the remainder of the queue are marked errored with the
// context's error.
func (p *Pool) Run(ctx context.Context, tasks []Task, observe func(Result)) *Report {
	report := &Report{
		results: make([]Result, len(tasks)),
		byKey:   make(map[string]int, len(tasks)),
	}
	for i, t := range tasks {
		report.results[i] = Result{Key: t.Key, Status: StatusPending}
		report.byKey[t.Key] = i
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.concurrency)
	)
	record := func(i int, artifact editor.Artifact, err error) {
		mu.Lock()
		res := &report.results[i]
		if err != nil {
			res.Status = StatusError
			res.Err = err.Error()
			report.failed++
		} else {
			res.Status = StatusDone
			res.Artifact = artifact
			report.done++
		}
		out := *res
		if observe != nil {
			observe(out)
		}
		mu.Unlock()
	}

	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			record(i, editor.Artifact{}, err)
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			record(i, editor.Artifact{}, ctx.Err())
			continue
		}
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			defer func() { <-sem }()
			artifact, err := t.Run(ctx)
			record(i, artifact, err)
		}(i, t)
	}
	wg.Wait()
	return report
}

// RetryOnce wraps a task so that a first failure is retried a single time
// after the given delay. The wait respects ctx; if ctx expires during the
// delay the original error is returned.
func RetryOnce(t Task, delay time.Duration) Task {
	run := t.Run
	t.Run = func(ctx context.Context) (editor.Artifact, error) {
		artifact, err := run(ctx)
		if err == nil {
			return artifact, nil
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return editor.Artifact{}, err
		}
		return run(ctx)
	}
	return t
}
