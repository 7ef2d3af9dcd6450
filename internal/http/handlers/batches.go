package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/woodchen-ink/aice-ps/internal/album"
	"github.com/woodchen-ink/aice-ps/internal/batch"
	"github.com/woodchen-ink/aice-ps/internal/editor"
	"github.com/woodchen-ink/aice-ps/internal/genai"
	"github.com/woodchen-ink/aice-ps/pkg/zip"
)

// defaultDecades is the album lineup used when the client does not pick
// its own set of styles.
var defaultDecades = []string{"1950s", "1960s", "1970s", "1980s", "1990s", "2000s"}

// batchRun tracks one in-flight or finished batch. Live results stream
// into results as tasks finish; report is set once the run completes.
type batchRun struct {
	ID        string
	SessionID string
	StartedAt time.Time

	mu      sync.Mutex
	order   []string
	results map[string]batch.Result
	done    bool
	report  *batch.Report
}

func (b *batchRun) observe(res batch.Result) {
	b.mu.Lock()
	b.results[res.Key] = res
	b.mu.Unlock()
}

func (b *batchRun) finish(report *batch.Report) {
	b.mu.Lock()
	b.report = report
	b.done = true
	b.mu.Unlock()
}

func (b *batchRun) snapshot() ([]batch.Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]batch.Result, 0, len(b.order))
	for _, key := range b.order {
		if res, ok := b.results[key]; ok {
			out = append(out, res)
		} else {
			out = append(out, batch.Result{Key: key, Status: batch.StatusPending})
		}
	}
	return out, b.done
}

func (b *batchRun) finishedReport() (*batch.Report, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.report, b.done
}

type batchRegistry struct {
	mu   sync.RWMutex
	runs map[string]*batchRun
}

func newBatchRegistry() *batchRegistry {
	return &batchRegistry{runs: make(map[string]*batchRun)}
}

func (r *batchRegistry) add(run *batchRun) {
	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()
}

func (r *batchRegistry) get(id string) (*batchRun, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	return run, ok
}

type batchStartRequest struct {
	Decades []string `json:"decades,omitempty"`
}

type batchStartResponse struct {
	BatchID string   `json:"batch_id"`
	Keys    []string `json:"keys"`
}

// DecadesBatchStart kicks off one generation per decade against the
// session's current image and returns immediately with a batch id.
func (a *App) DecadesBatchStart(w http.ResponseWriter, r *http.Request) {
	var req batchStartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
			return
		}
	}
	decades := req.Decades
	if len(decades) == 0 {
		decades = defaultDecades
	} else {
		// Results are keyed by decade, so duplicates would clobber each
		// other's status. First occurrence wins, order preserved.
		seen := make(map[string]struct{}, len(decades))
		uniq := make([]string, 0, len(decades))
		for _, decade := range decades {
			if _, ok := seen[decade]; ok {
				continue
			}
			seen[decade] = struct{}{}
			uniq = append(uniq, decade)
		}
		decades = uniq
	}

	sessionID := chi.URLParam(r, "session_id")
	source, err := a.service.Current(sessionID)
	if err != nil {
		a.editorError(w, r, err)
		return
	}

	run := &batchRun{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		StartedAt: time.Now(),
		order:     decades,
		results:   make(map[string]batch.Result),
	}
	a.batches.add(run)

	tasks := make([]batch.Task, 0, len(decades))
	for _, decade := range decades {
		instruction := genai.BuildDecadeInstruction(decade)
		tasks = append(tasks, batch.RetryOnce(batch.Task{
			Key: decade,
			Run: func(ctx context.Context) (editor.Artifact, error) {
				return a.gen.EditImage(ctx, source, instruction)
			},
		}, a.cfg.BatchRetryDelay))
	}

	// The run outlives the request; only the render timeout bounds it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RenderTimeout)
		defer cancel()
		report := a.pool.Run(ctx, tasks, run.observe)
		run.finish(report)
		a.logger.Info().
			Str("batch_id", run.ID).
			Int("succeeded", report.Succeeded()).
			Int("failed", report.Failed()).
			Msg("batch finished")
	}()

	a.json(w, http.StatusAccepted, batchStartResponse{BatchID: run.ID, Keys: decades})
}

type batchStatusResponse struct {
	BatchID string         `json:"batch_id"`
	Done    bool           `json:"done"`
	Partial bool           `json:"partial"`
	Results []batch.Result `json:"results"`
}

// BatchStatus reports per-task progress; safe to poll while running.
func (a *App) BatchStatus(w http.ResponseWriter, r *http.Request) {
	run, ok := a.batches.get(chi.URLParam(r, "batch_id"))
	if !ok {
		a.error(w, r, http.StatusNotFound, "batch_not_found", "batch_not_found")
		return
	}
	results, done := run.snapshot()
	resp := batchStatusResponse{BatchID: run.ID, Done: done, Results: results}
	if report, finished := run.finishedReport(); finished {
		resp.Partial = report.Partial()
	}
	a.json(w, http.StatusOK, resp)
}

// BatchResult serves one generated image from a finished batch.
func (a *App) BatchResult(w http.ResponseWriter, r *http.Request) {
	run, ok := a.batches.get(chi.URLParam(r, "batch_id"))
	if !ok {
		a.error(w, r, http.StatusNotFound, "batch_not_found", "batch_not_found")
		return
	}
	report, done := run.finishedReport()
	if !done {
		a.error(w, r, http.StatusConflict, "batch_running", "batch_running")
		return
	}
	res, ok := report.Result(chi.URLParam(r, "key"))
	if !ok || res.Status != batch.StatusDone {
		a.error(w, r, http.StatusNotFound, "not_found", "not_found")
		return
	}
	a.writeArtifact(w, res.Artifact)
}

// BatchArchive bundles every successful result into a zip download.
func (a *App) BatchArchive(w http.ResponseWriter, r *http.Request) {
	report, ok := a.finishedBatch(w, r)
	if !ok {
		return
	}
	entries := make([]zip.Entry, 0, len(report.Results()))
	for _, res := range report.Results() {
		if res.Status == batch.StatusDone {
			entries = append(entries, zip.Entry{Name: res.Key, Artifact: res.Artifact})
		}
	}
	if len(entries) == 0 {
		a.error(w, r, http.StatusConflict, "all_failed", "all_failed")
		return
	}
	data, err := zip.Archive(entries)
	if err != nil {
		a.logger.Error().Err(err).Msg("handlers: archive failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="album.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// BatchCollage renders the successful results into a single labeled
// grid image.
func (a *App) BatchCollage(w http.ResponseWriter, r *http.Request) {
	report, ok := a.finishedBatch(w, r)
	if !ok {
		return
	}
	frames := make([]album.Frame, 0, len(report.Results()))
	for _, res := range report.Results() {
		if res.Status == batch.StatusDone {
			frames = append(frames, album.Frame{Label: res.Key, Artifact: res.Artifact})
		}
	}
	if len(frames) == 0 {
		a.error(w, r, http.StatusConflict, "all_failed", "all_failed")
		return
	}
	artifact, err := album.Compose(frames, album.Options{})
	if err != nil {
		a.logger.Error().Err(err).Msg("handlers: collage failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal")
		return
	}
	a.writeArtifact(w, artifact)
}

func (a *App) finishedBatch(w http.ResponseWriter, r *http.Request) (*batch.Report, bool) {
	run, ok := a.batches.get(chi.URLParam(r, "batch_id"))
	if !ok {
		a.error(w, r, http.StatusNotFound, "batch_not_found", "batch_not_found")
		return nil, false
	}
	report, done := run.finishedReport()
	if !done {
		a.error(w, r, http.StatusConflict, "batch_running", "batch_running")
		return nil, false
	}
	return report, true
}
