package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/woodchen-ink/aice-ps/internal/batch"
	"github.com/woodchen-ink/aice-ps/internal/editor"
	"github.com/woodchen-ink/aice-ps/internal/infra"
	"github.com/woodchen-ink/aice-ps/internal/infra/settings"
)

// ImageGenerator is the slice of the Gemini client the handlers need.
type ImageGenerator interface {
	EditImage(ctx context.Context, source editor.Artifact, instruction string) (editor.Artifact, error)
	GenerateImage(ctx context.Context, prompt string) (editor.Artifact, error)
}

// GeneratorConfigurer is implemented by generator providers that can switch
// credential/endpoint at runtime.
type GeneratorConfigurer interface {
	Configure(apiKey, baseURL string) error
	Configured() bool
}

// Options wires the App container.
type Options struct {
	Config    *infra.Config
	Logger    infra.Logger
	Service   *editor.Service
	Generator ImageGenerator
	Pool      *batch.Pool
	// Configurer and Settings are optional; the settings endpoints degrade
	// without them.
	Configurer GeneratorConfigurer
	Settings   *settings.Store
	// SQL is nil when no database is configured; gallery endpoints answer
	// 503 in that case.
	SQL infra.SQLExecutor
}

type App struct {
	cfg        *infra.Config
	logger     infra.Logger
	service    *editor.Service
	gen        ImageGenerator
	pool       *batch.Pool
	configurer GeneratorConfigurer
	settings   *settings.Store
	sql        infra.SQLExecutor
	batches    *batchRegistry
}

func NewApp(opts Options) *App {
	return &App{
		cfg:        opts.Config,
		logger:     opts.Logger,
		service:    opts.Service,
		gen:        opts.Generator,
		pool:       opts.Pool,
		configurer: opts.Configurer,
		settings:   opts.Settings,
		sql:        opts.SQL,
		batches:    newBatchRegistry(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, messageKey string) {
	a.json(w, status, errorResponse{Error: code, Message: localize(r, messageKey)})
}

// imagePayload is how artifacts cross the API: inline base64 plus MIME
// type, the same shape the upstream provider uses.
type imagePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

func toPayload(a editor.Artifact) imagePayload {
	return imagePayload{
		Data:     base64.StdEncoding.EncodeToString(a.Data),
		MimeType: a.MimeType,
	}
}

func (p imagePayload) artifact() (editor.Artifact, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return editor.Artifact{}, err
	}
	return editor.NewArtifact(data, p.MimeType), nil
}

// writeArtifact serves raw image bytes, for direct downloads.
func (a *App) writeArtifact(w http.ResponseWriter, artifact editor.Artifact) {
	w.Header().Set("Content-Type", artifact.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
