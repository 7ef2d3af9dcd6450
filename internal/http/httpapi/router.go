// Package httpapi assembles the HTTP surface: middleware chain plus all
// versioned routes.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/woodchen-ink/aice-ps/internal/http/handlers"
	"github.com/woodchen-ink/aice-ps/internal/infra"
	"github.com/woodchen-ink/aice-ps/internal/middleware"
)

// Options collects everything the router needs beyond the handlers.
type Options struct {
	Config *infra.Config
	Logger infra.Logger
	// CountryLookup resolves a client IP to an ISO country code for
	// locale detection. Nil disables geo-based detection.
	CountryLookup middleware.CountryLookup
}

// New wires the full route table around the App.
func New(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.Config.AllowedOrigins))
	r.Use(middleware.I18N("en", opts.CountryLookup))
	if opts.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.Config.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/generate", app.Generate)

		r.Get("/settings", app.SettingsShow)
		r.Put("/settings/gemini-key", app.SettingsUpdateGeminiKey)

		r.Get("/gallery", app.GalleryList)
		r.Get("/gallery/{image_id}", app.GalleryDownload)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.SessionCreate)

			r.Route("/{session_id}", func(r chi.Router) {
				r.Delete("/", app.SessionDelete)

				r.Post("/image", app.ImageUpload)
				r.Get("/image", app.ImageCurrent)

				r.Get("/history", app.HistoryShow)
				r.Get("/history/{index}", app.HistoryEntry)
				r.Post("/history/undo", app.HistoryUndo)
				r.Post("/history/redo", app.HistoryRedo)
				r.Post("/history/jump", app.HistoryJump)
				r.Post("/history/reset", app.HistoryReset)

				r.Post("/edit", app.EditApply)
				r.Post("/filter", app.FilterApply)
				r.Post("/adjustment", app.AdjustmentApply)
				r.Post("/texture", app.TextureApply)
				r.Post("/crop", app.CropApply)
				r.Post("/regenerate", app.RegenerateLast)

				r.Post("/gallery", app.GallerySave)

				r.Post("/batches/decades", app.DecadesBatchStart)
			})
		})

		r.Route("/batches/{batch_id}", func(r chi.Router) {
			r.Get("/", app.BatchStatus)
			r.Get("/results/{key}", app.BatchResult)
			r.Get("/archive", app.BatchArchive)
			r.Get("/collage", app.BatchCollage)
		})
	})

	return r
}
