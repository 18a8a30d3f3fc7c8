package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/config"
	"github.com/inkpolish/inkpolish/internal/database"
	"github.com/inkpolish/inkpolish/internal/session"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, analyzer analysis.Analyzer, sessions *session.Manager, store database.Store) http.Handler {
	r := chi.NewRouter()

	handler := NewHandler(analyzer, sessions, store)

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(store))
			r.Use(AuditMiddleware(store))
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))

			r.Route("/ai", func(r chi.Router) {
				r.Post("/correct-grammar", handler.CorrectGrammar)
				r.Post("/analyze-readability", handler.AnalyzeReadability)
				r.Post("/analyze-tone-voice", handler.AnalyzeToneVoice)
				r.Post("/find-cliches", handler.FindCliches)
			})

			r.Post("/documents/stats", handler.DocumentStats)
			r.Post("/documents/validate", handler.ValidateDocument)

			r.Post("/sessions", handler.CreateSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", handler.GetSession)
				r.Delete("/", handler.DeleteSession)
				r.Put("/draft", handler.UpdateDraft)
				r.Post("/submit", handler.SubmitSession)
				r.Post("/suggestions/{suggestionID}/apply", handler.ApplySuggestion)
				r.Post("/cliches/reanalyze", handler.ReanalyzeCliches)
				r.Post("/reset", handler.ResetSession)
				r.Post("/save", handler.SaveSession)
			})

			r.Get("/articles", handler.ListArticles)
			r.Get("/articles/{id}", handler.GetArticle)
			r.Delete("/articles/{id}", handler.DeleteArticle)

			r.Get("/audit", handler.GetAuditLogs)
		})

		// Key management is left open; deployments put it behind their own gateway.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/keys", handler.CreateAPIKey)
			r.Get("/keys", handler.ListAPIKeys)
			r.Delete("/keys/{id}", handler.DeleteAPIKey)
		})
	})

	if cfg.Server.EnableUI {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(indexPage))
		})
	}

	return r
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>inkpolish</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #7c3aed; }
        code { background: #f1f5f9; padding: 2px 6px; border-radius: 4px; }
        .endpoint { margin: 10px 0; }
    </style>
</head>
<body>
    <h1>inkpolish API</h1>
    <p>Write a draft, submit it for correction and apply the suggestions you like.</p>

    <h2>Editing sessions</h2>
    <div class="endpoint"><code>POST /api/v1/sessions</code> - Start a session with <code>{"title", "content"}</code></div>
    <div class="endpoint"><code>PUT /api/v1/sessions/{id}/draft</code> - Update the draft, returns validation and stats</div>
    <div class="endpoint"><code>POST /api/v1/sessions/{id}/submit</code> - Correct grammar and analyze style</div>
    <div class="endpoint"><code>POST /api/v1/sessions/{id}/suggestions/{suggestionID}/apply</code> - Apply a suggestion</div>
    <div class="endpoint"><code>POST /api/v1/sessions/{id}/save</code> - Save as an article</div>

    <h2>Authentication</h2>
    <p>Use <code>Authorization: Bearer your-api-key</code> header for all requests except health check.</p>

    <h2>Create API Key</h2>
    <p><code>POST /api/v1/admin/keys</code> with body <code>{"name": "my-key"}</code></p>
</body>
</html>`
