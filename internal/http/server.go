// Package http serves the dashboard, the record pages and the JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/middleware/ratelimit"
	"github.com/usere2211-alt/finance-dashboard/internal/middleware/security"
	"github.com/usere2211-alt/finance-dashboard/internal/middleware/trace"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
	appweb "github.com/usere2211-alt/finance-dashboard/web"
)

// Options tunes the server. Zero values take defaults.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	logger    *applog.Logger

	traceMiddleware *trace.Middleware
	rateLimiter     *ratelimit.Limiter

	startedAt    time.Time
	created      atomic.Int64
	deleted      atomic.Int64
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		ledger:    ledger,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		startedAt: time.Now(),
	}

	clientIP, err := security.NewClientIP(opts.TrustedProxies...)
	if err != nil {
		s.logger.Warn("Ignoring invalid trusted proxies", applog.FieldError, err)
		clientIP, _ = security.NewClientIP()
	}
	s.traceMiddleware = trace.NewMiddleware(logger.WithComponent(applog.ComponentTrace), clientIP.Extract)

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(clientIP),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(clientIP *security.ClientIP) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.traceMiddleware.Handler)
	r.Use(chimw.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.rateLimiter.Middleware(clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, clientIP.Extract(r),
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.With(security.StaticAssetMiddleware(3600)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Get("/ui/overview", s.handleOverviewPartial)
	r.Get("/forecast", s.handleForecast)

	for _, kind := range core.Kinds {
		base := "/" + kind.Domain()
		r.Get(base, s.handleListTransactions(kind))
		r.Post(base, s.handleCreateTransaction(kind))
		r.Post(base+"/{id}", s.handleUpdateTransaction(kind))
		r.Delete(base+"/{id}", s.handleDeleteTransaction(kind))
	}

	r.Get("/budgets", s.handleListBudgets)
	r.Post("/budgets", s.handleSetBudget)
	r.Delete("/budgets/{category}", s.handleDeleteBudget)

	r.Get("/export/{domain}.csv", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleAPIOverview)
		r.Get("/forecast", s.handleAPIForecast)
	})

	return r
}

// Shutdown stops background routines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a named template. On failure the error fragment is
// written instead so HTMX swaps still get a body.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		InternalServerError("templates not loaded").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name,
			applog.FieldOperation, applog.OpRender)
	}
}

// isHTMX reports whether the request came from an htmx swap.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
