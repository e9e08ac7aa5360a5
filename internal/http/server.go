package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"assetmix/internal/log"
	"assetmix/internal/middleware/ratelimit"
	"assetmix/internal/middleware/security"
	"assetmix/internal/middleware/trace"
	"assetmix/internal/session"
	appweb "assetmix/web"
)

// Pinger reports whether the asset service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Addr      string
	Sessions  *session.Store
	Pinger    Pinger
	RateLimit ratelimit.Config
	Logger    *log.Logger
}

// Server serves the page, its fragments and the chart images.
type Server struct {
	http.Server
	templates *template.Template
	sessions  *session.Store
	pinger    Pinger

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *log.Logger
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		sessions: opts.Sessions,
		pinger:   opts.Pinger,
		detector: security.NewDetector(logger),
		limiter:  ratelimit.NewLimiter(opts.RateLimit, logger),
		logger:   httpLogger,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(log.ComponentTemplate).Warn("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		httpLogger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	ui := func(path string, h http.HandlerFunc, method string) {
		r.Handle(path, security.NoStore(h)).Methods(method)
	}
	ui("/ui/view/{view}", s.handleSwitchView, http.MethodPost)
	ui("/ui/assets", s.handleAssets, http.MethodGet)
	ui("/ui/assets", s.handleSubmitAsset, http.MethodPost)
	ui("/ui/recommendation", s.handleRecommendation, http.MethodPost)
	ui("/ui/records", s.handleSaveSnapshot, http.MethodPost)
	ui("/ui/history", s.handleHistory, http.MethodGet)
	ui("/charts/{container:[a-z-]+}.{format:svg|json}", s.handleChart, http.MethodGet)

	// Outermost first: recovery, tracing, headers, scanner detection, rate
	// limiting, compression.
	var h http.Handler = handlers.CompressHandler(r)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		TooManyRequestsError().Write(w)
	})(h)
	h = s.detector.Middleware(s.detector.ExtractClientIP)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: httpLogger}),
		handlers.PrintRecoveryStack(false),
	)(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// RateLimiter returns the limiter so its janitor can be run alongside the
// server.
func (s *Server) RateLimiter() *ratelimit.Limiter {
	return s.limiter
}

// recoveryLogger routes panics caught by gorilla/handlers into the
// structured log.
type recoveryLogger struct {
	logger *log.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("Handler panic recovered",
		log.FieldError, fmt.Sprint(v...),
		log.FieldErrorType, log.ErrorTypeInternal)
}

// render executes a named template into b and writes it. A template failure
// becomes a 500 so a half-written fragment is never swapped in.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded (request " + trace.GetRequestID(r.Context()) + ")").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldError, err.Error())
		InternalServerError("could not render page (request " + trace.GetRequestID(r.Context()) + ")").Write(w)
		return
	}
	if b == nil {
		b = NewHTMXResponse()
	}
	b.BodyHTML(buf.Bytes()).Write(w)
}
