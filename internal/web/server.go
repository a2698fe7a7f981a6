// Package web serves the income dashboard over HTTP.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nordkart/ratsit-atlas/internal/config"
	"github.com/nordkart/ratsit-atlas/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server is the dashboard HTTP server.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	coords    *Coordinates
	logger    *zap.Logger
	templates *template.Template
	httpSrv   *http.Server
}

// NewServer creates the dashboard server.
func NewServer(cfg *config.Config, st *store.Store, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	coords, err := LoadCoordinates(cfg.CoordinatesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load coordinates: %w", err)
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		coords:    coords,
		logger:    logger,
		templates: tmpl,
	}

	s.httpSrv = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// routes builds the request mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /area/{postal}", s.handleAreaDetail)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /api/areas", s.handleAPIAreas)
	mux.HandleFunc("GET /api/salary-distribution", s.handleAPISalaryDistribution)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.logMiddleware(mux)
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// logMiddleware logs each request with its duration.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// templateFuncs are the helpers available in the HTML templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"sek":   formatSEK,
		"lower": strings.ToLower,
		"inc":   func(i int) int { return i + 1 },
	}
}

// formatSEK renders an amount with Swedish thousands grouping,
// e.g. 1055700 -> "1 055 700".
func formatSEK(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(' ')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
