// Package http exposes an htmlstate.Converter over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/htmlstate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server defaults.
const (
	DefaultMaxBodyBytes    = 2 << 20
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// ConvertPath is the conversion endpoint.
const ConvertPath = "/api/convert"

// Server serves the conversion endpoint, a usage page and a health check.
type Server struct {
	converter       htmlstate.Converter
	logger          *slog.Logger
	maxBodyBytes    int64
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
	limiter         *rate.Limiter

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request failures. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes caps the size of a conversion request body.
// Defaults to DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithRequestTimeout sets the per-request timeout.
// Defaults to DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithRateLimit limits conversions to rps requests per second with the
// given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewServer creates a new Server around conv.
func NewServer(conv htmlstate.Converter, opts ...Option) *Server {
	s := &Server{
		converter:       conv,
		logger:          slog.New(slog.DiscardHandler),
		maxBodyBytes:    DefaultMaxBodyBytes,
		requestTimeout:  DefaultRequestTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.With(s.rateLimit).Post(ConvertPath, s.handleConvert)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := s.HTTPServer(addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// HTTPServer returns the http.Server ListenAndServe runs. Read and write
// timeouts leave room for the request timeout enforced by the router.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.requestTimeout,
		WriteTimeout:      s.requestTimeout + 5*time.Second,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Conversion-ID", id)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	out, err := s.converter.Convert(string(body))
	if err != nil {
		s.logger.Error("convert failed",
			"id", id,
			"request_id", middleware.GetReqID(r.Context()),
			"code", htmlstate.ErrorCode(err),
			"err", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: htmlstate.ErrorMessage(err)})
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64String(out))
	w.Header().Set("ETag", etag)
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexPage)
}

// rateLimit rejects requests above the configured rate with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too Many Requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// etagMatch reports whether an If-None-Match header matches etag.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

const indexPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>htmlstate</title></head>
<body>
<pre>POST your html in body to /api/convert</pre>
<p>Example:</p>
<pre>
curl --request POST \
  --url http://localhost:8080/api/convert \
  --header 'Content-Type: text/plain' \
  --data '&lt;p dir="ltr"&gt;Built for web producers, marketers and merchandisers. Read about &lt;a href="/what-is-visual-workspace"&gt;a visual workspace&lt;/a&gt;.&lt;/p&gt;'
</pre>
</body>
</html>
`
