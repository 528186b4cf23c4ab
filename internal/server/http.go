package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/service"
)

const (
	maxBodyBytes    = 1 << 20
	preflightMaxAge = 3600
)

// Options configures the HTTP router
type Options struct {
	RateLimitPerMinute int // 0 disables rate limiting
}

// Handlers bundles the services exposed over HTTP
type Handlers struct {
	Filter      *service.FilterService
	Chat        *service.ChatService
	Diagnostics *service.DiagnosticsService
}

// NewRouter builds the chi router serving every endpoint
func NewRouter(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		MaxAge:             preflightMaxAge,
		OptionsPassthrough: true,
	}))
	if opts.RateLimitPerMinute > 0 {
		r.Use(httprate.Limit(opts.RateLimitPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(limitExceeded),
		))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if h.Filter != nil {
		filter := filterHandler(h.Filter)
		for _, path := range []string{"/filter_video", "/api/filter"} {
			r.Post(path, filter)
			r.Options(path, preflight(http.MethodPost))
		}
	}

	if h.Chat != nil {
		r.Post("/events/chat", chatEventHandler(h.Chat))
		r.Options("/events/chat", preflight(http.MethodPost))
		r.Get("/chats/{chatId}/messages", chatHistoryHandler(h.Chat))
	}

	if h.Diagnostics != nil {
		r.Get("/debug/evaluator", diagnosticsHandler(h.Diagnostics))
	}

	return r
}

// preflight answers CORS preflight requests the way the extension expects
func preflight(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", "*")
		headers.Set("Access-Control-Allow-Methods", methods)
		headers.Set("Access-Control-Allow-Headers", "Content-Type")
		headers.Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAge))
		w.WriteHeader(http.StatusNoContent)
	}
}

// limitExceeded keeps throttled responses in the filter envelope
func limitExceeded(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, service.FilterResponse{
		Decision: domain.DecisionKeep.String(),
		Error:    "Too many requests",
	})
}

func filterHandler(svc *service.FilterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			body = nil
		}
		status, resp := svc.HandleRaw(r.Context(), body)
		writeJSON(w, status, resp)
	}
}

func chatEventHandler(svc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err == nil {
			svc.HandleRaw(r.Context(), body)
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusNoContent)
	}
}

func chatHistoryHandler(svc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if val := r.URL.Query().Get("limit"); val != "" {
			parsed, err := strconv.Atoi(val)
			if err != nil || parsed < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
				return
			}
			limit = parsed
		}

		messages, err := svc.ListMessages(r.Context(), chi.URLParam(r, "chatId"), limit)
		if err != nil {
			log.Error().Err(err).Str("component", "http").Msg("Failed to list chat messages")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list messages"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	}
}

func diagnosticsHandler(svc *service.DiagnosticsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Run(r.Context()))
	}
}

// writeJSON writes v as JSON with the permissive CORS origin header
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("component", "http").Msg("Failed to encode response")
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response","decision":"keep"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	w.Write(data)
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("component", "http").
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// HTTPServer wraps http.Server with start/stop
type HTTPServer struct {
	server *http.Server
	logger zerolog.Logger
}

// NewHTTPServer creates a server listening on addr
func NewHTTPServer(addr string, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log.With().Str("component", "http").Logger(),
	}
}

// Start serves until Stop is called
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
