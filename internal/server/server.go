// Package server provides the HTTP surface of orcalc: the server-rendered
// landing page, the JSON estimate API, consent, and lead intake.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/leads"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr          string
	CacheTTL      time.Duration
	LeadRateLimit int
	LeadWindow    time.Duration
	EventsBuffer  int
	// Defaults seeds the landing page form when the query is empty.
	Defaults calculator.Input
}

// Event is emitted whenever a lead is accepted. It carries the calculator
// summary only, never contact details.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Summary   leads.Summary `json:"summary"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Cache           string    `json:"cache"`
	Estimates       int64     `json:"estimates"`
	CacheHits       int64     `json:"cache_hits"`
	Leads           int64     `json:"leads"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service serves the landing page and API.
type Service struct {
	cfg     Config
	calc    *calculator.Calculator
	cache   Cache
	sink    leads.Sink
	logger  *slog.Logger
	limiter *RateLimiter

	mu          sync.RWMutex
	startedAt   time.Time
	estimates   int64
	cacheHits   int64
	leadCount   int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service. A nil calc uses the default parameters, a nil cache
// an in-memory one, and a nil logger discards output.
func New(cfg Config, calc *calculator.Calculator, cache Cache, sink leads.Sink, logger *slog.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.LeadRateLimit < 1 {
		cfg.LeadRateLimit = 5
	}
	if cfg.LeadWindow <= 0 {
		cfg.LeadWindow = time.Hour
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Defaults.ShiftCount == 0 {
		cfg.Defaults.ShiftCount = calculator.DefaultShiftCount
	}
	if calc == nil {
		calc = calculator.New(calculator.DefaultParams())
	}
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	if sink == nil {
		sink = leads.MultiSink{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		cfg:       cfg,
		calc:      calc,
		cache:     cache,
		sink:      sink,
		logger:    logger,
		limiter:   NewRateLimiter(cfg.LeadRateLimit, cfg.LeadWindow),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler builds the router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	// The event stream is long-lived and must not sit behind the timeout or
	// compressor.
	r.Get("/v1/stream", s.handleStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", s.handleLanding)
		r.Post("/consent", s.handleConsent)
		r.With(RateLimit(s.limiter)).Post("/contact", s.handleContactForm)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/estimate", s.handleEstimateQuery)
			r.Post("/estimate", s.handleEstimateJSON)
			r.Get("/production", s.handleProduction)
			r.Get("/timeline", s.handleTimeline)
			r.Get("/status", s.handleStatus)
			r.Get("/events", s.handleEvents)
			r.With(RateLimit(s.limiter)).Post("/leads", s.handleLeadJSON)
		})
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("listening", "addr", s.cfg.Addr, "cache", s.cache.Name())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Close releases background resources when Run is not used.
func (s *Service) Close() {
	s.limiter.Stop()
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Cache:           s.cache.Name(),
		Estimates:       s.estimates,
		CacheHits:       s.cacheHits,
		Leads:           s.leadCount,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

type errorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Invalid []string `json:"invalid,omitempty"`
	Focus   string   `json:"focus,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
