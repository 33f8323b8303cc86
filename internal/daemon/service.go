// Package daemon provides the long-running ledger monitor and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"
	"github.com/noralyzer/noralyzer/internal/pipeline"
	"github.com/noralyzer/noralyzer/internal/store"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir      string
	Range        string
	Locale       config.Locale
	UseCache     bool
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	CacheSize    int
	CacheTTL     time.Duration
	Publisher    Publisher
}

// Summary is a compact ledger state for status and event payloads.
type Summary struct {
	At              time.Time       `json:"at"`
	Revision        uint64          `json:"revision"`
	Range           string          `json:"range"`
	Entries         int             `json:"entries"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Balance         decimal.Decimal `json:"balance"`
	Mixed           bool            `json:"mixed"`
	BudgetsExceeded int             `json:"budgets_exceeded"`
	GoalsReached    int             `json:"goals_reached"`
}

// Delta captures summary changes between polls.
type Delta struct {
	Entries         int             `json:"entries"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Balance         decimal.Decimal `json:"balance"`
	BudgetsExceeded int             `json:"budgets_exceeded"`
	GoalsReached    int             `json:"goals_reached"`
}

func (d Delta) isZero() bool {
	return d.Entries == 0 &&
		d.Income.IsZero() &&
		d.Expense.IsZero() &&
		d.Balance.IsZero() &&
		d.BudgetsExceeded == 0 &&
		d.GoalsReached == 0
}

// Event is emitted whenever the ledger summary changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Summary   Summary   `json:"summary"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time           `json:"started_at"`
	LastPollAt      time.Time           `json:"last_poll_at"`
	PollIntervalSec int                 `json:"poll_interval_sec"`
	PollCount       int64               `json:"poll_count"`
	DataDir         string              `json:"data_dir"`
	Locale          string              `json:"locale"`
	Summary         Summary             `json:"summary"`
	LastError       string              `json:"last_error,omitempty"`
	EventCount      int                 `json:"event_count"`
	SubscriberCount int                 `json:"subscriber_count"`
	Cache           pipeline.CacheStats `json:"cache"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	summary pipeline.ReportRequest
	reports *pipeline.ReportCache

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	snap        *pipeline.Snapshot
	current     Summary
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	// load is swapped in tests.
	load func() (*pipeline.Snapshot, error)
}

// New returns a daemon service. It fails only when cfg.Range is invalid.
func New(cfg Config) (*Service, error) {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Locale == "" {
		cfg.Locale = config.LocaleEnglish
	}
	if cfg.CacheSize < 1 {
		cfg.CacheSize = 64
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	req, err := pipeline.ParseReportRequest(cfg.Range, "", "")
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       cfg,
		summary:   req,
		reports:   pipeline.NewReportCache(cfg.CacheSize, cfg.CacheTTL),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.load = s.loadSnapshot
	return s, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/report", s.handleReport)
	mux.HandleFunc("/v1/chart-data", s.handleChartData)
	mux.HandleFunc("/v1/budgets", s.handleBudgets)
	mux.HandleFunc("/v1/goals", s.handleGoals)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Seed the first summary so status is useful immediately.
		s.pollOnce(gctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if s.cfg.Publisher != nil {
		if cerr := s.cfg.Publisher.Close(); cerr != nil {
			slog.Warn("closing event publisher", "error", cerr)
		}
	}
	return err
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	snap, err := s.load()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		slog.Error("daemon poll failed", "error", err)
		return
	}

	sum := s.summarize(snap, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.current
	prevExists := s.snap != nil

	s.snap = snap
	s.current = sum
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Summary:   sum,
		}
		publish = true
	} else if delta := diffSummaries(prev, sum); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "ledger_delta",
			Timestamp: now,
			Summary:   sum,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	slog.Debug("daemon poll",
		"revision", snap.Revision,
		"entries", len(snap.Entries),
		"duration", now.Sub(start))

	if publish {
		s.publishEvent(ctx, ev)
	}
}

func (s *Service) loadSnapshot() (*pipeline.Snapshot, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.DataDir, cache, nil)
			if loadErr == nil {
				return cr.Snapshot, nil
			}
			slog.Warn("cached load failed, parsing journals directly", "error", loadErr)
		} else {
			slog.Warn("opening journal cache", "error", err)
		}
	}

	result, err := pipeline.Load(s.cfg.DataDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Snapshot, nil
}

func (s *Service) summarize(snap *pipeline.Snapshot, now time.Time) Summary {
	r := s.reports.Report(snap, s.summary, now, s.cfg.Locale)
	sum := Summary{
		At:       now,
		Revision: snap.Revision,
		Range:    r.Range,
		Entries:  r.EntryCount,
		Income:   r.Income.Total,
		Expense:  r.Expense.Total,
		Balance:  r.Balance,
		Mixed:    r.Income.Mixed || r.Expense.Mixed,
	}
	for _, b := range pipeline.EvaluateBudgets(snap) {
		if b.Exceeded {
			sum.BudgetsExceeded++
		}
	}
	for _, g := range pipeline.EvaluateGoals(snap) {
		if g.Reached {
			sum.GoalsReached++
		}
	}
	return sum
}

func diffSummaries(prev, curr Summary) Delta {
	return Delta{
		Entries:         curr.Entries - prev.Entries,
		Income:          curr.Income.Sub(prev.Income),
		Expense:         curr.Expense.Sub(prev.Expense),
		Balance:         curr.Balance.Sub(prev.Balance),
		BudgetsExceeded: curr.BudgetsExceeded - prev.BudgetsExceeded,
		GoalsReached:    curr.GoalsReached - prev.GoalsReached,
	}
}

func (s *Service) publishEvent(ctx context.Context, ev Event) {
	s.mu.Lock()
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

	if s.cfg.Publisher != nil {
		if err := s.cfg.Publisher.Publish(ctx, ev); err != nil {
			slog.Warn("publishing event", "id", ev.ID, "type", ev.Type, "error", err)
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Locale:          string(s.cfg.Locale),
		Summary:         s.current,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		Cache:           s.reports.Stats(),
	}
}

func (s *Service) snapshot() *pipeline.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	req, err := pipeline.ParseReportRequest(q.Get("range"), q.Get("start"), q.Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.reports.Report(snap, req, time.Now(), s.cfg.Locale))
}

func (s *Service) handleChartData(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pipeline.ChartSummary(snap, time.Now()))
}

func (s *Service) handleBudgets(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}
	stats := pipeline.EvaluateBudgets(snap)
	if stats == nil {
		stats = []model.BudgetStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleGoals(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}
	stats := pipeline.EvaluateGoals(snap)
	if stats == nil {
		stats = []model.GoalStats{}
	}
	writeJSON(w, http.StatusOK, stats)
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

	// Send the current summary immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Summary:   s.snapshotStatus().Summary,
	})
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

// requireSnapshot answers 503 until the first successful poll.
func (s *Service) requireSnapshot(w http.ResponseWriter) (*pipeline.Snapshot, bool) {
	snap := s.snapshot()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "ledger not loaded yet"})
		return nil, false
	}
	return snap, true
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Field: ve.Field})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
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
