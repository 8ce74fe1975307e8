// Package server exposes portfolio analytics over HTTP.
//
// Analytics are memoized by (symbol, fromMs, toMs, historyVersion). The
// version is bumped by SetDataset, which makes every previous entry stale.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/date"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Dataset is everything the analytics are computed from.
type Dataset struct {
	Transactions []cryptofolio.Transaction
	Transfers    []cryptofolio.Transfer
	Assets       []cryptofolio.PortfolioAsset
	// DepositBasisPrices gives the unit cost of deposits per symbol.
	DepositBasisPrices map[string]cryptofolio.Money
}

// memoKey identifies one computation. An empty symbol is the whole portfolio.
type memoKey struct {
	symbol       string
	fromMs, toMs int64
	version      uint64
}

// Server answers analytics requests over a Dataset.
type Server struct {
	log     zerolog.Logger
	now     func() time.Time
	metrics *metrics
	router  chi.Router

	mu         sync.RWMutex
	data       Dataset
	version    uint64
	assets     map[memoKey]cryptofolio.AssetAnalytics
	portfolios map[memoKey]cryptofolio.PortfolioAnalyticsSummary
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithClock sets the clock used for relative dates and DaysHeld.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a Server serving data.
func New(data Dataset, opts ...Option) *Server {
	s := &Server{
		log:     zerolog.Nop(),
		now:     time.Now,
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.SetDataset(data)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.health)
	r.Handle("/metrics", s.metrics.handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/portfolio", s.getPortfolio)
		r.Get("/assets/{symbol}", s.getAsset)
		r.Get("/assets/{symbol}/events", s.getEvents)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// SetDataset replaces the data and bumps the history version.
func (s *Server) SetDataset(data Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.version++
	s.assets = make(map[memoKey]cryptofolio.AssetAnalytics)
	s.portfolios = make(map[memoKey]cryptofolio.PortfolioAnalyticsSummary)
	s.metrics.historyVersion.Set(float64(s.version))
}

// Version returns the current history version.
func (s *Server) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// asset returns the memoized analytics of symbol over [fromMs, toMs].
func (s *Server) asset(symbol string, fromMs, toMs, nowMs int64) (cryptofolio.AssetAnalytics, bool) {
	symbol = cryptofolio.NormalizeSymbol(symbol)

	s.mu.RLock()
	key := memoKey{symbol: symbol, fromMs: fromMs, toMs: toMs, version: s.version}
	a, hit := s.assets[key]
	data := s.data
	s.mu.RUnlock()

	if hit {
		s.metrics.cacheHits.Inc()
		a.DaysHeld = cryptofolio.DaysHeld(a.FirstBuyDate, nowMs)
		return a, true
	}

	holding, ok := findAsset(data.Assets, symbol)
	if !ok {
		return cryptofolio.AssetAnalytics{}, false
	}
	s.metrics.cacheMisses.Inc()

	start := time.Now()
	opts := cryptofolio.AnalyticsOptions{
		Transfers: data.Transfers,
		FromMs:    fromMs,
		ToMs:      toMs,
		NowMs:     nowMs,
	}
	if price, ok := depositBasis(data.DepositBasisPrices, symbol); ok {
		opts.DepositBasisPrice = &price
	}
	a = cryptofolio.CalculateAssetAnalytics(holding, data.Transactions, opts)
	s.metrics.observeCompute("asset", start)

	s.store(func() { s.assets[key] = a }, key.version)
	return a, true
}

// portfolio returns the memoized portfolio summary over [fromMs, toMs].
func (s *Server) portfolio(fromMs, toMs, nowMs int64) cryptofolio.PortfolioAnalyticsSummary {
	s.mu.RLock()
	key := memoKey{fromMs: fromMs, toMs: toMs, version: s.version}
	summary, hit := s.portfolios[key]
	data := s.data
	s.mu.RUnlock()

	if hit {
		s.metrics.cacheHits.Inc()
		assets := make([]cryptofolio.AssetAnalytics, len(summary.Assets))
		for i, a := range summary.Assets {
			a.DaysHeld = cryptofolio.DaysHeld(a.FirstBuyDate, nowMs)
			assets[i] = a
		}
		summary.Assets = assets
		return summary
	}
	s.metrics.cacheMisses.Inc()

	start := time.Now()
	summary = cryptofolio.CalculatePortfolioAnalytics(data.Assets, data.Transactions, cryptofolio.PortfolioOptions{
		Transfers:          data.Transfers,
		FromMs:             fromMs,
		ToMs:               toMs,
		DepositBasisPrices: data.DepositBasisPrices,
		NowMs:              nowMs,
	})
	s.metrics.observeCompute("portfolio", start)

	s.store(func() { s.portfolios[key] = summary }, key.version)
	return summary
}

// store runs put under the write lock unless the dataset changed since
// version was read.
func (s *Server) store(put func(), version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == version {
		put()
	}
}

func findAsset(assets []cryptofolio.PortfolioAsset, symbol string) (cryptofolio.PortfolioAsset, bool) {
	for _, a := range assets {
		if cryptofolio.NormalizeSymbol(a.Symbol) == symbol {
			return a, true
		}
	}
	return cryptofolio.PortfolioAsset{}, false
}

func depositBasis(prices map[string]cryptofolio.Money, symbol string) (cryptofolio.Money, bool) {
	for s, p := range prices {
		if cryptofolio.NormalizeSymbol(s) == symbol {
			return p, true
		}
	}
	return cryptofolio.Money{}, false
}

// bounds reads the analytics range from the query: either "period" (month,
// quarter, ... to date) or "from" and "to" dates, each optional.
func bounds(r *http.Request, today date.Date) (fromMs, toMs int64, err error) {
	q := r.URL.Query()
	if p := q.Get("period"); p != "" {
		period, err := date.ParsePeriod(p)
		if err != nil {
			return 0, 0, err
		}
		fromMs, toMs = period.ToDate(today).Millis()
		return fromMs, toMs, nil
	}
	if v := q.Get("from"); v != "" {
		from, err := date.ParseFrom(v, today)
		if err != nil {
			return 0, 0, err
		}
		fromMs = from.Millis()
	}
	if v := q.Get("to"); v != "" {
		to, err := date.ParseFrom(v, today)
		if err != nil {
			return 0, 0, err
		}
		toMs = to.EndMillis()
	}
	if fromMs != 0 && toMs != 0 && fromMs > toMs {
		return 0, 0, fmt.Errorf("from is after to")
	}
	return fromMs, toMs, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"historyVersion": s.Version(),
	})
}

func (s *Server) getPortfolio(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	fromMs, toMs, err := bounds(r, date.FromMillis(now.UnixMilli()))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary := s.portfolio(fromMs, toMs, now.UnixMilli())
	if wantsMarkdown(r) {
		writeMarkdown(w, renderer.PortfolioMarkdown(summary))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	now := s.now()
	today := date.FromMillis(now.UnixMilli())
	fromMs, toMs, err := bounds(r, today)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, ok := s.asset(symbol, fromMs, toMs, now.UnixMilli())
	if !ok {
		writeError(w, fmt.Sprintf("asset %q not found", symbol), http.StatusNotFound)
		return
	}
	if wantsMarkdown(r) {
		writeMarkdown(w, renderer.AssetMarkdown(a, renderer.AssetOptions{Range: rangeLabel(fromMs, toMs)}))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	symbol := cryptofolio.NormalizeSymbol(chi.URLParam(r, "symbol"))
	fromMs, toMs, err := bounds(r, date.FromMillis(s.now().UnixMilli()))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	q := cryptofolio.EventQuery{
		Symbol:       symbol,
		Transactions: data.Transactions,
		Transfers:    data.Transfers,
		FromMs:       fromMs,
		ToMs:         toMs,
	}
	if holding, ok := findAsset(data.Assets, symbol); ok {
		q.DepositBasisPrice = holding.Price
	}
	if price, ok := depositBasis(data.DepositBasisPrices, symbol); ok {
		q.DepositBasisPrice = price
	}
	events := cryptofolio.BuildLedgerEvents(q)

	if wantsMarkdown(r) {
		writeMarkdown(w, renderer.EventsMarkdown(symbol, events))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// rangeLabel names the range column of the asset report.
func rangeLabel(fromMs, toMs int64) string {
	switch {
	case fromMs == 0 && toMs == 0:
		return ""
	case toMs == 0:
		return "Since " + date.FromMillis(fromMs).String()
	case fromMs == 0:
		return "Until " + date.FromMillis(toMs).String()
	default:
		return date.NewRange(date.FromMillis(fromMs), date.FromMillis(toMs)).Label()
	}
}

func wantsMarkdown(r *http.Request) bool {
	return r.URL.Query().Get("format") == "markdown"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMarkdown(w http.ResponseWriter, md string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
