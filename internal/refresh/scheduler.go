// Package refresh drives the quote-refresh cycle for the currently selected
// user: one immediate cycle when the portfolio loads, then a fixed-interval
// tick until the selection changes or the scheduler is stopped.
package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/cache"
	"github.com/example/portfolio-dashboard/internal/models"
	"github.com/example/portfolio-dashboard/internal/portfolio"
	"github.com/example/portfolio-dashboard/internal/quote"
	"github.com/example/portfolio-dashboard/internal/valuation"
)

const defaultInterval = 30 * time.Second

// Scheduler has two states: idle (no user selected, no snapshot) and polling
// (portfolio loaded, ticker armed). Selecting a user cancels any previous run
// before starting a new one; a canceled run may finish its in-flight fetches
// but its results are discarded, so a slow response for the previous user can
// never overwrite the new user's snapshot.
type Scheduler struct {
	portfolios portfolio.Source
	quotes     quote.Source
	interval   time.Duration
	logger     *zap.Logger

	// lifecycle serializes Select and Stop; wg.Add and wg.Wait only ever
	// happen under it.
	lifecycle sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	userID string

	snapshots *cache.MapCache[string, models.PortfolioSnapshot]
	wg        sync.WaitGroup
	now       func() time.Time
}

func New(portfolios portfolio.Source, quotes quote.Source, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		portfolios: portfolios,
		quotes:     quotes,
		interval:   interval,
		logger:     logger,
		snapshots:  cache.NewMapCache[string, models.PortfolioSnapshot](),
		now:        time.Now,
	}
}

// Select switches the scheduler to userID: cancels the previous run, clears
// its snapshot, and starts a fresh fetch-and-poll loop.
func (s *Scheduler) Select(userID string) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.userID = userID
	s.snapshots.Clear()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx, userID)
}

// Stop tears the scheduler down to idle and waits for the worker to exit.
// No further fetches happen after Stop returns.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.userID = ""
	s.snapshots.Clear()
	s.mu.Unlock()
	s.wg.Wait()
}

// Snapshot returns the latest snapshot for the selected user. ok is false
// while idle or while the first cycle is still in flight.
func (s *Scheduler) Snapshot() (models.PortfolioSnapshot, bool) {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return models.PortfolioSnapshot{}, false
	}
	return s.snapshots.Get(userID)
}

func (s *Scheduler) run(ctx context.Context, userID string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// A failed portfolio load is retried on the refresh cadence rather than
	// leaving the selection permanently snapshot-less.
	var p models.Portfolio
	for {
		var err error
		p, err = s.portfolios.GetPortfolio(ctx, userID)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("portfolio fetch failed", zap.String("userid", userID), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	// The snapshot is keyed by the selected id, whatever the backend echoed.
	p.UserID = userID

	s.cycle(ctx, p)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A cycle slower than the interval delays the next tick
			// rather than overlapping it: the ticker is only read
			// again once cycle returns, and it drops missed ticks.
			s.cycle(ctx, p)
		}
	}
}

// cycle runs one fetch-quotes-and-revaluate pass and publishes the result.
func (s *Scheduler) cycle(ctx context.Context, p models.Portfolio) {
	symbols := make([]string, 0, len(p.Holdings))
	for sym := range p.Holdings {
		symbols = append(symbols, sym)
	}

	prices := quote.FetchAll(ctx, s.quotes, symbols)

	snap := valuation.Valuate(p.Holdings, prices, p.BankBalance)
	snap.UserID = p.UserID
	snap.UserName = p.UserName
	snap.AsOf = s.now()
	s.publish(ctx, snap)
}

// publish stores the snapshot unless this run was canceled in the meantime.
func (s *Scheduler) publish(ctx context.Context, snap models.PortfolioSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.userID != snap.UserID {
		// Stale run: a newer selection owns the state now.
		return
	}
	s.snapshots.Set(snap.UserID, snap)
}
