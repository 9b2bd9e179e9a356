// Package autotask keeps the auto tasks current by reconciling on a timer.
package autotask

import (
	"context"
	"sync"
	"time"

	"github.com/xelth-com/brokerledger/internal/logger"
)

// Reconciler runs one reconciliation pass.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// Service orchestrates periodic reconciliation
type Service struct {
	reconciler Reconciler
	interval   time.Duration
	log        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewService creates the scheduler. A non-positive interval disables it.
func NewService(r Reconciler, interval time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		reconciler: r,
		interval:   interval,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start runs one pass immediately, then one per interval until Stop.
func (s *Service) Start() {
	if s.interval <= 0 {
		s.log.Info("auto task scheduler disabled")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info("auto task scheduler started", "interval", s.interval.String())

		s.runOnce()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.ctx.Done():
				s.log.Info("auto task scheduler stopped")
				return
			}
		}
	}()
}

// Stop halts the loop, cancelling a pass in flight, and waits for it to exit.
func (s *Service) Stop() {
	s.once.Do(s.cancel)
	s.wg.Wait()
}

func (s *Service) runOnce() {
	open, err := s.reconciler.Reconcile(s.ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.log.Warn("scheduled reconciliation failed", "open", open, "error", err)
		return
	}
	s.log.Debug("scheduled reconciliation", "open", open)
}
