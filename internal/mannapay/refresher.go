package mannapay

import (
	"context"
	"time"

	"github.com/mannapay/mannapay/pkg/logger"
)

// BalanceRefresher runs a refresh function immediately and then on every tick
// until stopped.
type BalanceRefresher struct {
	logger   *logger.Logger
	interval time.Duration
	refresh  func(ctx context.Context) error

	cancel context.CancelFunc
	done   chan struct{}
}

func NewBalanceRefresher(interval time.Duration, refresh func(ctx context.Context) error, logger *logger.Logger) *BalanceRefresher {
	return &BalanceRefresher{
		logger:   logger.Named("refresher"),
		interval: interval,
		refresh:  refresh,
		done:     make(chan struct{}),
	}
}

func (r *BalanceRefresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.logger.Debugw("starting balance refresher", "interval", r.interval)
	go r.loop(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (r *BalanceRefresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
	r.logger.Debug("balance refresher stopped")
}

func (r *BalanceRefresher) loop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.run(ctx)
		}
	}
}

func (r *BalanceRefresher) run(ctx context.Context) {
	if err := r.refresh(ctx); err != nil && ctx.Err() == nil {
		r.logger.Warnw("balance refresh failed", "error", err)
	}
}
