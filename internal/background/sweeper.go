package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/menubox/menubox/internal/repositories"
)

// PlanSweeper periodically transitions restaurants whose trial or paid
// period has lapsed to past_due, so the public menu gate and the admin
// dashboard see the current state without per-request date math.
type PlanSweeper struct {
	restaurantRepo *repositories.RestaurantRepository
	logger         *slog.Logger
	interval       time.Duration
	stopCh         chan struct{}
}

// NewPlanSweeper creates a new plan sweeper
func NewPlanSweeper(restaurantRepo *repositories.RestaurantRepository, logger *slog.Logger, interval time.Duration) *PlanSweeper {
	return &PlanSweeper{
		restaurantRepo: restaurantRepo,
		logger:         logger,
		interval:       interval,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (ps *PlanSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(ps.interval)
	defer ticker.Stop()

	// Run immediately on startup
	ps.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			ps.runSweep(ctx)
		case <-ps.stopCh:
			ps.logger.Info("plan sweeper stopped")
			return
		case <-ctx.Done():
			ps.logger.Info("plan sweeper context cancelled")
			return
		}
	}
}

func (ps *PlanSweeper) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	transitioned, err := ps.restaurantRepo.ExpireLapsedPlans(sweepCtx, time.Now())
	if err != nil {
		ps.logger.Error("failed to expire lapsed plans", slog.Any("error", err))
		return
	}

	if transitioned > 0 {
		ps.logger.Info("lapsed plans transitioned to past_due", slog.Int64("count", transitioned))
	}
}

// Stop signals the sweeper to stop
func (ps *PlanSweeper) Stop() {
	close(ps.stopCh)
}
