// Package scheduler runs the periodic billing maintenance jobs. The only
// job today is the overdue sweep, which moves pending billings past their
// due date into overdue.
package scheduler

import (
	"context"
	"errors"
	"time"

	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	"github.com/predialis/predialis/internal/clock"
	"github.com/predialis/predialis/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

const sweepBatchSize = 100

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	BillingSvc billingdomain.Service
	Billing    *config.BillingConfigHolder
	Clock      clock.Clock
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	billingSvc billingdomain.Service
	billing    *config.BillingConfigHolder
	clock      clock.Clock
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.BillingSvc == nil || p.Billing == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		billingSvc: p.BillingSvc,
		billing:    p.Billing,
		clock:      p.Clock,
	}, nil
}

// RunOnce sweeps pending billings whose due date has passed and marks
// them overdue through the billing state machine. A billing paid or
// cancelled between the select and the update is skipped, not failed.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()
	var jobErr error
	swept := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var candidates []billingdomain.Billing
		if err := s.db.WithContext(ctx).
			Raw(`
				SELECT id FROM billings
				WHERE status = ? AND due_date < ?
				ORDER BY due_date ASC
				LIMIT ?
			`, billingdomain.BillingPending, now, sweepBatchSize).
			Scan(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			break
		}

		batchSwept := 0
		for _, candidate := range candidates {
			if _, err := s.billingSvc.UpdateStatus(ctx, candidate.ID.String(), billingdomain.BillingOverdue); err != nil {
				if errors.Is(err, billingdomain.ErrInvalidTransition) || errors.Is(err, billingdomain.ErrNotFound) {
					continue
				}
				jobErr = errors.Join(jobErr, err)
				continue
			}
			batchSwept++
		}
		swept += batchSwept

		// A batch that made no progress would reselect the same rows.
		if batchSwept == 0 || len(candidates) < sweepBatchSize {
			break
		}
	}

	if swept > 0 {
		s.log.Info("overdue sweep finished",
			zap.Int("swept", swept),
			zap.Time("cutoff", now),
		)
	}
	return jobErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	policy := s.billing.Get().Overdue
	if !policy.Enabled {
		s.log.Info("overdue sweep disabled")
		return
	}

	ticker := time.NewTicker(policy.Interval())
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("overdue sweep failed", zap.Error(err))
		}

		// Pick up hot-reloaded interval changes between runs.
		if next := s.billing.Get().Overdue; next.Enabled {
			ticker.Reset(next.Interval())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
