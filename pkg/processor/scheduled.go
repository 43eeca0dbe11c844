// Package processor runs due scheduled withdrawals in batches.
package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/service"
)

// ScheduledProcessor polls due withdrawals and executes each one in its own
// independent transaction. A failure on one item never blocks the rest; the
// account row lock plus the done-flag check inside ProcessScheduled make
// concurrent or duplicated invocations safe.
type ScheduledProcessor struct {
	svc    *service.WithdrawalService
	clock  domain.Clock
	limit  int
	logger *slog.Logger
}

// NewScheduledProcessor builds a processor with the given batch size cap.
func NewScheduledProcessor(
	svc *service.WithdrawalService,
	clock domain.Clock,
	limit int,
	logger *slog.Logger,
) *ScheduledProcessor {
	return &ScheduledProcessor{svc: svc, clock: clock, limit: limit, logger: logger}
}

// Run executes one polling pass and returns the number of withdrawals
// processed. Item-level errors are logged and skipped; only the due-query
// itself can fail the pass.
func (p *ScheduledProcessor) Run(ctx context.Context) (int, error) {
	now := p.clock.Now()
	due, err := p.svc.FindDueScheduled(ctx, now, p.limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, w := range due {
		result, err := p.svc.ProcessScheduled(ctx, w.ID)
		if err != nil {
			p.logger.Error("scheduled withdraw failed, skipping",
				"withdraw_id", w.ID, "error", err)
			continue
		}
		processed++
		if result == nil {
			continue
		}

		outcome := "success"
		if result.Error {
			outcome = "failed"
		}
		p.logger.Info("scheduled withdraw processed",
			"withdraw_id", result.ID,
			"account_id", result.AccountID,
			"amount_cents", result.Amount.Cents(),
			"outcome", outcome,
			"error_reason", result.ErrorReason,
		)
	}
	return processed, nil
}

// Start runs polling passes on a fixed interval until ctx is cancelled.
func (p *ScheduledProcessor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		p.logger.Info("scheduled withdrawal processor started", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("scheduled withdrawal processor stopped")
				return
			case <-ticker.C:
				if _, err := p.Run(ctx); err != nil {
					p.logger.Error("scheduled withdrawal pass failed", "error", err)
				}
			}
		}
	}()
}
