package executors

import (
	"context"
	"fmt"

	"github.com/yurifrl/ynabsync/pkg/plan"
)

// Apply replays a plan through a backend. Operations are handed over in plan
// order: date corrections first, then creations.
func (e *Executor) Apply(ctx context.Context, p *plan.Plan, applier plan.Applier) (*plan.Outcome, error) {
	e.logger.Debug("applying plan", "account_id", p.AccountID, "operations", len(p.Operations))

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if p.Empty() {
		e.logger.Info("nothing to apply", "account", p.AccountName)
		return &plan.Outcome{}, nil
	}

	outcome, err := applier.Apply(ctx, p.Operations)
	if err != nil {
		return outcome, fmt.Errorf("failed to apply plan: %w", err)
	}

	e.logger.Info("applied plan", "account", p.AccountName, "updated", outcome.Updated, "created", outcome.Created, "skipped", outcome.Skipped)
	return outcome, nil
}
