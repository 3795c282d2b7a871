/*
income.go - Follower tier to recurring income sync

PURPOSE:
  Maps the current follower count onto the ordered income tier table and
  keeps the ledger's single SNS recurring-income rule in step with it.
  A tier change additionally raises a notification; the corrected rule
  is written either way.
*/
package social

import (
	"fmt"

	"github.com/warp/life-engine/state"
)

// CurrentIncomeTier returns the first tier whose upper bound covers the
// current follower count; the unbounded tier catches everything above.
func (e *Engine) CurrentIncomeTier() state.IncomeTier {
	for _, t := range e.s.IncomeTiers {
		if t.MaxFollowers != state.UnboundedTier && e.s.Followers <= t.MaxFollowers {
			return t
		}
	}
	// Fall through to the open-ended top tier (always last).
	return e.s.IncomeTiers[len(e.s.IncomeTiers)-1]
}

// GetCurrentIncomeRange returns the [min, max] monthly income for the
// current follower count.
func (e *Engine) GetCurrentIncomeRange() (min, max int64) {
	t := e.CurrentIncomeTier()
	return t.Min, t.Max
}

// UpdateSNSIncome syncs the SNS recurring-income rule to the current
// tier. Call after anything that moves the follower count.
func (e *Engine) UpdateSNSIncome() {
	tier := e.CurrentIncomeTier()
	e.funds.UpsertSNSIncome(tier.Min, tier.Max)

	if tier.MaxFollowers != e.s.LastTierMax {
		e.notify.Notify(fmt.Sprintf(
			"SNS income tier changed: %d followers now earn %d-%d monthly",
			e.s.Followers, tier.Min, tier.Max))
		e.s.LastTierMax = tier.MaxFollowers
	}
	e.save.Fire()
}
