/*
recurring.go - Once-per-day recurring rule advancement

PURPOSE:
  Applies every enabled recurring income/expense rule whose schedule
  matches the current in-fiction day. Guarded by lastProcessedDate so a
  day is never applied twice, no matter how many times the caller ticks.

SCHEDULING:
  A rule fires when its dayOfMonth equals today's day, OR when its
  dayOfMonth exceeds the month's length and today is the month's last
  day (end-of-month clamping: a rule on the 31st fires on Feb 28).

AMOUNTS:
  Fixed rules pay their fixed amount. Range rules draw uniformly from
  [min, max] and round to the nearest 10,000-unit multiple.
*/
package ledger

import "github.com/warp/life-engine/state"

// ProcessRecurring advances recurring rules for the current in-fiction
// day. Returns the number of transactions generated; calling it again on
// the same day generates none.
func (e *Engine) ProcessRecurring() int {
	today := e.clock.Today()
	if e.s.LastProcessedDate.Equal(today) {
		return 0
	}

	generated := 0
	for i := range e.s.RecurringIncome {
		if e.fireRule(&e.s.RecurringIncome[i], state.TxIncome) {
			generated++
		}
	}
	for i := range e.s.RecurringExpense {
		if e.fireRule(&e.s.RecurringExpense[i], state.TxExpense) {
			generated++
		}
	}
	for i := range e.s.ShopMode.ShopRecurringExpense {
		if e.fireRule(&e.s.ShopMode.ShopRecurringExpense[i], state.TxExpense) {
			generated++
		}
	}

	e.s.LastProcessedDate = today
	e.save.Fire()
	return generated
}

func (e *Engine) fireRule(rule *state.RecurringRule, txType state.TxType) bool {
	today := e.clock.Today()
	if !rule.Enabled {
		return false
	}
	due := rule.DayOfMonth == today.Day() ||
		(rule.DayOfMonth > today.DaysInMonth() && today.IsLastDayOfMonth())
	if !due {
		return false
	}

	amount := rule.FixedAmount
	if rule.Type == state.RuleRange {
		amount = roundToTenThousand(betweenInclusive(e, rule.MinAmount, rule.MaxAmount))
	}
	if amount <= 0 {
		return false
	}

	// SNS rules pay into the personal fund; only shop-sourced rules touch
	// the operating fund.
	source := state.SourcePersonal
	if rule.Source == state.SourceShop {
		source = state.SourceShop
	}

	tx := e.record(state.Transaction{
		Date:        today,
		Type:        txType,
		Source:      source,
		Category:    "recurring",
		Description: rule.Name,
		Amount:      amount,
		IsRecurring: true,
	})
	e.applyBalance(*tx, +1)
	return true
}

func betweenInclusive(e *Engine, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(e.rnd.IntN(int(max-min+1)))
}

// roundToTenThousand rounds to the nearest 10,000-unit multiple.
func roundToTenThousand(v int64) int64 {
	return (v + 5_000) / 10_000 * 10_000
}
