/*
summary.go - Monthly aggregation queries

PURPOSE:
  Read-side rollups of the transaction history by calendar month and
  fund source. Transactions carry ISO dates, so "this month" is a string
  prefix match on "YYYY-MM".
*/
package ledger

import (
	"strings"

	"github.com/warp/life-engine/state"
)

// MonthSummary aggregates one month of one fund source.
type MonthSummary struct {
	Month        string           // ISO "YYYY-MM"
	Income       int64            // total income
	Expense      int64            // total expense
	Net          int64            // income - expense
	ByCategory   map[string]int64 // expense histogram by category
	Transactions int              // matching transaction count
}

// CurrentMonthSummary aggregates the personal fund for the in-fiction
// current month.
func (e *Engine) CurrentMonthSummary() MonthSummary {
	return e.monthSummary(e.clock.Today().MonthPrefix(), state.SourcePersonal)
}

// ShopMonthSummary aggregates the shop fund for the current month.
func (e *Engine) ShopMonthSummary() MonthSummary {
	return e.monthSummary(e.clock.Today().MonthPrefix(), state.SourceShop)
}

// MonthSummaryFor aggregates an arbitrary ISO "YYYY-MM" month.
func (e *Engine) MonthSummaryFor(month string, source state.FundSource) MonthSummary {
	return e.monthSummary(month, source)
}

func (e *Engine) monthSummary(month string, source state.FundSource) MonthSummary {
	sum := MonthSummary{Month: month, ByCategory: make(map[string]int64)}
	for _, tx := range e.s.Transactions {
		if tx.Source != source || !strings.HasPrefix(tx.Date.String(), month) {
			continue
		}
		sum.Transactions++
		switch tx.Type {
		case state.TxIncome:
			sum.Income += tx.Amount
		case state.TxExpense:
			sum.Expense += tx.Amount
			category := tx.Category
			if category == "" {
				category = "uncategorized"
			}
			sum.ByCategory[category] += tx.Amount
		}
	}
	sum.Net = sum.Income - sum.Expense
	return sum
}
