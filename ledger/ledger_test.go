package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/ledger"
	"github.com/warp/life-engine/state"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestLedger binds an engine to a fresh subtree with a pinned date, a
// scripted Rand, and ids starting at 1.
func newTestLedger(t *testing.T, today string, rnd engine.Rand) (*ledger.Engine, *state.Ledger) {
	t.Helper()
	s := &state.Ledger{}
	var cs engine.ClockState
	clock := engine.NewClock(&cs, time.Now)
	d, err := engine.ParseDate(today)
	require.NoError(t, err)
	clock.SetDate(d, engine.SourceManual)
	if rnd == nil {
		rnd = &engine.FixedRand{}
	}
	e := ledger.New(s, clock, rnd, nil).WithSequence(engine.NewSequenceAt(1))
	return e, s
}

// =============================================================================
// BALANCE SYMMETRY
// =============================================================================

func TestLedger_AddThenDeleteTransaction_RestoresBalance(t *testing.T) {
	// GIVEN: a living balance
	// WHEN: an expense is recorded and then deleted
	// THEN: the balance is exactly where it started

	e, s := newTestLedger(t, "2025-03-10", nil)
	s.Living = 100_000

	tx, err := e.AddTransaction(ledger.TxInput{Type: state.TxExpense, Description: "커피", Amount: 30_000})
	require.NoError(t, err)
	assert.Equal(t, int64(70_000), s.Living)

	require.NoError(t, e.DeleteTransaction(tx.ID))
	assert.Equal(t, int64(100_000), s.Living)
}

func TestLedger_IncomeAndShopSourceRouting(t *testing.T) {
	e, s := newTestLedger(t, "2025-03-10", nil)
	s.ShopMode.Enabled = true

	_, err := e.AddTransaction(ledger.TxInput{Type: state.TxIncome, Description: "용돈", Amount: 50_000})
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), s.Living)

	_, err = e.AddTransaction(ledger.TxInput{Type: state.TxIncome, Source: state.SourceShop, Description: "매출", Amount: 20_000})
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), s.ShopMode.OperatingFund)
	assert.Equal(t, int64(50_000), s.Living, "shop income must not touch living")
}

func TestLedger_DeleteShopTransaction_RestoresOperatingFund(t *testing.T) {
	// GIVEN: shop mode with an operating fund
	// WHEN: shop income and a shop expense are recorded and then deleted
	// THEN: each delete reverses against the fund and living never moves

	e, s := newTestLedger(t, "2025-03-10", nil)
	s.ShopMode.Enabled = true
	s.ShopMode.OperatingFund = 100_000

	tx, err := e.AddTransaction(ledger.TxInput{Type: state.TxIncome, Source: state.SourceShop, Description: "매출", Amount: 20_000})
	require.NoError(t, err)
	assert.Equal(t, int64(120_000), s.ShopMode.OperatingFund)

	require.NoError(t, e.DeleteTransaction(tx.ID))
	assert.Equal(t, int64(100_000), s.ShopMode.OperatingFund)

	tx, err = e.AddTransaction(ledger.TxInput{Type: state.TxExpense, Source: state.SourceShop, Category: "재료", Description: "밀가루", Amount: 5_000})
	require.NoError(t, err)
	assert.Equal(t, int64(95_000), s.ShopMode.OperatingFund)

	require.NoError(t, e.DeleteTransaction(tx.ID))
	assert.Equal(t, int64(100_000), s.ShopMode.OperatingFund)
	assert.Zero(t, s.Living, "shop-sourced records never touch living")
}

func TestLedger_DeleteSkipTransaction_StillReverses(t *testing.T) {
	// GIVEN: a savings transfer, which adjusts balances directly and logs
	//        a skip-balance-update expense
	// WHEN: that logged transaction is deleted
	// THEN: deletion applies the inverse adjustment anyway - the delete
	//       path is symmetric regardless of how the record was created

	e, s := newTestLedger(t, "2025-03-10", nil)
	s.Living = 100_000
	g, err := e.AddGoal("여행", "✈️", 1_000_000)
	require.NoError(t, err)

	require.NoError(t, e.TransferToSavings(40_000, g.ID))
	assert.Equal(t, int64(60_000), s.Living)
	assert.Equal(t, int64(40_000), g.CurrentAmount)

	txID := s.Transactions[0].ID
	require.NoError(t, e.DeleteTransaction(txID))
	assert.Equal(t, int64(100_000), s.Living, "deleting the log reverses the expense")
	assert.Equal(t, int64(40_000), g.CurrentAmount, "the goal balance is not the delete's business")
}

func TestLedger_AddTransaction_RejectsBadInput(t *testing.T) {
	e, _ := newTestLedger(t, "2025-03-10", nil)

	_, err := e.AddTransaction(ledger.TxInput{Type: state.TxExpense, Amount: 0})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = e.AddTransaction(ledger.TxInput{Type: "loan", Amount: 100})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

// =============================================================================
// SAVINGS
// =============================================================================

func TestLedger_SavingsLifecycle(t *testing.T) {
	// GIVEN: 50,000,000 living and a goal
	// WHEN: depositing, withdrawing, and finally deleting the goal
	// THEN: every step conserves total funds

	e, s := newTestLedger(t, "2025-01-15", nil)
	s.Living = 50_000_000
	g, err := e.AddGoal("전세 보증금", "🏠", 100_000_000)
	require.NoError(t, err)

	require.NoError(t, e.TransferToSavings(10_000_000, g.ID))
	require.NoError(t, e.WithdrawFromSavings(2_000_000, g.ID))
	assert.Equal(t, int64(42_000_000), s.Living)
	assert.Equal(t, int64(8_000_000), g.CurrentAmount)

	require.NoError(t, e.DeleteGoal(g.ID))
	assert.Equal(t, int64(50_000_000), s.Living, "deleting a goal returns its funds")
	assert.Empty(t, s.Goals)
}

func TestLedger_TransferToSavings_ChecksSufficiency(t *testing.T) {
	e, s := newTestLedger(t, "2025-01-15", nil)
	s.Living = 10_000
	g, _ := e.AddGoal("소액", "", 100_000)

	err := e.TransferToSavings(20_000, g.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)

	var fundsErr *engine.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, int64(10_000), fundsErr.Available)
	assert.Equal(t, int64(20_000), fundsErr.Requested)
	assert.Equal(t, int64(10_000), s.Living, "failed transfer must not move funds")
}

func TestLedger_TransferToUnknownGoal_NotFound(t *testing.T) {
	e, s := newTestLedger(t, "2025-01-15", nil)
	s.Living = 100_000
	assert.ErrorIs(t, e.TransferToSavings(1_000, 999), engine.ErrNotFound)
	assert.ErrorIs(t, e.WithdrawFromSavings(1_000, 999), engine.ErrNotFound)
}

// =============================================================================
// RECURRING RULES
// =============================================================================

func TestLedger_ProcessRecurring_IdempotentPerDay(t *testing.T) {
	// GIVEN: an enabled fixed income rule due today
	// WHEN: processing twice on the same day
	// THEN: the rule fires exactly once

	e, s := newTestLedger(t, "2025-03-10", nil)
	_, err := e.AddRecurringIncome(state.RecurringRule{
		Name: "월급", Type: state.RuleFixed, FixedAmount: 2_000_000, DayOfMonth: 10, Enabled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, e.ProcessRecurring())
	assert.Equal(t, int64(2_000_000), s.Living)

	assert.Equal(t, 0, e.ProcessRecurring(), "same day must not fire twice")
	assert.Equal(t, int64(2_000_000), s.Living)
	assert.Len(t, s.Transactions, 1)
	assert.True(t, s.Transactions[0].IsRecurring)
}

func TestLedger_ProcessRecurring_EndOfMonthClamping(t *testing.T) {
	// GIVEN: a rule scheduled on the 31st
	// WHEN: February 28 arrives (a 28-day month)
	// THEN: the rule fires on the month's last day

	e, s := newTestLedger(t, "2025-02-28", nil)
	_, err := e.AddRecurringExpense(state.RecurringRule{
		Name: "월세", Type: state.RuleFixed, FixedAmount: 500_000, DayOfMonth: 31, Enabled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, e.ProcessRecurring())
	assert.Equal(t, int64(-500_000), s.Living, "recurring expenses may overdraw living")
}

func TestLedger_ProcessRecurring_SkipsDisabledAndOffSchedule(t *testing.T) {
	e, s := newTestLedger(t, "2025-03-10", nil)
	e.AddRecurringIncome(state.RecurringRule{Name: "off-day", Type: state.RuleFixed, FixedAmount: 1_000, DayOfMonth: 11, Enabled: true})
	r, _ := e.AddRecurringIncome(state.RecurringRule{Name: "disabled", Type: state.RuleFixed, FixedAmount: 1_000, DayOfMonth: 10, Enabled: true})
	require.NoError(t, e.SetRuleEnabled(r.ID, false))

	assert.Equal(t, 0, e.ProcessRecurring())
	assert.Equal(t, int64(0), s.Living)
}

func TestLedger_RangeRule_RoundsToTenThousand(t *testing.T) {
	// GIVEN: a range rule [100,000, 300,000] and a scripted roll of 123,456
	// WHEN: the rule fires
	// THEN: the drawn amount rounds to the nearest 10,000 (223,456 -> 220,000)

	rnd := &engine.FixedRand{Ints: []int{123_456}}
	e, s := newTestLedger(t, "2025-03-25", rnd)
	_, err := e.AddRecurringIncome(state.RecurringRule{
		Name: "협찬", Type: state.RuleRange, MinAmount: 100_000, MaxAmount: 300_000, DayOfMonth: 25, Enabled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, e.ProcessRecurring())
	assert.Equal(t, int64(220_000), s.Living)
}

func TestLedger_SNSRule_LockedAgainstDeletion(t *testing.T) {
	// GIVEN: the engine-owned SNS income rule
	// WHEN: a user tries to delete it / toggle it
	// THEN: deletion is locked, toggling is allowed

	e, s := newTestLedger(t, "2025-03-10", nil)
	e.UpsertSNSIncome(100_000, 300_000)
	require.Len(t, s.RecurringIncome, 1)
	rule := s.RecurringIncome[0]
	assert.Equal(t, state.SourceSNS, rule.Source)
	assert.Equal(t, 25, rule.DayOfMonth)

	assert.ErrorIs(t, e.DeleteRecurringIncome(rule.ID), engine.ErrLockedField)
	assert.NoError(t, e.SetRuleEnabled(rule.ID, false))
	assert.False(t, s.RecurringIncome[0].Enabled)
}

func TestLedger_UpsertSNSIncome_SingleRule(t *testing.T) {
	e, s := newTestLedger(t, "2025-03-10", nil)
	e.UpsertSNSIncome(100_000, 300_000)
	e.UpsertSNSIncome(300_000, 1_000_000)

	require.Len(t, s.RecurringIncome, 1, "upsert must never duplicate the SNS rule")
	assert.Equal(t, int64(300_000), s.RecurringIncome[0].MinAmount)
	assert.Equal(t, int64(1_000_000), s.RecurringIncome[0].MaxAmount)
	assert.True(t, s.RecurringIncome[0].Enabled)
}

func TestLedger_SNSRule_PaysPersonalFund(t *testing.T) {
	rnd := &engine.FixedRand{Ints: []int{0}}
	e, s := newTestLedger(t, "2025-03-25", rnd)
	s.ShopMode.Enabled = true
	e.UpsertSNSIncome(100_000, 300_000)

	assert.Equal(t, 1, e.ProcessRecurring())
	assert.Equal(t, int64(100_000), s.Living, "SNS income goes to living even with shop mode on")
	assert.Equal(t, int64(0), s.ShopMode.OperatingFund)
}

// =============================================================================
// SHOP MODE
// =============================================================================

func TestLedger_ToggleShopMode_MovesFunds(t *testing.T) {
	// GIVEN: 1,000,000 living
	// WHEN: enabling shop mode with a 300,000 operating fund, then disabling
	// THEN: funds round-trip through the operating fund

	e, s := newTestLedger(t, "2025-03-10", nil)
	s.Living = 1_000_000

	require.NoError(t, e.ToggleShopMode(true, 300_000))
	assert.Equal(t, int64(700_000), s.Living)
	assert.Equal(t, int64(300_000), s.ShopMode.OperatingFund)
	assert.True(t, e.ShopModeEnabled())

	require.NoError(t, e.ToggleShopMode(false, 0))
	assert.Equal(t, int64(1_000_000), s.Living)
	assert.Equal(t, int64(0), s.ShopMode.OperatingFund)
	assert.False(t, e.ShopModeEnabled())
}

func TestLedger_ToggleShopMode_InsufficientSeed(t *testing.T) {
	e, s := newTestLedger(t, "2025-03-10", nil)
	s.Living = 100_000
	assert.ErrorIs(t, e.ToggleShopMode(true, 200_000), engine.ErrInsufficientFunds)
	assert.False(t, s.ShopMode.Enabled)
}

func TestLedger_ShopTransfers(t *testing.T) {
	e, s := newTestLedger(t, "2025-03-10", nil)
	s.Living = 1_000_000
	require.NoError(t, e.ToggleShopMode(true, 500_000))
	g, _ := e.AddGoal("장비", "", 2_000_000)

	require.NoError(t, e.TransferPersonalToShop(100_000))
	assert.Equal(t, int64(600_000), s.ShopMode.OperatingFund)

	require.NoError(t, e.TransferShopToPersonal(200_000, true, g.ID))
	assert.Equal(t, int64(400_000), s.ShopMode.OperatingFund)
	assert.Equal(t, int64(200_000), g.CurrentAmount)
	assert.Equal(t, int64(400_000), s.Living)

	assert.ErrorIs(t, e.TransferShopToPersonal(999_999, false, 0), engine.ErrInsufficientFunds)
}

func TestLedger_WageAccrualAndPayment(t *testing.T) {
	// GIVEN: shop mode with an operating fund and an accrued wage
	// WHEN: paying the wage
	// THEN: the fund drops, the wage list empties, and an expense is logged

	e, s := newTestLedger(t, "2025-03-10", nil)
	s.Living = 1_000_000
	require.NoError(t, e.ToggleShopMode(true, 500_000))

	w, err := e.AddUnpaidWage("수진", 50_000, "주말 근무")
	require.NoError(t, err)

	require.NoError(t, e.PayWage(w.ID))
	assert.Equal(t, int64(450_000), s.ShopMode.OperatingFund)
	assert.Empty(t, s.ShopMode.UnpaidWages)
	assert.Equal(t, "wages", s.Transactions[0].Category)

	assert.ErrorIs(t, e.PayWage(w.ID), engine.ErrNotFound)
}

func TestLedger_PayWage_InsufficientOperatingFund(t *testing.T) {
	e, s := newTestLedger(t, "2025-03-10", nil)
	s.ShopMode.Enabled = true
	w, _ := e.AddUnpaidWage("수진", 50_000, "")

	err := e.PayWage(w.ID)
	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)
	assert.Len(t, s.ShopMode.UnpaidWages, 1, "unpaid wage survives a failed payment")
}

// =============================================================================
// MONTH SUMMARY
// =============================================================================

func TestLedger_MonthSummary_FiltersByMonthAndSource(t *testing.T) {
	e, _ := newTestLedger(t, "2025-03-10", nil)
	e.AddTransaction(ledger.TxInput{Type: state.TxIncome, Description: "용돈", Amount: 100_000})
	e.AddTransaction(ledger.TxInput{Type: state.TxExpense, Category: "식비", Description: "장보기", Amount: 30_000})
	e.AddTransaction(ledger.TxInput{Type: state.TxExpense, Category: "식비", Description: "외식", Amount: 20_000})
	e.AddTransaction(ledger.TxInput{
		Date: engine.NewDate(2025, time.February, 5), Type: state.TxExpense, Category: "월세", Description: "2월 월세", Amount: 500_000,
	})
	e.AddTransaction(ledger.TxInput{Type: state.TxIncome, Source: state.SourceShop, Description: "매출", Amount: 77_000})

	sum := e.MonthSummaryFor("2025-03", state.SourcePersonal)
	assert.Equal(t, int64(100_000), sum.Income)
	assert.Equal(t, int64(50_000), sum.Expense)
	assert.Equal(t, int64(50_000), sum.Net)
	assert.Equal(t, int64(50_000), sum.ByCategory["식비"])
	assert.Equal(t, 3, sum.Transactions)

	shopSum := e.MonthSummaryFor("2025-03", state.SourceShop)
	assert.Equal(t, int64(77_000), shopSum.Income)

	feb := e.MonthSummaryFor("2025-02", state.SourcePersonal)
	assert.Equal(t, int64(500_000), feb.Expense)
}
