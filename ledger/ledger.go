/*
Package ledger implements the cash side of the life economy.

PURPOSE:
  Owns the living fund, savings goals, recurring income/expense rules,
  the transaction history, and the shop-mode operating fund. Every
  currency movement in the system lands here as a Transaction.

CRITICAL INVARIANTS:
  1. BALANCE SYMMETRY: a transaction recorded without SkipBalanceUpdate
     is reflected exactly once in living/operatingFund at creation and
     reversed exactly once at deletion. delete(add(t)) is a no-op on
     balances.
  2. SKIP SEMANTICS: transfers mutate balances directly, then record a
     transaction flagged SkipBalanceUpdate so the amount is not applied
     twice.
  3. NO FLOOR: living is allowed to go negative. Transfers check
     sufficiency, recurring expenses do not - an overdrawn month is
     documented behavior, not a bug.
  4. SNS LOCK: the recurring-income rule tagged SourceSNS is owned by the
     social engine; user deletion/edit fails with ErrLockedField.

SEE ALSO:
  - recurring.go: once-per-day recurring rule processing
  - summary.go: monthly aggregation queries
*/
package ledger

import (
	"fmt"

	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine mutates the ledger subtree of one conversation.
type Engine struct {
	s     *state.Ledger
	clock *engine.Clock
	rnd   engine.Rand
	seq   *engine.Sequence
	save  engine.SaveFunc
}

// New binds an engine to a ledger subtree. The sequence is seeded from
// every id already present so ids stay unique across reloads.
func New(s *state.Ledger, clock *engine.Clock, rnd engine.Rand, save engine.SaveFunc) *Engine {
	var ids []int64
	for _, g := range s.Goals {
		ids = append(ids, g.ID)
	}
	for _, r := range s.RecurringIncome {
		ids = append(ids, r.ID)
	}
	for _, r := range s.RecurringExpense {
		ids = append(ids, r.ID)
	}
	for _, r := range s.ShopMode.ShopRecurringExpense {
		ids = append(ids, r.ID)
	}
	for _, t := range s.Transactions {
		ids = append(ids, t.ID)
	}
	for _, w := range s.ShopMode.UnpaidWages {
		ids = append(ids, w.ID)
	}
	return &Engine{s: s, clock: clock, rnd: rnd, seq: engine.NewSequence(ids...), save: save}
}

// WithSequence swaps in a deterministic sequence (tests).
func (e *Engine) WithSequence(seq *engine.Sequence) *Engine {
	e.seq = seq
	return e
}

// State exposes the bound subtree read-only by convention. The prompt
// composer and API read through it; mutations go through Engine methods.
func (e *Engine) State() *state.Ledger { return e.s }

// =============================================================================
// SAVINGS GOALS
// =============================================================================

// AddGoal creates a savings goal with a zero balance.
func (e *Engine) AddGoal(name, icon string, target int64) (*state.SavingsGoal, error) {
	if name == "" || target < 0 {
		return nil, fmt.Errorf("%w: goal needs a name and non-negative target", engine.ErrInvalidInput)
	}
	e.s.Goals = append(e.s.Goals, state.SavingsGoal{
		ID:           e.seq.Next(),
		Name:         name,
		Icon:         icon,
		TargetAmount: target,
	})
	e.save.Fire()
	return &e.s.Goals[len(e.s.Goals)-1], nil
}

// UpdateGoal edits name/icon/target. The saved balance only moves via
// transfers, withdrawals, or deletion.
func (e *Engine) UpdateGoal(id int64, name, icon string, target int64) error {
	g := e.goal(id)
	if g == nil {
		return &engine.NotFoundError{Kind: "goal", ID: id}
	}
	if name != "" {
		g.Name = name
	}
	if icon != "" {
		g.Icon = icon
	}
	if target > 0 {
		g.TargetAmount = target
	}
	e.save.Fire()
	return nil
}

// DeleteGoal removes a goal; any saved funds return to living.
func (e *Engine) DeleteGoal(id int64) error {
	for i, g := range e.s.Goals {
		if g.ID == id {
			e.s.Living += g.CurrentAmount
			e.s.Goals = append(e.s.Goals[:i], e.s.Goals[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "goal", ID: id}
}

// TransferToSavings moves funds living -> goal and records a
// skip-balance-update expense (the move already happened above).
func (e *Engine) TransferToSavings(amount, goalID int64) error {
	if amount <= 0 {
		return &engine.InsufficientFundsError{Balance: "living", Available: e.s.Living, Requested: amount}
	}
	g := e.goal(goalID)
	if g == nil {
		return &engine.NotFoundError{Kind: "goal", ID: goalID}
	}
	if e.s.Living < amount {
		return &engine.InsufficientFundsError{Balance: "living", Available: e.s.Living, Requested: amount}
	}
	e.s.Living -= amount
	g.CurrentAmount += amount
	e.record(state.Transaction{
		Type:              state.TxExpense,
		Source:            state.SourcePersonal,
		Category:          "savings",
		Description:       fmt.Sprintf("Transfer to %s", g.Name),
		Amount:            amount,
		SkipBalanceUpdate: true,
	})
	e.save.Fire()
	return nil
}

// WithdrawFromSavings moves funds goal -> living.
func (e *Engine) WithdrawFromSavings(amount, goalID int64) error {
	g := e.goal(goalID)
	if g == nil {
		return &engine.NotFoundError{Kind: "goal", ID: goalID}
	}
	if amount <= 0 || g.CurrentAmount < amount {
		return &engine.InsufficientFundsError{Balance: g.Name, Available: g.CurrentAmount, Requested: amount}
	}
	g.CurrentAmount -= amount
	e.s.Living += amount
	e.record(state.Transaction{
		Type:              state.TxIncome,
		Source:            state.SourcePersonal,
		Category:          "savings",
		Description:       fmt.Sprintf("Withdrawal from %s", g.Name),
		Amount:            amount,
		SkipBalanceUpdate: true,
	})
	e.save.Fire()
	return nil
}

func (e *Engine) goal(id int64) *state.SavingsGoal {
	for i := range e.s.Goals {
		if e.s.Goals[i].ID == id {
			return &e.s.Goals[i]
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TxInput carries caller-supplied transaction fields; id and date (when
// zero) are assigned by the engine.
type TxInput struct {
	Date              engine.Date
	Type              state.TxType
	Source            state.FundSource
	Category          string
	Description       string
	Amount            int64
	Memo              string
	IsRecurring       bool
	SkipBalanceUpdate bool
}

// AddTransaction records a transaction and - unless the balance was
// already adjusted by the caller - applies it to living/operatingFund.
func (e *Engine) AddTransaction(in TxInput) (*state.Transaction, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", engine.ErrInvalidInput)
	}
	if in.Type != state.TxIncome && in.Type != state.TxExpense {
		return nil, fmt.Errorf("%w: unknown transaction type %q", engine.ErrInvalidInput, in.Type)
	}
	if in.Source == "" {
		in.Source = state.SourcePersonal
	}
	tx := e.record(state.Transaction{
		Date:              in.Date,
		Type:              in.Type,
		Source:            in.Source,
		Category:          in.Category,
		Description:       in.Description,
		Amount:            in.Amount,
		Memo:              in.Memo,
		IsRecurring:       in.IsRecurring,
		SkipBalanceUpdate: in.SkipBalanceUpdate,
	})
	if !in.SkipBalanceUpdate {
		e.applyBalance(*tx, +1)
	}
	e.save.Fire()
	return tx, nil
}

// DeleteTransaction removes a transaction and applies the exact inverse
// balance adjustment, regardless of how it was originally created.
func (e *Engine) DeleteTransaction(id int64) error {
	for i, tx := range e.s.Transactions {
		if tx.ID == id {
			e.s.Transactions = append(e.s.Transactions[:i], e.s.Transactions[i+1:]...)
			e.applyBalance(tx, -1)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "transaction", ID: id}
}

// record assigns id/date and prepends (history is newest first).
func (e *Engine) record(tx state.Transaction) *state.Transaction {
	tx.ID = e.seq.Next()
	if tx.Date.IsZero() {
		tx.Date = e.clock.Today()
	}
	e.s.Transactions = append([]state.Transaction{tx}, e.s.Transactions...)
	return &e.s.Transactions[0]
}

// applyBalance applies (or with sign -1, reverses) a transaction's effect.
func (e *Engine) applyBalance(tx state.Transaction, sign int64) {
	delta := tx.Amount * sign
	if tx.Type == state.TxExpense {
		delta = -delta
	}
	if tx.Source == state.SourceShop {
		e.s.ShopMode.OperatingFund += delta
	} else {
		e.s.Living += delta
	}
}

// =============================================================================
// RECURRING RULE CRUD
// =============================================================================

// AddRecurringIncome adds a personal or shop recurring income rule.
func (e *Engine) AddRecurringIncome(rule state.RecurringRule) (*state.RecurringRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = e.seq.Next()
	e.s.RecurringIncome = append(e.s.RecurringIncome, rule)
	e.save.Fire()
	return &e.s.RecurringIncome[len(e.s.RecurringIncome)-1], nil
}

// AddRecurringExpense adds a recurring expense rule. Shop-sourced rules
// charge the operating fund and live under shopMode.
func (e *Engine) AddRecurringExpense(rule state.RecurringRule) (*state.RecurringRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = e.seq.Next()
	if rule.Source == state.SourceShop {
		e.s.ShopMode.ShopRecurringExpense = append(e.s.ShopMode.ShopRecurringExpense, rule)
		e.save.Fire()
		return &e.s.ShopMode.ShopRecurringExpense[len(e.s.ShopMode.ShopRecurringExpense)-1], nil
	}
	e.s.RecurringExpense = append(e.s.RecurringExpense, rule)
	e.save.Fire()
	return &e.s.RecurringExpense[len(e.s.RecurringExpense)-1], nil
}

// DeleteRecurringIncome removes a rule. SNS-sourced rules are owned by
// the social engine and locked.
func (e *Engine) DeleteRecurringIncome(id int64) error {
	for i, r := range e.s.RecurringIncome {
		if r.ID != id {
			continue
		}
		if r.Source == state.SourceSNS {
			return fmt.Errorf("%w: SNS income rule is managed automatically", engine.ErrLockedField)
		}
		e.s.RecurringIncome = append(e.s.RecurringIncome[:i], e.s.RecurringIncome[i+1:]...)
		e.save.Fire()
		return nil
	}
	return &engine.NotFoundError{Kind: "rule", ID: id}
}

// DeleteRecurringExpense removes an expense rule (personal or shop).
func (e *Engine) DeleteRecurringExpense(id int64) error {
	for i, r := range e.s.RecurringExpense {
		if r.ID == id {
			e.s.RecurringExpense = append(e.s.RecurringExpense[:i], e.s.RecurringExpense[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	for i, r := range e.s.ShopMode.ShopRecurringExpense {
		if r.ID == id {
			e.s.ShopMode.ShopRecurringExpense = append(e.s.ShopMode.ShopRecurringExpense[:i], e.s.ShopMode.ShopRecurringExpense[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "rule", ID: id}
}

// SetRuleEnabled flips a rule without otherwise editing it. Allowed for
// SNS rules too - pausing is not an edit of the synced range.
func (e *Engine) SetRuleEnabled(id int64, enabled bool) error {
	for _, rules := range [][]state.RecurringRule{e.s.RecurringIncome, e.s.RecurringExpense, e.s.ShopMode.ShopRecurringExpense} {
		for i := range rules {
			if rules[i].ID == id {
				rules[i].Enabled = enabled
				e.save.Fire()
				return nil
			}
		}
	}
	return &engine.NotFoundError{Kind: "rule", ID: id}
}

// UpsertSNSIncome creates or updates the single SNS-owned recurring
// income rule. Called by the social engine on tier sync; pays on the
// 25th, always enabled.
func (e *Engine) UpsertSNSIncome(min, max int64) {
	for i := range e.s.RecurringIncome {
		if e.s.RecurringIncome[i].Source == state.SourceSNS {
			e.s.RecurringIncome[i].Type = state.RuleRange
			e.s.RecurringIncome[i].MinAmount = min
			e.s.RecurringIncome[i].MaxAmount = max
			e.s.RecurringIncome[i].DayOfMonth = 25
			e.s.RecurringIncome[i].Enabled = true
			e.save.Fire()
			return
		}
	}
	e.s.RecurringIncome = append(e.s.RecurringIncome, state.RecurringRule{
		ID:         e.seq.Next(),
		Name:       "SNS sponsorship income",
		Type:       state.RuleRange,
		MinAmount:  min,
		MaxAmount:  max,
		DayOfMonth: 25,
		Source:     state.SourceSNS,
		Enabled:    true,
	})
	e.save.Fire()
}

func validateRule(rule state.RecurringRule) error {
	if rule.Name == "" {
		return fmt.Errorf("%w: rule needs a name", engine.ErrInvalidInput)
	}
	if rule.DayOfMonth < 1 || rule.DayOfMonth > 31 {
		return fmt.Errorf("%w: dayOfMonth must be 1-31", engine.ErrInvalidInput)
	}
	switch rule.Type {
	case state.RuleFixed:
		if rule.FixedAmount <= 0 {
			return fmt.Errorf("%w: fixed rule needs a positive amount", engine.ErrInvalidInput)
		}
	case state.RuleRange:
		if rule.MinAmount < 0 || rule.MaxAmount < rule.MinAmount {
			return fmt.Errorf("%w: range rule needs 0 <= min <= max", engine.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", engine.ErrInvalidInput, rule.Type)
	}
	return nil
}

// =============================================================================
// SHOP MODE - Operating fund, transfers, wages
// =============================================================================

// ShopModeEnabled reports whether the shop surface is active.
func (e *Engine) ShopModeEnabled() bool { return e.s.ShopMode.Enabled }

// ToggleShopMode enables/disables the shop. Enabling seeds the operating
// fund from living (sufficiency-checked); disabling returns the
// remaining fund to living.
func (e *Engine) ToggleShopMode(enabled bool, initialFund int64) error {
	if enabled == e.s.ShopMode.Enabled {
		return nil
	}
	if enabled {
		if initialFund < 0 {
			return fmt.Errorf("%w: initial fund cannot be negative", engine.ErrInvalidInput)
		}
		if e.s.Living < initialFund {
			return &engine.InsufficientFundsError{Balance: "living", Available: e.s.Living, Requested: initialFund}
		}
		e.s.Living -= initialFund
		e.s.ShopMode.Enabled = true
		e.s.ShopMode.OperatingFund += initialFund
	} else {
		e.s.Living += e.s.ShopMode.OperatingFund
		e.s.ShopMode.OperatingFund = 0
		e.s.ShopMode.Enabled = false
	}
	e.save.Fire()
	return nil
}

// TransferPersonalToShop moves living -> operating fund.
func (e *Engine) TransferPersonalToShop(amount int64) error {
	if amount <= 0 || e.s.Living < amount {
		return &engine.InsufficientFundsError{Balance: "living", Available: e.s.Living, Requested: amount}
	}
	e.s.Living -= amount
	e.s.ShopMode.OperatingFund += amount
	e.record(state.Transaction{
		Type:              state.TxExpense,
		Source:            state.SourcePersonal,
		Category:          "transfer",
		Description:       "Transfer to shop operating fund",
		Amount:            amount,
		SkipBalanceUpdate: true,
	})
	e.save.Fire()
	return nil
}

// TransferShopToPersonal moves operating fund -> living, or straight into
// a savings goal when toSavings is set.
func (e *Engine) TransferShopToPersonal(amount int64, toSavings bool, goalID int64) error {
	if amount <= 0 || e.s.ShopMode.OperatingFund < amount {
		return &engine.InsufficientFundsError{Balance: "operatingFund", Available: e.s.ShopMode.OperatingFund, Requested: amount}
	}
	var desc string
	if toSavings {
		g := e.goal(goalID)
		if g == nil {
			return &engine.NotFoundError{Kind: "goal", ID: goalID}
		}
		e.s.ShopMode.OperatingFund -= amount
		g.CurrentAmount += amount
		desc = fmt.Sprintf("Shop profit to %s", g.Name)
	} else {
		e.s.ShopMode.OperatingFund -= amount
		e.s.Living += amount
		desc = "Shop profit withdrawal"
	}
	e.record(state.Transaction{
		Type:              state.TxExpense,
		Source:            state.SourceShop,
		Category:          "transfer",
		Description:       desc,
		Amount:            amount,
		SkipBalanceUpdate: true,
	})
	e.save.Fire()
	return nil
}

// AddUnpaidWage accrues a wage owed to staff.
func (e *Engine) AddUnpaidWage(staffName string, amount int64, memo string) (*state.UnpaidWage, error) {
	if staffName == "" || amount <= 0 {
		return nil, fmt.Errorf("%w: wage needs a staff name and positive amount", engine.ErrInvalidInput)
	}
	e.s.ShopMode.UnpaidWages = append(e.s.ShopMode.UnpaidWages, state.UnpaidWage{
		ID:        e.seq.Next(),
		StaffName: staffName,
		Amount:    amount,
		Date:      e.clock.Today(),
		Memo:      memo,
	})
	e.save.Fire()
	return &e.s.ShopMode.UnpaidWages[len(e.s.ShopMode.UnpaidWages)-1], nil
}

// PayWage settles an accrued wage from the operating fund.
func (e *Engine) PayWage(id int64) error {
	for i, w := range e.s.ShopMode.UnpaidWages {
		if w.ID != id {
			continue
		}
		if e.s.ShopMode.OperatingFund < w.Amount {
			return &engine.InsufficientFundsError{Balance: "operatingFund", Available: e.s.ShopMode.OperatingFund, Requested: w.Amount}
		}
		e.s.ShopMode.UnpaidWages = append(e.s.ShopMode.UnpaidWages[:i], e.s.ShopMode.UnpaidWages[i+1:]...)
		tx := e.record(state.Transaction{
			Type:        state.TxExpense,
			Source:      state.SourceShop,
			Category:    "wages",
			Description: fmt.Sprintf("Wage paid to %s", w.StaffName),
			Amount:      w.Amount,
			Memo:        w.Memo,
		})
		e.applyBalance(*tx, +1)
		e.save.Fire()
		return nil
	}
	return &engine.NotFoundError{Kind: "wage", ID: id}
}

// RecordShopIncome and RecordShopExpense are the narrow surface the shop
// engine consumes when logging sales and shift wages.

func (e *Engine) RecordShopIncome(desc, category string, amount int64) error {
	_, err := e.AddTransaction(TxInput{Type: state.TxIncome, Source: state.SourceShop, Category: category, Description: desc, Amount: amount})
	return err
}

func (e *Engine) RecordShopExpense(desc, category string, amount int64) error {
	_, err := e.AddTransaction(TxInput{Type: state.TxExpense, Source: state.SourceShop, Category: category, Description: desc, Amount: amount})
	return err
}
