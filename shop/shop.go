/*
Package shop runs the point-of-sale simulation.

PURPOSE:
  Menu, sales log, daily/monthly rollups, staff, shifts and wages. The
  whole surface is gated by the ledger's shop mode: while disabled every
  operation returns ErrShopModeDisabled and touches nothing.

MONEY FLOW:
  Sales record income against the shop operating fund; shift wages
  record expenses against it. Both go through the FundsLedger interface,
  never directly into ledger state.

SEE ALSO:
  - ledger/: operating fund, shop-mode flag, wage accrual
  - inventory/: product stock decremented per sale
*/
package shop

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// FundsLedger is the slice of the ledger engine the shop consumes.
type FundsLedger interface {
	ShopModeEnabled() bool
	RecordShopIncome(desc, category string, amount int64) error
	RecordShopExpense(desc, category string, amount int64) error
}

// ProductStock decrements sold products.
type ProductStock interface {
	ChangeQty(name string, change decimal.Decimal, reason, source string)
}

// DefaultProprietor operates sales when no staff member is on shift.
const DefaultProprietor = "사장님"

// =============================================================================
// ENGINE
// =============================================================================

// Engine mutates the shop subtree of one conversation.
type Engine struct {
	s          *state.Shop
	funds      FundsLedger
	stock      ProductStock
	clock      *engine.Clock
	seq        *engine.Sequence
	save       engine.SaveFunc
	proprietor string
}

// New binds an engine to a shop subtree and its collaborators.
// proprietor may be empty; the default name is used.
func New(s *state.Shop, funds FundsLedger, stock ProductStock, clock *engine.Clock, save engine.SaveFunc, proprietor string) *Engine {
	if proprietor == "" {
		proprietor = DefaultProprietor
	}
	var ids []int64
	for _, m := range s.Menu {
		ids = append(ids, m.ID)
	}
	for _, sale := range s.Sales {
		ids = append(ids, sale.ID)
	}
	for _, st := range s.Staff {
		ids = append(ids, st.ID)
	}
	for _, sh := range s.Shifts {
		ids = append(ids, sh.ID)
	}
	return &Engine{s: s, funds: funds, stock: stock, clock: clock, seq: engine.NewSequence(ids...), save: save, proprietor: proprietor}
}

// WithSequence swaps in a deterministic sequence (tests).
func (e *Engine) WithSequence(seq *engine.Sequence) *Engine {
	e.seq = seq
	return e
}

// State exposes the bound subtree for read-side consumers.
func (e *Engine) State() *state.Shop { return e.s }

func (e *Engine) gate() error {
	if !e.funds.ShopModeEnabled() {
		return engine.ErrShopModeDisabled
	}
	return nil
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

// ToggleShopStatus flips open/closed. Closing finalizes the day's sales
// into the daily summary and the rolling monthly report.
func (e *Engine) ToggleShopStatus() error {
	if err := e.gate(); err != nil {
		return err
	}
	if e.s.IsOpen {
		e.finalizeDailySales()
	}
	e.s.IsOpen = !e.s.IsOpen
	e.save.Fire()
	return nil
}

// finalizeDailySales snapshots today's sales and folds them into the
// current month's report.
func (e *Engine) finalizeDailySales() {
	today := e.clock.Today()

	summary := state.DailySummary{Date: today}
	itemCounts := make(map[string]int64)
	for _, sale := range e.s.Sales {
		if !sale.Date.Equal(today) {
			continue
		}
		summary.Revenue += sale.TotalPrice
		summary.ItemCount += sale.Quantity
		summary.SaleCount++
		itemCounts[sale.MenuName] += sale.Quantity
	}
	summary.TopSeller = topSeller(itemCounts)
	e.s.DailySummary = &summary
	e.foldMonth(today.MonthPrefix())
}

// foldMonth rebuilds the month's rolling report from the sales log.
// Recomputing keeps a same-day reopen and close from double counting.
func (e *Engine) foldMonth(month string) {
	report := e.monthlyReport(month)
	*report = state.MonthlyReport{Month: month, ItemTotals: make(map[string]int64)}
	for _, sale := range e.s.Sales {
		if sale.Date.MonthPrefix() != month {
			continue
		}
		report.Revenue += sale.TotalPrice
		report.ItemCount += sale.Quantity
		report.SaleCount++
		report.ItemTotals[sale.MenuName] += sale.Quantity
	}
	report.TopSeller = topSeller(report.ItemTotals)
}

// monthlyReport returns the rolling report for an ISO month, creating it
// on the month's first sale.
func (e *Engine) monthlyReport(month string) *state.MonthlyReport {
	for i := range e.s.MonthlyReports {
		if e.s.MonthlyReports[i].Month == month {
			return &e.s.MonthlyReports[i]
		}
	}
	e.s.MonthlyReports = append(e.s.MonthlyReports, state.MonthlyReport{
		Month:      month,
		ItemTotals: make(map[string]int64),
	})
	return &e.s.MonthlyReports[len(e.s.MonthlyReports)-1]
}

func topSeller(counts map[string]int64) string {
	var name string
	var best int64
	for n, c := range counts {
		if c > best || (c == best && (name == "" || n < name)) {
			name, best = n, c
		}
	}
	return name
}

// =============================================================================
// SALES
// =============================================================================

// SaleInput carries caller-supplied sale fields. Operator may be empty;
// today's scheduled staff member (or the proprietor) is resolved.
type SaleInput struct {
	MenuName  string
	Quantity  int64
	UnitPrice int64
	Time      string
	Operator  string
}

// AddSale logs a sale, decrements product stock, and records shop
// income. The month's rolling report is created on the month's first
// sale; folding happens when the shop closes.
func (e *Engine) AddSale(in SaleInput) (*state.Sale, error) {
	if err := e.gate(); err != nil {
		return nil, err
	}
	if in.MenuName == "" || in.Quantity <= 0 || in.UnitPrice <= 0 {
		return nil, fmt.Errorf("%w: sale needs a menu name, positive quantity and positive price", engine.ErrInvalidInput)
	}
	today := e.clock.Today()

	operator := in.Operator
	if operator == "" {
		operator = e.operatorOn(today)
	}

	sale := state.Sale{
		ID:         e.seq.Next(),
		MenuName:   in.MenuName,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		TotalPrice: in.UnitPrice * in.Quantity,
		Date:       today,
		Time:       in.Time,
		Operator:   operator,
	}

	// Income first: a ledger refusal must leave the sale log, stock and
	// reports untouched.
	if err := e.funds.RecordShopIncome(fmt.Sprintf("%s ×%d", in.MenuName, in.Quantity), "sales", sale.TotalPrice); err != nil {
		return nil, err
	}

	e.s.Sales = append([]state.Sale{sale}, e.s.Sales...)
	e.stock.ChangeQty(in.MenuName, decimal.NewFromInt(in.Quantity).Neg(), fmt.Sprintf("sold ×%d", in.Quantity), "shop")
	e.monthlyReport(today.MonthPrefix())

	e.save.Fire()
	return &e.s.Sales[0], nil
}

// operatorOn resolves who rang up a sale: a staff member with a
// scheduled shift that day, else the proprietor.
func (e *Engine) operatorOn(day engine.Date) string {
	for _, sh := range e.s.Shifts {
		if sh.Status == state.ShiftScheduled && sh.Date.Equal(day) {
			return sh.StaffName
		}
	}
	return e.proprietor
}

// =============================================================================
// MENU CRUD
// =============================================================================

// AddMenuItem registers a sellable item.
func (e *Engine) AddMenuItem(name string, price, costPrice int64, icon string) (*state.MenuItem, error) {
	if err := e.gate(); err != nil {
		return nil, err
	}
	if name == "" || price < 0 || costPrice < 0 {
		return nil, fmt.Errorf("%w: menu item needs a name and non-negative prices", engine.ErrInvalidInput)
	}
	e.s.Menu = append(e.s.Menu, state.MenuItem{
		ID: e.seq.Next(), Name: name, Price: price, CostPrice: costPrice, Icon: icon, Available: true,
	})
	e.save.Fire()
	return &e.s.Menu[len(e.s.Menu)-1], nil
}

// UpdateMenuItem edits prices/availability.
func (e *Engine) UpdateMenuItem(id int64, price, costPrice int64, available bool) error {
	if err := e.gate(); err != nil {
		return err
	}
	for i := range e.s.Menu {
		if e.s.Menu[i].ID == id {
			if price >= 0 {
				e.s.Menu[i].Price = price
			}
			if costPrice >= 0 {
				e.s.Menu[i].CostPrice = costPrice
			}
			e.s.Menu[i].Available = available
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "menu item", ID: id}
}

// DeleteMenuItem removes a menu entry.
func (e *Engine) DeleteMenuItem(id int64) error {
	if err := e.gate(); err != nil {
		return err
	}
	for i := range e.s.Menu {
		if e.s.Menu[i].ID == id {
			e.s.Menu = append(e.s.Menu[:i], e.s.Menu[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "menu item", ID: id}
}

// ProfitMargin returns round((price-cost)/price*100), 0 when price <= 0.
func ProfitMargin(price, cost int64) int {
	if price <= 0 {
		return 0
	}
	return int(math.Round(float64(price-cost) / float64(price) * 100))
}

// =============================================================================
// STAFF AND SHIFTS
// =============================================================================

// AddStaff hires a staff member.
func (e *Engine) AddStaff(name string, hourlyWage int64, skills []string) (*state.Staff, error) {
	if err := e.gate(); err != nil {
		return nil, err
	}
	if name == "" || hourlyWage < 0 {
		return nil, fmt.Errorf("%w: staff needs a name and non-negative wage", engine.ErrInvalidInput)
	}
	e.s.Staff = append(e.s.Staff, state.Staff{
		ID: e.seq.Next(), Name: name, HourlyWage: hourlyWage, Skills: skills, Status: "active",
	})
	e.save.Fire()
	return &e.s.Staff[len(e.s.Staff)-1], nil
}

// DeleteStaff removes a staff member (their shift history stays).
func (e *Engine) DeleteStaff(id int64) error {
	if err := e.gate(); err != nil {
		return err
	}
	for i := range e.s.Staff {
		if e.s.Staff[i].ID == id {
			e.s.Staff = append(e.s.Staff[:i], e.s.Staff[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "staff", ID: id}
}

// ScheduleShift books a staff member for a day. The wage is computed
// from hours x their hourly rate.
func (e *Engine) ScheduleShift(staffID int64, date engine.Date, startTime, endTime string, hours float64, memo string) (*state.Shift, error) {
	if err := e.gate(); err != nil {
		return nil, err
	}
	staff := e.staff(staffID)
	if staff == nil {
		return nil, &engine.NotFoundError{Kind: "staff", ID: staffID}
	}
	if hours <= 0 {
		return nil, fmt.Errorf("%w: shift needs positive hours", engine.ErrInvalidInput)
	}
	e.s.Shifts = append(e.s.Shifts, state.Shift{
		ID:        e.seq.Next(),
		StaffID:   staff.ID,
		StaffName: staff.Name,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Hours:     hours,
		Wage:      int64(hours * float64(staff.HourlyWage)),
		Status:    state.ShiftScheduled,
		Memo:      memo,
	})
	e.save.Fire()
	return &e.s.Shifts[len(e.s.Shifts)-1], nil
}

// CompleteShift marks a scheduled shift worked.
func (e *Engine) CompleteShift(id int64) error {
	if err := e.gate(); err != nil {
		return err
	}
	sh := e.shift(id)
	if sh == nil {
		return &engine.NotFoundError{Kind: "shift", ID: id}
	}
	if sh.Status != state.ShiftScheduled {
		return fmt.Errorf("%w: shift %d is %s, not scheduled", engine.ErrInvalidInput, id, sh.Status)
	}
	sh.Status = state.ShiftCompleted
	e.save.Fire()
	return nil
}

// PayShiftWage pays out a worked shift: records the expense against the
// operating fund, marks the shift paid, and accrues the staff totals.
func (e *Engine) PayShiftWage(id int64) error {
	if err := e.gate(); err != nil {
		return err
	}
	sh := e.shift(id)
	if sh == nil {
		return &engine.NotFoundError{Kind: "shift", ID: id}
	}
	if sh.Status == state.ShiftPaid {
		return fmt.Errorf("%w: shift %d already paid", engine.ErrInvalidInput, id)
	}
	if err := e.funds.RecordShopExpense(
		fmt.Sprintf("Shift wage: %s %s", sh.StaffName, sh.Date), "wages", sh.Wage); err != nil {
		return err
	}
	sh.Status = state.ShiftPaid
	if staff := e.staff(sh.StaffID); staff != nil {
		staff.TotalHours += sh.Hours
		staff.TotalPaid += sh.Wage
	}
	e.save.Fire()
	return nil
}

func (e *Engine) staff(id int64) *state.Staff {
	for i := range e.s.Staff {
		if e.s.Staff[i].ID == id {
			return &e.s.Staff[i]
		}
	}
	return nil
}

func (e *Engine) shift(id int64) *state.Shift {
	for i := range e.s.Shifts {
		if e.s.Shifts[i].ID == id {
			return &e.s.Shifts[i]
		}
	}
	return nil
}

// OnDutyToday lists staff with a scheduled shift on the current day.
func (e *Engine) OnDutyToday() []state.Shift {
	today := e.clock.Today()
	var out []state.Shift
	for _, sh := range e.s.Shifts {
		if sh.Status == state.ShiftScheduled && sh.Date.Equal(today) {
			out = append(out, sh)
		}
	}
	return out
}
