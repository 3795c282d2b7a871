/*
dto.go - Request/response types for the dashboard API

PURPOSE:
  Defines the JSON structures exchanged with the dashboard frontend.
  These types decouple the persisted state model from the wire contract.

NAMING CONVENTION:
  - *Request: request body types from the dashboard
  - *DTO: response types returned to it

RESPONSE ENVELOPE:
  Every mutating endpoint answers with the envelope the dashboard
  expects: {"success": true, "data": ...} or
  {"success": false, "error": "..."}. Read endpoints return bare data.

VALIDATION:
  Semantic validation lives in the engines; handlers only check that the
  body decodes and that dates/amounts parse.

SEE ALSO:
  - handlers.go: uses these types
  - server.go: route table
*/
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/warp/life-engine/state"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is the uniform mutation response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// =============================================================================
// LEDGER
// =============================================================================

// TransactionRequest creates a manual transaction.
type TransactionRequest struct {
	Date        string `json:"date,omitempty"`
	Type        string `json:"type"`
	Source      string `json:"source,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Memo        string `json:"memo,omitempty"`
}

// GoalRequest creates or updates a savings goal.
type GoalRequest struct {
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	TargetAmount int64  `json:"targetAmount"`
}

// SavingsTransferRequest moves money between living and a goal.
type SavingsTransferRequest struct {
	Amount int64 `json:"amount"`
	GoalID int64 `json:"goalId"`
}

// RecurringRuleRequest creates a recurring income or expense rule.
type RecurringRuleRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "fixed" | "range"
	FixedAmount int64  `json:"fixedAmount,omitempty"`
	MinAmount   int64  `json:"minAmount,omitempty"`
	MaxAmount   int64  `json:"maxAmount,omitempty"`
	DayOfMonth  int    `json:"dayOfMonth"`
	Source      string `json:"source,omitempty"`
}

// RuleEnabledRequest toggles a rule on or off.
type RuleEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ShopModeRequest enables or disables shop mode.
type ShopModeRequest struct {
	Enabled     bool   `json:"enabled"`
	InitialFund int64  `json:"initialFund,omitempty"`
	ShopName    string `json:"shopName,omitempty"`
}

// ShopTransferRequest moves money between living and the operating fund.
type ShopTransferRequest struct {
	Amount    int64 `json:"amount"`
	ToSavings bool  `json:"toSavings,omitempty"`
	GoalID    int64 `json:"goalId,omitempty"`
}

// WageRequest accrues an unpaid wage.
type WageRequest struct {
	StaffName string `json:"staffName"`
	Amount    int64  `json:"amount"`
	Memo      string `json:"memo,omitempty"`
}

// =============================================================================
// INVENTORY / BAKING
// =============================================================================

// ItemRequest creates or updates an inventory item.
type ItemRequest struct {
	Name     string          `json:"name"`
	Qty      decimal.Decimal `json:"qty"`
	Unit     string          `json:"unit,omitempty"`
	Category string          `json:"category,omitempty"`
	Type     string          `json:"type,omitempty"` // "ingredient" | "product"
	MinStock decimal.Decimal `json:"minStock,omitempty"`
}

// QtyChangeRequest adjusts stock by fuzzy-resolved name.
type QtyChangeRequest struct {
	Name   string          `json:"name"`
	Change decimal.Decimal `json:"change"`
	Reason string          `json:"reason,omitempty"`
	Source string          `json:"source,omitempty"`
}

// RecipeRequest creates or updates a recipe.
type RecipeRequest struct {
	Name        string                   `json:"name"`
	Ingredients []state.RecipeIngredient `json:"ingredients"`
	YieldQty    decimal.Decimal          `json:"yieldQty"`
	YieldUnit   string                   `json:"yieldUnit,omitempty"`
}

// BakeRequest runs a recipe at a multiplier.
type BakeRequest struct {
	RecipeID   int64           `json:"recipeId"`
	Multiplier decimal.Decimal `json:"multiplier,omitempty"`
}

// =============================================================================
// SOCIAL
// =============================================================================

// PostRequest publishes a post.
type PostRequest struct {
	Type         string   `json:"type"` // "photo" | "reel" | "story"
	Content      string   `json:"content,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	LinkedBaking string   `json:"linkedBaking,omitempty"`
}

// DMRequest files an inbound direct message manually.
type DMRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// MemoRequest attaches a memo to a DM.
type MemoRequest struct {
	Memo string `json:"memo"`
}

// ProfileRequest updates the social profile.
type ProfileRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
}

// =============================================================================
// SHOP
// =============================================================================

// SaleRequest logs a sale.
type SaleRequest struct {
	MenuName  string `json:"menuName"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Time      string `json:"time,omitempty"`
	Operator  string `json:"operator,omitempty"`
}

// MenuItemRequest creates a menu item.
type MenuItemRequest struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	CostPrice int64  `json:"costPrice,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// MenuItemUpdateRequest updates price/cost/availability.
type MenuItemUpdateRequest struct {
	Price     int64 `json:"price"`
	CostPrice int64 `json:"costPrice,omitempty"`
	Available bool  `json:"available"`
}

// StaffRequest hires staff.
type StaffRequest struct {
	Name       string   `json:"name"`
	HourlyWage int64    `json:"hourlyWage"`
	Skills     []string `json:"skills,omitempty"`
}

// ShiftRequest schedules a shift.
type ShiftRequest struct {
	StaffID   int64   `json:"staffId"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime,omitempty"`
	EndTime   string  `json:"endTime,omitempty"`
	Hours     float64 `json:"hours"`
	Memo      string  `json:"memo,omitempty"`
}

// =============================================================================
// TASKS / CLOCK / SCAN / PROMPT
// =============================================================================

// TaskRequest adds a todo.
type TaskRequest struct {
	Title    string `json:"title"`
	Deadline string `json:"deadline,omitempty"`
}

// ScheduleRequest adds a schedule item.
type ScheduleRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time,omitempty"`
	Memo  string `json:"memo,omitempty"`
}

// ShoppingRequest adds a shopping-list entry.
type ShoppingRequest struct {
	Name     string `json:"name"`
	Qty      int64  `json:"qty"`
	Unit     string `json:"unit,omitempty"`
	Price    int64  `json:"price,omitempty"`
	Location string `json:"location,omitempty"`
}

// DateRequest pins the in-fiction date.
type DateRequest struct {
	Date string `json:"date"`
}

// ScanRequest submits observed chat text for tag extraction.
type ScanRequest struct {
	Text string `json:"text"`
}

// ScanResultDTO reports how many tags applied.
type ScanResultDTO struct {
	Applied int `json:"applied"`
}

// TickResultDTO reports what a tick fired.
type TickResultDTO struct {
	RecurringFired int `json:"recurringFired"`
}

// PromptDTO carries the composed state block.
type PromptDTO struct {
	Prompt string `json:"prompt"`
}

// InjectRequest wraps an outbound model payload for injection.
type InjectRequest struct {
	Payload json.RawMessage `json:"payload"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario and target conversation.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
	ChatID     string `json:"chatId"`
}
