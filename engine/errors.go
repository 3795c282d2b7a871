/*
errors.go - Centralized error types for the engines

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain engines wrap these with additional context.

ERROR CATEGORIES:
  1. Funds errors - transfers, wage payments, anything moving currency
  2. Ingredient errors - baking sufficiency failures
  3. Lookup errors - goal/recipe/item/shift/DM referenced by missing id
  4. Input errors - malformed amounts, invalid dates
  5. Locked fields - engine-owned records the user may not edit

DELIVERY:
  Mutating operations return error; nil means the mutation was applied in
  full. A non-nil error means NO state changed (no partial writes). The
  HTTP layer maps these onto the {success, error} JSON the dashboard
  consumes - see api/handlers.go.

USAGE:
  if errors.Is(err, engine.ErrInsufficientFunds) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientFunds is returned when a transfer or payment exceeds
	// the source balance, or when the amount is not positive.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientIngredients is returned when a bake cannot be covered
	// by current stock. The bake makes no partial deduction.
	ErrInsufficientIngredients = errors.New("insufficient ingredients")

	// ErrNotFound is returned when a goal, recipe, item, rule, shift, sale
	// or DM is referenced by an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed amounts, dates or payloads.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLockedField is returned when the user attempts to edit or delete a
	// record owned by an engine (the SNS recurring-income rule).
	ErrLockedField = errors.New("locked field")

	// ErrShopModeDisabled is returned by shop operations while shop mode is
	// off. The shop surface is inert until the ledger enables it.
	ErrShopModeDisabled = errors.New("shop mode disabled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError details a balance shortage.
type InsufficientFundsError struct {
	Balance   string // "living", "operatingFund", or a goal name
	Available int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: available %d, requested %d",
		e.Balance, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// InsufficientIngredientsError names the first ingredient that fell short.
type InsufficientIngredientsError struct {
	Ingredient string
	Required   string
	Available  string
}

func (e *InsufficientIngredientsError) Error() string {
	return fmt.Sprintf("insufficient %s: need %s, have %s",
		e.Ingredient, e.Required, e.Available)
}

func (e *InsufficientIngredientsError) Unwrap() error { return ErrInsufficientIngredients }

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // "goal", "recipe", "item", "rule", "shift", "dm", ...
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError reports whether the error is the caller's fault (maps to
// HTTP 4xx rather than 5xx).
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientIngredients) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrLockedField) ||
		errors.Is(err, ErrShopModeDisabled) ||
		errors.Is(err, ErrNotFound)
}
