/*
Package baking converts recipes into inventory movements.

PURPOSE:
  Owns recipes (ingredient lists + yield) and performs bakes: debit
  every ingredient, credit the finished product, log the bake.

CRITICAL INVARIANT - CHECK THEN COMMIT:
  PerformBaking validates EVERY ingredient before touching ANY of them.
  A failed sufficiency check returns InsufficientIngredients naming the
  first failing ingredient and leaves the inventory byte-identical. This
  is the one place two engines compose transactionally; the ordering is
  mandatory, not an optimization.

SEE ALSO:
  - inventory/: the IngredientLedger this package debits and credits
*/
package baking

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// IngredientLedger is the slice of the inventory engine baking consumes.
type IngredientLedger interface {
	// FindIngredientFuzzy resolves a free-text name to a stocked item.
	FindIngredientFuzzy(name string) *state.Item
	// ChangeQty applies a signed stock change.
	ChangeQty(name string, change decimal.Decimal, reason, source string)
	// AddProduct credits finished goods, merging same-name products.
	AddProduct(name string, qty decimal.Decimal, unit string) *state.Item
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine mutates the baking subtree of one conversation.
type Engine struct {
	s     *state.Baking
	inv   IngredientLedger
	clock *engine.Clock
	seq   *engine.Sequence
	save  engine.SaveFunc
}

// New binds an engine to a baking subtree and its ingredient ledger.
func New(s *state.Baking, inv IngredientLedger, clock *engine.Clock, save engine.SaveFunc) *Engine {
	var ids []int64
	for _, r := range s.Recipes {
		ids = append(ids, r.ID)
	}
	for _, h := range s.History {
		ids = append(ids, h.ID)
	}
	return &Engine{s: s, inv: inv, clock: clock, seq: engine.NewSequence(ids...), save: save}
}

// WithSequence swaps in a deterministic sequence (tests).
func (e *Engine) WithSequence(seq *engine.Sequence) *Engine {
	e.seq = seq
	return e
}

// State exposes the bound subtree for read-side consumers.
func (e *Engine) State() *state.Baking { return e.s }

// =============================================================================
// RECIPE CRUD
// =============================================================================

// AddRecipe registers a recipe.
func (e *Engine) AddRecipe(name string, ingredients []state.RecipeIngredient, yieldQty decimal.Decimal, yieldUnit string) (*state.Recipe, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: recipe needs a name", engine.ErrInvalidInput)
	}
	for _, ing := range ingredients {
		if ing.Name == "" || ing.Qty.Sign() <= 0 {
			return nil, fmt.Errorf("%w: ingredient %q needs a name and positive quantity", engine.ErrInvalidInput, ing.Name)
		}
	}
	e.s.Recipes = append(e.s.Recipes, state.Recipe{
		ID:          e.seq.Next(),
		Name:        name,
		Ingredients: ingredients,
		YieldQty:    yieldQty,
		YieldUnit:   yieldUnit,
	})
	e.save.Fire()
	return &e.s.Recipes[len(e.s.Recipes)-1], nil
}

// UpdateRecipe replaces a recipe's fields.
func (e *Engine) UpdateRecipe(id int64, name string, ingredients []state.RecipeIngredient, yieldQty decimal.Decimal, yieldUnit string) error {
	r := e.recipe(id)
	if r == nil {
		return &engine.NotFoundError{Kind: "recipe", ID: id}
	}
	if name != "" {
		r.Name = name
	}
	if ingredients != nil {
		r.Ingredients = ingredients
	}
	if yieldQty.Sign() > 0 {
		r.YieldQty = yieldQty
	}
	if yieldUnit != "" {
		r.YieldUnit = yieldUnit
	}
	e.save.Fire()
	return nil
}

// DeleteRecipe removes a recipe.
func (e *Engine) DeleteRecipe(id int64) error {
	for i, r := range e.s.Recipes {
		if r.ID == id {
			e.s.Recipes = append(e.s.Recipes[:i], e.s.Recipes[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "recipe", ID: id}
}

func (e *Engine) recipe(id int64) *state.Recipe {
	for i := range e.s.Recipes {
		if e.s.Recipes[i].ID == id {
			return &e.s.Recipes[i]
		}
	}
	return nil
}

// FindRecipeByName resolves a recipe by exact name.
func (e *Engine) FindRecipeByName(name string) *state.Recipe {
	for i := range e.s.Recipes {
		if e.s.Recipes[i].Name == name {
			return &e.s.Recipes[i]
		}
	}
	return nil
}

// =============================================================================
// PERFORM BAKING - check then commit
// =============================================================================

// PerformBaking bakes a recipe at the given multiplier. All-or-nothing:
// the sufficiency check over every ingredient precedes every debit.
func (e *Engine) PerformBaking(recipeID int64, multiplier decimal.Decimal) (*state.BakeRecord, error) {
	r := e.recipe(recipeID)
	if r == nil {
		return nil, &engine.NotFoundError{Kind: "recipe", ID: recipeID}
	}
	if multiplier.Sign() <= 0 {
		return nil, fmt.Errorf("%w: multiplier must be positive", engine.ErrInvalidInput)
	}

	// Check phase: no mutation until every ingredient is covered.
	// Requirements aggregate by resolved item, so recipe lines that
	// fuzzily resolve to the same stock row are checked jointly.
	required := make(map[int64]decimal.Decimal)
	for _, ing := range r.Ingredients {
		need := ing.Qty.Mul(multiplier)
		item := e.inv.FindIngredientFuzzy(ing.Name)
		if item == nil {
			return nil, &engine.InsufficientIngredientsError{
				Ingredient: ing.Name,
				Required:   need.String(),
				Available:  decimal.Zero.String(),
			}
		}
		total := required[item.ID].Add(need)
		if item.Qty.LessThan(total) {
			return nil, &engine.InsufficientIngredientsError{
				Ingredient: ing.Name,
				Required:   total.String(),
				Available:  item.Qty.String(),
			}
		}
		required[item.ID] = total
	}

	// Commit phase: debit every ingredient, credit the product.
	for _, ing := range r.Ingredients {
		e.inv.ChangeQty(ing.Name, ing.Qty.Mul(multiplier).Neg(), fmt.Sprintf("baked %s", r.Name), "baking")
	}
	yieldQty := r.YieldQty.Mul(multiplier)
	e.inv.AddProduct(r.Name, yieldQty, r.YieldUnit)

	record := state.BakeRecord{
		ID:         e.seq.Next(),
		RecipeName: r.Name,
		Multiplier: multiplier,
		YieldQty:   yieldQty,
		YieldUnit:  r.YieldUnit,
		Date:       e.clock.Today(),
	}
	e.s.History = append([]state.BakeRecord{record}, e.s.History...)
	if len(e.s.History) > state.BakeHistoryCap {
		e.s.History = e.s.History[:state.BakeHistoryCap]
	}

	e.s.LastEvent = fmt.Sprintf("Baked %s ×%s", r.Name, multiplier.String())
	e.s.LastEventAt = e.clock.Now()

	e.save.Fire()
	return &e.s.History[0], nil
}
