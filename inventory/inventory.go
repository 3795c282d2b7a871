/*
Package inventory tracks stocked ingredients and finished products.

PURPOSE:
  CRUD over inventory items with a bounded change history, fuzzy name
  resolution for free-text ingredient names, and the quantity-change
  entry point the baking and shop engines compose against.

POLICIES:
  - Every quantity change is logged (change = new - old), history capped
    at the most recent 50 entries.
  - Missing items on ChangeQty are a logged no-op, not an error: the
    caller is usually the tag scanner feeding untrusted free text.
  - An ingredient fully consumed by baking is deleted outright rather
    than left at zero.

SEE ALSO:
  - fuzzy.go: the four-tier name resolution
  - baking/: debits ingredients, credits products through this package
*/
package inventory

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine mutates the inventory subtree of one conversation.
type Engine struct {
	s     *state.Inventory
	clock *engine.Clock
	seq   *engine.Sequence
	save  engine.SaveFunc
}

// New binds an engine to an inventory subtree.
func New(s *state.Inventory, clock *engine.Clock, save engine.SaveFunc) *Engine {
	var ids []int64
	for _, it := range s.Items {
		ids = append(ids, it.ID)
	}
	for _, h := range s.History {
		ids = append(ids, h.ID)
	}
	return &Engine{s: s, clock: clock, seq: engine.NewSequence(ids...), save: save}
}

// WithSequence swaps in a deterministic sequence (tests).
func (e *Engine) WithSequence(seq *engine.Sequence) *Engine {
	e.seq = seq
	return e
}

// State exposes the bound subtree for read-side consumers.
func (e *Engine) State() *state.Inventory { return e.s }

// =============================================================================
// ITEM CRUD
// =============================================================================

// ItemInput carries caller-supplied item fields.
type ItemInput struct {
	Name     string
	Qty      decimal.Decimal
	Unit     string
	Category string
	Type     state.ItemType
	MinStock decimal.Decimal
}

// AddItem creates an inventory item and logs its initial stock.
func (e *Engine) AddItem(in ItemInput) (*state.Item, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: item needs a name", engine.ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = state.TypeIngredient
	}
	item := state.Item{
		ID:       e.seq.Next(),
		Name:     in.Name,
		Qty:      in.Qty,
		Unit:     in.Unit,
		Category: in.Category,
		Type:     in.Type,
		MinStock: in.MinStock,
	}
	e.s.Items = append(e.s.Items, item)
	if !in.Qty.IsZero() {
		e.logChange(item.Name, in.Qty, in.Qty, "initial stock", "manual")
	}
	e.save.Fire()
	return &e.s.Items[len(e.s.Items)-1], nil
}

// UpdateItem edits an item; a quantity change is logged like any other.
func (e *Engine) UpdateItem(id int64, in ItemInput) error {
	item := e.byID(id)
	if item == nil {
		return &engine.NotFoundError{Kind: "item", ID: id}
	}
	if !item.Qty.Equal(in.Qty) {
		e.logChange(item.Name, in.Qty.Sub(item.Qty), in.Qty, "manual edit", "manual")
	}
	if in.Name != "" {
		item.Name = in.Name
	}
	item.Qty = in.Qty
	item.Unit = in.Unit
	item.Category = in.Category
	if in.Type != "" {
		item.Type = in.Type
	}
	item.MinStock = in.MinStock
	e.save.Fire()
	return nil
}

// DeleteItem removes an item, logging the stock it took with it.
func (e *Engine) DeleteItem(id int64) error {
	for i, item := range e.s.Items {
		if item.ID == id {
			if !item.Qty.IsZero() {
				e.logChange(item.Name, item.Qty.Neg(), decimal.Zero, "deleted", "manual")
			}
			e.s.Items = append(e.s.Items[:i], e.s.Items[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "item", ID: id}
}

func (e *Engine) byID(id int64) *state.Item {
	for i := range e.s.Items {
		if e.s.Items[i].ID == id {
			return &e.s.Items[i]
		}
	}
	return nil
}

// =============================================================================
// QUANTITY CHANGES
// =============================================================================

// ChangeQty resolves name fuzzily and applies a signed quantity change.
// A miss is a logged no-op. An ingredient driven to zero or below by
// baking is removed after the depletion is logged.
func (e *Engine) ChangeQty(name string, change decimal.Decimal, reason, source string) {
	item := e.FindIngredientFuzzy(name)
	if item == nil {
		log.Printf("inventory: no item matching %q, change skipped", name)
		return
	}
	item.Qty = item.Qty.Add(change)
	e.logChange(item.Name, change, item.Qty, reason, source)

	if item.Qty.Sign() <= 0 && source == "baking" {
		// Fully consumed by baking: remove rather than keep a zero row.
		for i := range e.s.Items {
			if e.s.Items[i].ID == item.ID {
				e.s.Items = append(e.s.Items[:i], e.s.Items[i+1:]...)
				break
			}
		}
	}
	e.save.Fire()
}

// AddProduct credits a finished product, merging into an existing product
// of the same name or creating a new product-type item.
func (e *Engine) AddProduct(name string, qty decimal.Decimal, unit string) *state.Item {
	for i := range e.s.Items {
		it := &e.s.Items[i]
		if it.Type == state.TypeProduct && it.Name == name {
			it.Qty = it.Qty.Add(qty)
			e.logChange(name, qty, it.Qty, "produced", "baking")
			e.save.Fire()
			return it
		}
	}
	item := state.Item{
		ID:   e.seq.Next(),
		Name: name,
		Qty:  qty,
		Unit: unit,
		Type: state.TypeProduct,
	}
	e.s.Items = append(e.s.Items, item)
	e.logChange(name, qty, qty, "produced", "baking")
	e.save.Fire()
	return &e.s.Items[len(e.s.Items)-1]
}

// FindProduct resolves a finished product by exact name. Gift targets
// are named products, so no fuzzy matching here.
func (e *Engine) FindProduct(name string) *state.Item {
	for i := range e.s.Items {
		if e.s.Items[i].Type == state.TypeProduct && e.s.Items[i].Name == name {
			return &e.s.Items[i]
		}
	}
	return nil
}

// RemoveProduct decrements a product, floored at zero.
func (e *Engine) RemoveProduct(item *state.Item, qty decimal.Decimal, reason, source string) {
	newQty := item.Qty.Sub(qty)
	if newQty.Sign() < 0 {
		newQty = decimal.Zero
	}
	change := newQty.Sub(item.Qty)
	item.Qty = newQty
	e.logChange(item.Name, change, newQty, reason, source)
	e.save.Fire()
}

func (e *Engine) logChange(name string, change, after decimal.Decimal, reason, source string) {
	entry := state.InventoryHistoryEntry{
		ID:       e.seq.Next(),
		ItemName: name,
		Change:   change,
		AfterQty: after,
		Reason:   reason,
		Source:   source,
		Date:     e.clock.Today(),
	}
	e.s.History = append([]state.InventoryHistoryEntry{entry}, e.s.History...)
	if len(e.s.History) > state.InventoryHistoryCap {
		e.s.History = e.s.History[:state.InventoryHistoryCap]
	}
}

// =============================================================================
// ALERTS
// =============================================================================

// Alerts partitions ingredients into out-of-stock and low-stock.
type Alerts struct {
	Out []state.Item // qty <= 0
	Low []state.Item // 0 < qty <= minStock
}

// GetAlerts computes the current stock alert partition over ingredients.
func (e *Engine) GetAlerts() Alerts {
	var a Alerts
	for _, item := range e.s.Items {
		if item.Type != state.TypeIngredient {
			continue
		}
		switch {
		case item.Qty.Sign() <= 0:
			a.Out = append(a.Out, item)
		case item.MinStock.IsPositive() && item.Qty.LessThanOrEqual(item.MinStock):
			a.Low = append(a.Low, item)
		}
	}
	return a
}
