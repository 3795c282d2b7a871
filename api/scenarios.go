/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate a conversation with
  realistic data for demos and frontend development. Each scenario
  builds the engine graph for the target conversation and drives it
  through the same operations the dashboard would.

AVAILABLE SCENARIOS:
  bakery-start: Stocked pantry, one recipe, a savings goal
  shop-open:    Shop mode enabled with menu, staff, and a shift
  influencer:   Established following with posts and the SNS income rule

HOW SCENARIOS WORK:
  1. Reset the target conversation to a fresh tree
  2. Replay engine operations (transactions, items, recipes, ...)
  3. State persists through the normal SaveFunc path

NOTE:
  Loading a scenario OVERWRITES the target conversation. Only use in
  development/demo environments.

SEE ALSO:
  - handlers.go: graph construction
  - server.go: /api/scenarios routes
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/life-engine/inventory"
	"github.com/warp/life-engine/ledger"
	"github.com/warp/life-engine/social"
	"github.com/warp/life-engine/state"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "bakery-start",
		Name:        "Bakery Start",
		Description: "Stocked pantry, a pound cake recipe, and a savings goal",
	},
	{
		ID:          "shop-open",
		Name:        "Shop Open",
		Description: "Shop mode enabled with menu, staff, and today's shift",
	},
	{
		ID:          "influencer",
		Name:        "Influencer",
		Description: "12k followers, recent posts, SNS income rule synced",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets a conversation and replays a scenario into it.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decode(r, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	if req.ChatID == "" {
		req.ChatID = "demo"
	}

	// Start from a fresh tree.
	if err := h.Store.Put(req.ChatID, state.NewChatData()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	g, err := h.buildGraph(req.ChatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch req.ScenarioID {
	case "bakery-start":
		err = loadBakeryStart(g)
	case "shop-open":
		err = loadShopOpen(g)
	case "influencer":
		err = loadInfluencer(g)
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown scenario %q", req.ScenarioID))
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: g.cd})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadBakeryStart(g *graph) error {
	if _, err := g.ledger.AddTransaction(ledger.TxInput{
		Type:        state.TxIncome,
		Description: "용돈",
		Amount:      500_000,
	}); err != nil {
		return err
	}
	if _, err := g.ledger.AddGoal("오븐 업그레이드", "🧁", 1_200_000); err != nil {
		return err
	}

	pantry := []struct {
		name, unit string
		qty, min   int64
	}{
		{"박력분", "g", 2000, 500},
		{"설탕", "g", 1500, 300},
		{"버터", "g", 800, 200},
		{"계란", "개", 20, 6},
	}
	for _, p := range pantry {
		if _, err := g.inv.AddItem(inventory.ItemInput{
			Name:     p.name,
			Qty:      decimal.NewFromInt(p.qty),
			Unit:     p.unit,
			Category: "베이킹",
			Type:     state.TypeIngredient,
			MinStock: decimal.NewFromInt(p.min),
		}); err != nil {
			return err
		}
	}

	_, err := g.bake.AddRecipe("파운드케이크", []state.RecipeIngredient{
		{Name: "박력분", Qty: decimal.NewFromInt(200), Unit: "g"},
		{Name: "설탕", Qty: decimal.NewFromInt(150), Unit: "g"},
		{Name: "버터", Qty: decimal.NewFromInt(180), Unit: "g"},
		{Name: "계란", Qty: decimal.NewFromInt(3), Unit: "개"},
	}, decimal.NewFromInt(1), "개")
	return err
}

func loadShopOpen(g *graph) error {
	if err := loadBakeryStart(g); err != nil {
		return err
	}
	if err := g.ledger.ToggleShopMode(true, 300_000); err != nil {
		return err
	}
	g.cd.Ledger.ShopMode.ShopName = "작은 오븐"

	if _, err := g.shop.AddMenuItem("파운드케이크", 18_000, 6_500, "🍰"); err != nil {
		return err
	}
	if _, err := g.shop.AddMenuItem("마들렌 세트", 12_000, 4_000, "🐚"); err != nil {
		return err
	}

	staff, err := g.shop.AddStaff("수진", 10_000, []string{"포장", "계산"})
	if err != nil {
		return err
	}
	if _, err := g.shop.ScheduleShift(staff.ID, g.clock.Today(), "10:00", "15:00", 5, ""); err != nil {
		return err
	}
	return g.shop.ToggleShopStatus()
}

func loadInfluencer(g *graph) error {
	if err := loadBakeryStart(g); err != nil {
		return err
	}
	g.social.SetProfile("@oven_diary", "매일 굽는 기록")
	g.cd.Social.Followers = 12_000

	for _, t := range []state.PostType{state.PostPhoto, state.PostReel} {
		if _, err := g.social.AddPost(social.PostInput{Type: t, Content: "오늘의 베이킹"}); err != nil {
			return err
		}
	}
	g.social.UpdateSNSIncome()
	return nil
}
