/*
handlers.go - HTTP API handlers for the life-economy engine

PURPOSE:
  Exposes the per-conversation engine graph via REST. Handles HTTP
  request/response, JSON serialization, and delegates all semantics to
  the domain engines.

ARCHITECTURE:
  Handler holds the process-wide dependencies (store, metrics, config
  overrides). Every request rebuilds the engine graph around the target
  conversation's state tree: load tree -> wire engines -> run operation.
  Engines persist through a SaveFunc bound to the store, so state is
  durable the moment an operation returns.

REQUEST FLOW:
  1. Resolve {chatID}, load the conversation tree
  2. Build the engine graph
  3. Decode request body, call the engine
  4. Map the error (if any) and write the envelope

ERROR HANDLING:
  Engine errors map onto HTTP status via the engine error taxonomy:
  - 400: invalid input, insufficient funds/ingredients
  - 404: not found
  - 409: locked field, shop mode disabled
  - 500: store failures
  The body is always {"success": false, "error": "..."}.

SEE ALSO:
  - dto.go: request/response types
  - server.go: route table and middleware
  - scheduler.go: background daily processing
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/life-engine/baking"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/inventory"
	"github.com/warp/life-engine/ledger"
	"github.com/warp/life-engine/metrics"
	"github.com/warp/life-engine/prompt"
	"github.com/warp/life-engine/shop"
	"github.com/warp/life-engine/social"
	"github.com/warp/life-engine/state"
	"github.com/warp/life-engine/store"
	"github.com/warp/life-engine/tags"
	"github.com/warp/life-engine/tasks"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the process-wide dependencies for HTTP handlers.
type Handler struct {
	Store store.Store
	Stats *metrics.Metrics

	proprietor  string
	tiers       []state.IncomeTier
	dmTemplates []social.DMTemplate

	// now is injectable for deterministic handler tests.
	now func() time.Time
}

// Options tunes deployment-level behavior from config.
type Options struct {
	Proprietor  string
	IncomeTiers []state.IncomeTier
	DMTemplates []social.DMTemplate
}

// NewHandler creates a handler bound to a store. stats may be nil.
func NewHandler(st store.Store, stats *metrics.Metrics, opts Options) *Handler {
	h := &Handler{
		Store:       st,
		Stats:       stats,
		proprietor:  opts.Proprietor,
		tiers:       opts.IncomeTiers,
		dmTemplates: opts.DMTemplates,
		now:         time.Now,
	}
	if h.proprietor == "" {
		h.proprietor = shop.DefaultProprietor
	}
	if len(h.tiers) == 0 {
		h.tiers = state.DefaultIncomeTiers()
	}
	if len(h.dmTemplates) == 0 {
		h.dmTemplates = social.DefaultDMTemplates()
	}
	return h
}

// =============================================================================
// ENGINE GRAPH
// =============================================================================

// graph is one conversation's fully wired engine set.
type graph struct {
	cd      *state.ChatData
	save    engine.SaveFunc
	clock   *engine.Clock
	ledger  *ledger.Engine
	inv     *inventory.Engine
	bake    *baking.Engine
	social  *social.Engine
	shop    *shop.Engine
	tasks   *tasks.Engine
	scanner *tags.Scanner
}

// logNotifier surfaces tier-change notices in the server log. The
// dashboard polls state, so a log line is all the push we need.
type logNotifier struct{ chatID string }

func (n logNotifier) Notify(msg string) { log.Printf("[%s] %s", n.chatID, msg) }

// buildGraph loads a conversation and wires its engines. The income tier
// table is deployment config, so the persisted copy is refreshed on
// every load to keep the dashboard's display in sync.
func (h *Handler) buildGraph(chatID string) (*graph, error) {
	cd, err := h.Store.Get(chatID)
	if err != nil {
		return nil, err
	}
	cd.Social.IncomeTiers = h.tiers

	save := engine.SaveFunc(func() {
		if err := h.Store.Put(chatID, cd); err != nil {
			log.Printf("api: persist %s failed: %v", chatID, err)
		}
	})
	clock := engine.NewClock(&cd.ClockState, h.now)
	rnd := engine.NewSeededRand(h.now().UnixNano())

	g := &graph{cd: cd, save: save, clock: clock}
	g.ledger = ledger.New(&cd.Ledger, clock, rnd, save)
	g.inv = inventory.New(&cd.Inventory, clock, save)
	g.bake = baking.New(&cd.Baking, g.inv, clock, save)
	g.tasks = tasks.New(&cd.Tasks, clock, save)
	g.social = social.New(&cd.Social, g.ledger, g.tasks, logNotifier{chatID}, clock, rnd, save).
		WithDMTemplates(h.dmTemplates)
	g.shop = shop.New(&cd.Shop, g.ledger, g.inv, clock, save, h.proprietor)
	g.scanner = tags.NewScanner(g.ledger, g.shop, g.bake, g.inv, g.tasks, clock, save, nil, h.Stats)
	return g, nil
}

// withGraph wraps a handler body with graph construction and error
// handling boilerplate.
func (h *Handler) withGraph(w http.ResponseWriter, r *http.Request, fn func(g *graph) (any, error)) {
	g, err := h.buildGraph(chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := fn(g)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ListChats returns every known conversation id.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Store.Conversations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetChat returns a conversation's full state tree.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	g, err := h.buildGraph(chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, g.cd)
}

// =============================================================================
// CLOCK / TICK
// =============================================================================

// SetDate pins the in-fiction date manually.
func (h *Handler) SetDate(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req DateRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		g.clock.SetDate(d, engine.SourceManual)
		g.save.Fire()
		return g.cd.ClockState, nil
	})
}

// ClearDate drops back to the wall-clock fallback.
func (h *Handler) ClearDate(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		g.clock.ClearDate()
		g.save.Fire()
		return g.cd.ClockState, nil
	})
}

// Tick runs the once-per-day processing for a conversation: recurring
// rules, DM expiry, follower decay, and the income tier sync. Safe to
// call repeatedly; every leg is idempotent per day.
func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		fired := g.ledger.ProcessRecurring()
		g.social.Tick()
		g.social.UpdateSNSIncome()
		return TickResultDTO{RecurringFired: fired}, nil
	})
}

// =============================================================================
// LEDGER
// =============================================================================

func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req TransactionRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		in := ledger.TxInput{
			Type:        state.TxType(req.Type),
			Source:      state.FundSource(req.Source),
			Category:    req.Category,
			Description: req.Description,
			Amount:      req.Amount,
			Memo:        req.Memo,
		}
		if req.Date != "" {
			d, err := engine.ParseDate(req.Date)
			if err != nil {
				return nil, err
			}
			in.Date = d
		}
		tx, err := g.ledger.AddTransaction(in)
		if err != nil {
			return nil, err
		}
		h.Stats.TransactionRecorded()
		return tx, nil
	})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.ledger.DeleteTransaction(id)
	})
}

// GetSummary aggregates a month. Query params: month (YYYY-MM, default
// current), source ("personal" | "shop").
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		month := r.URL.Query().Get("month")
		if month == "" {
			month = g.clock.Today().MonthPrefix()
		}
		source := state.SourcePersonal
		if r.URL.Query().Get("source") == string(state.SourceShop) {
			source = state.SourceShop
		}
		return g.ledger.MonthSummaryFor(month, source), nil
	})
}

func (h *Handler) AddGoal(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req GoalRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.ledger.AddGoal(req.Name, req.Icon, req.TargetAmount)
	})
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		var req GoalRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.ledger.UpdateGoal(id, req.Name, req.Icon, req.TargetAmount)
	})
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.ledger.DeleteGoal(id)
	})
}

func (h *Handler) DepositSavings(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req SavingsTransferRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.ledger.TransferToSavings(req.Amount, req.GoalID)
	})
}

func (h *Handler) WithdrawSavings(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req SavingsTransferRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.ledger.WithdrawFromSavings(req.Amount, req.GoalID)
	})
}

func (h *Handler) AddRecurringIncome(w http.ResponseWriter, r *http.Request) {
	h.addRecurring(w, r, true)
}

func (h *Handler) AddRecurringExpense(w http.ResponseWriter, r *http.Request) {
	h.addRecurring(w, r, false)
}

func (h *Handler) addRecurring(w http.ResponseWriter, r *http.Request, income bool) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req RecurringRuleRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		rule := state.RecurringRule{
			Name:        req.Name,
			Type:        state.RuleType(req.Type),
			FixedAmount: req.FixedAmount,
			MinAmount:   req.MinAmount,
			MaxAmount:   req.MaxAmount,
			DayOfMonth:  req.DayOfMonth,
			Source:      state.FundSource(req.Source),
			Enabled:     true,
		}
		if income {
			return g.ledger.AddRecurringIncome(rule)
		}
		return g.ledger.AddRecurringExpense(rule)
	})
}

func (h *Handler) DeleteRecurringIncome(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.ledger.DeleteRecurringIncome(id)
	})
}

func (h *Handler) DeleteRecurringExpense(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.ledger.DeleteRecurringExpense(id)
	})
}

func (h *Handler) SetRuleEnabled(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		var req RuleEnabledRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.ledger.SetRuleEnabled(id, req.Enabled)
	})
}

func (h *Handler) ProcessRecurring(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		return TickResultDTO{RecurringFired: g.ledger.ProcessRecurring()}, nil
	})
}

func (h *Handler) SetShopMode(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ShopModeRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		if err := g.ledger.ToggleShopMode(req.Enabled, req.InitialFund); err != nil {
			return nil, err
		}
		if req.Enabled && req.ShopName != "" {
			g.cd.Ledger.ShopMode.ShopName = req.ShopName
			g.save.Fire()
		}
		return g.cd.Ledger.ShopMode, nil
	})
}

func (h *Handler) TransferToShop(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ShopTransferRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.ledger.TransferPersonalToShop(req.Amount)
	})
}

func (h *Handler) TransferFromShop(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ShopTransferRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.ledger.TransferShopToPersonal(req.Amount, req.ToSavings, req.GoalID)
	})
}

func (h *Handler) AddWage(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req WageRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.ledger.AddUnpaidWage(req.StaffName, req.Amount, req.Memo)
	})
}

func (h *Handler) PayWage(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.ledger.PayWage(id)
	})
}

// =============================================================================
// INVENTORY
// =============================================================================

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ItemRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.inv.AddItem(itemInput(req))
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		var req ItemRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.inv.UpdateItem(id, itemInput(req))
	})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.inv.DeleteItem(id)
	})
}

func (h *Handler) ChangeQty(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req QtyChangeRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		source := req.Source
		if source == "" {
			source = "manual"
		}
		g.inv.ChangeQty(req.Name, req.Change, req.Reason, source)
		return nil, nil
	})
}

func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		return g.inv.GetAlerts(), nil
	})
}

func itemInput(req ItemRequest) inventory.ItemInput {
	t := state.ItemType(req.Type)
	if t == "" {
		t = state.TypeIngredient
	}
	return inventory.ItemInput{
		Name:     req.Name,
		Qty:      req.Qty,
		Unit:     req.Unit,
		Category: req.Category,
		Type:     t,
		MinStock: req.MinStock,
	}
}

// =============================================================================
// BAKING
// =============================================================================

func (h *Handler) AddRecipe(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req RecipeRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.bake.AddRecipe(req.Name, req.Ingredients, req.YieldQty, req.YieldUnit)
	})
}

func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		var req RecipeRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.bake.UpdateRecipe(id, req.Name, req.Ingredients, req.YieldQty, req.YieldUnit)
	})
}

func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.bake.DeleteRecipe(id)
	})
}

func (h *Handler) PerformBake(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req BakeRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		mult := req.Multiplier
		if mult.IsZero() {
			mult = decimal.NewFromInt(1)
		}
		rec, err := g.bake.PerformBaking(req.RecipeID, mult)
		h.Stats.BakeAttempt(err == nil)
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
}

// =============================================================================
// SOCIAL
// =============================================================================

func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req PostRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.social.AddPost(social.PostInput{
			Type:         state.PostType(req.Type),
			Content:      req.Content,
			Tags:         req.Tags,
			LinkedBaking: req.LinkedBaking,
		})
	})
}

func (h *Handler) AddDM(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req DMRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.social.AddDM(req.From, req.Message)
	})
}

func (h *Handler) AcceptDM(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.social.AcceptDM(id)
	})
}

func (h *Handler) DeclineDM(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.social.DeclineDM(id)
	})
}

func (h *Handler) SetDMMemo(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		var req MemoRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.social.SetDMMemo(id, req.Memo)
	})
}

func (h *Handler) SetProfile(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ProfileRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		g.social.SetProfile(req.Username, req.Bio)
		return nil, nil
	})
}

// SyncIncome maps the current follower count onto the income tier table
// and upserts the SNS recurring income rule.
func (h *Handler) SyncIncome(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		g.social.UpdateSNSIncome()
		return g.social.CurrentIncomeTier(), nil
	})
}

// =============================================================================
// SHOP
// =============================================================================

func (h *Handler) ToggleShopStatus(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		if err := g.shop.ToggleShopStatus(); err != nil {
			return nil, err
		}
		return g.cd.Shop.IsOpen, nil
	})
}

func (h *Handler) AddSale(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req SaleRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.shop.AddSale(shop.SaleInput{
			MenuName:  req.MenuName,
			Quantity:  req.Quantity,
			UnitPrice: req.UnitPrice,
			Time:      req.Time,
			Operator:  req.Operator,
		})
	})
}

func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req MenuItemRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.shop.AddMenuItem(req.Name, req.Price, req.CostPrice, req.Icon)
	})
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		var req MenuItemUpdateRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return nil, g.shop.UpdateMenuItem(id, req.Price, req.CostPrice, req.Available)
	})
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.shop.DeleteMenuItem(id)
	})
}

func (h *Handler) AddStaff(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req StaffRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return g.shop.AddStaff(req.Name, req.HourlyWage, req.Skills)
	})
}

func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.shop.DeleteStaff(id)
	})
}

func (h *Handler) ScheduleShift(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ShiftRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		return g.shop.ScheduleShift(req.StaffID, d, req.StartTime, req.EndTime, req.Hours, req.Memo)
	})
}

func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.shop.CompleteShift(id)
	})
}

func (h *Handler) PayShiftWage(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.shop.PayShiftWage(id)
	})
}

// =============================================================================
// TASKS
// =============================================================================

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req TaskRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		var deadline engine.Date
		if req.Deadline != "" {
			d, err := engine.ParseDate(req.Deadline)
			if err != nil {
				return nil, err
			}
			deadline = d
		}
		g.tasks.AddTask(req.Title, deadline)
		return nil, nil
	})
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.tasks.CompleteTask(id)
	})
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.tasks.DeleteTask(id)
	})
}

func (h *Handler) AddScheduleItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ScheduleRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		return g.tasks.AddScheduleItem(req.Title, d, req.Time, req.Memo)
	})
}

func (h *Handler) DeleteScheduleItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.tasks.DeleteScheduleItem(id)
	})
}

func (h *Handler) AddShoppingItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ShoppingRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		location := req.Location
		if location == "" {
			location = tags.DefaultShopLocation
		}
		g.tasks.AddShoppingItem(req.Name, req.Qty, req.Unit, req.Price, location)
		return nil, nil
	})
}

func (h *Handler) DeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		return nil, g.tasks.DeleteShoppingItem(id)
	})
}

// =============================================================================
// SCAN / PROMPT
// =============================================================================

// Scan runs the tag scanner over observed chat text.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	h.withGraph(w, r, func(g *graph) (any, error) {
		var req ScanRequest
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		return ScanResultDTO{Applied: g.scanner.Scan(req.Text)}, nil
	})
}

// GetPrompt composes the current state block.
func (h *Handler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	g, err := h.buildGraph(chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, PromptDTO{
		Prompt: prompt.Compose(g.cd, g.clock.Today(), g.clock.Now()),
	})
}

// InjectPrompt rewrites an outbound model payload with the state block
// appended as a system message.
func (h *Handler) InjectPrompt(w http.ResponseWriter, r *http.Request) {
	g, err := h.buildGraph(chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var req InjectRequest
	if err := decode(r, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	text := prompt.Compose(g.cd, g.clock.Today(), g.clock.Now())
	out, err := prompt.Inject(req.Payload, text)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// =============================================================================
// PREFERENCES
// =============================================================================

func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Prefs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) PutPrefs(w http.ResponseWriter, r *http.Request) {
	var p state.Preferences
	if err := decode(r, &p); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := h.Store.PutPrefs(&p); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true})
}

// =============================================================================
// HELPERS
// =============================================================================

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: bad request body: %v", engine.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", engine.ErrInvalidInput, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, Envelope{Success: false, Error: err.Error()})
}

// writeEngineError maps engine errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, engine.ErrLockedField), errors.Is(err, engine.ErrShopModeDisabled):
		writeError(w, http.StatusConflict, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
