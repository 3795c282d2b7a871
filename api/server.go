/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/chats                 Conversation listing
  /api/chats/{chatID}/*      Per-conversation engine operations
  /api/prefs                 Global dashboard preferences
  /api/scenarios/*           Demo scenario loaders
  /metrics                   Prometheus metrics

SECURITY NOTE:
  No authentication middleware. The server binds for a local dashboard;
  do not expose it publicly as-is.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/chats", h.ListChats)

		r.Route("/chats/{chatID}", func(r chi.Router) {
			r.Get("/", h.GetChat)

			// Clock and daily processing
			r.Post("/date", h.SetDate)
			r.Delete("/date", h.ClearDate)
			r.Post("/tick", h.Tick)

			// Chat ingestion and prompt composition
			r.Post("/scan", h.Scan)
			r.Get("/prompt", h.GetPrompt)
			r.Post("/prompt/inject", h.InjectPrompt)

			// Ledger
			r.Post("/transactions", h.AddTransaction)
			r.Delete("/transactions/{id}", h.DeleteTransaction)
			r.Get("/summary", h.GetSummary)
			r.Post("/goals", h.AddGoal)
			r.Put("/goals/{id}", h.UpdateGoal)
			r.Delete("/goals/{id}", h.DeleteGoal)
			r.Post("/savings/deposit", h.DepositSavings)
			r.Post("/savings/withdraw", h.WithdrawSavings)
			r.Post("/recurring/income", h.AddRecurringIncome)
			r.Delete("/recurring/income/{id}", h.DeleteRecurringIncome)
			r.Post("/recurring/expense", h.AddRecurringExpense)
			r.Delete("/recurring/expense/{id}", h.DeleteRecurringExpense)
			r.Post("/recurring/{id}/enabled", h.SetRuleEnabled)
			r.Post("/recurring/process", h.ProcessRecurring)
			r.Post("/shop-mode", h.SetShopMode)
			r.Post("/shop-mode/deposit", h.TransferToShop)
			r.Post("/shop-mode/withdraw", h.TransferFromShop)
			r.Post("/wages", h.AddWage)
			r.Post("/wages/{id}/pay", h.PayWage)

			// Inventory
			r.Post("/inventory", h.AddItem)
			r.Put("/inventory/{id}", h.UpdateItem)
			r.Delete("/inventory/{id}", h.DeleteItem)
			r.Post("/inventory/change", h.ChangeQty)
			r.Get("/inventory/alerts", h.GetAlerts)

			// Baking
			r.Post("/recipes", h.AddRecipe)
			r.Put("/recipes/{id}", h.UpdateRecipe)
			r.Delete("/recipes/{id}", h.DeleteRecipe)
			r.Post("/bake", h.PerformBake)

			// Social
			r.Post("/social/posts", h.AddPost)
			r.Post("/social/dms", h.AddDM)
			r.Post("/social/dms/{id}/accept", h.AcceptDM)
			r.Post("/social/dms/{id}/decline", h.DeclineDM)
			r.Put("/social/dms/{id}/memo", h.SetDMMemo)
			r.Put("/social/profile", h.SetProfile)
			r.Post("/social/income/sync", h.SyncIncome)

			// Shop
			r.Post("/shop/toggle", h.ToggleShopStatus)
			r.Post("/shop/sales", h.AddSale)
			r.Post("/shop/menu", h.AddMenuItem)
			r.Put("/shop/menu/{id}", h.UpdateMenuItem)
			r.Delete("/shop/menu/{id}", h.DeleteMenuItem)
			r.Post("/shop/staff", h.AddStaff)
			r.Delete("/shop/staff/{id}", h.DeleteStaff)
			r.Post("/shop/shifts", h.ScheduleShift)
			r.Post("/shop/shifts/{id}/complete", h.CompleteShift)
			r.Post("/shop/shifts/{id}/pay", h.PayShiftWage)

			// Tasks
			r.Post("/tasks", h.AddTask)
			r.Post("/tasks/{id}/complete", h.CompleteTask)
			r.Delete("/tasks/{id}", h.DeleteTask)
			r.Post("/schedule", h.AddScheduleItem)
			r.Delete("/schedule/{id}", h.DeleteScheduleItem)
			r.Post("/shopping", h.AddShoppingItem)
			r.Delete("/shopping/{id}", h.DeleteShoppingItem)
		})

		// Global preferences
		r.Get("/prefs", h.GetPrefs)
		r.Put("/prefs", h.PutPrefs)

		// Demo scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	// Prometheus metrics
	if h.Stats != nil {
		r.Method("GET", "/metrics", h.Stats.Handler())
	}

	return r
}
