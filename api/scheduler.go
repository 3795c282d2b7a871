/*
scheduler.go - Automated daily processing scheduler

PURPOSE:
  Periodically sweeps every conversation and runs its once-per-day
  processing: recurring income/expense rules, DM expiry, follower decay,
  and the SNS income tier sync. The dashboard can also trigger the same
  work per conversation via POST /tick; this loop covers conversations
  nobody opened that day.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Every leg of the daily work is idempotent per in-fiction day
    (lastProcessedDate / lastTickDate guards), so overlapping triggers
    are harmless
  - Errors on one conversation never block the rest

CONFIGURATION:
  - CheckInterval: how often to sweep (default: 1 hour)
  - Enabled: whether the scheduler is active (default: true)

USAGE:
  scheduler := NewDailyScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Tick endpoint (manual per-conversation trigger)
  - ledger/recurring.go: recurring rule processing
  - social/social.go: Tick semantics
*/
package api

import (
	"log"
	"sync"
	"time"
)

// DailyScheduler drives the once-per-day processing for every
// conversation in the store.
type DailyScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDailyScheduler creates a scheduler bound to a handler.
func NewDailyScheduler(handler *Handler) *DailyScheduler {
	return &DailyScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ds *DailyScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Scheduler] Started with check interval: %v", ds.CheckInterval)
}

// Stop stops the scheduler.
func (ds *DailyScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ds *DailyScheduler) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.sweep()

	for {
		select {
		case <-ds.ticker.C:
			ds.sweep()
		case <-ds.stop:
			return
		}
	}
}

// sweep runs the daily processing over every known conversation.
func (ds *DailyScheduler) sweep() {
	ids, err := ds.Handler.Store.Conversations()
	if err != nil {
		log.Printf("[Scheduler] Error listing conversations: %v", err)
		return
	}

	fired := 0
	for _, id := range ids {
		g, err := ds.Handler.buildGraph(id)
		if err != nil {
			log.Printf("[Scheduler] Error loading %s: %v", id, err)
			continue
		}
		fired += g.ledger.ProcessRecurring()
		g.social.Tick()
		g.social.UpdateSNSIncome()
	}

	if fired > 0 {
		log.Printf("[Scheduler] Completed: %d conversations, %d recurring rules fired", len(ids), fired)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (ds *DailyScheduler) RunNow() {
	ds.sweep()
}
