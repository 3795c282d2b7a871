/*
Package social simulates the Instagram-style growth loop.

PURPOSE:
  Owns the follower count, post/engagement simulation, the inbound-DM
  generator, and the follower-tier income sync that feeds the ledger's
  SNS recurring-income rule.

TIME-DRIVEN BEHAVIOR:
  Nothing here runs at construction. Tick(today) is the single explicit
  entry point for DM expiry and follower decay; callers invoke it once
  per observed date change.

RANDOMNESS:
  Engagement rolls, growth draws, decay and DM generation all go through
  the injected engine.Rand so tests can script exact outcomes.

SEE ALSO:
  - income.go: follower tier -> recurring income sync
  - ledger/: owns the SNS rule this package upserts
*/
package social

import (
	"fmt"

	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// FundsLedger is the slice of the ledger engine this package drives.
type FundsLedger interface {
	// UpsertSNSIncome creates or retunes the SNS recurring-income rule.
	UpsertSNSIncome(min, max int64)
}

// TaskSink receives the to-do created when a DM order is accepted.
type TaskSink interface {
	AddTask(title string, deadline engine.Date)
}

// Notifier raises non-fatal, observability-only notices (tier changes).
// The financial effect happens whether or not anyone is listening.
type Notifier interface {
	Notify(message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// =============================================================================
// ENGINE
// =============================================================================

// Engine mutates the social subtree of one conversation.
type Engine struct {
	s      *state.Social
	funds  FundsLedger
	tasks  TaskSink
	notify Notifier
	clock  *engine.Clock
	rnd    engine.Rand
	seq    *engine.Sequence
	save   engine.SaveFunc

	dmTemplates []DMTemplate
}

// New binds an engine to a social subtree and its collaborators.
func New(s *state.Social, funds FundsLedger, tasks TaskSink, notify Notifier, clock *engine.Clock, rnd engine.Rand, save engine.SaveFunc) *Engine {
	if notify == nil {
		notify = NopNotifier{}
	}
	if len(s.IncomeTiers) == 0 {
		s.IncomeTiers = state.DefaultIncomeTiers()
	}
	var ids []int64
	for _, p := range s.Posts {
		ids = append(ids, p.ID)
	}
	for _, dm := range s.DMs {
		ids = append(ids, dm.ID)
	}
	return &Engine{
		s: s, funds: funds, tasks: tasks, notify: notify,
		clock: clock, rnd: rnd, seq: engine.NewSequence(ids...), save: save,
		dmTemplates: DefaultDMTemplates(),
	}
}

// WithSequence swaps in a deterministic sequence (tests).
func (e *Engine) WithSequence(seq *engine.Sequence) *Engine {
	e.seq = seq
	return e
}

// WithDMTemplates replaces the inbound-DM template pool (config/tests).
func (e *Engine) WithDMTemplates(pool []DMTemplate) *Engine {
	if len(pool) > 0 {
		e.dmTemplates = pool
	}
	return e
}

// State exposes the bound subtree for read-side consumers.
func (e *Engine) State() *state.Social { return e.s }

// =============================================================================
// POSTS - Engagement roll and follower growth
// =============================================================================

// PostInput carries caller-supplied post fields.
type PostInput struct {
	Type         state.PostType
	Content      string
	Tags         []string
	LinkedBaking string
}

// typeMultiplier scales the engagement roll per post type. Stories earn
// no likes and roll into the low tier.
func typeMultiplier(t state.PostType) float64 {
	switch t {
	case state.PostReel:
		return 1.5
	case state.PostStory:
		return 0
	default: // photo
		return 1.0
	}
}

// growthRange is the follower growth drawn per reaction tier.
var growthRange = map[state.Reaction][2]int64{
	state.ReactionHot2:   {300, 800},
	state.ReactionHot:    {100, 300},
	state.ReactionNormal: {30, 100},
	state.ReactionLow:    {0, 30},
}

// AddPost publishes a post: rolls engagement, buckets the reaction,
// grows followers by the tier's range, then gives an inbound DM a chance
// to arrive.
func (e *Engine) AddPost(in PostInput) (*state.Post, error) {
	if in.Type != state.PostPhoto && in.Type != state.PostReel && in.Type != state.PostStory {
		return nil, fmt.Errorf("%w: unknown post type %q", engine.ErrInvalidInput, in.Type)
	}
	today := e.clock.Today()

	likes, reaction := e.generateReaction(e.s.Followers, in.Type)
	comments := int64(float64(likes) * (0.02 + e.rnd.Float64()*0.03))
	shares := int64(float64(likes) * (0.01 + e.rnd.Float64()*0.02))

	r := growthRange[reaction]
	growth := engine.Between(e.rnd, r[0], r[1])
	e.s.Followers += growth
	e.s.FollowerChange += growth
	e.s.LastPostDate = today

	post := state.Post{
		ID:           e.seq.Next(),
		Date:         today,
		Type:         in.Type,
		Content:      in.Content,
		Tags:         in.Tags,
		Likes:        likes,
		Comments:     comments,
		Shares:       shares,
		Reaction:     reaction,
		LinkedBaking: in.LinkedBaking,
	}
	e.s.Posts = append([]state.Post{post}, e.s.Posts...)

	e.checkRandomDM(reaction)
	e.save.Fire()
	return &e.s.Posts[0], nil
}

// generateReaction rolls a like count and buckets it against the
// follower-proportional average (avgLikes = followers * 0.10):
// hot2 > 1.5x avg, hot > 1.1x avg, normal > 0.7x avg, else low.
func (e *Engine) generateReaction(followers int64, postType state.PostType) (int64, state.Reaction) {
	rate := 0.08 + e.rnd.Float64()*0.04
	likes := int64(float64(followers) * rate * typeMultiplier(postType))
	avg := float64(followers) * 0.10

	switch {
	case float64(likes) > avg*1.5:
		return likes, state.ReactionHot2
	case float64(likes) > avg*1.1:
		return likes, state.ReactionHot
	case float64(likes) > avg*0.7:
		return likes, state.ReactionNormal
	default:
		return likes, state.ReactionLow
	}
}

// reactionBonus feeds the DM chance; hotter posts attract more orders.
func reactionBonus(r state.Reaction) float64 {
	switch r {
	case state.ReactionHot2:
		return 0.15
	case state.ReactionHot:
		return 0.10
	case state.ReactionNormal:
		return 0.05
	default:
		return 0
	}
}

// checkRandomDM rolls chance = 0.10 + min(followers/100k, 0.15) +
// reactionBonus and on success appends a synthetic inbound DM, skipping
// senders that already have a pending thread.
func (e *Engine) checkRandomDM(reaction state.Reaction) {
	chance := 0.10 + reactionBonus(reaction)
	followerBonus := float64(e.s.Followers) / 100_000
	if followerBonus > 0.15 {
		followerBonus = 0.15
	}
	chance += followerBonus

	if e.rnd.Float64() >= chance {
		return
	}

	pool := make([]DMTemplate, 0, len(e.dmTemplates))
	for _, t := range e.dmTemplates {
		if !e.hasPendingFrom(t.From) {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		return
	}
	t := pool[e.rnd.IntN(len(pool))]
	e.s.DMs = append([]state.DirectMessage{{
		ID:      e.seq.Next(),
		From:    t.From,
		Message: t.Message,
		Date:    e.clock.Today(),
		Status:  state.DMPending,
	}}, e.s.DMs...)
}

func (e *Engine) hasPendingFrom(from string) bool {
	for _, dm := range e.s.DMs {
		if dm.From == from && dm.Status == state.DMPending {
			return true
		}
	}
	return false
}

// =============================================================================
// DIRECT MESSAGES - pending -> accepted | declined | expired
// =============================================================================

// dmExpiryDays: a pending DM lapses once more than this many in-fiction
// days have passed; accepting sets the order deadline the same span out.
const dmExpiryDays = 7

// AddDM records an inbound DM directly (manual entry from the dashboard).
func (e *Engine) AddDM(from, message string) (*state.DirectMessage, error) {
	if from == "" || message == "" {
		return nil, fmt.Errorf("%w: dm needs a sender and a message", engine.ErrInvalidInput)
	}
	e.s.DMs = append([]state.DirectMessage{{
		ID:      e.seq.Next(),
		From:    from,
		Message: message,
		Date:    e.clock.Today(),
		Status:  state.DMPending,
	}}, e.s.DMs...)
	e.save.Fire()
	return &e.s.DMs[0], nil
}

// AcceptDM accepts a pending order DM and files a to-do with a deadline
// one expiry span out.
func (e *Engine) AcceptDM(id int64) error {
	dm := e.dm(id)
	if dm == nil {
		return &engine.NotFoundError{Kind: "dm", ID: id}
	}
	if dm.Status != state.DMPending {
		return fmt.Errorf("%w: dm %d is %s, not pending", engine.ErrInvalidInput, id, dm.Status)
	}
	dm.Status = state.DMAccepted
	if e.tasks != nil {
		e.tasks.AddTask(
			fmt.Sprintf("%s - %s", truncate(dm.Message, 20), dm.From),
			e.clock.Today().AddDays(dmExpiryDays),
		)
	}
	e.save.Fire()
	return nil
}

// DeclineDM declines a pending DM.
func (e *Engine) DeclineDM(id int64) error {
	dm := e.dm(id)
	if dm == nil {
		return &engine.NotFoundError{Kind: "dm", ID: id}
	}
	if dm.Status != state.DMPending {
		return fmt.Errorf("%w: dm %d is %s, not pending", engine.ErrInvalidInput, id, dm.Status)
	}
	dm.Status = state.DMDeclined
	e.save.Fire()
	return nil
}

// SetDMMemo attaches a note to any DM.
func (e *Engine) SetDMMemo(id int64, memo string) error {
	dm := e.dm(id)
	if dm == nil {
		return &engine.NotFoundError{Kind: "dm", ID: id}
	}
	dm.Memo = memo
	e.save.Fire()
	return nil
}

func (e *Engine) dm(id int64) *state.DirectMessage {
	for i := range e.s.DMs {
		if e.s.DMs[i].ID == id {
			return &e.s.DMs[i]
		}
	}
	return nil
}

// PendingDMCount reports open order threads.
func (e *Engine) PendingDMCount() int {
	n := 0
	for _, dm := range e.s.DMs {
		if dm.Status == state.DMPending {
			n++
		}
	}
	return n
}

// =============================================================================
// TICK - DM expiry and follower decay
// =============================================================================

// Tick advances time-driven state for the current in-fiction day: lapses
// overdue pending DMs and applies at most one idle-decay decrement. Safe
// to call repeatedly; a day is decayed at most once.
func (e *Engine) Tick() {
	today := e.clock.Today()
	changed := e.processExpiredDMs(today)

	if !e.s.LastTickDate.Equal(today) {
		if !e.s.LastPostDate.IsZero() && engine.DaysBetween(e.s.LastPostDate, today) >= dmExpiryDays {
			drop := engine.Between(e.rnd, 10, 50)
			if drop > e.s.Followers {
				drop = e.s.Followers
			}
			e.s.Followers -= drop
			e.s.FollowerChange -= drop
			changed = changed || drop > 0
		}
		e.s.LastTickDate = today
		changed = true
	}

	if changed {
		e.save.Fire()
	}
}

// processExpiredDMs lapses every pending DM older than the expiry span.
func (e *Engine) processExpiredDMs(today engine.Date) bool {
	changed := false
	for i := range e.s.DMs {
		dm := &e.s.DMs[i]
		if dm.Status == state.DMPending && engine.DaysBetween(dm.Date, today) > dmExpiryDays {
			dm.Status = state.DMExpired
			changed = true
		}
	}
	return changed
}

// ResetFollowerChange zeroes the monthly delta counter.
func (e *Engine) ResetFollowerChange() {
	e.s.FollowerChange = 0
	e.save.Fire()
}

// SetProfile updates the display fields.
func (e *Engine) SetProfile(username, bio string) {
	e.s.Username = username
	e.s.Bio = bio
	e.save.Fire()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
