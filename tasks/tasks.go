/*
Package tasks manages the to-do list, schedule, and shopping list.

PURPOSE:
  The small collaborator modules the other engines lean on: accepted DM
  orders become to-dos, SHOP tags append to the shopping list, and the
  prompt composer reads today's schedule and open tasks.
*/
package tasks

import (
	"fmt"

	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// Engine mutates the tasks subtree of one conversation.
type Engine struct {
	s     *state.Tasks
	clock *engine.Clock
	seq   *engine.Sequence
	save  engine.SaveFunc
}

// New binds an engine to a tasks subtree.
func New(s *state.Tasks, clock *engine.Clock, save engine.SaveFunc) *Engine {
	var ids []int64
	for _, t := range s.Todos {
		ids = append(ids, t.ID)
	}
	for _, sc := range s.Schedule {
		ids = append(ids, sc.ID)
	}
	for _, sh := range s.Shopping {
		ids = append(ids, sh.ID)
	}
	return &Engine{s: s, clock: clock, seq: engine.NewSequence(ids...), save: save}
}

// WithSequence swaps in a deterministic sequence (tests).
func (e *Engine) WithSequence(seq *engine.Sequence) *Engine {
	e.seq = seq
	return e
}

// State exposes the bound subtree for read-side consumers.
func (e *Engine) State() *state.Tasks { return e.s }

// =============================================================================
// TODOS - implements social.TaskSink
// =============================================================================

// AddTask files a to-do. Satisfies the sink the social engine writes
// into when a DM order is accepted.
func (e *Engine) AddTask(title string, deadline engine.Date) {
	e.s.Todos = append(e.s.Todos, state.Todo{
		ID:       e.seq.Next(),
		Title:    title,
		Deadline: deadline,
		Created:  e.clock.Today(),
	})
	e.save.Fire()
}

// CompleteTask marks a to-do done.
func (e *Engine) CompleteTask(id int64) error {
	for i := range e.s.Todos {
		if e.s.Todos[i].ID == id {
			e.s.Todos[i].Done = true
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "todo", ID: id}
}

// DeleteTask removes a to-do.
func (e *Engine) DeleteTask(id int64) error {
	for i := range e.s.Todos {
		if e.s.Todos[i].ID == id {
			e.s.Todos = append(e.s.Todos[:i], e.s.Todos[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "todo", ID: id}
}

// OpenTasks lists undone to-dos.
func (e *Engine) OpenTasks() []state.Todo {
	var out []state.Todo
	for _, t := range e.s.Todos {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// SCHEDULE
// =============================================================================

// AddScheduleItem books an event.
func (e *Engine) AddScheduleItem(title string, date engine.Date, at, memo string) (*state.ScheduleItem, error) {
	if title == "" || date.IsZero() {
		return nil, fmt.Errorf("%w: schedule item needs a title and a date", engine.ErrInvalidInput)
	}
	e.s.Schedule = append(e.s.Schedule, state.ScheduleItem{
		ID: e.seq.Next(), Title: title, Date: date, Time: at, Memo: memo,
	})
	e.save.Fire()
	return &e.s.Schedule[len(e.s.Schedule)-1], nil
}

// DeleteScheduleItem removes an event.
func (e *Engine) DeleteScheduleItem(id int64) error {
	for i := range e.s.Schedule {
		if e.s.Schedule[i].ID == id {
			e.s.Schedule = append(e.s.Schedule[:i], e.s.Schedule[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "schedule item", ID: id}
}

// TodaySchedule lists events on the current in-fiction day.
func (e *Engine) TodaySchedule() []state.ScheduleItem {
	today := e.clock.Today()
	var out []state.ScheduleItem
	for _, item := range e.s.Schedule {
		if item.Date.Equal(today) {
			out = append(out, item)
		}
	}
	return out
}

// =============================================================================
// SHOPPING LIST
// =============================================================================

// AddShoppingItem appends a purchase to the shopping list.
func (e *Engine) AddShoppingItem(name string, qty int64, unit string, price int64, location string) {
	e.s.Shopping = append(e.s.Shopping, state.ShoppingItem{
		ID: e.seq.Next(), Name: name, Qty: qty, Unit: unit, Price: price, Location: location,
	})
	e.save.Fire()
}

// DeleteShoppingItem removes a purchase.
func (e *Engine) DeleteShoppingItem(id int64) error {
	for i := range e.s.Shopping {
		if e.s.Shopping[i].ID == id {
			e.s.Shopping = append(e.s.Shopping[:i], e.s.Shopping[i+1:]...)
			e.save.Fire()
			return nil
		}
	}
	return &engine.NotFoundError{Kind: "shopping item", ID: id}
}

// ShoppingByLocation groups the list by purchase location.
func (e *Engine) ShoppingByLocation() map[string][]state.ShoppingItem {
	grouped := make(map[string][]state.ShoppingItem)
	for _, item := range e.s.Shopping {
		grouped[item.Location] = append(grouped[item.Location], item)
	}
	return grouped
}
