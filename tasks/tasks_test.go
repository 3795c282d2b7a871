package tasks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
	"github.com/warp/life-engine/tasks"
)

func newTestTasks(t *testing.T) (*tasks.Engine, *state.Tasks) {
	t.Helper()
	s := &state.Tasks{}
	var cs engine.ClockState
	clock := engine.NewClock(&cs, time.Now)
	clock.SetDate(engine.NewDate(2025, time.March, 10), engine.SourceManual)
	return tasks.New(s, clock, nil).WithSequence(engine.NewSequenceAt(1)), s
}

// =============================================================================
// TODOS
// =============================================================================

func TestTodos_AddCompleteDelete(t *testing.T) {
	e, s := newTestTasks(t)
	e.AddTask("주문 케이크", engine.NewDate(2025, time.March, 17))
	e.AddTask("재료 주문", engine.Date{})

	require.Len(t, s.Todos, 2)
	assert.Equal(t, "2025-03-10", s.Todos[0].Created.String())
	assert.Len(t, e.OpenTasks(), 2)

	require.NoError(t, e.CompleteTask(s.Todos[0].ID))
	assert.Len(t, e.OpenTasks(), 1)

	require.NoError(t, e.DeleteTask(s.Todos[0].ID))
	assert.Len(t, s.Todos, 1)

	assert.ErrorIs(t, e.CompleteTask(999), engine.ErrNotFound)
	assert.ErrorIs(t, e.DeleteTask(999), engine.ErrNotFound)
}

// =============================================================================
// SCHEDULE
// =============================================================================

func TestSchedule_TodayFilter(t *testing.T) {
	e, _ := newTestTasks(t)
	_, err := e.AddScheduleItem("납품", engine.NewDate(2025, time.March, 10), "14:00", "")
	require.NoError(t, err)
	_, err = e.AddScheduleItem("다음 주", engine.NewDate(2025, time.March, 17), "", "")
	require.NoError(t, err)

	today := e.TodaySchedule()
	require.Len(t, today, 1)
	assert.Equal(t, "납품", today[0].Title)
}

func TestSchedule_Validation(t *testing.T) {
	e, _ := newTestTasks(t)
	_, err := e.AddScheduleItem("", engine.NewDate(2025, time.March, 10), "", "")
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
	_, err = e.AddScheduleItem("제목", engine.Date{}, "", "")
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	item, err := e.AddScheduleItem("납품", engine.NewDate(2025, time.March, 10), "", "")
	require.NoError(t, err)
	require.NoError(t, e.DeleteScheduleItem(item.ID))
	assert.ErrorIs(t, e.DeleteScheduleItem(item.ID), engine.ErrNotFound)
}

// =============================================================================
// SHOPPING LIST
// =============================================================================

func TestShopping_GroupedByLocation(t *testing.T) {
	e, s := newTestTasks(t)
	e.AddShoppingItem("박력분", 2, "kg", 8000, "코스트코")
	e.AddShoppingItem("버터", 1, "kg", 15000, "코스트코")
	e.AddShoppingItem("바닐라 빈", 3, "개", 12000, "온라인")

	grouped := e.ShoppingByLocation()
	assert.Len(t, grouped["코스트코"], 2)
	assert.Len(t, grouped["온라인"], 1)

	require.NoError(t, e.DeleteShoppingItem(s.Shopping[0].ID))
	assert.Len(t, s.Shopping, 2)
	assert.ErrorIs(t, e.DeleteShoppingItem(999), engine.ErrNotFound)
}
