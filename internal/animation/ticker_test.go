package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerTasks(t *testing.T) {
	ticker := NewTicker()
	fired := 0

	task := ticker.After(0.5, func() { fired++ })
	assert.True(t, task.Active())
	assert.Equal(t, 0.5, task.Due())
	assert.Equal(t, 1, ticker.Pending())

	ticker.Tick(step)
	assert.Equal(t, 0, fired)

	ticker.Tick(step)
	assert.Equal(t, 1, fired)
	assert.False(t, task.Active())

	ticker.Step(4, step)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, ticker.Pending())
}

func TestTickerTaskCancel(t *testing.T) {
	ticker := NewTicker()
	fired := false

	task := ticker.After(0.25, func() { fired = true })
	task.Cancel()
	ticker.Step(4, step)

	assert.False(t, fired)
	assert.False(t, task.Active())

	var nilTask *Task
	assert.NotPanics(t, nilTask.Cancel)
	assert.False(t, nilTask.Active())
}

func TestTickerTaskScheduledFromTaskWaitsForNextTick(t *testing.T) {
	ticker := NewTicker()
	var order []float64

	ticker.After(0.25, func() {
		order = append(order, ticker.Now())
		ticker.After(0, func() { order = append(order, ticker.Now()) })
	})

	ticker.Tick(step)
	require.Equal(t, []float64{0.25}, order)

	ticker.Tick(step)
	assert.Equal(t, []float64{0.25, 0.5}, order)
}

func TestTickerTasksFireInDueOrder(t *testing.T) {
	ticker := NewTicker()
	var order []string

	ticker.After(0.5, func() { order = append(order, "late") })
	ticker.After(0.25, func() { order = append(order, "early") })
	ticker.After(0.5, func() { order = append(order, "late-second") })

	ticker.Tick(1)
	assert.Equal(t, []string{"early", "late", "late-second"}, order)
}

func TestTickerOrderTimelinesTasksObservers(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	var order []string

	tl := NewTimeline("tl").To(el, Props{PropX: To(1)}, 0.25, EaseNone, "")
	tl.OnComplete(func() { order = append(order, "timeline") })
	ticker.Play(tl)
	ticker.After(0.25, func() { order = append(order, "task") })
	ticker.AddObserver(ObserverFunc(func(Frame) { order = append(order, "observer") }))

	ticker.Tick(step)
	assert.Equal(t, []string{"timeline", "task", "observer"}, order)
}

func TestTickerObservers(t *testing.T) {
	ticker := NewTicker()
	var frames []Frame

	remove := ticker.AddObserver(ObserverFunc(func(f Frame) { frames = append(frames, f) }))
	assert.Equal(t, 1, ticker.Observers())

	ticker.Tick(step)
	ticker.Tick(step)
	remove()
	ticker.Tick(step)

	require.Len(t, frames, 2)
	assert.Equal(t, uint64(1), frames[0].Index)
	assert.Equal(t, Frame{Index: 2, Time: 0.5, Delta: step}, frames[1])
	assert.Equal(t, 0, ticker.Observers())
	assert.Equal(t, uint64(3), ticker.Frame())
}

func TestTickerAdvance(t *testing.T) {
	ticker := NewTicker()
	ticker.Advance(1, step)
	assert.Equal(t, 1.0, ticker.Now())
	assert.Equal(t, uint64(4), ticker.Frame())

	ticker.Tick(-1)
	assert.Equal(t, 1.0, ticker.Now())
}

func TestTickerPausedTimelineStaysRegistered(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")

	tl := NewTimeline("idle", Repeat(-1), Yoyo()).To(el, Props{PropY: To(-8)}, 1, EaseNone, "")
	ticker.Play(tl)
	ticker.Step(2, step)
	tl.Pause()
	ticker.Step(4, step)

	assert.Equal(t, -4.0, el.Get(PropY))
	assert.Equal(t, 1, ticker.Active())

	tl.Resume()
	ticker.Step(2, step)
	assert.Equal(t, -8.0, el.Get(PropY))
}
