package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quarter-second steps keep the arithmetic exact
const step = 0.25

func TestTimelineSequentialTweens(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("body")

	tl := NewTimeline("seq").
		To(el, Props{PropY: To(-10)}, 1, EaseNone, "").
		To(el, Props{PropY: To(0)}, 1, EaseNone, "")
	assert.Equal(t, 2.0, tl.Duration())

	ticker.Play(tl)
	ticker.Step(2, step)
	assert.Equal(t, -5.0, el.Get(PropY))

	ticker.Step(2, step)
	assert.Equal(t, -10.0, el.Get(PropY))

	ticker.Step(2, step)
	assert.Equal(t, -5.0, el.Get(PropY))

	ticker.Step(2, step)
	assert.Equal(t, 0.0, el.Get(PropY))
	assert.True(t, tl.Completed())
	assert.Equal(t, 0, ticker.Active())
}

func TestTimelineDoesNotAdvanceUntilPlayed(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("body")

	tl := NewTimeline("paused").To(el, Props{PropX: To(10)}, 1, EaseNone, "")
	ticker.Add(tl)
	ticker.Step(4, step)

	assert.Equal(t, 0.0, el.Get(PropX))
	assert.True(t, tl.Paused())
	assert.False(t, tl.IsActive())
}

func TestTimelinePositions(t *testing.T) {
	a := NewElement("a")
	b := NewElement("b")

	tl := NewTimeline("positions").
		To(a, Props{PropX: To(1)}, 1, EaseNone, "").
		To(b, Props{PropX: To(1)}, 1, EaseNone, "-=0.5").
		To(a, Props{PropY: To(1)}, 0.5, EaseNone, "<").
		To(b, Props{PropY: To(1)}, 0.5, EaseNone, "3")

	specs := tl.Describe()
	require.Len(t, specs, 4)
	assert.Equal(t, 0.0, specs[0].Start)
	assert.Equal(t, 0.5, specs[1].Start)
	assert.Equal(t, 0.5, specs[2].Start)
	assert.Equal(t, 3.0, specs[3].Start)
	assert.Equal(t, 3.5, tl.Duration())
	assert.NoError(t, tl.Err())
}

func TestTimelineBadPositionRecorded(t *testing.T) {
	el := NewElement("el")
	tl := NewTimeline("bad").
		To(el, Props{PropX: To(1)}, 1, EaseNone, "").
		To(el, Props{PropX: To(0)}, 1, EaseNone, "whenever")

	assert.ErrorIs(t, tl.Err(), ErrBadPosition)
	specs := tl.Describe()
	require.Len(t, specs, 2)
	assert.Equal(t, 1.0, specs[1].Start)
}

func TestTimelineSkipsNilTargets(t *testing.T) {
	tl := NewTimeline("nil").
		To(nil, Props{PropX: To(1)}, 1, EaseNone, "").
		Morph(nil, Shape{Name: "happy"}, 1, EaseNone, "")

	assert.Empty(t, tl.Describe())
	assert.Equal(t, 0.0, tl.Duration())
}

func TestTimelineNested(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")

	inner := NewTimeline("inner").To(el, Props{PropX: To(4)}, 1, EaseNone, "")
	outer := NewTimeline("outer").
		To(el, Props{PropY: To(2)}, 1, EaseNone, "").
		Add(inner, "0.5")

	assert.Equal(t, 1.5, outer.Duration())
	specs := outer.Describe()
	require.Len(t, specs, 2)
	assert.Equal(t, 0.5, specs[1].Start)

	ticker.Play(outer)
	ticker.Step(4, step)
	assert.Equal(t, 2.0, el.Get(PropY))
	assert.Equal(t, 2.0, el.Get(PropX))

	ticker.Step(2, step)
	assert.Equal(t, 4.0, el.Get(PropX))
	assert.True(t, outer.Completed())
}

func TestTimelineOnCompleteRunsOnce(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	calls := 0

	tl := NewTimeline("done").To(el, Props{PropX: To(1)}, 0.5, EaseNone, "")
	tl.OnComplete(func() { calls++ })
	ticker.Play(tl)
	ticker.Step(10, step)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, tl.Progress())
}

func TestTimelineKillInterrupts(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	interrupted := 0

	tl := NewTimeline("kill").To(el, Props{PropX: To(10)}, 1, EaseNone, "")
	tl.OnInterrupt(func() { interrupted++ })
	ticker.Play(tl)
	ticker.Step(2, step)
	require.Equal(t, 5.0, el.Get(PropX))

	tl.Kill()
	tl.Kill()
	ticker.Step(4, step)

	assert.Equal(t, 1, interrupted)
	assert.Equal(t, 5.0, el.Get(PropX))
	assert.True(t, tl.Killed())
	assert.Equal(t, 0, ticker.Active())
}

func TestTimelineKillWithoutInterrupt(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")

	t.Run("never played", func(t *testing.T) {
		interrupted := false
		tl := NewTimeline("idle").To(el, Props{PropX: To(1)}, 1, EaseNone, "")
		tl.OnInterrupt(func() { interrupted = true })
		ticker.Add(tl)
		tl.Kill()
		assert.False(t, interrupted)
	})

	t.Run("already completed", func(t *testing.T) {
		interrupted := false
		tl := NewTimeline("done").To(el, Props{PropX: To(1)}, 0.25, EaseNone, "")
		tl.OnInterrupt(func() { interrupted = true })
		ticker.Play(tl)
		ticker.Step(2, step)
		require.True(t, tl.Completed())
		tl.Kill()
		assert.False(t, interrupted)
	})
}

func TestTimelineYoyoRepeat(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")

	tl := NewTimeline("float", Repeat(-1), Yoyo()).
		To(el, Props{PropY: To(-8)}, 1, EaseNone, "")
	ticker.Play(tl)

	ticker.Step(4, step)
	assert.Equal(t, -8.0, el.Get(PropY))

	ticker.Step(2, step)
	assert.Equal(t, -4.0, el.Get(PropY))

	ticker.Step(2, step)
	assert.Equal(t, 0.0, el.Get(PropY))

	ticker.Step(2, step)
	assert.Equal(t, -4.0, el.Get(PropY))
	assert.False(t, tl.Completed())
	assert.True(t, tl.IsActive())
}

func TestTimelineRepeatWithoutYoyo(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	hits := 0

	tl := NewTimeline("loop", Repeat(1)).
		To(el, Props{PropX: To(4)}, 1, EaseNone, "").
		Call(func() { hits++ }, "0")
	assert.Equal(t, 2.0, tl.TotalDuration())

	ticker.Play(tl)
	ticker.Step(4, step)
	assert.Equal(t, 4.0, el.Get(PropX))

	ticker.Step(2, step)
	assert.Equal(t, 2.0, el.Get(PropX))

	ticker.Step(2, step)
	assert.Equal(t, 4.0, el.Get(PropX))
	assert.True(t, tl.Completed())
	assert.Equal(t, 2, hits)
}

func TestTimelineRelativeScaleAndInvalidate(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	el.Set(PropScale, 1.5)

	tl := NewTimeline("breathe").To(el, Props{PropScale: Times(1.02)}, 1, EaseNone, "")
	ticker.Play(tl)
	ticker.Step(4, step)
	assert.InDelta(t, 1.53, el.Get(PropScale), 1e-9)

	// restart alone replays the captured values
	el.Set(PropScale, 2)
	tl.Restart()
	ticker.Step(4, step)
	assert.InDelta(t, 1.53, el.Get(PropScale), 1e-9)

	// invalidate recaptures the current scale
	el.Set(PropScale, 2)
	tl.Invalidate()
	tl.Restart()
	ticker.Step(4, step)
	assert.InDelta(t, 2.04, el.Get(PropScale), 1e-9)
}

func TestTimelineAdditiveValues(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	el.Set(PropRotation, 10)

	tl := NewTimeline("spin").To(el, Props{PropRotation: By(360)}, 0.5, EaseNone, "")
	ticker.Play(tl)
	ticker.Step(2, step)

	assert.Equal(t, 370.0, el.Get(PropRotation))
}

func TestTimelineDelay(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")

	tl := NewTimeline("delayed", Delay(0.5)).To(el, Props{PropX: To(10)}, 1, EaseNone, "")
	ticker.Play(tl)

	ticker.Step(2, step)
	assert.Equal(t, 0.0, el.Get(PropX))

	ticker.Step(2, step)
	assert.Equal(t, 5.0, el.Get(PropX))

	ticker.Step(2, step)
	assert.Equal(t, 10.0, el.Get(PropX))
	assert.True(t, tl.Completed())
}

func TestTimelineCallsAtPosition(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	var order []string

	tl := NewTimeline("calls").
		To(el, Props{PropX: To(1)}, 1, EaseNone, "").
		Call(func() { order = append(order, "mid") }, "0.5").
		Call(func() { order = append(order, "end") }, "")
	tl.OnComplete(func() { order = append(order, "complete") })

	ticker.Play(tl)
	ticker.Step(1, step)
	assert.Empty(t, order)

	ticker.Step(1, step)
	assert.Equal(t, []string{"mid"}, order)

	ticker.Step(2, step)
	assert.Equal(t, []string{"mid", "end", "complete"}, order)
}

func TestTimelineZeroDuration(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")

	tl := NewTimeline("set").Set(el, Props{PropOpacity: To(0)}, "")
	ticker.Play(tl)
	ticker.Tick(step)

	assert.Equal(t, 0.0, el.Get(PropOpacity))
	assert.True(t, tl.Completed())
}

func TestTimelineMorph(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("eye")
	el.SetShape(Shape{Name: "idle", Path: "M0"})

	tl := NewTimeline("morph").Morph(el, Shape{Name: "happy", Path: "M1"}, 1, EaseNone, "")
	ticker.Play(tl)

	ticker.Tick(step)
	m := el.Morph()
	assert.Equal(t, "idle", m.From.Name)
	assert.Equal(t, "happy", m.To.Name)
	assert.Equal(t, 0.25, m.T)
	assert.Equal(t, "idle", el.Shape().Name)

	ticker.Step(3, step)
	assert.Equal(t, "happy", el.Shape().Name)
	assert.Equal(t, 1.0, el.Morph().T)

	specs := tl.Describe()
	require.Len(t, specs, 1)
	assert.Equal(t, "happy", specs[0].Shape)
	assert.Equal(t, "eye", specs[0].Target)
}

func TestTimelineHookRestartKeepsItAttached(t *testing.T) {
	ticker := NewTicker()
	el := NewElement("el")
	restarts := 0

	tl := NewTimeline("again").To(el, Props{PropX: To(1)}, 0.5, EaseNone, "")
	tl.OnComplete(func() {
		if restarts < 1 {
			restarts++
			tl.Restart()
		}
	})
	ticker.Play(tl)

	ticker.Step(2, step)
	assert.Equal(t, 1, ticker.Active())
	assert.False(t, tl.Completed())

	ticker.Step(2, step)
	assert.True(t, tl.Completed())
	assert.Equal(t, 0, ticker.Active())
}
