package mascot

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/animtest"
	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/transition"
)

func newCharacter(t *testing.T, cfg *config.Config, b *bus.EventBus) *Character {
	t.Helper()
	c := New(Options{
		Config: cfg,
		Bus:    b,
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewSource(7)),
	})
	t.Cleanup(c.Destroy)
	return c
}

func TestEmoteReturnsToIdle(t *testing.T) {
	c := newCharacter(t, nil, nil)
	require.True(t, c.IsIdle())
	require.True(t, c.IsIdlePlaying())

	require.True(t, c.Emote(emotion.Celebrate, EmoteOptions{}))
	assert.Equal(t, avatar.StateEmotion, c.State())
	assert.Equal(t, emotion.Celebrate, c.Emotion())
	assert.False(t, c.IsIdlePlaying())

	animtest.Advance(c, 2)
	assert.Equal(t, avatar.StateIdle, c.State())
	assert.Empty(t, c.Emotion())
	assert.True(t, c.IsIdlePlaying())
	animtest.NoConflicts(t, c.Elements())
}

func TestEmoteUnknownIsRejected(t *testing.T) {
	b := bus.NewEventBus()
	rejected := make(chan bus.Event, 1)
	b.Subscribe(bus.EventTypeEmotionRejected, func(e bus.Event) { rejected <- e })
	c := newCharacter(t, nil, b)

	assert.False(t, c.Emote("moonwalk", EmoteOptions{}))
	assert.Equal(t, avatar.StateIdle, c.State())

	select {
	case e := <-rejected:
		assert.Equal(t, "moonwalk", e.Data["emotion"])
	case <-time.After(2 * time.Second):
		t.Fatal("no rejection event")
	}
}

func TestQueuedEmotionPlaysAfterCurrent(t *testing.T) {
	c := newCharacter(t, nil, nil)
	require.True(t, c.Emote(emotion.Celebrate, EmoteOptions{Priority: 3}))
	assert.False(t, c.Emote(emotion.Nod, EmoteOptions{}))
	assert.Len(t, c.DebugInfo().Queue, 1)

	animtest.Advance(c, 1.6)
	assert.Equal(t, emotion.Nod, c.Emotion())
	animtest.Advance(c, 1.2)
	assert.True(t, c.IsIdle())
	animtest.NoConflicts(t, c.Elements())
}

func TestPowerOffAndWakeUp(t *testing.T) {
	c := newCharacter(t, nil, nil)
	els := c.Elements()

	assert.False(t, c.WakeUp())
	require.True(t, c.PowerOff())
	assert.Equal(t, avatar.StateTransitionOut, c.State())

	animtest.Advance(c, transition.PowerOffDuration+0.2)
	assert.Equal(t, avatar.StateOff, c.State())
	assert.InDelta(t, transition.OffOpacity, els.Character.Get(animation.PropOpacity), 1e-9)
	assert.Equal(t, 0.0, els.Shadow.Get(animation.PropOpacity))
	assert.False(t, c.Emote(emotion.Happy, EmoteOptions{}))

	require.True(t, c.WakeUp())
	assert.Equal(t, avatar.StateTransitionIn, c.State())
	animtest.Advance(c, transition.WakeUpDuration+0.2)
	assert.Equal(t, avatar.StateIdle, c.State())
	assert.True(t, c.IsIdlePlaying())
	assert.Equal(t, 1.0, els.Character.Get(animation.PropOpacity))
	assert.Equal(t, "idle", els.LeftPath.Shape().Name)
	animtest.NoConflicts(t, els)
}

func TestStartAsleep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Character.StartAsleep = true
	c := newCharacter(t, cfg, nil)
	els := c.Elements()

	assert.Equal(t, avatar.StateOff, c.State())
	assert.False(t, c.IsIdlePlaying())
	assert.InDelta(t, transition.OffOpacity, els.Character.Get(animation.PropOpacity), 1e-9)
	assert.Equal(t, "triangle", els.LeftPath.Shape().Name)

	animtest.Advance(c, 0.5)
	assert.Equal(t, 0.0, els.Shadow.Get(animation.PropOpacity))

	require.True(t, c.WakeUp())
	animtest.Advance(c, transition.WakeUpDuration+0.2)
	assert.True(t, c.IsIdle())
	assert.True(t, c.IsIdlePlaying())
	animtest.NoConflicts(t, els)
}

func TestSearchQueuesUntilRestored(t *testing.T) {
	c := newCharacter(t, nil, nil)
	assert.False(t, c.ExitSearch())

	require.True(t, c.EnterSearch())
	animtest.Advance(c, transition.SearchDuration+0.1)
	assert.Equal(t, avatar.StateSearch, c.State())

	assert.False(t, c.Emote(emotion.Happy, EmoteOptions{}))
	assert.Equal(t, avatar.StateSearch, c.State())

	require.True(t, c.ExitSearch())
	animtest.Advance(c, transition.SearchDuration+0.1)
	assert.Equal(t, emotion.Happy, c.Emotion())
}

func TestSetSize(t *testing.T) {
	c := newCharacter(t, nil, nil)

	c.SetSize(80)
	assert.Equal(t, 0.5, c.SizeScale())

	require.True(t, c.Emote(emotion.Celebrate, EmoteOptions{}))
	c.SetSize(320)
	assert.Equal(t, 0.5, c.SizeScale())

	animtest.Advance(c, 2)
	assert.Equal(t, 2.0, c.SizeScale())
	assert.True(t, c.IsIdlePlaying())

	c.SetSize(0)
	assert.Equal(t, 2.0, c.SizeScale())
}

func TestSuperMode(t *testing.T) {
	c := newCharacter(t, nil, nil)

	c.SetSuperMode(1.5)
	info := c.DebugInfo()
	assert.True(t, info.SuperMode)
	assert.Equal(t, 1.5, info.BaseScale)
	assert.Equal(t, 1.5, c.Elements().Character.Get(animation.PropScale))

	c.SetSuperMode(0)
	assert.False(t, c.DebugInfo().SuperMode)
	assert.Equal(t, 1.0, c.DebugInfo().BaseScale)
}

func TestPauseAndResume(t *testing.T) {
	c := newCharacter(t, nil, nil)
	require.True(t, c.Emote(emotion.Celebrate, EmoteOptions{}))
	animtest.Advance(c, 0.2)

	require.True(t, c.Pause())
	assert.Equal(t, avatar.StatePaused, c.State())
	before := c.Elements().Character.Transform()
	animtest.Advance(c, 3)
	assert.Equal(t, before, c.Elements().Character.Transform())
	assert.Equal(t, emotion.Celebrate, c.Emotion())

	require.True(t, c.Resume())
	assert.Equal(t, avatar.StateEmotion, c.State())
	animtest.Advance(c, 2)
	assert.True(t, c.IsIdle())
	assert.False(t, c.Resume())
}

func TestPauseDuringLookAroundKeepsIdle(t *testing.T) {
	c := newCharacter(t, nil, nil)
	require.True(t, c.Emote(emotion.LookAround, EmoteOptions{}))
	animtest.Advance(c, 0.5)

	require.True(t, c.Pause())
	require.True(t, c.Resume())
	animtest.Advance(c, 3)
	assert.Equal(t, avatar.StateIdle, c.State())
	assert.True(t, c.IsIdlePlaying())
}

func TestForcedEmoteLeavesPauseWithTrackers(t *testing.T) {
	c := newCharacter(t, nil, nil)
	require.True(t, c.Pause())
	assert.False(t, c.glow.Running())
	assert.False(t, c.shadow.Running())

	require.True(t, c.Emote(emotion.Jump, EmoteOptions{Force: true}))
	assert.Equal(t, avatar.StateEmotion, c.State())
	assert.True(t, c.glow.Running())
	assert.True(t, c.shadow.Running())

	animtest.Advance(c, 3)
	assert.Equal(t, avatar.StateIdle, c.State())
	assert.True(t, c.glow.Running())
	assert.True(t, c.shadow.Running())
}

func TestTransitionDropsPendingEyeReset(t *testing.T) {
	t.Run("power off", func(t *testing.T) {
		c := newCharacter(t, nil, nil)
		require.True(t, c.Emote(emotion.LookLeft, EmoteOptions{}))
		animtest.Advance(c, 0.4)
		require.True(t, c.in.HasPendingReset())

		require.True(t, c.PowerOff())
		assert.False(t, c.in.HasPendingReset())
		animtest.Advance(c, 2)
		assert.Equal(t, avatar.StateOff, c.State())
		assert.Equal(t, "triangle", c.Elements().LeftPath.Shape().Name)
	})
	t.Run("search", func(t *testing.T) {
		c := newCharacter(t, nil, nil)
		require.True(t, c.Emote(emotion.LookLeft, EmoteOptions{}))
		animtest.Advance(c, 0.4)

		require.True(t, c.EnterSearch())
		animtest.Advance(c, 2)
		assert.Equal(t, avatar.StateSearch, c.State())
		assert.Equal(t, "half", c.Elements().LeftPath.Shape().Name)
	})
}

func TestSearchPowerCycleRecentersBrackets(t *testing.T) {
	c := newCharacter(t, nil, nil)
	els := c.Elements()
	require.True(t, c.EnterSearch())
	animtest.Advance(c, 1)
	require.NotZero(t, els.LeftBody.Get(animation.PropX))

	require.True(t, c.PowerOff())
	animtest.Advance(c, 2)
	require.True(t, c.WakeUp())
	animtest.Advance(c, 2)

	assert.Equal(t, avatar.StateIdle, c.State())
	assert.Equal(t, 0.0, els.LeftBody.Get(animation.PropX))
	assert.Equal(t, 0.0, els.RightBody.Get(animation.PropX))
}

func TestRecover(t *testing.T) {
	c := newCharacter(t, nil, nil)
	require.True(t, c.Emote(emotion.Spin, EmoteOptions{}))
	animtest.Advance(c, 0.3)

	c.Recover()
	els := c.Elements()
	assert.Equal(t, avatar.StateIdle, c.State())
	assert.Empty(t, c.Emotion())
	assert.True(t, c.IsIdlePlaying())
	assert.Equal(t, animation.Transform{Scale: 1}, els.Character.Transform())
	assert.Equal(t, "idle", els.LeftPath.Shape().Name)
	assert.Equal(t, 1.0, els.Character.Get(animation.PropOpacity))
}

func TestDestroy(t *testing.T) {
	b := bus.NewEventBus()
	destroyed := make(chan struct{}, 1)
	b.Subscribe(bus.EventTypeDestroyed, func(bus.Event) { destroyed <- struct{}{} })
	c := newCharacter(t, nil, b)

	c.Destroy()
	assert.False(t, c.Emote(emotion.Happy, EmoteOptions{}))
	assert.False(t, c.PowerOff())
	assert.NotPanics(t, func() { animtest.Advance(c, 0.5) })
	assert.Zero(t, c.DebugInfo().Frame)

	select {
	case <-destroyed:
	case <-time.After(2 * time.Second):
		t.Fatal("no destroyed event")
	}
}

func TestPublishesLifecycleEvents(t *testing.T) {
	b := bus.NewEventBus()
	var mu sync.Mutex
	seen := map[bus.EventType][]bus.Event{}
	b.SubscribeAll(func(e bus.Event) {
		mu.Lock()
		seen[e.Type] = append(seen[e.Type], e)
		mu.Unlock()
	})
	c := newCharacter(t, nil, b)

	require.True(t, c.Emote(emotion.Idea, EmoteOptions{}))
	animtest.Advance(c, 2)

	has := func(typ bus.EventType) bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen[typ]) > 0
	}
	assert.Eventually(t, func() bool {
		return has(bus.EventTypeEmotionStarted) &&
			has(bus.EventTypeEmotionComplete) &&
			has(bus.EventTypeStateChanged) &&
			has(bus.EventTypeSequenceChanged)
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	started := seen[bus.EventTypeEmotionStarted][0]
	mu.Unlock()
	assert.Equal(t, "idea", started.Data["emotion"])
	assert.Equal(t, true, started.Data["lightbulb"])
}

func TestRunStopsOnCancel(t *testing.T) {
	c := newCharacter(t, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, c.Run(ctx, 120))
	assert.Greater(t, c.DebugInfo().Frame, uint64(0))
}
