package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/eyeshape"
)

const frame = 0.05

func run(t *testing.T, tl *animation.Timeline) *animation.Ticker {
	t.Helper()
	ticker := animation.NewTicker()
	ticker.Play(tl)
	for i := 0; i < 100 && !tl.Completed(); i++ {
		ticker.Tick(frame)
	}
	require.True(t, tl.Completed())
	return ticker
}

func specsFor(tl *animation.Timeline, target string) []animation.TweenSpec {
	var out []animation.TweenSpec
	for _, s := range tl.Describe() {
		if s.Target == target {
			out = append(out, s)
		}
	}
	return out
}

func TestDurations(t *testing.T) {
	els := animation.NewElements()
	assert.InDelta(t, WakeUpDuration, CreateWakeUp(els, Options{}).Duration(), 1e-9)
	assert.InDelta(t, 0.95, WakeUpDuration, 1e-9)
	assert.InDelta(t, PowerOffDuration, CreatePowerOff(els, Options{}).Duration(), 1e-9)
	assert.InDelta(t, 0.9, PowerOffDuration, 1e-9)
	assert.InDelta(t, SearchDuration, CreateSearchMorph(els, Options{}).Duration(), 1e-9)
	assert.InDelta(t, SearchDuration, CreateSearchRestore(els, Options{}).Duration(), 1e-9)
}

func TestPowerOffEndsAtOffPose(t *testing.T) {
	played := animation.NewElements()
	emotion.SetIdleEyes(played, 1)
	opts := Options{BaseScale: 1.5}
	run(t, CreatePowerOff(played, opts))

	snapped := animation.NewElements()
	ApplyOffPose(snapped, opts)

	for _, p := range []animation.Prop{animation.PropY, animation.PropRotation, animation.PropScale, animation.PropOpacity} {
		assert.InDelta(t, snapped.Character.Get(p), played.Character.Get(p), 1e-9, p)
	}
	assert.InDelta(t, 1.5*OffScale, played.Character.Get(animation.PropScale), 1e-9)
	assert.InDelta(t, OffOpacity, played.Character.Get(animation.PropOpacity), 1e-9)
	assert.Equal(t, string(eyeshape.Triangle), played.LeftPath.Shape().Name)
	assert.Equal(t, snapped.RightPath.Shape(), played.RightPath.Shape())
	assert.Equal(t, snapped.LeftSvg.Get(animation.PropWidth), played.LeftSvg.Get(animation.PropWidth))
	assert.Equal(t, 0.0, played.LeftEye.Get(animation.PropScaleY))
	assert.Equal(t, 0.0, played.InnerGlow.Get(animation.PropOpacity))
	assert.Equal(t, 0.0, played.Shadow.Get(animation.PropOpacity))
	assert.Empty(t, played.Conflicts())
}

func TestPowerOffSequence(t *testing.T) {
	tl := CreatePowerOff(animation.NewElements(), Options{})

	shadow := specsFor(tl, "shadow")
	require.Len(t, shadow, 1)
	assert.Equal(t, OffShadowAt, shadow[0].Start)
	assert.Equal(t, OffShadowDuration, shadow[0].Duration)

	eyes := specsFor(tl, "leftEye")
	require.Len(t, eyes, 1)
	assert.Equal(t, OffCollapseAt, eyes[0].Start)

	path := specsFor(tl, "leftEyePath")
	require.Len(t, path, 1)
	assert.Equal(t, string(eyeshape.Triangle), path[0].Shape)
	assert.Equal(t, 0.0, path[0].Start)
}

func TestWakeUpSequence(t *testing.T) {
	els := animation.NewElements()
	ApplyOffPose(els, Options{})
	tl := CreateWakeUp(els, Options{})

	var shapes []string
	for _, s := range specsFor(tl, "rightEyePath") {
		shapes = append(shapes, s.Shape)
	}
	assert.Equal(t, []string{"closed", "arrow", "closed", "idle"}, shapes)

	ticker := animation.NewTicker()
	ticker.Play(tl)

	ticker.Step(6, frame) // 0.3s
	assert.Equal(t, "arrow", els.LeftPath.Shape().Name)
	assert.Equal(t, 1.0, els.LeftEye.Get(animation.PropScaleY))
	assert.InDelta(t, 1, els.Character.Get(animation.PropOpacity), 1e-9)

	ticker.Step(7, frame) // 0.65s
	assert.InDelta(t, -WakeLiftHeight, els.Character.Get(animation.PropY), 0.01)
	assert.InDelta(t, WakeLiftScale, els.Character.Get(animation.PropScale), 0.01)
	assert.Equal(t, "closed", els.LeftPath.Shape().Name)

	for i := 0; i < 100 && !tl.Completed(); i++ {
		ticker.Tick(frame)
	}
	require.True(t, tl.Completed())
	assert.Equal(t, animation.Transform{Scale: 1}, els.Character.Transform())
	assert.Equal(t, "idle", els.LeftPath.Shape().Name)
	assert.Equal(t, eyeshape.MustDimensions(eyeshape.Idle).Width, els.LeftSvg.Get(animation.PropWidth))
	assert.Equal(t, 1.0, els.OuterGlow.Get(animation.PropOpacity))
	assert.Equal(t, 1.0, els.Shadow.Get(animation.PropOpacity))
	assert.Empty(t, els.Conflicts())
}

func TestWakeUpScalesWithSize(t *testing.T) {
	els := animation.NewElements()
	tl := CreateWakeUp(els, Options{SizeScale: 2, BaseScale: 1.2, GlowOpacity: 0.8})

	for _, s := range specsFor(tl, "character") {
		if v, ok := s.Props[animation.PropY]; ok && s.Start == WakeLiftAt {
			assert.Equal(t, -2*WakeLiftHeight, v.V)
			assert.InDelta(t, 1.2*WakeLiftScale, s.Props[animation.PropScale].V, 1e-9)
		}
	}
	run(t, tl)
	assert.InDelta(t, 1.2, els.Character.Get(animation.PropScale), 1e-9)
	assert.InDelta(t, 0.8, els.InnerGlow.Get(animation.PropOpacity), 1e-9)
	assert.Equal(t, 2*eyeshape.MustDimensions(eyeshape.Idle).Height, els.RightSvg.Get(animation.PropHeight))
}

func TestMissingElements(t *testing.T) {
	assert.Empty(t, CreateWakeUp(nil, Options{}).Describe())
	assert.NotPanics(t, func() { ApplyOffPose(nil, Options{}) })

	els := &animation.Elements{Character: animation.NewElement("character")}
	tl := CreatePowerOff(els, Options{})
	assert.InDelta(t, PowerOffDuration, tl.Duration(), 1e-9)
	for _, s := range tl.Describe() {
		assert.Equal(t, "character", s.Target)
	}
	run(t, tl)
	assert.InDelta(t, OffOpacity, els.Character.Get(animation.PropOpacity), 1e-9)
}

func TestSearchRoundTrip(t *testing.T) {
	els := animation.NewElements()
	emotion.SetIdleEyes(els, 1)
	opts := Options{SizeScale: 1}

	run(t, CreateSearchMorph(els, opts))
	assert.InDelta(t, -SearchLift, els.Character.Get(animation.PropY), 1e-9)
	assert.InDelta(t, SearchScale, els.Character.Get(animation.PropScale), 1e-9)
	assert.InDelta(t, -SearchSpread, els.LeftBody.Get(animation.PropX), 1e-9)
	assert.InDelta(t, SearchSpread, els.RightBody.Get(animation.PropX), 1e-9)
	assert.Equal(t, "half", els.LeftPath.Shape().Name)
	assert.InDelta(t, SearchGlowOpacity, els.OuterGlow.Get(animation.PropOpacity), 1e-9)

	run(t, CreateSearchRestore(els, opts))
	assert.Equal(t, animation.Transform{Scale: 1}, els.Character.Transform())
	assert.Equal(t, 0.0, els.LeftBody.Get(animation.PropX))
	assert.Equal(t, "idle", els.LeftPath.Shape().Name)
	assert.Equal(t, 1.0, els.OuterGlow.Get(animation.PropOpacity))
}

func TestPowerOffRecentersBrackets(t *testing.T) {
	els := animation.NewElements()
	emotion.SetIdleEyes(els, 1)
	run(t, CreateSearchMorph(els, Options{}))
	require.InDelta(t, -SearchSpread, els.LeftBody.Get(animation.PropX), 1e-9)

	run(t, CreatePowerOff(els, Options{}))
	assert.Equal(t, 0.0, els.LeftBody.Get(animation.PropX))
	assert.Equal(t, 0.0, els.RightBody.Get(animation.PropX))

	els.RightBody.Set(animation.PropX, 12)
	ApplyOffPose(els, Options{})
	assert.Equal(t, 0.0, els.RightBody.Get(animation.PropX))

	els.LeftBody.Set(animation.PropX, -12)
	run(t, CreateWakeUp(els, Options{}))
	assert.Equal(t, 0.0, els.LeftBody.Get(animation.PropX))
}

func TestInterruptedSearchRecentersBrackets(t *testing.T) {
	for _, create := range []func(*animation.Elements, Options) *animation.Timeline{CreateSearchMorph, CreateSearchRestore} {
		els := animation.NewElements()
		emotion.SetIdleEyes(els, 1)
		els.LeftBody.Set(animation.PropX, -SearchSpread)
		els.RightBody.Set(animation.PropX, SearchSpread)

		tl := create(els, Options{})
		ticker := animation.NewTicker()
		ticker.Play(tl)
		ticker.Step(3, frame)
		tl.Kill()

		assert.Equal(t, 0.0, els.LeftBody.Get(animation.PropX), tl.Label())
		assert.Equal(t, 0.0, els.RightBody.Get(animation.PropX), tl.Label())
	}
}
