package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseEndpoints(t *testing.T) {
	families := []string{"power1", "power2", "power3", "power4", "sine", "expo", "circ", "back", "elastic", "bounce"}
	variants := []string{"in", "out", "inOut"}

	for _, family := range families {
		for _, variant := range variants {
			name := Ease(family + "." + variant)
			t.Run(string(name), func(t *testing.T) {
				fn, err := name.Func()
				require.NoError(t, err)
				assert.InDelta(t, 0, fn(0), 1e-6)
				assert.InDelta(t, 1, fn(1), 1e-6)
			})
		}
	}
}

func TestEaseKnownValues(t *testing.T) {
	tests := []struct {
		ease Ease
		t    float64
		want float64
	}{
		{EaseNone, 0.3, 0.3},
		{"linear", 0.7, 0.7},
		{EasePower2Out, 0.5, 0.875},
		{EasePower2In, 0.5, 0.125},
		{EaseSineInOut, 0.5, 0.5},
		{"", 0.5, 0.75},
		{"power2", 0.5, 0.875},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, tt.ease.Apply(tt.t), 1e-9, "ease %q at %v", tt.ease, tt.t)
	}
}

func TestEaseBackOvershoots(t *testing.T) {
	fn, err := Ease("back.out(1.7)").Func()
	require.NoError(t, err)
	assert.Greater(t, fn(0.5), 1.0)

	softer, err := Ease("back.out(0.5)").Func()
	require.NoError(t, err)
	assert.Less(t, softer(0.5), fn(0.5))
}

func TestEaseUnknown(t *testing.T) {
	for _, name := range []Ease{"wobble.out", "power2.sideways", "back.out(x)", "back.out(1.2"} {
		_, err := name.Func()
		assert.Error(t, err, "ease %q", name)
	}

	// unknown eases fall back to linear
	assert.Equal(t, 0.4, Ease("wobble.out").Apply(0.4))
}

func TestLerpClamp(t *testing.T) {
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
	assert.Equal(t, -10.0, Lerp(0, -20, 0.5))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.0, Clamp(-3, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}
