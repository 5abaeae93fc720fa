package animtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/normanking/anty/internal/animation"
)

type counter struct {
	frames  int
	elapsed float64
}

func (c *counter) Tick(dt float64) {
	c.frames++
	c.elapsed += dt
}

func TestAdvance(t *testing.T) {
	var c counter
	assert.Equal(t, 60, Advance(&c, 1))
	assert.Equal(t, 60, c.frames)
	assert.InDelta(t, 1.0, c.elapsed, 1e-9)
}

func TestUntil(t *testing.T) {
	var c counter
	took := Until(t, &c, 1, func() bool { return c.frames == 30 })
	assert.InDelta(t, 0.5, took, 1e-9)
}

func TestNoConflictsOnQuietElements(t *testing.T) {
	tk := animation.NewTicker()
	els := animation.NewElements()
	tl := animation.NewTimeline("fade")
	tl.To(els.Character, animation.Props{animation.PropOpacity: animation.To(0)}, 0.2, animation.EaseNone, "0")
	tk.Play(tl)
	Advance(tk, 0.5)
	assert.True(t, NoConflicts(t, els))
}
