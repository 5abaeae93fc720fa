// Package tracker holds the continuous per-frame followers that sit beside
// the timeline system: the two-layer glow and the ground shadow.
package tracker

import (
	"github.com/normanking/anty/internal/animation"
)

// Owner names used for the write-ownership audit.
const (
	GlowOwner   = "glow"
	ShadowOwner = "shadow"
)

// loop is the start/stop/pause bookkeeping shared by trackers. While started
// and not paused, obs runs after every tick of the shared ticker.
type loop struct {
	ticker *animation.Ticker
	obs    animation.Observer
	remove func()
	paused bool
	// frames up to and including this one are skipped after a resume
	resumedAt uint64
}

func (l *loop) start() bool {
	if l.remove != nil {
		return false
	}
	l.remove = l.ticker.AddObserver(l.obs)
	l.paused = false
	return true
}

func (l *loop) stop() {
	if l.remove != nil {
		l.remove()
		l.remove = nil
	}
	l.paused = false
}

func (l *loop) pause() { l.paused = true }

// resume takes effect from the next frame, so a tracker resumed by a
// timeline hook never writes in the frame that timeline last wrote.
func (l *loop) resume() {
	if !l.paused {
		return
	}
	l.paused = false
	l.resumedAt = l.ticker.Frame()
}

// skip reports whether the tracker should ignore frame f.
func (l *loop) skip(f animation.Frame) bool {
	return l.paused || (l.resumedAt > 0 && f.Index <= l.resumedAt)
}

// Started reports whether the tracker is registered on the ticker.
func (l *loop) Started() bool { return l.remove != nil }

// Running reports whether the tracker is writing every frame.
func (l *loop) Running() bool { return l.remove != nil && !l.paused }

// Paused reports whether a started tracker is paused.
func (l *loop) Paused() bool { return l.paused }
