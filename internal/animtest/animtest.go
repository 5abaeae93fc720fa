// Package animtest holds helpers for tests that drive animations in
// simulated time.
package animtest

import (
	"testing"

	"github.com/normanking/anty/internal/animation"
)

// Frame is one 60 fps frame in seconds.
const Frame = 1.0 / 60

// Ticker is anything advanced by a frame delta: an animation.Ticker or a
// whole character.
type Ticker interface {
	Tick(dt float64)
}

// Advance ticks tk in Frame steps over seconds of simulated time and
// returns the number of frames.
func Advance(tk Ticker, seconds float64) int {
	n := int(seconds/Frame + 0.5)
	for i := 0; i < n; i++ {
		tk.Tick(Frame)
	}
	return n
}

// Until ticks tk until cond holds and returns the simulated seconds that
// took. It fails tb if limit seconds pass first.
func Until(tb testing.TB, tk Ticker, limit float64, cond func() bool) float64 {
	tb.Helper()
	elapsed := 0.0
	for !cond() {
		if elapsed >= limit {
			tb.Fatalf("condition not met within %.2fs", limit)
			return elapsed
		}
		tk.Tick(Frame)
		elapsed += Frame
	}
	return elapsed
}

// NoConflicts fails tb for every frame in which two writers touched the
// same property of els.
func NoConflicts(tb testing.TB, els *animation.Elements) bool {
	tb.Helper()
	conflicts := els.Conflicts()
	for _, c := range conflicts {
		tb.Errorf("frame %d: %s.%s written by %s and %s", c.Frame, c.Element, c.Prop, c.Owners[0], c.Owners[1])
	}
	return len(conflicts) == 0
}
