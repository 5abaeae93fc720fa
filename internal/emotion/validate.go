package emotion

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/eyeshape"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid emotion config")

const durationSlack = 1e-6

// Validate checks the config for data-entry errors, including phases that
// end after TotalDuration.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, c.ID, fmt.Sprintf(format, args...)))
	}
	checkEase := func(where string, e animation.Ease) {
		if _, err := e.Func(); err != nil {
			fail("%s: %v", where, err)
		}
	}
	checkShape := func(where string, n eyeshape.Name) {
		if n != "" && !eyeshape.Valid(n) {
			fail("%s: unknown eye shape %q", where, n)
		}
	}

	if !c.ID.Valid() {
		fail("unknown emotion id")
	}
	if c.TotalDuration <= 0 {
		fail("totalDuration must be positive")
	}
	if c.HoldDuration < 0 {
		fail("holdDuration must not be negative")
	}

	if e := c.Eyes; e != nil {
		if e.Duration <= 0 {
			fail("eyes: duration must be positive")
		}
		if e.Delay < 0 {
			fail("eyes: delay must not be negative")
		}
		if e.ReturnDuration < 0 {
			fail("eyes: returnDuration must not be negative")
		}
		checkShape("eyes", e.Shape)
		checkShape("eyes.left", e.Left)
		checkShape("eyes.right", e.Right)
		checkEase("eyes", e.Ease)
		left, right := e.Shapes()
		if left == "" && right == "" && e.LeftTransform == nil && e.RightTransform == nil && e.Bunch == 0 {
			fail("eyes: nothing to animate")
		}
	}

	for i, ph := range c.EyePhases {
		where := fmt.Sprintf("eyePhases[%d]", i)
		if ph.Duration <= 0 {
			fail("%s: duration must be positive", where)
		}
		if ph.At < 0 {
			fail("%s: at must not be negative", where)
		}
		checkShape(where, ph.Shape)
		checkShape(where+".left", ph.Left)
		checkShape(where+".right", ph.Right)
		checkEase(where, ph.Ease)
	}

	for i, ph := range c.Character {
		where := fmt.Sprintf("character[%d]", i)
		if ph.Duration <= 0 {
			fail("%s: duration must be positive", where)
		}
		if len(ph.Props) == 0 {
			fail("%s: no props", where)
		}
		checkEase(where, ph.Ease)
		if _, err := ph.Position.Resolve(0, 0, 0); err != nil {
			fail("%s: %v", where, err)
		}
	}

	if b := c.Body; b != nil {
		if b.Duration <= 0 {
			fail("body: duration must be positive")
		}
		if b.ReturnDuration <= 0 {
			fail("body: returnDuration must be positive")
		}
		if b.Shakes < 0 || b.Hold < 0 || b.At < 0 {
			fail("body: shakes, hold and at must not be negative")
		}
		checkEase("body", b.Ease)
		checkEase("body.return", b.ReturnEase)
	}

	if c.PreserveIdle && len(c.Character) > 0 {
		fail("preserveIdle emotions must not move the character")
	}

	if len(errs) == 0 && c.TotalDuration > 0 {
		content := NewInterpreter(nil, zerolog.Nop()).ContentDuration(c)
		if content > c.TotalDuration+durationSlack {
			fail("phases end at %.3fs, after totalDuration %.3fs", content, c.TotalDuration)
		}
	}

	return errors.Join(errs...)
}

// ValidateCatalog checks that every emotion type has a valid entry.
func ValidateCatalog(cat *Catalog) error {
	var errs []error
	for _, t := range allTypes {
		cfg, ok := cat.Lookup(t)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s: missing from catalog", ErrInvalidConfig, t))
			continue
		}
		if cfg.ID != t {
			errs = append(errs, fmt.Errorf("%w: %s: entry has id %q", ErrInvalidConfig, t, cfg.ID))
		}
		if err := cfg.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
