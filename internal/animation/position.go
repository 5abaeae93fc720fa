package animation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPosition is returned for position strings that cannot be parsed.
var ErrBadPosition = errors.New("invalid timeline position")

// Position places a child on a timeline:
//
//	""      after everything already on the timeline
//	"1.2"   absolute seconds
//	"+=0.1" gap after the end, "-=0.3" overlap with the end
//	"<"     with the start of the previous child ("<0.2" offset from it)
//	">"     at the end of the previous child (">-0.1" offset from it)
type Position string

// At returns an absolute position.
func At(seconds float64) Position {
	return Position(strconv.FormatFloat(seconds, 'f', -1, 64))
}

// Overlap returns a "-=" position.
func Overlap(seconds float64) Position {
	return Position("-=" + strconv.FormatFloat(seconds, 'f', -1, 64))
}

// Gap returns a "+=" position.
func Gap(seconds float64) Position {
	return Position("+=" + strconv.FormatFloat(seconds, 'f', -1, 64))
}

// WithPrevious starts alongside the previously added child.
const WithPrevious Position = "<"

// Resolve converts p to an absolute time given the timeline's current end and
// the bounds of the previously added child.
func (p Position) Resolve(end, prevStart, prevEnd float64) (float64, error) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return end, nil
	}

	var base float64
	switch {
	case strings.HasPrefix(s, "+="):
		return offset(end, s[2:], 1, p)
	case strings.HasPrefix(s, "-="):
		return offset(end, s[2:], -1, p)
	case strings.HasPrefix(s, "<"):
		base, s = prevStart, s[1:]
	case strings.HasPrefix(s, ">"):
		base, s = prevEnd, s[1:]
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadPosition, string(p))
		}
		return v, nil
	}

	if s == "" {
		return base, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPosition, string(p))
	}
	return clampStart(base + v), nil
}

func offset(end float64, num string, sign float64, p Position) (float64, error) {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadPosition, string(p))
	}
	return clampStart(end + sign*v), nil
}

func clampStart(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
