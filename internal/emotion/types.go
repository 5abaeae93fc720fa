// Package emotion holds the declarative emotion catalog and the interpreter
// that compiles catalog entries into playable timelines.
package emotion

import (
	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/eyeshape"
)

// ReferenceSize is the character size, in pixels, that catalog pixel values
// are authored against.
const ReferenceSize = 160.0

// Type identifies an emotion.
type Type string

const (
	Happy      Type = "happy"
	Celebrate  Type = "celebrate"
	Excited    Type = "excited"
	Pleased    Type = "pleased"
	Smize      Type = "smize"
	Sad        Type = "sad"
	Angry      Type = "angry"
	Shocked    Type = "shocked"
	Spin       Type = "spin"
	Jump       Type = "jump"
	Idea       Type = "idea"
	BackForth  Type = "back-forth"
	Wink       Type = "wink"
	Nod        Type = "nod"
	Headshake  Type = "headshake"
	LookAround Type = "look-around"
	LookLeft   Type = "look-left"
	LookRight  Type = "look-right"
	Super      Type = "super"
)

var allTypes = []Type{
	Happy, Celebrate, Excited, Pleased, Smize, Sad, Angry, Shocked, Spin, Jump,
	Idea, BackForth, Wink, Nod, Headshake, LookAround, LookLeft, LookRight, Super,
}

// Types lists every emotion in catalog order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t is a known emotion.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EyeTransform moves one eye container. X and Y are pixels.
type EyeTransform struct {
	Rotation float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	X        float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y        float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Scale    float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// EyeSpec is the main eye change of an emotion. Left and Right override
// Shape for asymmetric expressions.
type EyeSpec struct {
	Shape    eyeshape.Name  `yaml:"shape,omitempty" json:"shape,omitempty"`
	Left     eyeshape.Name  `yaml:"left,omitempty" json:"left,omitempty"`
	Right    eyeshape.Name  `yaml:"right,omitempty" json:"right,omitempty"`
	Duration float64        `yaml:"duration" json:"duration"`
	Delay    float64        `yaml:"delay,omitempty" json:"delay,omitempty"`
	Ease     animation.Ease `yaml:"ease,omitempty" json:"ease,omitempty"`

	LeftTransform  *EyeTransform `yaml:"leftTransform,omitempty" json:"leftTransform,omitempty"`
	RightTransform *EyeTransform `yaml:"rightTransform,omitempty" json:"rightTransform,omitempty"`
	// Bunch pulls both eyes toward the centre by this many pixels.
	Bunch float64 `yaml:"bunch,omitempty" json:"bunch,omitempty"`

	ReturnScale    float64 `yaml:"returnScale,omitempty" json:"returnScale,omitempty"`
	ReturnDuration float64 `yaml:"returnDuration,omitempty" json:"returnDuration,omitempty"`
}

// Shapes resolves the left and right shape names; empty means unchanged.
func (e *EyeSpec) Shapes() (left, right eyeshape.Name) {
	left, right = e.Shape, e.Shape
	if e.Left != "" {
		left = e.Left
	}
	if e.Right != "" {
		right = e.Right
	}
	return left, right
}

// EyePhase is an eye change anchored at an absolute offset.
type EyePhase struct {
	Shape    eyeshape.Name  `yaml:"shape,omitempty" json:"shape,omitempty"`
	Left     eyeshape.Name  `yaml:"left,omitempty" json:"left,omitempty"`
	Right    eyeshape.Name  `yaml:"right,omitempty" json:"right,omitempty"`
	At       float64        `yaml:"at" json:"at"`
	Duration float64        `yaml:"duration" json:"duration"`
	Ease     animation.Ease `yaml:"ease,omitempty" json:"ease,omitempty"`
	X        *float64       `yaml:"x,omitempty" json:"x,omitempty"`
	Y        *float64       `yaml:"y,omitempty" json:"y,omitempty"`
}

// Shapes resolves the left and right shape names.
func (p *EyePhase) Shapes() (left, right eyeshape.Name) {
	left, right = p.Shape, p.Shape
	if p.Left != "" {
		left = p.Left
	}
	if p.Right != "" {
		right = p.Right
	}
	return left, right
}

// Phase is one keyframe of character movement. Pixel props (x, y) are
// scaled by size; scale props multiply the character's base scale.
type Phase struct {
	Props    map[animation.Prop]float64 `yaml:"props" json:"props"`
	Duration float64                    `yaml:"duration" json:"duration"`
	Ease     animation.Ease             `yaml:"ease,omitempty" json:"ease,omitempty"`
	Position animation.Position         `yaml:"position,omitempty" json:"position,omitempty"`
}

// BodySpec separates the body brackets and brings them back.
type BodySpec struct {
	LeftX  float64 `yaml:"leftX,omitempty" json:"leftX,omitempty"`
	LeftY  float64 `yaml:"leftY,omitempty" json:"leftY,omitempty"`
	RightX float64 `yaml:"rightX,omitempty" json:"rightX,omitempty"`
	RightY float64 `yaml:"rightY,omitempty" json:"rightY,omitempty"`

	At       float64        `yaml:"at,omitempty" json:"at,omitempty"`
	Duration float64        `yaml:"duration" json:"duration"`
	Ease     animation.Ease `yaml:"ease,omitempty" json:"ease,omitempty"`
	// Shakes mirrors the offsets this many extra times before returning.
	Shakes int     `yaml:"shakes,omitempty" json:"shakes,omitempty"`
	Hold   float64 `yaml:"hold,omitempty" json:"hold,omitempty"`

	ReturnDuration float64        `yaml:"returnDuration" json:"returnDuration"`
	ReturnEase     animation.Ease `yaml:"returnEase,omitempty" json:"returnEase,omitempty"`
}

// Config declares one emotion. Catalog entries are never mutated.
type Config struct {
	ID        Type       `yaml:"id" json:"id"`
	Eyes      *EyeSpec   `yaml:"eyes,omitempty" json:"eyes,omitempty"`
	EyePhases []EyePhase `yaml:"eyePhases,omitempty" json:"eyePhases,omitempty"`
	Character []Phase    `yaml:"character,omitempty" json:"character,omitempty"`
	Body      *BodySpec  `yaml:"body,omitempty" json:"body,omitempty"`
	Glow      bool       `yaml:"glow,omitempty" json:"glow,omitempty"`

	TotalDuration float64 `yaml:"totalDuration" json:"totalDuration"`
	HoldDuration  float64 `yaml:"holdDuration,omitempty" json:"holdDuration,omitempty"`

	ResetRotation  bool  `yaml:"resetRotation,omitempty" json:"resetRotation,omitempty"`
	ResetRotationY bool  `yaml:"resetRotationY,omitempty" json:"resetRotationY,omitempty"`
	PreserveIdle   bool  `yaml:"preserveIdle,omitempty" json:"preserveIdle,omitempty"`
	ResetIdle      *bool `yaml:"resetIdle,omitempty" json:"resetIdle,omitempty"`

	ShowLightbulb bool `yaml:"showLightbulb,omitempty" json:"showLightbulb,omitempty"`
	ShowTeardrop  bool `yaml:"showTeardrop,omitempty" json:"showTeardrop,omitempty"`
}

// ShouldResetIdle reports whether idle restarts from origin afterwards.
// Unset means yes.
func (c *Config) ShouldResetIdle() bool {
	return c.ResetIdle == nil || *c.ResetIdle
}

// IsPixel reports whether p is measured in pixels and scales with size.
func IsPixel(p animation.Prop) bool {
	switch p {
	case animation.PropX, animation.PropY, animation.PropWidth, animation.PropHeight:
		return true
	}
	return false
}

// IsScale reports whether p is a scale multiplier.
func IsScale(p animation.Prop) bool {
	switch p {
	case animation.PropScale, animation.PropScaleX, animation.PropScaleY:
		return true
	}
	return false
}

// SizeScale converts a character pixel size to the catalog scale factor.
func SizeScale(size float64) float64 {
	if size <= 0 {
		return 1
	}
	return size / ReferenceSize
}
