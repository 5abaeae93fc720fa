// Package eyeshape is the static library of eye silhouettes.
package eyeshape

import (
	"errors"
	"fmt"
	"sort"

	"github.com/normanking/anty/internal/animation"
)

// ErrUnknownShape is returned for names outside the library.
var ErrUnknownShape = errors.New("unknown eye shape")

// Name identifies an eye silhouette.
type Name string

const (
	Idle      Name = "idle"
	Happy     Name = "happy"
	Smize     Name = "smize"
	Angry     Name = "angry"
	Sad       Name = "sad"
	LookLeft  Name = "look-left"
	LookRight Name = "look-right"
	Closed    Name = "closed"
	Half      Name = "half"
	Wide      Name = "wide"
	Arrow     Name = "arrow"
	Triangle  Name = "triangle"
)

// Side selects the left or right eye for asymmetric shapes.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Dims is the rendered size of a shape at the 160px reference size.
type Dims struct {
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	ViewBox string  `json:"viewBox" yaml:"viewBox"`
}

type entry struct {
	left  string
	right string
	dims  Dims
}

var library = map[Name]entry{
	Idle: symmetric(
		"M10 0C15.52 0 20 4.48 20 10V34C20 39.52 15.52 44 10 44C4.48 44 0 39.52 0 34V10C0 4.48 4.48 0 10 0Z",
		Dims{Width: 20, Height: 44, ViewBox: "0 0 20 44"}),
	Happy: symmetric(
		"M1 17C3 6 17 6 19 17C19.4 19 17.6 20.4 15.9 19.3C12.4 14.9 7.6 14.9 4.1 19.3C2.4 20.4 0.6 19 1 17Z",
		Dims{Width: 20, Height: 20, ViewBox: "0 0 20 20"}),
	Smize: symmetric(
		"M1 14C4 8 16 8 19 14C19.3 15.5 18 16.6 16.6 15.9C12.6 12.4 7.4 12.4 3.4 15.9C2 16.6 0.7 15.5 1 14Z",
		Dims{Width: 20, Height: 18, ViewBox: "0 0 20 18"}),
	Angry: entry{
		left:  "M0 6L20 14V34C20 39.52 15.52 44 10 44C4.48 44 0 39.52 0 34V6Z",
		right: "M20 6L0 14V34C0 39.52 4.48 44 10 44C15.52 44 20 39.52 20 34V6Z",
		dims:  Dims{Width: 20, Height: 44, ViewBox: "0 0 20 44"},
	},
	Sad: entry{
		left:  "M0 14L20 6V34C20 39.52 15.52 44 10 44C4.48 44 0 39.52 0 34V14Z",
		right: "M20 14L0 6V34C0 39.52 4.48 44 10 44C15.52 44 20 39.52 20 34V14Z",
		dims:  Dims{Width: 20, Height: 44, ViewBox: "0 0 20 44"},
	},
	LookLeft: symmetric(
		"M8 0C13.52 0 18 4.48 18 10V34C18 39.52 13.52 44 8 44C3.58 44 0 39.52 0 34V10C0 4.48 3.58 0 8 0Z",
		Dims{Width: 18, Height: 44, ViewBox: "0 0 18 44"}),
	LookRight: symmetric(
		"M10 0C14.42 0 18 4.48 18 10V34C18 39.52 14.42 44 10 44C4.48 44 0 39.52 0 34V10C0 4.48 4.48 0 10 0Z",
		Dims{Width: 18, Height: 44, ViewBox: "0 0 18 44"}),
	Closed: symmetric(
		"M2 0H18C19.1 0 20 0.9 20 2C20 3.1 19.1 4 18 4H2C0.9 4 0 3.1 0 2C0 0.9 0.9 0 2 0Z",
		Dims{Width: 20, Height: 4, ViewBox: "0 0 20 4"}),
	Half: symmetric(
		"M0 0H20V12C20 17.52 15.52 22 10 22C4.48 22 0 17.52 0 12V0Z",
		Dims{Width: 20, Height: 22, ViewBox: "0 0 20 22"}),
	Wide: symmetric(
		"M12 0C18.63 0 24 5.37 24 12V36C24 42.63 18.63 48 12 48C5.37 48 0 42.63 0 36V12C0 5.37 5.37 0 12 0Z",
		Dims{Width: 24, Height: 48, ViewBox: "0 0 24 48"}),
	Arrow: entry{
		left:  "M2 2L18 12L2 22",
		right: "M18 2L2 12L18 22",
		dims:  Dims{Width: 20, Height: 24, ViewBox: "0 0 20 24"},
	},
	Triangle: symmetric(
		"M10 2L19 20H1Z",
		Dims{Width: 20, Height: 22, ViewBox: "0 0 20 22"}),
}

func symmetric(path string, dims Dims) entry {
	return entry{left: path, right: path, dims: dims}
}

// Shape returns the path data for name on side.
func Shape(name Name, side Side) (string, error) {
	e, ok := library[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, string(name))
	}
	if side == Right {
		return e.right, nil
	}
	return e.left, nil
}

// MustShape is Shape for static data; an unknown name panics.
func MustShape(name Name, side Side) string {
	path, err := Shape(name, side)
	if err != nil {
		panic(err)
	}
	return path
}

// Dimensions returns the reference size of name.
func Dimensions(name Name) (Dims, error) {
	e, ok := library[name]
	if !ok {
		return Dims{}, fmt.Errorf("%w: %q", ErrUnknownShape, string(name))
	}
	return e.dims, nil
}

// MustDimensions panics on an unknown name.
func MustDimensions(name Name) Dims {
	d, err := Dimensions(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Of returns name on side as an animation shape.
func Of(name Name, side Side) animation.Shape {
	return animation.Shape{Name: string(name), Path: MustShape(name, side)}
}

// Valid reports whether name is in the library.
func Valid(name Name) bool {
	_, ok := library[name]
	return ok
}

// IsAsymmetric reports whether the left and right paths differ.
func IsAsymmetric(name Name) bool {
	e, ok := library[name]
	return ok && e.left != e.right
}

// Names lists every shape, sorted.
func Names() []Name {
	names := make([]Name, 0, len(library))
	for n := range library {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
