package basics

import (
	"fmt"
	"io"
)

// ── Enums ─────────────────────────────────────────────────────────────────────

// Direction is an enum built from a named integer type and iota.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Value is a closed set of variants: only this package can implement it
// because isValue is unexported.
type Value interface {
	isValue()
}

type (
	Number        int
	FloatingPoint float64
	Tuple         struct {
		C rune
		B bool
	}
	Word string
)

func (Number) isValue()        {}
func (FloatingPoint) isValue() {}
func (Tuple) isValue()         {}
func (Word) isValue()          {}

// Describe renders v with a type switch over every variant.
func Describe(v Value) string {
	switch v := v.(type) {
	case Number:
		return fmt.Sprintf("Number: %d", int(v))
	case FloatingPoint:
		return fmt.Sprintf("Floating point: %g", float64(v))
	case Tuple:
		return fmt.Sprintf("Tuple: (%c, %t)", v.C, v.B)
	case Word:
		return fmt.Sprintf("Word: %s", string(v))
	}
	return "unknown"
}

// Enums prints a direction and two values.
func Enums(w io.Writer) {
	fmt.Fprintf(w, "Going %s\n", Up)
	fmt.Fprintln(w, Describe(Number(-5)))
	fmt.Fprintln(w, Describe(FloatingPoint(3.14)))
}

// ── Structs ───────────────────────────────────────────────────────────────────

// Rectangle has a width and a height.
type Rectangle struct {
	Width, Height uint32
}

func (r Rectangle) Area() uint32 { return r.Width * r.Height }

// Describe implements Describable.
func (r Rectangle) Describe() string {
	return fmt.Sprintf("Rectangle with width %d and height %d", r.Width, r.Height)
}

// Point3D is a positional 3D point.
type Point3D [3]int32

// Structs prints a rectangle's area and a 3D point.
func Structs(w io.Writer) {
	rect := Rectangle{Width: 10, Height: 20}
	fmt.Fprintln(w, "Rectangle area:", rect.Area())

	p := Point3D{1, 2, 3}
	fmt.Fprintf(w, "Point3D(%d, %d, %d)\n", p[0], p[1], p[2])
}

// ── Generics and interfaces ───────────────────────────────────────────────────

// Point is a 2D point over any coordinate type.
type Point[T any] struct {
	X, Y T
}

func NewPoint[T any](x, y T) Point[T] { return Point[T]{X: x, Y: y} }

// Printable is implemented by types that can print themselves.
type Printable interface {
	Print(w io.Writer)
}

func (p Point[T]) Print(w io.Writer) {
	fmt.Fprintf(w, "Point(%v, %v)\n", p.X, p.Y)
}

// Describable is implemented by types that can describe themselves.
type Describable interface {
	Describe() string
}

// Traits prints a rectangle through the Describable interface.
func Traits(w io.Writer) {
	var d Describable = Rectangle{Width: 15, Height: 25}
	fmt.Fprintln(w, d.Describe())
}

// Advanced is satisfied by types exposing AdvancedMethod.
type Advanced interface {
	AdvancedMethod() string
}

// Example carries a single value.
type Example struct {
	Value int
}

func (e Example) AdvancedMethod() string {
	return fmt.Sprintf("Advanced value: %d", e.Value)
}

// AdvancedTraits calls a method through the Advanced interface.
func AdvancedTraits(w io.Writer) {
	var a Advanced = Example{Value: 42}
	fmt.Fprintln(w, a.AdvancedMethod())
}
