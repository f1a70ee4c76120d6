// Package basics holds the single-feature samples of the helloworld tour.
// Every sample writes to the given io.Writer so the output can be checked.
package basics

import (
	"fmt"
	"io"
)

// Foundations prints why Go is worth learning.
func Foundations(w io.Writer) {
	fmt.Fprintln(w, "Why Go? Simple, garbage-collected, built for concurrency from day one.")
}

// CoreConcepts shows control flow, switch, mutation, function values and
// slicing an array.
func CoreConcepts(w io.Writer) {
	boolean := true
	if boolean {
		fmt.Fprintln(w, "Boolean is true")
	} else {
		fmt.Fprintln(w, "Boolean is false")
	}

	number := 2
	switch number {
	case 1:
		fmt.Fprintln(w, "One")
	case 2:
		fmt.Fprintln(w, "Two")
	default:
		fmt.Fprintln(w, "Other")
	}

	mutable := 10
	mutable += 5
	fmt.Fprintln(w, "Mutable value:", mutable)

	square := func(x int) int { return x * x }
	fmt.Fprintln(w, "Square of 4:", square(4))

	array := [5]int{1, 2, 3, 4, 5}
	slice := array[1:4] // shares array's storage
	fmt.Fprintln(w, "Slice:", slice)
}

// ValuesAndPointers shows that assignment copies a value while a pointer
// shares it.
func ValuesAndPointers(w io.Writer) {
	s1 := "hello"
	s2 := s1 // strings are immutable values; s2 is an independent copy
	fmt.Fprintln(w, "Copied value:", s2)

	s3 := "world"
	s4 := &s3
	fmt.Fprintln(w, "Borrowed value:", *s4)

	s5 := []byte("mutable")
	s6 := &s5
	*s6 = append(*s6, " string"...)
	fmt.Fprintln(w, "Modified value:", string(s5))

	s := "hello"
	r1, r2 := &s, &s
	fmt.Fprintf(w, "r1: %s, r2: %s\n", *r1, *r2)
}

// Longer returns the longer of x and y, preferring y on a tie.
func Longer(x, y string) string {
	if len(x) > len(y) {
		return x
	}
	return y
}

// Holder keeps a pointer to a string owned elsewhere. The garbage collector
// keeps the target alive for as long as a Holder refers to it.
type Holder struct {
	Value *string
}

// HolderExample prints the value seen through a Holder.
func HolderExample(w io.Writer) {
	s := "hello"
	h := Holder{Value: &s}
	fmt.Fprintln(w, "Holder value:", *h.Value)
}

// Add returns a + b.
func Add(a, b int) int {
	return a + b
}
