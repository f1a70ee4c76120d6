package basics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"
)

// ── Errors ────────────────────────────────────────────────────────────────────

// ErrNegative is returned by half for negative input.
var ErrNegative = errors.New("negative input")

func half(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("half(%d): %w", n, ErrNegative)
	}
	return n / 2, nil
}

// ErrorsAndResults prints the result of a successful call and returns the
// error of the failing one to the caller.
func ErrorsAndResults(w io.Writer) error {
	for _, n := range []int{20, -4} {
		v, err := half(n)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "Value:", v)
	}
	return nil
}

// ── Iterators ─────────────────────────────────────────────────────────────────

// Filter yields the elements of seq for which keep returns true.
func Filter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

// Map yields f(v) for every element of seq.
func Map[T, U any](seq iter.Seq[T], f func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range seq {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// Iterators filters even numbers and squares a list lazily.
func Iterators(w io.Writer) {
	numbers := []int{1, 2, 3, 4, 5}

	even := slices.Collect(Filter(slices.Values(numbers), func(x int) bool { return x%2 == 0 }))
	fmt.Fprintln(w, "Even numbers:", even)

	squared := slices.Collect(Map(slices.Values(numbers), func(x int) int { return x * x }))
	fmt.Fprintln(w, "Squared numbers:", squared)
}

// ── Generic arithmetic ────────────────────────────────────────────────────────

// Numeric is the set of types Calculate accepts.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Op is an arithmetic operator.
type Op rune

const (
	Plus  Op = '+'
	Minus Op = '-'
	Times Op = '*'
)

// Apply computes a op b. Unknown operators yield the zero value.
func Apply[T Numeric](a, b T, op Op) T {
	switch op {
	case Plus:
		return a + b
	case Minus:
		return a - b
	case Times:
		return a * b
	}
	var zero T
	return zero
}

// Calculate prints the result of a op b.
func Calculate[T Numeric](w io.Writer, a, b T, op Op) {
	fmt.Fprintln(w, "Result:", Apply(a, b, op))
}

// ── Async ─────────────────────────────────────────────────────────────────────

// AsyncExample runs a task that sleeps for d in its own goroutine and waits
// for it. It returns early with the context error if ctx ends first.
func AsyncExample(ctx context.Context, w io.Writer, d time.Duration) error {
	fmt.Fprintln(w, "Starting async task...")

	done := make(chan struct{})
	go func() {
		defer close(done)
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}()
	<-done

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("async task: %w", err)
	}
	fmt.Fprintln(w, "Async task completed!")
	return nil
}
