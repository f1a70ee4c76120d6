// Command concurrency runs the producer/consumer pipe and then the shared
// counter pool, printing:
//
//	Received: 1
//	Received: 2
//	Received: 3
//	Received: 4
//	Final counter value: 5
//
// A worker that dies inside the critical section makes it exit with status 1.
package main

import (
	"context"
	"os"

	"github.com/marcodamonte/trainings/internal/tour"
)

func main() {
	os.Exit(tour.Run(os.Stdout, os.Stderr, func(ctx context.Context, t *tour.Tour) error {
		return t.Concurrency(ctx)
	}))
}
