// Command helloworld walks through every training sample, one section per
// language feature, and ends with the channel and mutex samples.
package main

import (
	"context"
	"os"

	"github.com/marcodamonte/trainings/internal/tour"
)

func main() {
	os.Exit(tour.Run(os.Stdout, os.Stderr, func(ctx context.Context, t *tour.Tour) error {
		return t.Helloworld(ctx)
	}))
}
