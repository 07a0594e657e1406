package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/banyantree/banyan/pkg/sequence"
)

// Concurrent runs the action function for each element of the iterator in a separate goroutine.
// It waits for all goroutines to finish. If action returns an error, it returns the first error encountered.
func Concurrent[T any](i *sequence.Iterator[T], action func(T) error) error {
	errGroup := errgroup.Group{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(value)
		})
	}

	return errGroup.Wait()
}

// Merge merges multiple channels of T into a single output channel.
// The output channel is closed once every input channel is drained.
func Merge[T any](chs ...<-chan T) <-chan T {
	out := make(chan T)
	var wg sync.WaitGroup
	wg.Add(len(chs))
	for _, ch := range chs {
		go func(c <-chan T) {
			defer wg.Done()
			for v := range c {
				out <- v
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
