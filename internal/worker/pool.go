package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task is one input together with the outcome of processing it.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc processes a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool fans inputs out to a fixed number of goroutines.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool with at least one worker.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Workers returns the pool size.
func (p *Pool[T, R]) Workers() int { return p.workers }

// Execute runs every input through the pool. Tasks are returned in input
// order; inputs never started because ctx was cancelled carry ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	done := make([]bool, len(inputs))
	inputCh := make(chan int, len(inputs))

	var wg sync.WaitGroup
	for w := range min(p.workers, max(len(inputs), 1)) {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-inputCh:
					if !ok || ctx.Err() != nil {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					results[idx] = Task[T, R]{Input: inputs[idx], Result: result, Err: err}
					done[idx] = true
					if err != nil {
						log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
					}
				}
			}
		}(w)
	}

	for i := range inputs {
		inputCh <- i
	}
	close(inputCh)
	wg.Wait()

	for i := range results {
		if !done[i] {
			results[i] = Task[T, R]{Input: inputs[i], Err: ctx.Err()}
		}
	}
	return results
}

// Map is Execute returning the results alone and every task error joined.
func (p *Pool[T, R]) Map(ctx context.Context, inputs []T) ([]R, error) {
	tasks := p.Execute(ctx, inputs)
	out := make([]R, len(tasks))
	var errs []error
	for i, t := range tasks {
		out[i] = t.Result
		if t.Err != nil {
			errs = append(errs, t.Err)
		}
	}
	return out, errors.Join(errs...)
}

// Batch splits items into consecutive chunks of at most batchSize.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
