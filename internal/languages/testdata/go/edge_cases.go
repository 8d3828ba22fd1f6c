package fixtures

import (
	"context"
	// logging
	stdfmt "fmt"
)

type Service interface {
	Run(ctx context.Context) error
}

type Worker struct{}

type Pool[T any] struct {
	items []T
}

func (w *Worker) Run(ctx context.Context) error {
	logStart()
	return helper(ctx)
}

func (p Pool[T]) Len() int {
	return len(p.items)
}

func helper(ctx context.Context) error {
	stdfmt.Println("running")
	return nil
}

func logStart() {
	stdfmt.Println("start")
}
