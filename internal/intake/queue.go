// Package intake decouples the fast transport handlers from the slow OCR
// and reconciliation work: handlers enqueue a task per screenshot and
// acknowledge immediately, one worker drains the queue in FIFO order.
package intake

import (
	"context"
	"fmt"
	"sync"

	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/observability"
)

// Task is one screenshot awaiting OCR and reconciliation. The queue owns
// it until dequeued; after that the worker owns it and must delete the
// referenced temporary file exactly once on every exit path.
type Task struct {
	UserID    int64
	StudentID string
	FilePath  string
}

// Queue is an unbounded FIFO with any number of producers and one logical
// consumer. Enqueue never blocks.
type Queue struct {
	mu    sync.Mutex
	items []Task
	wake  chan struct{}
}

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

func (q *Queue) Enqueue(t Task) {
	q.mu.Lock()
	q.items = append(q.items, t)
	depth := len(q.items)
	q.mu.Unlock()

	observability.IntakeQueueDepth.Set(float64(depth))

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue blocks until an item is available or ctx is canceled.
func (q *Queue) Dequeue(ctx context.Context) (Task, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			t := q.items[0]
			q.items = q.items[1:]
			depth := len(q.items)
			q.mu.Unlock()

			observability.IntakeQueueDepth.Set(float64(depth))

			return t, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Task{}, fmt.Errorf("dequeue interrupted: %w", ctx.Err())
		case <-q.wake:
		}
	}
}

// Len reports the number of waiting tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
