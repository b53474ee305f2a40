package audit

import (
	"context"

	"certledger/internal/registry/models"
)

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// QueueStore decouples event emission from persistence. Append enqueues the
// event for a Worker draining the same channel; reads go straight to the
// backing store, so listings reflect only events already drained.
type QueueStore struct {
	backing Store
	inbox   chan<- Event
}

func NewQueueStore(backing Store, inbox chan<- Event) *QueueStore {
	return &QueueStore{backing: backing, inbox: inbox}
}

func (q *QueueStore) Append(ctx context.Context, event Event) error {
	select {
	case q.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *QueueStore) ListByActor(ctx context.Context, actor models.Identity) ([]Event, error) {
	return q.backing.ListByActor(ctx, actor)
}

func (q *QueueStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return q.backing.ListRecent(ctx, limit)
}
