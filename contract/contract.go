//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"gamelounge/domain/event"
)

// Worker doesn't protect itself: the supervisor recovers panics and
// restarts it. Workers stay silly and focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision, avoiding manual naming in the interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes change-feed rows. Sinks are best-effort side effects:
// a failing sink must never block delivery to other subscribers.
type EventSink interface {
	Consume(ctx context.Context, e event.RowEvent) error
}
