// Package trace keeps a journal of call outcomes: which callable ran, how it
// finished, and where a failure was blamed.
package trace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindFunc Kind = "func"
	KindProc Kind = "proc"
)

type Event struct {
	ID       uuid.UUID
	Callable string
	Kind     Kind
	Status   int
	Err      string
	Position int
	Depth    int
	At       time.Time
}

type Journal interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }

func fill(ev *Event) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
}
