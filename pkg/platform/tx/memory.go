package tx

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	dErrors "malpot/pkg/domain-errors"
)

// writerWeight is the full semaphore: a transaction excludes every view and
// every other transaction, a view takes a single unit.
const writerWeight = 1 << 30

// Memory serializes transactions with a weighted semaphore and undoes the
// writes of a failed transaction through a journal. In-memory stores call
// RecordUndo before every mutation. Waiting for the semaphore honours the
// context deadline.
type Memory struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

type MemoryOption func(*Memory)

// WithMemoryTimeout overrides the default transaction deadline.
func WithMemoryTimeout(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.timeout = d
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{sem: semaphore.NewWeighted(writerWeight), timeout: defaultTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type journalKey struct{}
type viewKey struct{}

// journal collects compensating actions for the running memory transaction.
type journal struct {
	undo []func()
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// RecordUndo registers a compensating action with the memory transaction in
// ctx. It is a no-op outside a memory transaction.
func RecordUndo(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultDeadline(ctx, m.timeout)
	defer cancel()

	if err := m.sem.Acquire(ctx, writerWeight); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: timed out waiting for lock")
	}
	defer m.sem.Release(writerWeight)

	j := &journal{}
	defer func() {
		if r := recover(); r != nil {
			j.rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	return nil
}

func (m *Memory) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "read aborted: context cancelled")
	}
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}
	if _, ok := ctx.Value(viewKey{}).(bool); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultDeadline(ctx, m.timeout)
	defer cancel()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "read aborted: timed out waiting for lock")
	}
	defer m.sem.Release(1)
	return fn(context.WithValue(ctx, viewKey{}, true))
}
