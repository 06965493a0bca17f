package tx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "malpot/pkg/domain-errors"
)

func TestMemoryRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("failed transaction undoes writes in reverse order", func(t *testing.T) {
		runner := NewMemory()
		state := []string{}
		var undone []string

		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			state = append(state, "transfer")
			RecordUndo(ctx, func() { undone = append(undone, "transfer") })
			state = append(state, "land")
			RecordUndo(ctx, func() { undone = append(undone, "land") })
			return errors.New("land write failed")
		})

		require.Error(t, err)
		assert.Equal(t, []string{"land", "transfer"}, undone)
	})

	t.Run("successful transaction keeps writes", func(t *testing.T) {
		runner := NewMemory()
		undoCalled := false

		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			RecordUndo(ctx, func() { undoCalled = true })
			return nil
		})

		require.NoError(t, err)
		assert.False(t, undoCalled)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		runner := NewMemory()
		undoCalled := false

		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			inner := runner.RunInTx(ctx, func(ctx context.Context) error {
				RecordUndo(ctx, func() { undoCalled = true })
				return nil
			})
			require.NoError(t, inner)
			require.NoError(t, runner.View(ctx, func(context.Context) error { return nil }))
			return errors.New("outer failed")
		})

		require.Error(t, err)
		assert.True(t, undoCalled, "inner write should be undone with the outer transaction")
	})

	t.Run("panic rolls back and propagates", func(t *testing.T) {
		runner := NewMemory()
		undoCalled := false

		assert.Panics(t, func() {
			_ = runner.RunInTx(ctx, func(ctx context.Context) error {
				RecordUndo(ctx, func() { undoCalled = true })
				panic("boom")
			})
		})
		assert.True(t, undoCalled)

		// lock must have been released
		require.NoError(t, runner.RunInTx(ctx, func(context.Context) error { return nil }))
	})

	t.Run("cancelled context is rejected before running", func(t *testing.T) {
		runner := NewMemory()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := runner.RunInTx(cancelled, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("RecordUndo outside a transaction is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			RecordUndo(ctx, func() { t.Fatal("must not run") })
		})
	})
}

func TestMemorySerializesTransactions(t *testing.T) {
	runner := NewMemory()
	ctx := context.Background()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = runner.RunInTx(ctx, func(context.Context) error {
				current := counter
				counter = current + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestMemoryLockWaitHonoursDeadline(t *testing.T) {
	runner := NewMemory(WithMemoryTimeout(time.Minute))
	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = runner.RunInTx(context.Background(), func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	t.Run("writer gives up at its deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		called := false
		err := runner.RunInTx(ctx, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("reader gives up at its deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := runner.View(ctx, func(context.Context) error { return nil })
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	close(release)
	<-done
	require.NoError(t, runner.View(context.Background(), func(context.Context) error { return nil }))
}

func TestMemoryViewsShareTheLock(t *testing.T) {
	runner := NewMemory()
	inside := make(chan struct{})

	err := runner.View(context.Background(), func(context.Context) error {
		go func() {
			_ = runner.View(context.Background(), func(context.Context) error {
				close(inside)
				return nil
			})
		}()
		select {
		case <-inside:
			return nil
		case <-time.After(time.Second):
			return errors.New("second view blocked behind the first")
		}
	})
	require.NoError(t, err)
}
