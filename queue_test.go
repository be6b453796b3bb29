package blkhash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueuePushPopOrder(t *testing.T) {
	q := newQueue(4)

	a := newStopSubmission()
	b := newStopSubmission()

	require.NoError(t, q.push(context.Background(), a))
	require.NoError(t, q.push(context.Background(), b))

	require.Same(t, a, q.pop())
	require.Same(t, b, q.pop())
}

func TestQueuePushBlocksWhenFullUntilContextDone(t *testing.T) {
	q := newQueue(1)
	require.NoError(t, q.push(context.Background(), newStopSubmission()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := q.push(ctx, newStopSubmission())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueuePushUnblocksOncePopped(t *testing.T) {
	q := newQueue(1)
	require.NoError(t, q.push(context.Background(), newStopSubmission()))

	done := make(chan error, 1)
	second := newStopSubmission()
	go func() {
		done <- q.push(context.Background(), second)
	}()

	q.pop() // makes room for the blocked push

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("push did not unblock after pop")
	}
}
