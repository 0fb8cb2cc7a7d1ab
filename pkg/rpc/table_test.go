package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growerlab/kitbridge/pkg/wire"
)

func TestRegisterResolveDeliversExactlyOnce(t *testing.T) {
	table := NewTable(nil)

	receipt, err := table.Register("k-1", 42, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	matched := table.Resolve("k-1", 42, Outcome{Response: wire.Response{ID: 42, Result: []byte("hi")}})
	assert.True(t, matched)
	assert.Equal(t, 0, table.Len())

	out := <-receipt.Outcome()
	require.NoError(t, out.Err)
	assert.Equal(t, []byte("hi"), out.Response.Result)

	// A second resolve for the same id is an unmatched, dropped event.
	matched = table.Resolve("k-1", 42, Outcome{Response: wire.Response{ID: 42}})
	assert.False(t, matched)

	select {
	case <-receipt.Outcome():
		t.Fatal("outcome delivered twice")
	default:
	}
}

func TestRegisterDuplicateID(t *testing.T) {
	table := NewTable(nil)

	first, err := table.Register("k-1", 7, time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = table.Register("k-1", 7, time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The original pending call stays alive and still resolves.
	require.True(t, table.Resolve("k-1", 7, Outcome{Response: wire.Response{ID: 7}}))
	out := <-first.Outcome()
	assert.NoError(t, out.Err)

	// Same id on a different kit is independent.
	_, err = table.Register("k-2", 7, time.Now().Add(time.Minute))
	assert.NoError(t, err)
}

func TestResolveUnknownIDIsDropped(t *testing.T) {
	table := NewTable(nil)

	assert.False(t, table.Resolve("k-1", 99, Outcome{}))
	assert.Equal(t, 0, table.Len())
}

func TestSweepDeliversTimeoutAndEvicts(t *testing.T) {
	table := NewTable(nil)

	expired, err := table.Register("k-1", 1, time.Now().Add(-time.Second))
	require.NoError(t, err)
	alive, err := table.Register("k-1", 2, time.Now().Add(time.Minute))
	require.NoError(t, err)

	table.sweep(time.Now())

	out := <-expired.Outcome()
	assert.ErrorIs(t, out.Err, ErrTimeout)
	assert.Equal(t, 1, table.Len())

	select {
	case <-alive.Outcome():
		t.Fatal("unexpired entry must not be swept")
	default:
	}
}

func TestSweepLoopEvictsWithinBoundedOverrun(t *testing.T) {
	table := NewTable(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go table.SweepLoop(ctx)

	receipt, err := table.Register("k-1", 1, time.Now().Add(100*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	select {
	case out := <-receipt.Outcome():
		require.ErrorIs(t, out.Err, ErrTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout was never delivered")
	}

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	// Worst case is deadline + one sweep interval, plus scheduling slack.
	assert.Less(t, elapsed, 100*time.Millisecond+2*SweepInterval)
	assert.Equal(t, 0, table.Len())
}

func TestReceiptCancelDeregisters(t *testing.T) {
	table := NewTable(nil)

	receipt, err := table.Register("k-1", 5, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	receipt.Cancel()
	assert.Equal(t, 0, table.Len())

	// The id is free for reuse after cancellation.
	_, err = table.Register("k-1", 5, time.Now().Add(time.Minute))
	assert.NoError(t, err)

	// A response after cancellation resolves the new entry, not the
	// canceled receipt.
	receipt.Cancel()
}

func TestConcurrentCallsResolveIndependently(t *testing.T) {
	table := NewTable(nil)

	first, err := table.Register("k-1", 1, time.Now().Add(time.Minute))
	require.NoError(t, err)
	second, err := table.Register("k-1", 2, time.Now().Add(time.Minute))
	require.NoError(t, err)

	// Resolving id 2 first leaves id 1 pending.
	require.True(t, table.Resolve("k-1", 2, Outcome{Response: wire.Response{ID: 2, Result: []byte("two")}}))
	assert.Equal(t, 1, table.Len())

	select {
	case <-first.Outcome():
		t.Fatal("id 1 must remain pending")
	default:
	}

	out := <-second.Outcome()
	assert.Equal(t, []byte("two"), out.Response.Result)

	require.True(t, table.Resolve("k-1", 1, Outcome{Response: wire.Response{ID: 1, Result: []byte("one")}}))
	out = <-first.Outcome()
	assert.Equal(t, []byte("one"), out.Response.Result)
}
