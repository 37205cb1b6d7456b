// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockReenter(t *testing.T) {
	var l Lock
	ctx, release, err := l.Lock(context.Background())
	require.NoError(t, err)

	held, exclusive := l.Held(ctx)
	assert.True(t, held)
	assert.True(t, exclusive)

	ctx2, release2, err := l.Lock(ctx)
	require.NoError(t, err)
	rctx, rrelease, err := l.RLock(ctx2)
	require.NoError(t, err)
	rrelease()
	release2()

	held, _ = l.Held(rctx)
	assert.True(t, held, "outer acquisition still held")

	release()
	held, _ = l.Held(ctx)
	assert.False(t, held)
	held, _ = l.Held(context.Background())
	assert.False(t, held)
}

func TestLockUpgrade(t *testing.T) {
	var l Lock
	ctx, release, err := l.RLock(context.Background())
	require.NoError(t, err)
	defer release()

	held, exclusive := l.Held(ctx)
	assert.True(t, held)
	assert.False(t, exclusive)

	_, _, err = l.Lock(ctx)
	assert.Equal(t, ErrLockUpgrade, err)
}

func TestLockReleaseTwice(t *testing.T) {
	var l Lock
	_, release, err := l.RLock(context.Background())
	require.NoError(t, err)
	release()
	release()

	_, release, err = l.Lock(context.Background())
	require.NoError(t, err)
	release()
}

func TestLockSharedReaders(t *testing.T) {
	var l Lock
	_, r1, err := l.RLock(context.Background())
	require.NoError(t, err)
	_, r2, err := l.RLock(context.Background())
	require.NoError(t, err)
	r1()
	r2()
}

func TestLockWriterExcludes(t *testing.T) {
	var l Lock
	_, release, err := l.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = l.RLock(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)

	release()
	_, r, err := l.RLock(context.Background())
	require.NoError(t, err)
	r()
}

func TestLockWaitingWriterBlocksReaders(t *testing.T) {
	var l Lock
	_, readerRelease, err := l.RLock(context.Background())
	require.NoError(t, err)

	acquired := make(chan func())
	go func() {
		_, release, err := l.Lock(context.Background())
		if assert.NoError(t, err) {
			acquired <- release
		}
	}()

	// Wait until the writer is queued.
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.waitingWriters == 1
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = l.RLock(ctx)
	assert.Equal(t, context.DeadlineExceeded, err, "new reader waits behind writer")

	select {
	case <-acquired:
		t.Fatal("writer acquired the lock while a reader held it")
	default:
	}

	readerRelease()
	select {
	case release := <-acquired:
		release()
	case <-time.After(time.Second):
		t.Fatal("writer never acquired the lock")
	}
}

func TestLockCancelledWriterReleasesReaders(t *testing.T) {
	var l Lock
	_, readerRelease, err := l.RLock(context.Background())
	require.NoError(t, err)
	defer readerRelease()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = l.Lock(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)

	_, r, err := l.RLock(context.Background())
	require.NoError(t, err)
	r()
}

func TestLockObserve(t *testing.T) {
	var modes []bool
	l := Lock{observe: func(write bool, _ time.Duration) { modes = append(modes, write) }}
	ctx, release, err := l.Lock(context.Background())
	require.NoError(t, err)
	_, r, err := l.RLock(ctx)
	require.NoError(t, err)
	r()
	release()
	_, r, err = l.RLock(context.Background())
	require.NoError(t, err)
	r()
	assert.Equal(t, []bool{true, false}, modes, "nested acquisitions are not observed")
}
