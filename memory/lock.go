// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockUpgrade is returned from Lock.Lock if the caller already
// holds the lock for reading.  Two readers upgrading at once would
// deadlock, so upgrades are refused outright.
var ErrLockUpgrade = errors.New("cannot upgrade a read lock to a write lock")

// lockOwner identifies one holder of a Lock.  The pointer value is
// the identity; it travels in a context.Context so that nested
// calls on the same logical operation reenter the lock.
type lockOwner struct {
	// write is set if this owner holds the lock exclusively.
	write bool

	// depth counts nested acquisitions.
	depth int
}

type lockOwnerKey struct{ l *Lock }

// Lock is a reentrant read/write lock.  Ownership is carried in a
// context: a caller that acquires the lock gets back a context, and
// acquiring the lock again with that context (or one derived from
// it) succeeds immediately.  A writer holding the lock may also
// acquire it for reading.
//
// Waiting writers block new readers, so a steady stream of readers
// cannot starve a writer.  Waiting honors context cancellation.
type Lock struct {
	mu             sync.Mutex
	readers        int
	writer         *lockOwner
	waitingWriters int
	changed        chan struct{}

	// observe, if set, is called with the time spent waiting for
	// each fresh acquisition.
	observe func(write bool, wait time.Duration)
}

func (l *Lock) ownerOf(ctx context.Context) *lockOwner {
	o, _ := ctx.Value(lockOwnerKey{l}).(*lockOwner)
	return o
}

// broadcast wakes every waiter.  Call with l.mu held.
func (l *Lock) broadcast() {
	if l.changed != nil {
		close(l.changed)
		l.changed = nil
	}
}

// wait blocks until something changes or ctx is done.  Call with
// l.mu held; it is held again on return.
func (l *Lock) wait(ctx context.Context) error {
	if l.changed == nil {
		l.changed = make(chan struct{})
	}
	ch := l.changed
	l.mu.Unlock()
	var err error
	select {
	case <-ch:
	case <-ctx.Done():
		err = ctx.Err()
	}
	l.mu.Lock()
	return err
}

// Lock acquires the lock exclusively.  It returns a context that
// carries ownership and a function that releases this acquisition.
// If ctx already carries exclusive ownership, this nests.
func (l *Lock) Lock(ctx context.Context) (context.Context, func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o := l.ownerOf(ctx); o != nil && o.depth > 0 {
		if !o.write {
			return ctx, nil, ErrLockUpgrade
		}
		o.depth++
		return ctx, l.releaser(o), nil
	}

	start := time.Now()
	l.waitingWriters++
	for l.writer != nil || l.readers > 0 {
		if err := l.wait(ctx); err != nil {
			l.waitingWriters--
			// Readers held back by this writer may go now.
			l.broadcast()
			return ctx, nil, err
		}
	}
	l.waitingWriters--
	o := &lockOwner{write: true, depth: 1}
	l.writer = o
	if l.observe != nil {
		l.observe(true, time.Since(start))
	}
	return context.WithValue(ctx, lockOwnerKey{l}, o), l.releaser(o), nil
}

// RLock acquires the lock for reading.  It returns a context that
// carries ownership and a function that releases this acquisition.
// If ctx already carries ownership of either kind, this nests.
func (l *Lock) RLock(ctx context.Context) (context.Context, func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o := l.ownerOf(ctx); o != nil && o.depth > 0 {
		o.depth++
		return ctx, l.releaser(o), nil
	}

	start := time.Now()
	for l.writer != nil || l.waitingWriters > 0 {
		if err := l.wait(ctx); err != nil {
			return ctx, nil, err
		}
	}
	o := &lockOwner{depth: 1}
	l.readers++
	if l.observe != nil {
		l.observe(false, time.Since(start))
	}
	return context.WithValue(ctx, lockOwnerKey{l}, o), l.releaser(o), nil
}

// releaser returns a function that undoes one acquisition by o.
// Calling it more than once is harmless.
func (l *Lock) releaser(o *lockOwner) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			o.depth--
			if o.depth > 0 {
				return
			}
			if o.write {
				l.writer = nil
			} else {
				l.readers--
			}
			l.broadcast()
		})
	}
}

// Held reports whether ctx carries ownership of l, and whether that
// ownership is exclusive.
func (l *Lock) Held(ctx context.Context) (held, exclusive bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.ownerOf(ctx)
	if o == nil || o.depth == 0 {
		return false, false
	}
	return true, o.write
}
