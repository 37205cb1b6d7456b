// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

// purgeParallelism bounds concurrent backing file deletes.
const purgeParallelism = 8

type txKey struct{ c *Catalog }

// tx is one write transaction.  It is opened by write, holds the
// catalog lock exclusively for its whole life, and works on a clone
// of the committed state.
//
// Backing file writes happen immediately and are registered with an
// undo function.  Backing file deletes cannot be undone, so they are
// deferred until commit, after every validation has passed.
type tx struct {
	c    *Catalog
	op   string
	now  time.Time
	s    *state
	done bool

	events []catalog.Event
	undo   []func(context.Context) error
	purge  []string
}

type savepoint struct {
	s      *state
	events int
	undo   int
	purge  []string
}

func (c *Catalog) txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{c}).(*tx)
	if t == nil || t.done {
		return nil
	}
	return t
}

// read runs fn against a consistent state: the running transaction's
// working state if ctx carries one, or the committed state.
func (c *Catalog) read(ctx context.Context, fn func(context.Context, *state) error) error {
	ctx, release, err := c.lock.RLock(ctx)
	if err != nil {
		return err
	}
	defer release()
	if t := c.txFrom(ctx); t != nil {
		return fn(ctx, t.s)
	}
	return fn(ctx, c.committed)
}

// write runs fn as a transaction named op.  If ctx already carries a
// transaction, fn runs inside it, and only fn's own changes are
// undone if it fails.
func (c *Catalog) write(ctx context.Context, op string, fn func(context.Context, *tx) error) error {
	ctx, release, err := c.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	if t := c.txFrom(ctx); t != nil {
		sp := t.savepoint()
		if err := fn(ctx, t); err != nil {
			t.restore(ctx, sp)
			return err
		}
		return nil
	}

	t := &tx{c: c, op: op, now: c.clock.Now(), s: c.committed.clone()}
	ctx = context.WithValue(ctx, txKey{c}, t)
	err = fn(ctx, t)
	if err == nil {
		err = t.commit(ctx)
	}
	t.done = true
	c.metrics.transaction(op, err)
	if err != nil {
		t.rollback(ctx)
		c.log.WithFields(logrus.Fields{
			"op":  op,
			"err": err,
		}).Warn("transaction rolled back")
		return err
	}
	c.committed = t.s
	c.metrics.count(t.s)
	// Subscribers run before the lock is released, so they see
	// changes in commit order.
	c.notify(t.events)
	c.log.WithFields(logrus.Fields{
		"op":      op,
		"changes": len(t.events),
	}).Debug("transaction committed")
	return nil
}

func (t *tx) savepoint() savepoint {
	return savepoint{
		s:      t.s.clone(),
		events: len(t.events),
		undo:   len(t.undo),
		purge:  append([]string(nil), t.purge...),
	}
}

func (t *tx) restore(ctx context.Context, sp savepoint) {
	t.runUndo(ctx, sp.undo)
	t.s = sp.s
	t.events = t.events[:sp.events]
	t.purge = sp.purge
}

// runUndo runs undo functions registered after the first n, newest
// first, and forgets them.
func (t *tx) runUndo(ctx context.Context, n int) {
	ctx = context.WithoutCancel(ctx)
	for i := len(t.undo) - 1; i >= n; i-- {
		if err := t.undo[i](ctx); err != nil {
			t.c.log.WithFields(logrus.Fields{
				"op":  t.op,
				"err": err,
			}).Error("could not restore backing file")
		}
	}
	t.undo = t.undo[:n]
}

func (t *tx) rollback(ctx context.Context) {
	t.runUndo(ctx, 0)
}

// commit runs the irreversible part of the transaction: backing file
// deletes and persistence.  Once it starts, cancelling ctx no longer
// stops it.
func (t *tx) commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	if err := t.runPurge(ctx); err != nil {
		return err
	}
	if err := t.persist(ctx); err != nil {
		cerr := catalog.WrapError(catalog.IOFailure, err, "saving catalog")
		if len(t.purge) > 0 {
			cerr.Files = t.gone(ctx)
			t.logLostFiles(cerr.Files)
		}
		return cerr
	}
	return nil
}

func (t *tx) runPurge(ctx context.Context) error {
	if len(t.purge) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(purgeParallelism)
	for _, key := range t.purge {
		key := key
		g.Go(func() error {
			if _, err := t.c.blobs.Delete(gctx, key); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Some deletes may have happened.  Check rather than
		// guess which.
		files := t.gone(ctx)
		t.logLostFiles(files)
		return &catalog.Error{
			Kind:    catalog.IOFailure,
			Message: "purging backing files",
			Files:   files,
			Err:     err,
		}
	}
	return nil
}

// gone returns the purge keys that no longer exist.
func (t *tx) gone(ctx context.Context) []string {
	var files []string
	for _, key := range t.purge {
		ok, err := blob.Exists(ctx, t.c.blobs, key)
		if err == nil && !ok {
			files = append(files, key)
		}
	}
	return files
}

func (t *tx) logLostFiles(files []string) {
	if len(files) == 0 {
		return
	}
	t.c.log.WithFields(logrus.Fields{
		"op":    t.op,
		"files": files,
	}).Error("backing files deleted by a rolled back transaction")
}

// persist hands the changed objects to the persister.
func (t *tx) persist(ctx context.Context) error {
	if t.c.persister == nil || len(t.events) == 0 {
		return nil
	}
	var changes []catalog.Change
	seen := make(map[string]bool)
	for _, ev := range t.events {
		if seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		change := catalog.Change{Kind: ev.Kind, ID: ev.ID}
		if obj, ok := t.s.object(ev.Kind, ev.ID); ok {
			change.Object = obj
		}
		changes = append(changes, change)
	}
	return t.c.persister.Save(ctx, changes, t.s.defaults())
}

// record notes a change for events and persistence.  Call it before
// removing an object, so its workspace can still be found.
func (t *tx) record(typ catalog.EventType, obj catalog.Object) {
	ev := catalog.Event{
		Type: typ,
		Kind: obj.ObjectKind(),
		ID:   obj.ObjectInfo().ID,
		Name: obj.ObjectName(),
		Time: t.now,
	}
	if ev.Kind != catalog.KindWorkspace {
		ev.Workspace = wsName(t.s.workspaceOf(obj))
	}
	t.events = append(t.events, ev)
}

// create adds a new object, assigning its ID and timestamps.  The
// caller has already checked its name.
func (t *tx) create(obj catalog.Object) {
	info := obj.ObjectInfo()
	info.ID = uuid.NewV4().String()
	info.Created = t.now
	info.Modified = t.now
	t.s.putObject(obj)
	t.record(catalog.Added, obj)
}

// update replaces an existing object with a changed copy.
func (t *tx) update(obj catalog.Object) {
	obj.ObjectInfo().Modified = t.now
	t.s.putObject(obj)
	t.record(catalog.Modified, obj)
}

// drop removes an object.
func (t *tx) drop(obj catalog.Object) {
	t.record(catalog.Removed, obj)
	t.s.removeObject(obj.ObjectKind(), obj.ObjectInfo().ID)
}

// putFile writes a backing file now, arranging to restore the old
// content if the transaction fails.
func (t *tx) putFile(ctx context.Context, key string, data []byte, contentType string) error {
	old, err := blob.ReadAll(ctx, t.c.blobs, key)
	existed := err == nil
	if err != nil && !errors.Is(err, blob.ErrNotFound) {
		return catalog.WrapError(catalog.IOFailure, err, "reading %s", key)
	}
	if _, err := blob.PutBytes(ctx, t.c.blobs, key, data, contentType); err != nil {
		return catalog.WrapError(catalog.IOFailure, err, "writing %s", key)
	}
	t.keepFile(key)
	t.undo = append(t.undo, func(ctx context.Context) error {
		if existed {
			_, err := t.c.blobs.Put(ctx, key, bytes.NewReader(old), blob.PutOptions{ContentType: contentType})
			return err
		}
		_, err := t.c.blobs.Delete(ctx, key)
		return err
	})
	return nil
}

// deleteFile schedules a backing file for deletion at commit.
func (t *tx) deleteFile(key string) {
	for _, k := range t.purge {
		if k == key {
			return
		}
	}
	t.purge = append(t.purge, key)
}

// keepFile cancels a scheduled delete of key.
func (t *tx) keepFile(key string) {
	for i, k := range t.purge {
		if k == key {
			t.purge = append(t.purge[:i:i], t.purge[i+1:]...)
			return
		}
	}
}
