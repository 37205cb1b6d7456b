// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/blob"
	blobmemory "github.com/diffeo/go-geocatalog/blob/memory"
	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/memory"
)

var errInjected = errors.New("injected failure")

// flakyBlobs fails writes and deletes of keys containing failOn.
type flakyBlobs struct {
	blob.Store
	failOn string
}

func (f *flakyBlobs) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return blob.Info{}, errInjected
	}
	return f.Store.Put(ctx, key, r, opts)
}

func (f *flakyBlobs) Delete(ctx context.Context, key string) (bool, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return false, errInjected
	}
	return f.Store.Delete(ctx, key)
}

// fakePersister keeps saved objects in memory.
type fakePersister struct {
	mu       sync.Mutex
	order    []string
	objects  map[string]catalog.Object
	defaults map[string]string
	saves    [][]catalog.Change
	fail     bool
}

func newFakePersister() *fakePersister {
	return &fakePersister{objects: make(map[string]catalog.Object)}
}

func (p *fakePersister) Load(ctx context.Context) (*catalog.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := &catalog.Snapshot{Defaults: make(map[string]string)}
	for _, id := range p.order {
		snap.Objects = append(snap.Objects, catalog.CloneObject(p.objects[id]))
	}
	for k, v := range p.defaults {
		snap.Defaults[k] = v
	}
	return snap, nil
}

func (p *fakePersister) Save(ctx context.Context, changes []catalog.Change, defaults map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errInjected
	}
	p.saves = append(p.saves, changes)
	for _, ch := range changes {
		_, existed := p.objects[ch.ID]
		if ch.Object == nil {
			delete(p.objects, ch.ID)
			for i, id := range p.order {
				if id == ch.ID {
					p.order = append(p.order[:i:i], p.order[i+1:]...)
					break
				}
			}
			continue
		}
		p.objects[ch.ID] = catalog.CloneObject(ch.Object)
		if !existed {
			p.order = append(p.order, ch.ID)
		}
	}
	p.defaults = defaults
	return nil
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	blobs     *flakyBlobs
	persister *fakePersister
	catalog   *memory.Catalog
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		blobs:     &flakyBlobs{Store: blobmemory.New()},
		persister: newFakePersister(),
	}
	f.open()
	return f
}

func (f *fixture) open() {
	log := logrus.New()
	log.Out = io.Discard
	c, err := memory.Open(f.ctx, memory.Options{
		Clock:     clock.NewMock(),
		Logger:    log,
		Blobs:     f.blobs,
		Persister: f.persister,
	})
	require.NoError(f.t, err)
	f.catalog = c
}

func (f *fixture) exists(key string) bool {
	ok, err := blob.Exists(f.ctx, f.blobs, key)
	require.NoError(f.t, err)
	return ok
}

func (f *fixture) read(key string) string {
	data, err := blob.ReadAll(f.ctx, f.blobs, key)
	require.NoError(f.t, err)
	return string(data)
}

func TestTransactionCommit(t *testing.T) {
	f := newFixture(t)
	err := f.catalog.Transaction(f.ctx, func(ctx context.Context) error {
		if _, err := f.catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"}); err != nil {
			return err
		}
		// Reads inside the transaction see its own changes.
		_, err := f.catalog.Workspace(ctx, "sf")
		return err
	})
	require.NoError(t, err)
	_, err = f.catalog.Namespace(f.ctx, "sf")
	assert.NoError(t, err)
}

func TestTransactionRollback(t *testing.T) {
	f := newFixture(t)
	var events []catalog.Event
	cancel := f.catalog.Subscribe(func(ev catalog.Event) { events = append(events, ev) })
	defer cancel()

	err := f.catalog.Transaction(f.ctx, func(ctx context.Context) error {
		if _, err := f.catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"}); err != nil {
			return err
		}
		if _, err := f.catalog.CreateStyle(ctx, "", &catalog.Style{Name: "thick"}, []byte("<sld/>")); err != nil {
			return err
		}
		return errInjected
	})
	assert.Equal(t, errInjected, err)

	_, err = f.catalog.Workspace(f.ctx, "sf")
	assert.Equal(t, catalog.NotFound, catalog.KindOf(err))
	_, err = f.catalog.Style(f.ctx, "", "thick")
	assert.Equal(t, catalog.NotFound, catalog.KindOf(err))
	assert.False(t, f.exists("styles/thick.sld"), "new document removed")
	assert.Empty(t, events)
}

func TestTransactionSavepoint(t *testing.T) {
	f := newFixture(t)
	f.blobs.failOn = "bad.sld"
	err := f.catalog.Transaction(f.ctx, func(ctx context.Context) error {
		if _, err := f.catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"}); err != nil {
			return err
		}
		_, err := f.catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"})
		assert.Equal(t, catalog.DuplicateName, catalog.KindOf(err))

		_, err = f.catalog.CreateStyle(ctx, "sf", &catalog.Style{Name: "bad"}, []byte("<sld/>"))
		assert.Equal(t, catalog.IOFailure, catalog.KindOf(err))
		_, err = f.catalog.Style(ctx, "sf", "bad")
		assert.Equal(t, catalog.NotFound, catalog.KindOf(err), "failed nested create undone")

		_, err = f.catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: "ny"})
		return err
	})
	require.NoError(t, err)

	workspaces, err := f.catalog.Workspaces(f.ctx)
	require.NoError(t, err)
	if assert.Len(t, workspaces, 2) {
		assert.Equal(t, "sf", workspaces[0].Name)
		assert.Equal(t, "ny", workspaces[1].Name)
	}
}

func TestTransactionRestoresDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateStyle(f.ctx, "", &catalog.Style{Name: "thick"}, []byte("old"))
	require.NoError(t, err)

	err = f.catalog.Transaction(f.ctx, func(ctx context.Context) error {
		if _, err := f.catalog.UpdateStyle(ctx, "", "thick", catalog.StylePatch{}, []byte("new")); err != nil {
			return err
		}
		body, err := f.catalog.StyleBody(ctx, "", "thick")
		if assert.NoError(t, err) {
			assert.Equal(t, "new", string(body))
		}
		return errInjected
	})
	assert.Equal(t, errInjected, err)
	assert.Equal(t, "old", f.read("styles/thick.sld"))
}

func TestPurgeDeferredToCommit(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateStyle(f.ctx, "", &catalog.Style{Name: "thick"}, []byte("<sld/>"))
	require.NoError(t, err)

	err = f.catalog.Transaction(f.ctx, func(ctx context.Context) error {
		err := f.catalog.DeleteStyle(ctx, "", "thick", catalog.DeleteOptions{Purge: catalog.PurgeAll})
		if err != nil {
			return err
		}
		assert.True(t, f.exists("styles/thick.sld"), "not deleted before commit")
		return errInjected
	})
	assert.Equal(t, errInjected, err)
	assert.True(t, f.exists("styles/thick.sld"))

	require.NoError(t, f.catalog.DeleteStyle(f.ctx, "", "thick", catalog.DeleteOptions{Purge: catalog.PurgeAll}))
	assert.False(t, f.exists("styles/thick.sld"))
}

func TestPurgeFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	_, err = f.catalog.CreateStore(f.ctx, "sf", &catalog.Store{
		Name:       "sf",
		Kind:       catalog.DataStore,
		Connection: map[string]string{"url": "file:data/sf"},
	})
	require.NoError(t, err)
	for _, key := range []string{"data/sf/a.properties", "data/sf/locked.properties"} {
		_, err := blob.PutBytes(f.ctx, f.blobs, key, []byte("_=geom:Point:srid=4326\n"), "")
		require.NoError(t, err)
	}

	f.blobs.failOn = "locked"
	err = f.catalog.DeleteStore(f.ctx, "sf", "sf", catalog.DeleteOptions{Purge: catalog.PurgeAll})
	require.Error(t, err)
	var cerr *catalog.Error
	if assert.True(t, errors.As(err, &cerr)) {
		assert.Equal(t, catalog.IOFailure, cerr.Kind)
		// Files lists exactly what was lost before the failure.
		for _, key := range cerr.Files {
			assert.False(t, f.exists(key), key)
		}
		assert.NotContains(t, cerr.Files, "data/sf/locked.properties")
	}
	assert.True(t, f.exists("data/sf/locked.properties"))
	_, err = f.catalog.Store(f.ctx, "sf", "", "sf")
	assert.NoError(t, err, "store survives a failed purge")
}

func TestPersisterRecordsChanges(t *testing.T) {
	f := newFixture(t)
	saves := len(f.persister.saves)
	ws, err := f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)

	require.Len(t, f.persister.saves, saves+1)
	changes := f.persister.saves[saves]
	if assert.Len(t, changes, 2) {
		assert.Equal(t, catalog.KindWorkspace, changes[0].Kind)
		assert.Equal(t, ws.ID, changes[0].ID)
		assert.Equal(t, catalog.KindNamespace, changes[1].Kind)
	}
	assert.Equal(t, map[string]string{"workspace": ws.ID}, f.persister.defaults)

	require.NoError(t, f.catalog.DeleteWorkspace(f.ctx, "sf", catalog.DeleteOptions{}))
	changes = f.persister.saves[len(f.persister.saves)-1]
	for _, ch := range changes {
		assert.Nil(t, ch.Object, "%s %s", ch.Kind, ch.ID)
	}
	assert.Empty(t, f.persister.defaults)
}

func TestPersisterFailure(t *testing.T) {
	f := newFixture(t)
	f.persister.fail = true
	_, err := f.catalog.CreateStyle(f.ctx, "", &catalog.Style{Name: "thick"}, []byte("<sld/>"))
	assert.Equal(t, catalog.IOFailure, catalog.KindOf(err))
	_, err = f.catalog.Style(f.ctx, "", "thick")
	assert.Equal(t, catalog.NotFound, catalog.KindOf(err))
	assert.False(t, f.exists("styles/thick.sld"))
}

func TestReopen(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	_, err = f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "ny"})
	require.NoError(t, err)
	require.NoError(t, f.catalog.SetDefaultWorkspace(f.ctx, "ny"))
	_, err = f.catalog.CreateStore(f.ctx, "ny", &catalog.Store{
		Name:       "streets",
		Kind:       catalog.DataStore,
		Connection: map[string]string{"url": "file:data/ny"},
	})
	require.NoError(t, err)
	_, err = f.catalog.CreateResource(f.ctx, "ny", "", &catalog.Resource{Name: "roads"})
	require.NoError(t, err)

	f.open()
	ws, err := f.catalog.Workspace(f.ctx, "default")
	if assert.NoError(t, err) {
		assert.Equal(t, "ny", ws.Name)
	}
	st, err := f.catalog.Store(f.ctx, "ny", "", "streets")
	if assert.NoError(t, err) {
		assert.True(t, st.Default)
	}
	l, err := f.catalog.Layer(f.ctx, "ny", "roads")
	if assert.NoError(t, err) && assert.NotNil(t, l.DefaultStyle) {
		assert.Equal(t, catalog.StyleGeneric, l.DefaultStyle.Name)
	}
	styles, err := f.catalog.Styles(f.ctx, "")
	if assert.NoError(t, err) {
		assert.Len(t, styles, len(catalog.BuiltinStyles), "built-in styles not duplicated")
	}
}

func TestCancelledTransaction(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	err := f.catalog.Transaction(ctx, func(ctx context.Context) error {
		_, err := f.catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"})
		cancel()
		return err
	})
	assert.Equal(t, context.Canceled, err)
	_, err = f.catalog.Workspace(f.ctx, "sf")
	assert.Equal(t, catalog.NotFound, catalog.KindOf(err))
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	var events []catalog.Event
	cancel := f.catalog.Subscribe(func(ev catalog.Event) { events = append(events, ev) })

	_, err := f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	_, err = f.catalog.CreateStyle(f.ctx, "sf", &catalog.Style{Name: "thick"}, nil)
	require.NoError(t, err)
	if assert.Len(t, events, 3) {
		assert.Equal(t, catalog.Added, events[0].Type)
		assert.Equal(t, catalog.KindWorkspace, events[0].Kind)
		assert.Equal(t, "sf", events[0].Name)
		assert.Equal(t, "", events[0].Workspace)
		assert.Equal(t, catalog.KindNamespace, events[1].Kind)
		assert.Equal(t, "sf", events[1].Workspace)
		assert.Equal(t, catalog.KindStyle, events[2].Kind)
		assert.Equal(t, "sf", events[2].Workspace)
	}

	events = nil
	require.NoError(t, f.catalog.DeleteWorkspace(f.ctx, "sf", catalog.DeleteOptions{Recurse: true}))
	var kinds []catalog.Kind
	for _, ev := range events {
		assert.Equal(t, catalog.Removed, ev.Type)
		if ev.Kind != catalog.KindWorkspace {
			assert.Equal(t, "sf", ev.Workspace)
		}
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []catalog.Kind{catalog.KindStyle, catalog.KindNamespace, catalog.KindWorkspace}, kinds)

	cancel()
	events = nil
	_, err = f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "ny"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDependents(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateWorkspace(f.ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	st, err := f.catalog.CreateStore(f.ctx, "sf", &catalog.Store{
		Name:       "sf",
		Kind:       catalog.DataStore,
		Connection: map[string]string{"url": "file:data/sf"},
	})
	require.NoError(t, err)
	_, err = f.catalog.CreateResource(f.ctx, "sf", "sf", &catalog.Resource{Name: "roads"})
	require.NoError(t, err)
	_, err = f.catalog.CreateLayerGroup(f.ctx, "", &catalog.LayerGroup{
		Name:   "all",
		Layers: []catalog.PublishedRef{{Type: catalog.PublishedLayer, Ref: catalog.Ref{Workspace: "sf", Name: "roads"}}},
	})
	require.NoError(t, err)

	deps, err := f.catalog.Dependents(f.ctx, catalog.KindStore, st.ID)
	require.NoError(t, err)
	var got []string
	for _, obj := range deps {
		got = append(got, string(obj.ObjectKind())+" "+obj.ObjectName())
	}
	assert.Equal(t, []string{"layerGroup all", "layer roads", "resource roads"}, got)

	_, err = f.catalog.Dependents(f.ctx, catalog.KindStore, "missing")
	assert.Equal(t, catalog.NotFound, catalog.KindOf(err))
}
