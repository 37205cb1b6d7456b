// Regression tests for the REST server.
//
// Main tests are really by running the end-to-end path, using the
// catalogtest tests driven from restclient.  This only contains
// special-case HTTP behavior.
//
// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/memory"
	"github.com/diffeo/go-geocatalog/restdata"
)

type failResponseWriter struct {
	Headers    http.Header
	StatusCode int
}

func (rw *failResponseWriter) Header() http.Header {
	if rw.Headers == nil {
		rw.Headers = make(http.Header)
	}
	return rw.Headers
}

func (rw *failResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("foo")
}

func (rw *failResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

// fixture builds a router over a catalog holding workspace "sf" with
// data store "sf" and feature type "roads".
func fixture(t *testing.T) (http.Handler, *memory.Catalog) {
	ctx := context.Background()
	mem, err := memory.Open(ctx, memory.Options{Logger: quietLogger()})
	require.NoError(t, err)
	_, err = mem.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	_, err = mem.CreateStore(ctx, "sf", &catalog.Store{
		Name:       "sf",
		Kind:       catalog.DataStore,
		Enabled:    true,
		Connection: map[string]string{"url": "file:data/sf"},
	})
	require.NoError(t, err)
	_, err = mem.CreateResource(ctx, "sf", "sf", &catalog.Resource{
		Name:    "roads",
		Kind:    catalog.FeatureType,
		Enabled: true,
	})
	require.NoError(t, err)
	return NewRouter(mem, quietLogger()), mem
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", restdata.V1JSONMediaType)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// TestDoubleFault checks that, if there is an error serializing a JSON
// response, it doesn't actually panic the process.
func TestDoubleFault(t *testing.T) {
	router, _ := fixture(t)
	req := httptest.NewRequest(http.MethodGet, "/workspaces/sf", nil)
	resp := &failResponseWriter{}
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestWriteFailureLogged checks that a response body that cannot be
// written is reported in the log.
func TestWriteFailureLogged(t *testing.T) {
	_, mem := fixture(t)
	log, hook := logrustest.NewNullLogger()
	router := NewRouter(mem, log)

	req := httptest.NewRequest(http.MethodGet, "/workspaces/sf", nil)
	router.ServeHTTP(&failResponseWriter{}, req)
	if entry := hook.LastEntry(); assert.NotNil(t, entry) {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "/workspaces/sf", entry.Data["path"])
		assert.NotNil(t, entry.Data["err"])
	}

	// Errors sent outside the resource handlers too
	hook.Reset()
	req = httptest.NewRequest(http.MethodGet, "/styles/missing/body", nil)
	resp := &failResponseWriter{}
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	if entry := hook.LastEntry(); assert.NotNil(t, entry) {
		assert.Equal(t, "/styles/missing/body", entry.Data["path"])
	}
}

func TestPostToObject(t *testing.T) {
	router, _ := fixture(t)
	resp := do(router, http.MethodPost, "/workspaces/sf", `{"name":"ny"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestNotFound(t *testing.T) {
	router, _ := fixture(t)

	resp := do(router, http.MethodGet, "/workspaces/ny", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	var errResp restdata.ErrorResponse
	if assert.NoError(t, restdata.Decode(resp.Header().Get("Content-Type"), resp.Body, &errResp)) {
		assert.Equal(t, "NotFound", errResp.Error)
		assert.Contains(t, errResp.Message, "ny")
	}

	resp = do(router, http.MethodGet, "/workspaces/ny?quietOnNotFound=true", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, resp.Body.Bytes())
}

func TestCreatedLocation(t *testing.T) {
	router, mem := fixture(t)

	resp := do(router, http.MethodPost, "/workspaces", `{"name":"ny"}`)
	if assert.Equal(t, http.StatusCreated, resp.Code) {
		assert.Equal(t, "/workspaces/ny", resp.Header().Get("Location"))
	}
	_, err := mem.Workspace(context.Background(), "ny")
	assert.NoError(t, err)

	resp = do(router, http.MethodPost, "/workspaces/sf/datastores",
		`{"name":"more","connectionParameters":{"url":"file:data/more"}}`)
	if assert.Equal(t, http.StatusCreated, resp.Code) {
		assert.Equal(t, "/workspaces/sf/datastores/more", resp.Header().Get("Location"))
	}
	st, err := mem.Store(context.Background(), "sf", "", "more")
	if assert.NoError(t, err) {
		assert.Equal(t, catalog.DataStore, st.Kind, "kind comes from the collection")
	}

	resp = do(router, http.MethodPost, "/workspaces/sf/featuretypes", `{"name":"rivers"}`)
	if assert.Equal(t, http.StatusCreated, resp.Code) {
		assert.Equal(t, "/workspaces/sf/stores/sf/featuretypes/rivers", resp.Header().Get("Location"))
	}
}

func TestKindSegments(t *testing.T) {
	router, _ := fixture(t)

	for _, path := range []string{
		"/workspaces/sf/stores/sf",
		"/workspaces/sf/datastores/sf",
		"/workspaces/sf/resources/roads",
		"/workspaces/sf/featuretypes/roads",
		"/workspaces/sf/datastores/sf/featuretypes/roads",
		"/workspaces/sf/stores/sf/resources/roads",
	} {
		resp := do(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}
	for _, path := range []string{
		"/workspaces/sf/coveragestores/sf",
		"/workspaces/sf/coverages/roads",
		"/workspaces/sf/wmsstores/sf/resources/roads",
	} {
		resp := do(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.Code, path)
	}

	// A body whose kind disagrees with the collection is rejected.
	resp := do(router, http.MethodPost, "/workspaces/sf/coveragestores",
		`{"name":"x","kind":"dataStore","connectionParameters":{"url":"file:x"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Deleting through the wrong kind leaves the object alone.
	resp = do(router, http.MethodDelete, "/workspaces/sf/coverages/roads", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = do(router, http.MethodGet, "/workspaces/sf/featuretypes/roads", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestConflictStatus(t *testing.T) {
	router, _ := fixture(t)

	resp := do(router, http.MethodPost, "/workspaces", `{"name":"sf"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Non-recursive delete of a workspace with contents
	resp = do(router, http.MethodDelete, "/workspaces/sf", "")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = do(router, http.MethodDelete, "/workspaces/sf?recurse=true", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestBadInput(t *testing.T) {
	router, _ := fixture(t)

	req := httptest.NewRequest(http.MethodPost, "/workspaces", strings.NewReader("name: ny"))
	req.Header.Set("Content-Type", "text/yaml")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code)

	resp = do(router, http.MethodPost, "/workspaces", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(router, http.MethodDelete, "/workspaces/sf?purge=everything", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// "-" is the empty name; "-x" is not valid base64.
	resp = do(router, http.MethodGet, "/workspaces/-x", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestNotAcceptable(t *testing.T) {
	router, _ := fixture(t)

	req := httptest.NewRequest(http.MethodGet, "/workspaces", nil)
	req.Header.Set("Accept", "image/png")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotAcceptable, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/workspaces", nil)
	req.Header.Set("Accept", "image/png, application/json;q=0.5")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
}

func TestRootDocument(t *testing.T) {
	router, _ := fixture(t)

	resp := do(router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var root restdata.RootData
	require.NoError(t, restdata.Decode(resp.Header().Get("Content-Type"), resp.Body, &root))
	assert.Equal(t, "/", root.URL)
	assert.Equal(t, "/workspaces/{workspace}", root.WorkspaceURL)
	assert.Equal(t, "/workspaces/{workspace}/{storeType}/{store}", root.StoreURL)
	assert.Equal(t, "/workspaces/{workspace}/styles/{style}/body", root.WorkspaceStyleBodyURL)
	assert.Equal(t, "/layergroups/{group}", root.LayerGroupURL)
	assert.Equal(t, "/events", root.EventsURL)
}

func TestStyleBody(t *testing.T) {
	router, mem := fixture(t)
	ctx := context.Background()
	_, err := mem.CreateStyle(ctx, "sf", &catalog.Style{Name: "thick"}, []byte("<sld/>"))
	require.NoError(t, err)

	resp := do(router, http.MethodGet, "/workspaces/sf/styles/thick/body", "")
	if assert.Equal(t, http.StatusOK, resp.Code) {
		assert.Equal(t, restdata.SLDMediaType, resp.Header().Get("Content-Type"))
		assert.Equal(t, "<sld/>", resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodPut, "/workspaces/sf/styles/thick/body", strings.NewReader("<sld>thick</sld>"))
	req.Header.Set("Content-Type", restdata.SLDMediaType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	body, err := mem.StyleBody(ctx, "sf", "thick")
	if assert.NoError(t, err) {
		assert.Equal(t, "<sld>thick</sld>", string(body))
	}

	resp = do(router, http.MethodPost, "/workspaces/sf/styles/thick/body", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)

	resp = do(router, http.MethodGet, "/styles/thick/body", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestEvents(t *testing.T) {
	router, mem := fixture(t)
	server := httptest.NewServer(router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	// The server subscribes after the upgrade completes, so make
	// changes until one arrives.
	received := make(chan catalog.Event, 1)
	go func() {
		_, b, err := conn.ReadMessage()
		if err != nil {
			close(received)
			return
		}
		var ev catalog.Event
		if restdata.DecodeBytes(b, &ev) == nil {
			received <- ev
		}
		close(received)
	}()
	title := ""
	for i := 0; i < 50; i++ {
		title += "x"
		_, err := mem.UpdateResource(context.Background(), "sf", "sf", "roads",
			catalog.ResourcePatch{Title: &title}, catalog.UpdateOptions{})
		require.NoError(t, err)
		select {
		case ev, ok := <-received:
			if assert.True(t, ok, "event stream closed") {
				assert.Equal(t, catalog.Modified, ev.Type)
				assert.Equal(t, catalog.KindResource, ev.Kind)
				assert.Equal(t, "roads", ev.Name)
				assert.Equal(t, "sf", ev.Workspace)
			}
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
	t.Error("no event received")
}

type inTransaction struct{}

// txRecorder is a catalog that notes which calls run inside a
// transaction.
type txRecorder struct {
	*memory.Catalog
	calls []string
}

func (c *txRecorder) note(ctx context.Context, call string) {
	if ctx.Value(inTransaction{}) == nil {
		call += " outside transaction"
	}
	c.calls = append(c.calls, call)
}

func (c *txRecorder) Transaction(ctx context.Context, fn func(context.Context) error) error {
	return c.Catalog.Transaction(ctx, func(ctx context.Context) error {
		return fn(context.WithValue(ctx, inTransaction{}, true))
	})
}

func (c *txRecorder) Store(ctx context.Context, workspace string, kind catalog.StoreKind, name string) (*catalog.Store, error) {
	c.note(ctx, "Store")
	return c.Catalog.Store(ctx, workspace, kind, name)
}

func (c *txRecorder) UpdateStore(ctx context.Context, workspace, name string, patch catalog.StorePatch) (*catalog.Store, error) {
	c.note(ctx, "UpdateStore")
	return c.Catalog.UpdateStore(ctx, workspace, name, patch)
}

func (c *txRecorder) DeleteStore(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	c.note(ctx, "DeleteStore")
	return c.Catalog.DeleteStore(ctx, workspace, name, opts)
}

func (c *txRecorder) Resource(ctx context.Context, workspace, store, name string) (*catalog.Resource, error) {
	c.note(ctx, "Resource")
	return c.Catalog.Resource(ctx, workspace, store, name)
}

func (c *txRecorder) UpdateResource(ctx context.Context, workspace, store, name string, patch catalog.ResourcePatch, opts catalog.UpdateOptions) (*catalog.Resource, error) {
	c.note(ctx, "UpdateResource")
	return c.Catalog.UpdateResource(ctx, workspace, store, name, patch, opts)
}

func (c *txRecorder) DeleteResource(ctx context.Context, workspace, store, name string, opts catalog.DeleteOptions) error {
	c.note(ctx, "DeleteResource")
	return c.Catalog.DeleteResource(ctx, workspace, store, name, opts)
}

// TestKindCheckAtomic checks that the kind checks a typed URL implies
// run in the same transaction as the change they guard.
func TestKindCheckAtomic(t *testing.T) {
	_, mem := fixture(t)
	rec := &txRecorder{Catalog: mem}
	router := NewRouter(rec, quietLogger())

	resp := do(router, http.MethodPut, "/workspaces/sf/datastores/sf/featuretypes/roads", `{"title":"Roads"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Store", "Resource", "UpdateResource"}, rec.calls)

	rec.calls = nil
	resp = do(router, http.MethodPut, "/workspaces/sf/coveragestores/sf/coverages/roads", `{"title":"Dem"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, []string{"Store"}, rec.calls)

	rec.calls = nil
	resp = do(router, http.MethodPut, "/workspaces/sf/datastores/sf", `{"description":"San Francisco"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Store", "UpdateStore"}, rec.calls)

	rec.calls = nil
	resp = do(router, http.MethodDelete, "/workspaces/sf/datastores/sf/featuretypes/roads?recurse=true", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, []string{"Store", "Resource", "DeleteResource"}, rec.calls)

	rec.calls = nil
	resp = do(router, http.MethodDelete, "/workspaces/sf/datastores/sf", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, []string{"Store", "DeleteStore"}, rec.calls)

	r, err := mem.Resources(context.Background(), "sf", "", "")
	if assert.NoError(t, err) {
		assert.Empty(t, r)
	}
}
