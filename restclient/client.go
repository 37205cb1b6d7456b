// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides a catalog.Catalog that talks to the
// matching HTTP REST server in the "restserver" package.
//
// The server in github.com/diffeo/go-geocatalog/cmd/geocatalogd runs
// a compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//     c, err := restclient.New("http://localhost:5980/")
package restclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// New creates a new catalog interface that speaks to an external
// REST server, using the default HTTP client.
func New(baseURL string) (*Client, error) {
	return NewWithClient(baseURL, nil)
}

// NewWithClient creates a new catalog interface that speaks to an
// external REST server through a specific HTTP client.  It fetches
// the server's root document before returning.
func NewWithClient(baseURL string, client *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, catalog.Errorf(catalog.ValidationFailed, "catalog URL %q is not absolute", baseURL)
	}
	c := &Client{resource: resource{URL: u, Client: client}}
	if err = c.Refresh(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Client is a catalog.Catalog backed by a REST server.
type Client struct {
	resource
	Representation restdata.RootData
}

var _ catalog.Catalog = (*Client)(nil)

// Refresh reloads the root document.
func (c *Client) Refresh(ctx context.Context) error {
	c.Representation = restdata.RootData{}
	return c.Do(ctx, http.MethodGet, c.URL, nil, &c.Representation)
}

type vars map[string]interface{}

// Reset implements catalog.Catalog.
func (c *Client) Reset(ctx context.Context) error {
	return c.PostTo(ctx, c.Representation.ResetURL, vars{}, nil, nil)
}

// Workspaces implements catalog.Catalog.
func (c *Client) Workspaces(ctx context.Context) ([]*catalog.Workspace, error) {
	var result []*catalog.Workspace
	err := c.GetFrom(ctx, c.Representation.WorkspacesURL, vars{}, &result)
	return result, err
}

// Workspace implements catalog.Catalog.
func (c *Client) Workspace(ctx context.Context, name string) (*catalog.Workspace, error) {
	var result catalog.Workspace
	err := c.GetFrom(ctx, c.Representation.WorkspaceURL, vars{"workspace": name}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateWorkspace implements catalog.Catalog.
func (c *Client) CreateWorkspace(ctx context.Context, ws *catalog.Workspace) (*catalog.Workspace, error) {
	var result catalog.Workspace
	err := c.PostTo(ctx, c.Representation.WorkspacesURL, vars{}, ws, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateWorkspace implements catalog.Catalog.
func (c *Client) UpdateWorkspace(ctx context.Context, name string, patch catalog.WorkspacePatch) (*catalog.Workspace, error) {
	var result catalog.Workspace
	err := c.PutTo(ctx, c.Representation.WorkspaceURL, vars{"workspace": name}, patch, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteWorkspace implements catalog.Catalog.
func (c *Client) DeleteWorkspace(ctx context.Context, name string, opts catalog.DeleteOptions) error {
	return c.DeleteAt(ctx, c.Representation.WorkspaceURL, vars{"workspace": name}, opts)
}

// SetDefaultWorkspace implements catalog.Catalog.
func (c *Client) SetDefaultWorkspace(ctx context.Context, name string) error {
	return c.PutTo(ctx, c.Representation.DefaultWorkspaceURL, vars{"workspace": name}, nil, nil)
}

// Namespaces implements catalog.Catalog.
func (c *Client) Namespaces(ctx context.Context) ([]*catalog.Namespace, error) {
	var result []*catalog.Namespace
	err := c.GetFrom(ctx, c.Representation.NamespacesURL, vars{}, &result)
	return result, err
}

// Namespace implements catalog.Catalog.
func (c *Client) Namespace(ctx context.Context, prefix string) (*catalog.Namespace, error) {
	var result catalog.Namespace
	err := c.GetFrom(ctx, c.Representation.NamespaceURL, vars{"namespace": prefix}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateNamespace implements catalog.Catalog.
func (c *Client) CreateNamespace(ctx context.Context, ns *catalog.Namespace) (*catalog.Namespace, error) {
	var result catalog.Namespace
	err := c.PostTo(ctx, c.Representation.NamespacesURL, vars{}, ns, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateNamespace implements catalog.Catalog.
func (c *Client) UpdateNamespace(ctx context.Context, prefix string, patch catalog.NamespacePatch) (*catalog.Namespace, error) {
	var result catalog.Namespace
	err := c.PutTo(ctx, c.Representation.NamespaceURL, vars{"namespace": prefix}, patch, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteNamespace implements catalog.Catalog.
func (c *Client) DeleteNamespace(ctx context.Context, prefix string, opts catalog.DeleteOptions) error {
	return c.DeleteAt(ctx, c.Representation.NamespaceURL, vars{"namespace": prefix}, opts)
}

// Stores implements catalog.Catalog.
func (c *Client) Stores(ctx context.Context, workspace string, kind catalog.StoreKind) ([]*catalog.Store, error) {
	var result []*catalog.Store
	err := c.GetFrom(ctx, c.Representation.StoresURL, vars{
		"workspace": workspace,
		"storeType": restdata.StoreSegment(kind),
	}, &result)
	return result, err
}

// Store implements catalog.Catalog.
func (c *Client) Store(ctx context.Context, workspace string, kind catalog.StoreKind, name string) (*catalog.Store, error) {
	var result catalog.Store
	err := c.GetFrom(ctx, c.Representation.StoreURL, vars{
		"workspace": workspace,
		"storeType": restdata.StoreSegment(kind),
		"store":     name,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateStore implements catalog.Catalog.
func (c *Client) CreateStore(ctx context.Context, workspace string, st *catalog.Store) (*catalog.Store, error) {
	var result catalog.Store
	err := c.PostTo(ctx, c.Representation.StoresURL, vars{
		"workspace": workspace,
		"storeType": restdata.StoreSegment(st.Kind),
	}, st, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) storeVars(workspace, name string) vars {
	return vars{
		"workspace": workspace,
		"storeType": restdata.AllStores,
		"store":     name,
	}
}

// UpdateStore implements catalog.Catalog.
func (c *Client) UpdateStore(ctx context.Context, workspace, name string, patch catalog.StorePatch) (*catalog.Store, error) {
	var result catalog.Store
	err := c.PutTo(ctx, c.Representation.StoreURL, c.storeVars(workspace, name), patch, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteStore implements catalog.Catalog.
func (c *Client) DeleteStore(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	return c.DeleteAt(ctx, c.Representation.StoreURL, c.storeVars(workspace, name), opts)
}

// resourceURLs picks the collection and item templates for resources
// in a single store, or in the whole workspace if store is empty.
func (c *Client) resourceURLs(workspace, store string, kind catalog.ResourceKind) (string, string, vars) {
	v := vars{
		"workspace":    workspace,
		"resourceType": restdata.ResourceSegment(kind),
	}
	if store == "" {
		return c.Representation.WorkspaceResourcesURL, c.Representation.WorkspaceResourceURL, v
	}
	v["storeType"] = restdata.AllStores
	v["store"] = store
	return c.Representation.ResourcesURL, c.Representation.ResourceURL, v
}

// Resources implements catalog.Catalog.
func (c *Client) Resources(ctx context.Context, workspace, store string, kind catalog.ResourceKind) ([]*catalog.Resource, error) {
	var result []*catalog.Resource
	collection, _, v := c.resourceURLs(workspace, store, kind)
	err := c.GetFrom(ctx, collection, v, &result)
	return result, err
}

// Resource implements catalog.Catalog.
func (c *Client) Resource(ctx context.Context, workspace, store, name string) (*catalog.Resource, error) {
	var result catalog.Resource
	_, item, v := c.resourceURLs(workspace, store, "")
	v["resource"] = name
	err := c.GetFrom(ctx, item, v, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateResource implements catalog.Catalog.
func (c *Client) CreateResource(ctx context.Context, workspace, store string, r *catalog.Resource) (*catalog.Resource, error) {
	var result catalog.Resource
	collection, _, v := c.resourceURLs(workspace, store, r.Kind)
	err := c.PostTo(ctx, collection, v, r, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateResource implements catalog.Catalog.
func (c *Client) UpdateResource(ctx context.Context, workspace, store, name string, patch catalog.ResourcePatch, opts catalog.UpdateOptions) (*catalog.Resource, error) {
	_, item, v := c.resourceURLs(workspace, store, "")
	v["resource"] = name
	query := url.Values{}
	if len(opts.Recalculate) > 0 {
		parts := make([]string, len(opts.Recalculate))
		for i, r := range opts.Recalculate {
			parts[i] = string(r)
		}
		query.Set("recalculate", strings.Join(parts, ","))
	}
	u, err := c.Template(item, v, query)
	if err != nil {
		return nil, err
	}
	var result catalog.Resource
	err = c.Do(ctx, http.MethodPut, u, patch, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteResource implements catalog.Catalog.
func (c *Client) DeleteResource(ctx context.Context, workspace, store, name string, opts catalog.DeleteOptions) error {
	_, item, v := c.resourceURLs(workspace, store, "")
	v["resource"] = name
	return c.DeleteAt(ctx, item, v, opts)
}

// scoped picks the global template if workspace is empty and the
// workspace template otherwise.
func scoped(workspace, global, inWorkspace string) (string, vars) {
	if workspace == "" {
		return global, vars{}
	}
	return inWorkspace, vars{"workspace": workspace}
}

// Layers implements catalog.Catalog.
func (c *Client) Layers(ctx context.Context, workspace string) ([]*catalog.Layer, error) {
	var result []*catalog.Layer
	tmpl, v := scoped(workspace, c.Representation.LayersURL, c.Representation.WorkspaceLayersURL)
	err := c.GetFrom(ctx, tmpl, v, &result)
	return result, err
}

func (c *Client) layerTemplate(workspace, name string) (string, vars) {
	tmpl, v := scoped(workspace, c.Representation.LayerURL, c.Representation.WorkspaceLayerURL)
	v["layer"] = name
	return tmpl, v
}

// Layer implements catalog.Catalog.
func (c *Client) Layer(ctx context.Context, workspace, name string) (*catalog.Layer, error) {
	var result catalog.Layer
	tmpl, v := c.layerTemplate(workspace, name)
	err := c.GetFrom(ctx, tmpl, v, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateLayer implements catalog.Catalog.
func (c *Client) UpdateLayer(ctx context.Context, workspace, name string, patch catalog.LayerPatch) (*catalog.Layer, error) {
	var result catalog.Layer
	tmpl, v := c.layerTemplate(workspace, name)
	err := c.PutTo(ctx, tmpl, v, patch, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteLayer implements catalog.Catalog.
func (c *Client) DeleteLayer(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	tmpl, v := c.layerTemplate(workspace, name)
	return c.DeleteAt(ctx, tmpl, v, opts)
}

// LayerGroups implements catalog.Catalog.
func (c *Client) LayerGroups(ctx context.Context, workspace string) ([]*catalog.LayerGroup, error) {
	var result []*catalog.LayerGroup
	tmpl, v := scoped(workspace, c.Representation.LayerGroupsURL, c.Representation.WorkspaceLayerGroupsURL)
	err := c.GetFrom(ctx, tmpl, v, &result)
	return result, err
}

func (c *Client) groupTemplate(workspace, name string) (string, vars) {
	tmpl, v := scoped(workspace, c.Representation.LayerGroupURL, c.Representation.WorkspaceLayerGroupURL)
	v["group"] = name
	return tmpl, v
}

// LayerGroup implements catalog.Catalog.
func (c *Client) LayerGroup(ctx context.Context, workspace, name string) (*catalog.LayerGroup, error) {
	var result catalog.LayerGroup
	tmpl, v := c.groupTemplate(workspace, name)
	err := c.GetFrom(ctx, tmpl, v, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateLayerGroup implements catalog.Catalog.
func (c *Client) CreateLayerGroup(ctx context.Context, workspace string, lg *catalog.LayerGroup) (*catalog.LayerGroup, error) {
	var result catalog.LayerGroup
	tmpl, v := scoped(workspace, c.Representation.LayerGroupsURL, c.Representation.WorkspaceLayerGroupsURL)
	err := c.PostTo(ctx, tmpl, v, lg, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateLayerGroup implements catalog.Catalog.
func (c *Client) UpdateLayerGroup(ctx context.Context, workspace, name string, patch catalog.LayerGroupPatch) (*catalog.LayerGroup, error) {
	var result catalog.LayerGroup
	tmpl, v := c.groupTemplate(workspace, name)
	err := c.PutTo(ctx, tmpl, v, patch, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteLayerGroup implements catalog.Catalog.
func (c *Client) DeleteLayerGroup(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	tmpl, v := c.groupTemplate(workspace, name)
	return c.DeleteAt(ctx, tmpl, v, opts)
}

// Styles implements catalog.Catalog.
func (c *Client) Styles(ctx context.Context, workspace string) ([]*catalog.Style, error) {
	var result []*catalog.Style
	tmpl, v := scoped(workspace, c.Representation.StylesURL, c.Representation.WorkspaceStylesURL)
	err := c.GetFrom(ctx, tmpl, v, &result)
	return result, err
}

func (c *Client) styleTemplate(workspace, name string) (string, vars) {
	tmpl, v := scoped(workspace, c.Representation.StyleURL, c.Representation.WorkspaceStyleURL)
	v["style"] = name
	return tmpl, v
}

// Style implements catalog.Catalog.
func (c *Client) Style(ctx context.Context, workspace, name string) (*catalog.Style, error) {
	var result catalog.Style
	tmpl, v := c.styleTemplate(workspace, name)
	err := c.GetFrom(ctx, tmpl, v, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// StyleBody implements catalog.Catalog.  The document is fetched
// as-is from the style's body URL.
func (c *Client) StyleBody(ctx context.Context, workspace, name string) ([]byte, error) {
	tmpl, v := scoped(workspace, c.Representation.StyleBodyURL, c.Representation.WorkspaceStyleBodyURL)
	v["style"] = name
	u, err := c.Template(tmpl, v, nil)
	if err != nil {
		return nil, err
	}
	return c.Raw(ctx, http.MethodGet, u, "", nil)
}

// CreateStyle implements catalog.Catalog.
func (c *Client) CreateStyle(ctx context.Context, workspace string, st *catalog.Style, body []byte) (*catalog.Style, error) {
	var result catalog.Style
	tmpl, v := scoped(workspace, c.Representation.StylesURL, c.Representation.WorkspaceStylesURL)
	err := c.PostTo(ctx, tmpl, v, restdata.StyleUpload{Style: st, Body: body}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateStyle implements catalog.Catalog.
func (c *Client) UpdateStyle(ctx context.Context, workspace, name string, patch catalog.StylePatch, body []byte) (*catalog.Style, error) {
	var result catalog.Style
	tmpl, v := c.styleTemplate(workspace, name)
	err := c.PutTo(ctx, tmpl, v, restdata.StyleUpdate{Patch: patch, Body: body}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteStyle implements catalog.Catalog.
func (c *Client) DeleteStyle(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	tmpl, v := c.styleTemplate(workspace, name)
	return c.DeleteAt(ctx, tmpl, v, opts)
}
