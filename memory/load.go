// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/diffeo/go-geocatalog/catalog"
)

// loadSnapshot rebuilds a state from persisted objects.  It trusts
// the persisted references but still refuses duplicate names, which
// would otherwise corrupt the name indexes.
func loadSnapshot(snap *catalog.Snapshot) (*state, error) {
	s := newState()
	if snap == nil {
		return s, nil
	}
	for _, obj := range snap.Objects {
		if err := s.load(obj); err != nil {
			return nil, err
		}
	}
	for slot, id := range snap.Defaults {
		switch {
		case slot == "workspace":
			s.defaultWorkspace = id
		case strings.HasPrefix(slot, "store:"):
			s.defaultStores[strings.TrimPrefix(slot, "store:")] = id
		}
	}
	return s, nil
}

func (s *state) load(obj catalog.Object) error {
	var taken bool
	switch o := obj.(type) {
	case *catalog.Workspace:
		_, taken = s.workspaces.byName(s.workspaces.scope(o), o.Name)
	case *catalog.Namespace:
		_, taken = s.namespaces.byName(s.namespaces.scope(o), o.Prefix)
	case *catalog.Store:
		_, taken = s.stores.byName(s.stores.scope(o), o.Name)
	case *catalog.Resource:
		_, taken = s.resources.byName(s.resources.scope(o), o.Name)
	case *catalog.Layer:
		_, taken = s.layers.byName(s.layers.scope(o), o.Name)
	case *catalog.LayerGroup:
		_, taken = s.groups.byName(s.groups.scope(o), o.Name)
	case *catalog.Style:
		_, taken = s.styles.byName(s.styles.scope(o), o.Name)
	default:
		return fmt.Errorf("cannot load %T", obj)
	}
	if taken {
		return catalog.Errorf(catalog.DuplicateName, "persisted %s %q is duplicated", obj.ObjectKind(), obj.ObjectName())
	}
	s.putObject(obj)
	return nil
}

// bootstrap creates any missing built-in styles, with their
// documents.
func (c *Catalog) bootstrap(ctx context.Context) error {
	return c.write(ctx, "bootstrap", func(ctx context.Context, t *tx) error {
		for _, name := range catalog.BuiltinStyles {
			if _, ok := t.s.styles.byName("", name); ok {
				continue
			}
			st := &catalog.Style{
				Name:          name,
				Filename:      name + ".sld",
				Format:        "sld",
				FormatVersion: "1.0.0",
				Builtin:       true,
			}
			key := styleKey(nil, st.Filename)
			exists, err := fileExists(ctx, t.c.blobs, key)
			if err != nil {
				return err
			}
			if !exists {
				if err := t.putFile(ctx, key, builtinSLD(name), sldContentType); err != nil {
					return err
				}
			}
			t.create(st)
		}
		return nil
	})
}
