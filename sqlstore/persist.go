// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/diffeo/go-geocatalog/catalog"
)

// encodeObject converts a catalog object to its stored form.
func encodeObject(obj catalog.Object) (out []byte, err error) {
	cbor := new(codec.CborHandle)
	encoder := codec.NewEncoderBytes(&out, cbor)
	err = encoder.Encode(obj)
	return
}

// decodeObject is the inverse of encodeObject.
func decodeObject(kind catalog.Kind, in []byte) (catalog.Object, error) {
	obj := catalog.NewObject(kind)
	if obj == nil {
		return nil, fmt.Errorf("unknown object kind %q", kind)
	}
	cbor := new(codec.CborHandle)
	decoder := codec.NewDecoderBytes(in, cbor)
	if err := decoder.Decode(obj); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}
	return obj, nil
}

// Load returns every stored object in creation order, and the
// default slots.
func (s *Store) Load(ctx context.Context) (*catalog.Snapshot, error) {
	snap := &catalog.Snapshot{Defaults: make(map[string]string)}
	err := s.withTx(ctx, true, func(tx *sql.Tx) error {
		snap.Objects = nil
		rows, err := tx.QueryContext(ctx, "SELECT kind, body FROM catalog_object ORDER BY seq")
		if err != nil {
			return err
		}
		err = scanRows(rows, func() error {
			var (
				kind string
				body []byte
			)
			if err := rows.Scan(&kind, &body); err != nil {
				return err
			}
			obj, err := decodeObject(catalog.Kind(kind), body)
			if err != nil {
				return err
			}
			snap.Objects = append(snap.Objects, obj)
			return nil
		})
		if err != nil {
			return err
		}

		rows, err = tx.QueryContext(ctx, "SELECT slot, object_id FROM catalog_default")
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			var slot, id string
			if err := rows.Scan(&slot, &id); err != nil {
				return err
			}
			snap.Defaults[slot] = id
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Save records one committed transaction.  Changed objects are
// upserted, keeping their original position; removed objects are
// deleted; the default slots are replaced wholesale.
func (s *Store) Save(ctx context.Context, changes []catalog.Change, defaults map[string]string) error {
	bodies := make([][]byte, len(changes))
	for i, ch := range changes {
		if ch.Object == nil {
			continue
		}
		body, err := encodeObject(ch.Object)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", ch.Kind, ch.ID, err)
		}
		bodies[i] = body
	}

	return s.withTx(ctx, false, func(tx *sql.Tx) error {
		for i, ch := range changes {
			if err := s.saveChange(ctx, tx, ch, bodies[i]); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_default"); err != nil {
			return err
		}
		for slot, id := range defaults {
			params := queryParams{d: s.dialect}
			query := "INSERT INTO catalog_default (slot, object_id) VALUES (" +
				params.Param(slot) + ", " + params.Param(id) + ")"
			if _, err := tx.ExecContext(ctx, query, params.args...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) saveChange(ctx context.Context, tx *sql.Tx, ch catalog.Change, body []byte) error {
	params := queryParams{d: s.dialect}
	var query string
	if body == nil {
		query = "DELETE FROM catalog_object WHERE id=" + params.Param(ch.ID)
	} else {
		query = "INSERT INTO catalog_object (id, kind, seq, body) VALUES (" +
			params.Param(ch.ID) + ", " +
			params.Param(string(ch.Kind)) + ", " +
			"(SELECT COALESCE(MAX(seq), 0) + 1 FROM catalog_object), " +
			params.Param(body) + ") " +
			"ON CONFLICT (id) DO UPDATE SET kind=excluded.kind, body=excluded.body"
	}
	_, err := tx.ExecContext(ctx, query, params.args...)
	return err
}
