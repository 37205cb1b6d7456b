// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/catalog"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c, err := Open(ctx, Options{Registerer: reg})
	require.NoError(t, err)

	_, err = c.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	_, err = c.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"})
	require.Error(t, err)

	entities := func(kind catalog.Kind) float64 {
		return testutil.ToFloat64(c.metrics.entities.With(prometheus.Labels{"kind": string(kind)}))
	}
	assert.Equal(t, 1.0, entities(catalog.KindWorkspace))
	assert.Equal(t, 1.0, entities(catalog.KindNamespace))
	assert.Equal(t, float64(len(catalog.BuiltinStyles)), entities(catalog.KindStyle))

	txns := func(op, outcome string) float64 {
		return testutil.ToFloat64(c.metrics.transactions.With(prometheus.Labels{"op": op, "outcome": outcome}))
	}
	assert.Equal(t, 1.0, txns("CreateWorkspace", "committed"))
	assert.Equal(t, 1.0, txns("CreateWorkspace", "duplicatename"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "geocatalog_entities")
	assert.Contains(t, names, "geocatalog_lock_wait_seconds")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "committed", outcome(nil))
	assert.Equal(t, "conflict", outcome(catalog.Errorf(catalog.Conflict, "x")))
	assert.Equal(t, "error", outcome(context.Canceled))
}
