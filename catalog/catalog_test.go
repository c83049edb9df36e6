package catalog_test

import (
	"bufio"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/catalog"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
)

var (
	rows = &catalog.Plan{
		Name:      "rows",
		Districts: [][]int{{1, 1}, {2, 2}},
	}
	columns = &catalog.Plan{
		Name:      "columns/with slash",
		Districts: [][]int{{0, -3}, {0, -3}},
	}
)

func newStore(t *testing.T) (*catalog.Store, datastore.Batching) {
	t.Helper()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	store, err := catalog.NewStore(ds)
	require.NoError(t, err)
	return store, ds
}

func TestPlan(t *testing.T) {
	t.Run("cbor round trip", func(t *testing.T) {
		for _, plan := range []*catalog.Plan{rows, columns} {
			var buf bytes.Buffer
			require.NoError(t, plan.MarshalCBOR(&buf))
			var decoded catalog.Plan
			require.NoError(t, decoded.UnmarshalCBOR(&buf))
			require.Equal(t, plan, &decoded)
		}
	})
	t.Run("cid is stable and content derived", func(t *testing.T) {
		first, err := rows.CID()
		require.NoError(t, err)
		again, err := (&catalog.Plan{Name: "rows", Districts: [][]int{{1, 1}, {2, 2}}}).CID()
		require.NoError(t, err)
		require.Equal(t, first, again)
		other, err := columns.CID()
		require.NoError(t, err)
		require.NotEqual(t, first, other)
	})
	t.Run("validates", func(t *testing.T) {
		for _, plan := range []*catalog.Plan{
			{Districts: [][]int{{1}}},
			{Name: "empty"},
			{Name: "ragged", Districts: [][]int{{1, 2}, {1}}},
			{Name: "huge id", Districts: [][]int{{1 << 40}}},
		} {
			require.ErrorIs(t, plan.Validate(), catalog.ErrInvalidPlan, plan.Name)
		}
	})
	t.Run("from grid", func(t *testing.T) {
		g, err := grid.FromArray(rows.Districts, 2, 2)
		require.NoError(t, err)
		require.Equal(t, rows, catalog.PlanFromGrid("rows", g))
	})
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		subject, _ := newStore(t)
		id, err := subject.Put(ctx, rows)
		require.NoError(t, err)
		want, err := rows.CID()
		require.NoError(t, err)
		require.Equal(t, want, id)

		got, err := subject.Get(ctx, rows.Name)
		require.NoError(t, err)
		require.Equal(t, rows, got)

		has, err := subject.Has(ctx, rows.Name)
		require.NoError(t, err)
		require.True(t, has)
	})
	t.Run("missing plan", func(t *testing.T) {
		subject, _ := newStore(t)
		_, err := subject.Get(ctx, "nope")
		require.ErrorIs(t, err, catalog.ErrPlanNotFound)
		has, err := subject.Has(ctx, "nope")
		require.NoError(t, err)
		require.False(t, has)
	})
	t.Run("lists names in order", func(t *testing.T) {
		subject, _ := newStore(t)
		_, err := subject.Put(ctx, rows)
		require.NoError(t, err)
		_, err = subject.Put(ctx, columns)
		require.NoError(t, err)
		names, err := subject.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{columns.Name, rows.Name}, names)

		require.NoError(t, subject.Delete(ctx, rows.Name))
		names, err = subject.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{columns.Name}, names)
	})
	t.Run("deletes", func(t *testing.T) {
		subject, _ := newStore(t)
		_, err := subject.Put(ctx, rows)
		require.NoError(t, err)
		require.NoError(t, subject.Delete(ctx, rows.Name))
		has, err := subject.Has(ctx, rows.Name)
		require.NoError(t, err)
		require.False(t, has)
		_, err = subject.Get(ctx, rows.Name)
		require.ErrorIs(t, err, catalog.ErrPlanNotFound)

		require.NoError(t, subject.Delete(ctx, rows.Name))
		require.NoError(t, subject.Delete(ctx, "never stored"))
	})
	t.Run("builds grid", func(t *testing.T) {
		subject, _ := newStore(t)
		_, err := subject.Put(ctx, rows)
		require.NoError(t, err)
		g, err := subject.Grid(ctx, rows.Name, 1, 1)
		require.NoError(t, err)
		cell, err := g.ComputeCell(0.9, 0.9)
		require.NoError(t, err)
		require.Equal(t, model.District(2), cell.District)
	})
	t.Run("rejects invalid plan", func(t *testing.T) {
		subject, _ := newStore(t)
		_, err := subject.Put(ctx, &catalog.Plan{Name: "empty"})
		require.ErrorIs(t, err, catalog.ErrInvalidPlan)
	})
	t.Run("notifies subscribers", func(t *testing.T) {
		subject, _ := newStore(t)
		require.Nil(t, subject.Latest())
		ch := make(chan *catalog.Plan, 2)
		last, closer := subject.SubscribeForNewPlans(ch)
		defer closer()
		require.Nil(t, last)

		_, err := subject.Put(ctx, rows)
		require.NoError(t, err)
		select {
		case p := <-ch:
			require.Equal(t, rows.Name, p.Name)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "timed out waiting for plan")
		}
		require.Equal(t, rows, subject.Latest())
	})
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	source, _ := newStore(t)
	_, err := source.Put(ctx, rows)
	require.NoError(t, err)
	_, err = source.Put(ctx, columns)
	require.NoError(t, err)

	var buf bytes.Buffer
	id, header, err := source.Export(ctx, &buf)
	require.NoError(t, err)
	require.EqualValues(t, 2, header.Plans)

	var again bytes.Buffer
	idAgain, _, err := source.Export(ctx, &again)
	require.NoError(t, err)
	require.Equal(t, id, idAgain)
	require.Equal(t, buf.Bytes(), again.Bytes())

	target, ds := newStore(t)
	require.NoError(t, catalog.ImportSnapshot(ctx, bufio.NewReader(&buf), ds))
	names, err := target.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{columns.Name, rows.Name}, names)
	got, err := target.Get(ctx, columns.Name)
	require.NoError(t, err)
	require.Equal(t, columns, got)

	requireEmpty := func(t *testing.T, subject *catalog.Store) {
		t.Helper()
		names, err := subject.List(ctx)
		require.NoError(t, err)
		require.Empty(t, names)
	}
	t.Run("rejects truncated snapshot", func(t *testing.T) {
		truncated := again.Bytes()[:again.Len()-1]
		subject, ds := newStore(t)
		require.Error(t, catalog.ImportSnapshot(ctx, bufio.NewReader(bytes.NewReader(truncated)), ds))
		requireEmpty(t, subject)
	})
	t.Run("rejects plan count mismatch", func(t *testing.T) {
		// Header block: length, array of two, version, plan count.
		announced := bytes.Clone(again.Bytes())
		require.Equal(t, byte(0x02), announced[3])
		announced[3] = 0x03
		subject, ds := newStore(t)
		err := catalog.ImportSnapshot(ctx, bufio.NewReader(bytes.NewReader(announced)), ds)
		require.ErrorIs(t, err, catalog.ErrPlanCountMismatch)
		requireEmpty(t, subject)
	})
}
