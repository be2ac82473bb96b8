package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/docgate/docgate/internal/document"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	d := &document.Document{Name: "report.pdf", Content: "hello", CreatedBy: "admin"}
	id, err := r.Create(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.False(t, d.CreatedAt.IsZero())

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Content)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = r.Delete(ctx, id)
	require.NoError(t, err)
	_, err = r.Get(ctx, id)
	require.ErrorIs(t, err, document.ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, id), document.ErrNotFound)
}

func TestMemoryRepoInsertGrant(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	d := &document.Document{Name: "a", CreatedBy: "admin"}
	id, err := r.Create(ctx, d)
	require.NoError(t, err)

	g := document.Grant{Username: "bob", Permission: document.PermissionRead}
	updated, err := r.InsertGrant(ctx, id, g)
	require.NoError(t, err)
	require.Len(t, updated.Grants, 1)

	// same pair again is a duplicate, not a second row
	_, err = r.InsertGrant(ctx, id, g)
	require.ErrorIs(t, err, ErrGrantExists)
	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Grants, 1)

	// a different permission for the same user is a distinct grant
	_, err = r.InsertGrant(ctx, id, document.Grant{Username: "bob", Permission: document.PermissionWrite})
	require.NoError(t, err)

	_, err = r.InsertGrant(ctx, "missing", g)
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestMemoryRepoInsertGrant_ConcurrentSameTriple(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	id, err := r.Create(ctx, &document.Document{Name: "a", CreatedBy: "admin"})
	require.NoError(t, err)

	g := document.Grant{Username: "bob", Permission: document.PermissionRead}
	const n = 32
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = r.InsertGrant(ctx, id, g)
		}(i)
	}
	wg.Wait()

	inserted := 0
	for _, err := range results {
		if err == nil {
			inserted++
		} else {
			require.ErrorIs(t, err, ErrGrantExists)
		}
	}
	require.Equal(t, 1, inserted)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Grants, 1)
}

func TestMemoryRepoListAccessible(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	owned := &document.Document{Name: "mine", CreatedBy: "carol"}
	_, err := r.Create(ctx, owned)
	require.NoError(t, err)

	granted := &document.Document{Name: "shared", CreatedBy: "admin",
		Grants: []document.Grant{{Username: "carol", Permission: document.PermissionRead}}}
	_, err = r.Create(ctx, granted)
	require.NoError(t, err)

	other := &document.Document{Name: "other", CreatedBy: "admin"}
	_, err = r.Create(ctx, other)
	require.NoError(t, err)

	docs, err := r.ListAccessible(ctx, "carol", document.PermissionRead)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// a WRITE listing only surfaces the owned document
	docs, err = r.ListAccessible(ctx, "carol", document.PermissionWrite)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "mine", docs[0].Name)
}

func TestMemoryRepoFilters(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	a := &document.Document{Name: "a", CreatedBy: "carol"}
	aID, err := r.Create(ctx, a)
	require.NoError(t, err)
	b := &document.Document{Name: "b", CreatedBy: "admin",
		Grants: []document.Grant{{Username: "carol", Permission: document.PermissionDelete}}}
	bID, err := r.Create(ctx, b)
	require.NoError(t, err)

	// unknown ids and duplicates in the candidate set
	in := []string{aID, "nope", bID, aID}

	ids, err := r.FilterExisting(ctx, in)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{aID, bID}, ids)

	ids, err = r.FilterAccessible(ctx, "carol", document.PermissionDelete, in)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{aID, bID}, ids)

	ids, err = r.FilterAccessible(ctx, "carol", document.PermissionWrite, in)
	require.NoError(t, err)
	require.Equal(t, []string{aID}, ids)

	ids, err = r.FilterAccessible(ctx, "mallory", document.PermissionRead, in)
	require.NoError(t, err)
	require.Empty(t, ids)
}
