package service

import (
	"context"
	"testing"

	"github.com/docgate/docgate/internal/document"
	"github.com/docgate/docgate/internal/document/repository"
	"github.com/stretchr/testify/require"
)

func newService() (Service, *repository.MemoryRepo) {
	repo := repository.NewMemoryRepo()
	return New(repo), repo
}

func TestCreate_AdminOnly(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	_, err := svc.Create(ctx, "user1", CreateInput{Name: "doc"})
	require.ErrorIs(t, err, document.ErrAccessDenied)
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list, "denied create must not persist anything")

	// any case variant of admin may create
	doc, err := svc.Create(ctx, "Admin", CreateInput{Name: "doc"})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	require.Equal(t, "Admin", doc.CreatedBy)
}

func TestCreate_InitialGrantsDeduplicated(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	doc, err := svc.Create(ctx, "admin", CreateInput{
		Name: "doc",
		Grants: []document.Grant{
			{Username: "bob", Permission: document.PermissionRead},
			{Username: "bob", Permission: document.PermissionRead},
			{Username: "bob", Permission: document.PermissionWrite},
		},
	})
	require.NoError(t, err)
	require.Len(t, doc.Grants, 2)
}

func TestCreate_NameRequired(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), "admin", CreateInput{})
	require.ErrorIs(t, err, document.ErrInvalidInput)
}

func TestGetDeleteGrantScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	d1, err := svc.Create(ctx, "admin", CreateInput{Name: "d1"})
	require.NoError(t, err)

	// no grant yet: READ denied
	_, err = svc.Get(ctx, "user1", d1.ID)
	require.ErrorIs(t, err, document.ErrAccessDenied)

	// admin grants user1 READ
	_, err = svc.Grant(ctx, "admin", d1.ID, "user1", document.PermissionRead)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user1", d1.ID)
	require.NoError(t, err)
	require.Equal(t, d1.ID, got.ID)

	// READ does not imply DELETE
	err = svc.Delete(ctx, "user1", d1.ID)
	require.ErrorIs(t, err, document.ErrAccessDenied)

	// admin can always delete; the document and its grants go together
	require.NoError(t, svc.Delete(ctx, "admin", d1.ID))
	_, err = svc.Get(ctx, "admin", d1.ID)
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestGrant_NotFoundBeforeAuthority(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	// a missing document reads as not-found even for a caller without any
	// grant authority
	_, err := svc.Grant(ctx, "mallory", "missing", "bob", document.PermissionRead)
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestGrant_WriteConfersGrantAuthority(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	d3, err := svc.Create(ctx, "admin", CreateInput{Name: "d3"})
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "admin", d3.ID, "user2", document.PermissionWrite)
	require.NoError(t, err)

	// user2 holds WRITE, so they may extend access to user3
	updated, err := svc.Grant(ctx, "user2", d3.ID, "user3", document.PermissionRead)
	require.NoError(t, err)
	require.True(t, updated.HasGrant("user3", document.PermissionRead))

	// user3 holds only READ and cannot grant
	_, err = svc.Grant(ctx, "user3", d3.ID, "user4", document.PermissionRead)
	require.ErrorIs(t, err, document.ErrAccessDenied)
}

func TestGrant_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	d, err := svc.Create(ctx, "admin", CreateInput{Name: "d"})
	require.NoError(t, err)

	first, err := svc.Grant(ctx, "admin", d.ID, "bob", document.PermissionRead)
	require.NoError(t, err)
	require.Len(t, first.Grants, 1)

	// re-granting the same pair succeeds without growing the grant set
	second, err := svc.Grant(ctx, "admin", d.ID, "bob", document.PermissionRead)
	require.NoError(t, err)
	require.Len(t, second.Grants, 1)
}

func TestGrant_EmptyGrantee(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	d, err := svc.Create(ctx, "admin", CreateInput{Name: "d"})
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "admin", d.ID, "", document.PermissionRead)
	require.ErrorIs(t, err, document.ErrInvalidInput)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	d1, err := svc.Create(ctx, "admin", CreateInput{Name: "d1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", CreateInput{Name: "d2",
		Grants: []document.Grant{{Username: "user1", Permission: document.PermissionRead}}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", CreateInput{Name: "d3",
		Grants: []document.Grant{{Username: "user1", Permission: document.PermissionWrite}}})
	require.NoError(t, err)

	all, err := svc.List(ctx, "ADMIN")
	require.NoError(t, err)
	require.Len(t, all, 3)

	// user1 sees only the READ-granted document; d1 and the WRITE-only d3
	// stay hidden from the listing
	mine, err := svc.List(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotEqual(t, d1.ID, mine[0].ID)
}

func TestCheckAccess(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	d2, err := svc.Create(ctx, "admin", CreateInput{Name: "d2"})
	require.NoError(t, err)
	shared, err := svc.Create(ctx, "admin", CreateInput{Name: "shared",
		Grants: []document.Grant{{Username: "user1", Permission: document.PermissionRead}}})
	require.NoError(t, err)

	// admin sees everything that exists; the unknown id is dropped silently
	ids, err := svc.CheckAccess(ctx, "admin", document.PermissionRead, []string{d2.ID, "9999"})
	require.NoError(t, err)
	require.Equal(t, []string{d2.ID}, ids)

	// the batch path compares the admin name exactly: "Admin" is an ordinary
	// user here and only matches documents it owns or holds grants on
	ids, err = svc.CheckAccess(ctx, "Admin", document.PermissionRead, []string{d2.ID, shared.ID})
	require.NoError(t, err)
	require.Empty(t, ids)

	ids, err = svc.CheckAccess(ctx, "user1", document.PermissionRead, []string{d2.ID, shared.ID, shared.ID})
	require.NoError(t, err)
	require.Equal(t, []string{shared.ID}, ids)

	// the requested permission matters for grant holders
	ids, err = svc.CheckAccess(ctx, "user1", document.PermissionDelete, []string{shared.ID})
	require.NoError(t, err)
	require.Empty(t, ids)
}
