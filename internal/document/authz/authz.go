// Package authz holds the access decision rules for documents. The rules are
// evaluated fresh on every call against the grant set the caller supplies;
// nothing here caches or mutates.
package authz

import (
	"strings"

	"github.com/docgate/docgate/internal/document"
)

// AdminUser is the reserved superuser identity.
const AdminUser = "admin"

// IsAdmin reports whether username is the superuser. Matching is
// case-insensitive ("Admin" and "ADMIN" both qualify).
func IsAdmin(username string) bool {
	return strings.EqualFold(username, AdminUser)
}

// IsAdminExact is the exact-match variant used only by the batch access
// check. The original rules compare case-insensitively everywhere else but
// case-sensitively there; both behaviors are kept as-is and pinned by tests.
func IsAdminExact(username string) bool {
	return username == AdminUser
}

// HasPermission decides whether username may exercise p on doc.
// First match wins:
//  1. admin (case-insensitive) may do anything
//  2. the creator may do anything, with or without explicit grants
//  3. otherwise an explicit (username, p) grant is required
func HasPermission(username string, doc *document.Document, p document.Permission) bool {
	if IsAdmin(username) {
		return true
	}
	if doc.CreatedBy == username {
		return true
	}
	return doc.HasGrant(username, p)
}

// CanGrant decides whether username may add grants to doc, independent of the
// permission being granted. Admin and the creator always can; otherwise the
// caller must hold an explicit WRITE grant. READ and DELETE are terminal
// capabilities and confer no grant authority.
func CanGrant(username string, doc *document.Document) bool {
	if IsAdmin(username) {
		return true
	}
	if doc.CreatedBy == username {
		return true
	}
	return doc.HasGrant(username, document.PermissionWrite)
}

// CanList reports whether doc belongs in username's accessible listing or in
// a batch access check result under p: owned by the caller, or carrying a
// matching explicit grant. Ownership qualifies regardless of p, mirroring the
// owner rule in HasPermission. Admin handling is the caller's concern.
func CanList(username string, doc *document.Document, p document.Permission) bool {
	return doc.CreatedBy == username || doc.HasGrant(username, p)
}
