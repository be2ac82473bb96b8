package document

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain errors surfaced by the service layer. Handlers map these to HTTP
// status codes; everything else is treated as an internal failure.
var (
	ErrNotFound     = errors.New("document not found")
	ErrAccessDenied = errors.New("access denied")
	ErrInvalidInput = errors.New("invalid input")
)

// Permission is the closed set of capabilities a grant can carry.
type Permission string

const (
	PermissionRead   Permission = "READ"
	PermissionWrite  Permission = "WRITE"
	PermissionDelete Permission = "DELETE"
)

// ParsePermission converts a wire string into a Permission. Input is matched
// case-insensitively; unknown values are rejected as ErrInvalidInput.
func ParsePermission(s string) (Permission, error) {
	switch Permission(strings.ToUpper(strings.TrimSpace(s))) {
	case PermissionRead:
		return PermissionRead, nil
	case PermissionWrite:
		return PermissionWrite, nil
	case PermissionDelete:
		return PermissionDelete, nil
	}
	return "", fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, s)
}

func (p Permission) String() string { return string(p) }

// Grant is one explicit capability extended to one user on one document.
// The (document, username, permission) triple is unique; the repository
// enforces that, not this struct.
type Grant struct {
	Username   string     `json:"username" bson:"username"`
	Permission Permission `json:"permission" bson:"permission"`
}

// Document is the persistent document model. Grants are embedded: they are
// owned by the document and cannot outlive it (deleting the document removes
// them with it).
type Document struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	FileType  string    `json:"fileType,omitempty" bson:"fileType,omitempty"`
	CreatedBy string    `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Grants    []Grant   `json:"accessibleUsers" bson:"grants"`
}

// HasGrant reports whether the document carries an explicit grant for the
// exact (username, permission) pair. Username comparison is case-sensitive.
func (d *Document) HasGrant(username string, p Permission) bool {
	for _, g := range d.Grants {
		if g.Username == username && g.Permission == p {
			return true
		}
	}
	return false
}
