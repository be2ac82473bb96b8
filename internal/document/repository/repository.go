package repository

import (
	"context"
	"errors"

	"github.com/docgate/docgate/internal/document"
)

// ErrGrantExists is returned by InsertGrant when the (username, permission)
// pair is already present on the document. The service layer treats it as
// silent success; it exists so the repository can report the distinction.
var ErrGrantExists = errors.New("grant already exists")

// Repository provides document persistence. Implementations must enforce the
// uniqueness of the (document, username, permission) triple inside InsertGrant
// so that concurrent granters of the same triple converge to one stored grant.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) (string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	List(ctx context.Context) ([]*document.Document, error)
	// ListAccessible returns documents created by username or carrying an
	// explicit (username, p) grant.
	ListAccessible(ctx context.Context, username string, p document.Permission) ([]*document.Document, error)
	// Delete removes the document and, with it, every embedded grant.
	Delete(ctx context.Context, id string) error
	// InsertGrant appends g to the document's grant set and returns the
	// updated document. Returns document.ErrNotFound when the document does
	// not exist and ErrGrantExists when the pair is already present.
	InsertGrant(ctx context.Context, id string, g document.Grant) (*document.Document, error)
	// FilterExisting narrows ids to those with a matching document, each id
	// at most once.
	FilterExisting(ctx context.Context, ids []string) ([]string, error)
	// FilterAccessible narrows ids to documents created by username or
	// carrying an explicit (username, p) grant, each id at most once.
	FilterAccessible(ctx context.Context, username string, p document.Permission, ids []string) ([]string, error)
}
