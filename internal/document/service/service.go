package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/docgate/docgate/internal/document"
	"github.com/docgate/docgate/internal/document/authz"
	"github.com/docgate/docgate/internal/document/repository"
	"github.com/docgate/docgate/pkg/logger"
	"github.com/docgate/docgate/pkg/metrics"
)

// CreateInput carries the validated fields of a create request. Grants listed
// here are attached atomically with the document.
type CreateInput struct {
	Name     string
	Content  string
	FileType string
	Grants   []document.Grant
}

// Service defines the document access control operations used by the handler
// layer. Every operation takes the caller's username as supplied by the
// transport; authorization decisions are made here, never in the handlers.
type Service interface {
	Create(ctx context.Context, username string, in CreateInput) (*document.Document, error)
	List(ctx context.Context, username string) ([]*document.Document, error)
	Get(ctx context.Context, username, id string) (*document.Document, error)
	Delete(ctx context.Context, username, id string) error
	Grant(ctx context.Context, username, id, grantee string, p document.Permission) (*document.Document, error)
	CheckAccess(ctx context.Context, username string, p document.Permission, ids []string) ([]string, error)
}

// New returns a Service backed by the given repository.
func New(repo repository.Repository) Service {
	return &docService{repo: repo}
}

type docService struct {
	repo repository.Repository
}

// Create stores a new document. Only the admin identity may create documents;
// that gate runs before anything else.
func (s *docService) Create(ctx context.Context, username string, in CreateInput) (*document.Document, error) {
	if !authz.IsAdmin(username) {
		metrics.AuthzDecisions.WithLabelValues("denied").Inc()
		return nil, fmt.Errorf("%w: only the admin user can create documents", document.ErrAccessDenied)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: document name is required", document.ErrInvalidInput)
	}
	doc := &document.Document{
		Name:      in.Name,
		Content:   in.Content,
		FileType:  in.FileType,
		CreatedBy: username,
		Grants:    dedupeGrants(in.Grants),
	}
	if _, err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	logger.Debugf("created document %s (owner=%s, grants=%d)", doc.ID, doc.CreatedBy, len(doc.Grants))
	return doc, nil
}

// List returns every document for admin and, for anyone else, the documents
// they created or hold a READ grant on.
func (s *docService) List(ctx context.Context, username string) ([]*document.Document, error) {
	if authz.IsAdmin(username) {
		return s.repo.List(ctx)
	}
	return s.repo.ListAccessible(ctx, username, document.PermissionRead)
}

// Get returns the document when the caller holds READ on it.
func (s *docService) Get(ctx context.Context, username, id string) (*document.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.HasPermission(username, doc, document.PermissionRead) {
		metrics.AuthzDecisions.WithLabelValues("denied").Inc()
		return nil, fmt.Errorf("%w: no READ permission for this document", document.ErrAccessDenied)
	}
	metrics.AuthzDecisions.WithLabelValues("allowed").Inc()
	return doc, nil
}

// Delete removes the document, and with it every grant, when the caller holds
// DELETE on it.
func (s *docService) Delete(ctx context.Context, username, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.HasPermission(username, doc, document.PermissionDelete) {
		metrics.AuthzDecisions.WithLabelValues("denied").Inc()
		return fmt.Errorf("%w: no DELETE permission for this document", document.ErrAccessDenied)
	}
	metrics.AuthzDecisions.WithLabelValues("allowed").Inc()
	return s.repo.Delete(ctx, id)
}

// Grant adds an explicit (grantee, p) grant. The existence check runs before
// the authority check, so a missing document reads as not-found even to a
// caller without grant authority. Re-granting an existing pair is a no-op.
// The existence-then-insert sequence is check-then-act: the repository's
// atomic insert is what actually guards concurrent duplicates, and a loser of
// that race is reported here as plain success.
func (s *docService) Grant(ctx context.Context, username, id, grantee string, p document.Permission) (*document.Document, error) {
	if grantee == "" {
		return nil, fmt.Errorf("%w: grantee username is required", document.ErrInvalidInput)
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanGrant(username, doc) {
		metrics.Grants.WithLabelValues("denied").Inc()
		return nil, fmt.Errorf("%w: no permission to grant access to this document", document.ErrAccessDenied)
	}
	updated, err := s.repo.InsertGrant(ctx, id, document.Grant{Username: grantee, Permission: p})
	if err != nil {
		if errors.Is(err, repository.ErrGrantExists) {
			metrics.Grants.WithLabelValues("duplicate").Inc()
			return doc, nil
		}
		return nil, err
	}
	metrics.Grants.WithLabelValues("created").Inc()
	logger.Debugf("grant %s/%s on %s by %s", grantee, p, id, username)
	return updated, nil
}

// CheckAccess filters ids down to the documents username may access under p.
// Unknown ids are dropped silently. The admin comparison here is exact
// (case-sensitive), unlike everywhere else; see authz.IsAdminExact.
func (s *docService) CheckAccess(ctx context.Context, username string, p document.Permission, ids []string) ([]string, error) {
	if authz.IsAdminExact(username) {
		return s.repo.FilterExisting(ctx, ids)
	}
	return s.repo.FilterAccessible(ctx, username, p, ids)
}

// dedupeGrants drops repeated (username, permission) pairs so a document is
// never created in violation of the triple-uniqueness invariant.
func dedupeGrants(in []document.Grant) []document.Grant {
	out := []document.Grant{}
	seen := map[document.Grant]bool{}
	for _, g := range in {
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
