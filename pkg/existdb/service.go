package existdb

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// Store is the repository contract the Service depends on. The Repository
// implements it against the eXist-db REST interface; tests substitute fakes.
type Store interface {
	Get(ctx context.Context, collection, name string) (string, error)
	Put(ctx context.Context, collection, name, content string) error
	Delete(ctx context.Context, collection, name string) error
	EnsureCollection(ctx context.Context, name string) error
	DeleteCollection(ctx context.Context, name string) (bool, error)
	Exists(ctx context.Context, collection, name string) (bool, error)
	ListDocuments(ctx context.Context, collection string) ([]string, error)
	Query(ctx context.Context, expression string) (string, error)
}

// Service contains the business rules for managing documents in the store:
// input validation, existence checks, and the translation of transport
// failures into the closed fault taxonomy in errors.go. It is the single
// place where low-level errors are reinterpreted; nothing below it attaches
// business meaning to a status code, and nothing above it sees one.
type Service struct {
	store Store
	log   hclog.Logger
}

// NewService creates a document service over the given store.
func NewService(store Store, log hclog.Logger) *Service {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{
		store: store,
		log:   log.Named("documents"),
	}
}

// CreateDocument creates a new document. Creation must never overwrite: an
// existing document fails with ErrAlreadyExists. The existence probe and the
// write are not atomic; a concurrent create landing between them wins by
// last-write. The store offers no conditional-create primitive, so the
// window is documented and tested rather than closed.
func (s *Service) CreateDocument(ctx context.Context, collection, name, content string) error {
	const op = "CreateDocument"

	if err := validateRequired(map[string]string{
		"collection":   collection,
		"documentName": name,
		"content":      content,
	}); err != nil {
		s.log.Warn("attempted to create document with missing input", "error", err)
		return &Error{Op: op, Err: ErrValidation, Msg: err.Error()}
	}

	present, err := s.store.Exists(ctx, collection, name)
	if err != nil {
		return s.translate(op, err, nil)
	}
	if present {
		return &Error{
			Op:  op,
			Err: ErrAlreadyExists,
			Msg: fmt.Sprintf("document %q already exists in collection %q", name, collection),
		}
	}

	if err := s.store.Put(ctx, collection, name, content); err != nil {
		return s.translate(op, err, nil)
	}

	return nil
}

// GetDocument retrieves a document's content. A missing document fails with
// ErrNotFound.
func (s *Service) GetDocument(ctx context.Context, collection, name string) (string, error) {
	const op = "GetDocument"

	content, err := s.store.Get(ctx, collection, name)
	if err != nil {
		return "", s.translate(op, err, ErrNotFound)
	}

	return content, nil
}

// UpdateDocument replaces an existing document's content entirely. The
// existence pre-check is required for correctness, not only for the error
// message: the store's PUT creates on absence, so a blind overwrite of a
// missing document would silently create it instead of failing.
func (s *Service) UpdateDocument(ctx context.Context, collection, name, content string) error {
	const op = "UpdateDocument"

	if _, err := s.store.Get(ctx, collection, name); err != nil {
		return s.translate(op, err, ErrNotFound)
	}

	if err := s.store.Put(ctx, collection, name, content); err != nil {
		return s.translate(op, err, nil)
	}

	return nil
}

// DeleteDocument removes a document. A missing document fails with
// ErrNotFound.
func (s *Service) DeleteDocument(ctx context.Context, collection, name string) error {
	const op = "DeleteDocument"

	if err := s.store.Delete(ctx, collection, name); err != nil {
		return s.translate(op, err, ErrNotFound)
	}

	return nil
}

// ListDocuments returns the names of all documents in a collection. An empty
// collection yields an empty list; a missing collection fails with
// ErrCollectionNotFound.
func (s *Service) ListDocuments(ctx context.Context, collection string) ([]string, error) {
	const op = "ListDocuments"

	names, err := s.store.ListDocuments(ctx, collection)
	if err != nil {
		return nil, s.translate(op, err, ErrCollectionNotFound)
	}

	return names, nil
}

// DocumentExists reports whether a document exists. The repository already
// converts 404 into false, so any error here is a real infrastructure
// problem.
func (s *Service) DocumentExists(ctx context.Context, collection, name string) (bool, error) {
	const op = "DocumentExists"

	present, err := s.store.Exists(ctx, collection, name)
	if err != nil {
		return false, s.translate(op, err, nil)
	}

	return present, nil
}

// DeleteCollection removes a collection and all its contents, reporting
// whether a deletion actually occurred. Deleting an already-absent
// collection returns false rather than failing.
func (s *Service) DeleteCollection(ctx context.Context, name string) (bool, error) {
	const op = "DeleteCollection"

	deleted, err := s.store.DeleteCollection(ctx, name)
	if err != nil {
		return false, s.translate(op, err, nil)
	}

	return deleted, nil
}

// Query executes an ad-hoc query expression against the store and returns
// the raw response text.
func (s *Service) Query(ctx context.Context, expression string) (string, error) {
	const op = "Query"

	if err := validation.Validate(expression, validation.Required); err != nil {
		return "", &Error{Op: op, Err: ErrValidation, Msg: fmt.Sprintf("query expression: %v", err)}
	}

	result, err := s.store.Query(ctx, expression)
	if err != nil {
		return "", s.translate(op, err, nil)
	}

	return result, nil
}

// translate is the single mapping from a repository error to a business
// fault. A 404 status becomes the supplied not-found kind when one applies
// to the operation; everything else — other statuses, transport failures,
// parse failures — collapses into ErrInfrastructure. The technical detail is
// logged here and goes no further up.
func (s *Service) translate(op string, err error, notFound error) error {
	if notFound != nil && IsStatus(err, http.StatusNotFound) {
		return &Error{Op: op, Err: notFound}
	}

	s.log.Error("downstream store error", "op", op, "error", err)
	return &Error{Op: op, Err: ErrInfrastructure}
}

// validateRequired checks each named input for presence, reporting every
// missing field at once.
func validateRequired(fields map[string]string) error {
	errs := validation.Errors{}
	for field, value := range fields {
		if err := validation.Validate(value, validation.Required); err != nil {
			errs[field] = err
		}
	}
	return errs.Filter()
}
