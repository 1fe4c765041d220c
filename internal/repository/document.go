// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g. postgres).
package repository

import (
	"context"

	"docsync/internal/model"
)

// DocumentRepository persists documents. No business logic here beyond
// enforcing the record invariants before writing.
type DocumentRepository interface {
	// Create inserts a new document, assigning CreatedAt when it is zero.
	// A reused storage reference fails with model.ErrDuplicateReference.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or model.ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByOwner returns an owner's documents, newest first.
	ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]model.Document, error)

	// Update writes all mutable fields of an already merged document.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID, or returns model.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Owners returns every distinct owner id.
	Owners(ctx context.Context) ([]string, error)
}

// ListFilter narrows ListByOwner. A zero Limit means no limit.
type ListFilter struct {
	MetadataOnly bool
	Limit        int
	Offset       int
}
