package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"docsync/internal/model"
	"docsync/internal/repository"
)

const pkg = "postgres/"

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	storageReferenceIndex = "uq_documents_storage_reference"
)

const documentColumns = `id, owner_id, display_name, size_bytes, mime_type, storage_reference, location_url,
	local_path, folder_name, last_modified_at, is_metadata_only, sync_location, created_at`

// documentRow mirrors the documents table.
type documentRow struct {
	ID               string    `db:"id"`
	OwnerID          string    `db:"owner_id"`
	DisplayName      string    `db:"display_name"`
	SizeBytes        int64     `db:"size_bytes"`
	MimeType         string    `db:"mime_type"`
	StorageReference *string   `db:"storage_reference"`
	LocationURL      *string   `db:"location_url"`
	LocalPath        *string   `db:"local_path"`
	FolderName       *string   `db:"folder_name"`
	LastModifiedAt   time.Time `db:"last_modified_at"`
	IsMetadataOnly   bool      `db:"is_metadata_only"`
	SyncLocation     string    `db:"sync_location"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r documentRow) toModel() (model.Document, error) {
	state, err := model.StateFromColumns(model.StateColumns{
		IsMetadataOnly:   r.IsMetadataOnly,
		SyncLocation:     model.Location(r.SyncLocation),
		StorageReference: r.StorageReference,
		LocationURL:      r.LocationURL,
	})
	if err != nil {
		return model.Document{}, fmt.Errorf("document %s: %w", r.ID, err)
	}
	return model.Document{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		DisplayName:    r.DisplayName,
		SizeBytes:      r.SizeBytes,
		MimeType:       r.MimeType,
		LocalPath:      deref(r.LocalPath),
		FolderName:     deref(r.FolderName),
		LastModifiedAt: r.LastModifiedAt,
		State:          state,
		CreatedAt:      r.CreatedAt,
	}, nil
}

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sqlx.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sqlx.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	op := pkg + "Create"

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	lastModified := doc.LastModifiedAt
	if lastModified.IsZero() {
		lastModified = createdAt
	}
	cols := model.Columns(doc.State)

	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + documentColumns

	var row documentRow
	err := r.db.QueryRowxContext(ctx, q,
		doc.ID,
		doc.OwnerID,
		doc.DisplayName,
		doc.SizeBytes,
		doc.MimeType,
		cols.StorageReference,
		cols.LocationURL,
		nullable(doc.LocalPath),
		nullable(doc.FolderName),
		lastModified,
		cols.IsMetadataOnly,
		string(cols.SyncLocation),
		createdAt,
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	return toModelPtr(op, row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	op := pkg + "FindByID"

	var row documentRow
	err := r.db.GetContext(ctx, &row, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return toModelPtr(op, row)
}

// ListByOwner returns an owner's documents ordered by created_at descending.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, f repository.ListFilter) ([]model.Document, error) {
	op := pkg + "ListByOwner"

	var b strings.Builder
	b.WriteString(`SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1`)
	args := []any{ownerID}
	if f.MetadataOnly {
		b.WriteString(` AND is_metadata_only = TRUE`)
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit, max(f.Offset, 0))
		b.WriteString(` LIMIT $2 OFFSET $3`)
	}

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		d, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, d)
	}
	return items, nil
}

// Update overwrites the mutable columns of an existing document.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	op := pkg + "Update"

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cols := model.Columns(doc.State)

	q := `
		UPDATE documents SET
			display_name = $2,
			size_bytes = $3,
			mime_type = $4,
			storage_reference = $5,
			location_url = $6,
			local_path = $7,
			folder_name = $8,
			last_modified_at = $9,
			is_metadata_only = $10,
			sync_location = $11
		WHERE id = $1
		RETURNING ` + documentColumns

	var row documentRow
	err := r.db.QueryRowxContext(ctx, q,
		doc.ID,
		doc.DisplayName,
		doc.SizeBytes,
		doc.MimeType,
		cols.StorageReference,
		cols.LocationURL,
		nullable(doc.LocalPath),
		nullable(doc.FolderName),
		doc.LastModifiedAt,
		cols.IsMetadataOnly,
		string(cols.SyncLocation),
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return toModelPtr(op, row)
}

// Delete removes a document by ID.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	op := pkg + "Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return nil
}

// Owners lists distinct owner ids.
func (r *DocumentPostgres) Owners(ctx context.Context) ([]string, error) {
	op := pkg + "Owners"

	var owners []string
	if err := r.db.SelectContext(ctx, &owners, `SELECT DISTINCT owner_id FROM documents ORDER BY owner_id`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return owners, nil
}

func toModelPtr(op string, row documentRow) (*model.Document, error) {
	d, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == storageReferenceIndex:
			return model.ErrDuplicateReference
		case pgErr.Code == pgCheckViolation:
			return fmt.Errorf("%w: %s", model.ErrValidation, pgErr.ConstraintName)
		}
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
