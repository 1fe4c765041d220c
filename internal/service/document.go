package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docsync/internal/cache"
	"docsync/internal/model"
	"docsync/internal/repository"
	"docsync/internal/storage"
)

var (
	ErrIDRequired    = fmt.Errorf("%w: id is required", model.ErrValidation)
	ErrOwnerRequired = fmt.Errorf("%w: userId is required", model.ErrValidation)
	ErrNoFiles       = fmt.Errorf("%w: files must be a non-empty array", model.ErrValidation)
	ErrEmptyPatch    = fmt.Errorf("%w: no updatable fields supplied", model.ErrValidation)
	ErrTooLarge      = fmt.Errorf("%w: content exceeds the upload size limit", model.ErrValidation)
)

// MissingMetadataMessage is reported for batch items lacking required fields.
const MissingMetadataMessage = "Missing required metadata fields"

const (
	tracerName             = "docsync/internal/service"
	defaultListConcurrency = 8
	// cached URLs expire this long before the signature does
	urlCacheMargin = 5 * time.Minute
)

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// RegisterMetadata records local files without uploading content.
	RegisterMetadata(ctx context.Context, ownerID string, files []FileMetadata) (*BatchResult, error)

	// Sync records local files with a target location. The location is
	// validated before any item is processed.
	Sync(ctx context.Context, ownerID string, files []FileMetadata, location string) (*BatchResult, error)

	// Upload stores content in the backend, saves the record, and removes the
	// stored content again if saving fails.
	Upload(ctx context.Context, in UploadInput) (*View, error)

	// List returns an owner's documents, newest first.
	List(ctx context.Context, ownerID string, metadataOnly bool) ([]View, error)

	// Get returns a single document with a signed access URL.
	Get(ctx context.Context, id string) (*View, error)

	// Update applies a partial update.
	Update(ctx context.Context, id string, patch model.Patch) (*View, error)

	// Delete removes the stored content (best effort) and then the record.
	Delete(ctx context.Context, id string) error

	// RequestLocalOpen returns what a desktop client needs to open a
	// metadata-only document from disk.
	RequestLocalOpen(ctx context.Context, id string) (*LocalOpen, error)
}

// Options tune a DocumentService. Zero values fall back to defaults.
type Options struct {
	Logger          *zap.Logger
	Tracer          trace.Tracer
	URLCache        cache.URLCache
	URLTTL          time.Duration
	ListConcurrency int
	// MaxUploadSize caps decoded content; zero means unlimited.
	MaxUploadSize int64
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	backend     storage.Backend
	repo        repository.DocumentRepository
	urls        cache.URLCache
	log         *zap.Logger
	tracer      trace.Tracer
	urlTTL      time.Duration
	concurrency int
	maxUpload   int64
	now         func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(backend storage.Backend, repo repository.DocumentRepository, opts Options) DocumentService {
	s := &documentService{
		backend:     backend,
		repo:        repo,
		urls:        opts.URLCache,
		log:         opts.Logger,
		tracer:      opts.Tracer,
		urlTTL:      opts.URLTTL,
		concurrency: opts.ListConcurrency,
		maxUpload:   opts.MaxUploadSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if s.urls == nil {
		s.urls = cache.Noop()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.urlTTL <= 0 {
		s.urlTTL = storage.DefaultURLTTL
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultListConcurrency
	}
	s.log = s.log.With(zap.String("component", "document_service"))
	return s
}

func (s *documentService) RegisterMetadata(ctx context.Context, ownerID string, files []FileMetadata) (*BatchResult, error) {
	if err := checkBatch(ownerID, files); err != nil {
		return nil, err
	}
	return s.saveBatch(ctx, ownerID, files, model.MetadataOnly{}), nil
}

func (s *documentService) Sync(ctx context.Context, ownerID string, files []FileMetadata, location string) (*BatchResult, error) {
	loc, err := model.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if err := checkBatch(ownerID, files); err != nil {
		return nil, err
	}
	return s.saveBatch(ctx, ownerID, files, model.RegisteredState(loc)), nil
}

func checkBatch(ownerID string, files []FileMetadata) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrOwnerRequired
	}
	if len(files) == 0 {
		return ErrNoFiles
	}
	return nil
}

// saveBatch inserts items one by one; a failed item never aborts its siblings.
func (s *documentService) saveBatch(ctx context.Context, ownerID string, files []FileMetadata, state model.SyncState) *BatchResult {
	ctx, span := s.startSpan(ctx, "SaveBatch",
		attribute.String("owner_id", ownerID),
		attribute.String("sync_location", string(state.Location())),
		attribute.Int("files", len(files)),
	)
	defer span.End()

	res := &BatchResult{Saved: make([]View, 0, len(files)), Errors: make([]ItemError, 0)}

	for _, f := range files {
		if !f.complete() {
			name := f.FileName
			if name == "" {
				name = "unknown"
			}
			res.Errors = append(res.Errors, ItemError{FileName: name, Error: MissingMetadataMessage})
			continue
		}

		now := s.now()
		doc := &model.Document{
			ID:             uuid.NewString(),
			OwnerID:        ownerID,
			DisplayName:    f.FileName,
			SizeBytes:      f.FileSize,
			MimeType:       f.FileType,
			LocalPath:      f.LocalPath,
			FolderName:     f.FolderName,
			LastModifiedAt: f.LastModified,
			State:          state,
			CreatedAt:      now,
		}
		if doc.FolderName == "" {
			doc.FolderName = model.FolderOf(f.LocalPath)
		}
		if doc.LastModifiedAt.IsZero() {
			doc.LastModifiedAt = now
		}

		stored, err := s.repo.Create(ctx, doc)
		if err != nil {
			s.log.Warn("metadata_save_failed",
				zap.String("owner_id", ownerID),
				zap.String("file_name", f.FileName),
				zap.Error(err),
			)
			res.Errors = append(res.Errors, ItemError{FileName: f.FileName, Error: itemMessage(err)})
			continue
		}
		res.Saved = append(res.Saved, NewView(*stored))
	}

	span.SetAttributes(attribute.Int("saved", len(res.Saved)), attribute.Int("failed", len(res.Errors)))
	s.log.Info("metadata_batch_saved",
		zap.String("owner_id", ownerID),
		zap.String("sync_location", string(state.Location())),
		zap.Int("saved", len(res.Saved)),
		zap.Int("failed", len(res.Errors)),
	)
	return res
}

func itemMessage(err error) string {
	if errors.Is(err, model.ErrValidation) {
		return err.Error()
	}
	return "failed to save document metadata"
}

func (s *documentService) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "DocumentService."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (_ *View, err error) {
	ctx, span := s.startSpan(ctx, "Upload", attribute.String("owner_id", in.OwnerID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(in.FileName) == "" || strings.TrimSpace(in.MimeType) == "" {
		return nil, fmt.Errorf("%w: fileName and mimeType are required", model.ErrValidation)
	}

	locStr := in.SyncLocation
	if locStr == "" {
		locStr = string(model.LocationBoth)
	}
	loc, err := model.ParseLocation(locStr)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("sync_location", string(loc)))
	if loc == model.LocationPC {
		return nil, fmt.Errorf("%w: upload sync location must be website or both", model.ErrValidation)
	}

	content := in.Content
	if content == nil {
		if content, err = storage.DecodeBase64(in.Encoded); err != nil {
			return nil, err
		}
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content is empty", model.ErrValidation)
	}
	if s.maxUpload > 0 && int64(len(content)) > s.maxUpload {
		return nil, ErrTooLarge
	}

	up, err := s.backend.Upload(ctx, content, in.FileName, in.MimeType, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	state, err := model.UploadedState(loc, model.StoredObject{Reference: up.Reference, LocationURL: up.LocationURL})
	if err != nil {
		return nil, s.rollback(ctx, up.Reference, err)
	}

	now := s.now()
	doc := &model.Document{
		ID:             uuid.NewString(),
		OwnerID:        in.OwnerID,
		DisplayName:    in.FileName,
		SizeBytes:      int64(len(content)),
		MimeType:       in.MimeType,
		LocalPath:      in.OriginalPath,
		FolderName:     in.FolderName,
		LastModifiedAt: in.LastModified,
		State:          state,
		CreatedAt:      now,
	}
	if doc.FolderName == "" && doc.LocalPath != "" {
		doc.FolderName = model.FolderOf(doc.LocalPath)
	}
	if doc.LastModifiedAt.IsZero() {
		doc.LastModifiedAt = now
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, s.rollback(ctx, up.Reference, err)
	}

	s.log.Info("document_uploaded",
		zap.String("document_id", stored.ID),
		zap.String("owner_id", stored.OwnerID),
		zap.String("storage_reference", up.Reference),
		zap.Int64("size_bytes", stored.SizeBytes),
	)

	v := s.view(ctx, *stored)
	return &v, nil
}

// rollback removes content whose record could not be saved.
func (s *documentService) rollback(ctx context.Context, reference string, cause error) error {
	if delErr := s.backend.Delete(ctx, reference); delErr != nil {
		s.log.Error("upload_rollback_failed",
			zap.String("storage_reference", reference),
			zap.NamedError("cause", cause),
			zap.Error(delErr),
		)
		return fmt.Errorf("db save failed: %w; rollback delete failed: %v", cause, delErr)
	}
	return fmt.Errorf("db save failed: %w", cause)
}

func (s *documentService) List(ctx context.Context, ownerID string, metadataOnly bool) (_ []View, err error) {
	ctx, span := s.startSpan(ctx, "List", attribute.String("owner_id", ownerID), attribute.Bool("metadata_only", metadataOnly))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}

	docs, err := s.repo.ListByOwner(ctx, ownerID, repository.ListFilter{MetadataOnly: metadataOnly})
	if err != nil {
		return nil, err
	}

	views := make([]View, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range docs {
		g.Go(func() error {
			views[i] = s.view(gctx, docs[i])
			return nil
		})
	}
	_ = g.Wait()

	return views, nil
}

// view builds a View, degrading to the stored location URL when signing fails.
func (s *documentService) view(ctx context.Context, doc model.Document) View {
	v := NewView(doc)
	obj, ok := model.ObjectOf(doc.State)
	if !ok {
		return v
	}

	u, err := s.accessURL(ctx, obj.Reference)
	if err != nil {
		s.log.Warn("access_url_failed",
			zap.String("document_id", doc.ID),
			zap.String("storage_reference", obj.Reference),
			zap.Error(err),
		)
		u = obj.LocationURL
	}
	v.DownloadURL = u
	v.FilePath = u
	return v
}

func (s *documentService) accessURL(ctx context.Context, reference string) (string, error) {
	if u, ok := s.urls.Get(ctx, reference); ok {
		return u, nil
	}
	u, err := s.backend.SignAccessURL(ctx, reference, s.urlTTL)
	if err != nil {
		return "", err
	}
	s.urls.Set(ctx, reference, u, s.urlTTL-urlCacheMargin)
	return u, nil
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrIDRequired
	}
	return s.repo.FindByID(ctx, id)
}

func (s *documentService) Get(ctx context.Context, id string) (*View, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	v := NewView(*doc)
	if obj, ok := model.ObjectOf(doc.State); ok {
		u, err := s.accessURL(ctx, obj.Reference)
		if err != nil {
			return nil, err
		}
		v.DownloadURL = u
		v.FilePath = u
	}
	return &v, nil
}

func (s *documentService) Update(ctx context.Context, id string, patch model.Patch) (*View, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := patch.Apply(*doc)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Update(ctx, merged)
	if err != nil {
		return nil, err
	}

	s.log.Info("document_updated",
		zap.String("document_id", saved.ID),
		zap.String("sync_location", string(saved.State.Location())),
		zap.Bool("is_metadata_only", saved.State.MetadataOnly()),
	)

	v := s.view(ctx, *saved)
	return &v, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete", attribute.String("document_id", id))
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if obj, ok := model.ObjectOf(doc.State); ok {
		if err := s.backend.Delete(ctx, obj.Reference); err != nil {
			s.log.Warn("storage_delete_failed",
				zap.String("document_id", doc.ID),
				zap.String("storage_reference", obj.Reference),
				zap.Error(err),
			)
		}
		s.urls.Invalidate(ctx, obj.Reference)
	}

	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	s.log.Info("document_deleted", zap.String("document_id", doc.ID), zap.String("owner_id", doc.OwnerID))
	return nil
}

func (s *documentService) RequestLocalOpen(ctx context.Context, id string) (*LocalOpen, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.State.MetadataOnly() {
		return nil, fmt.Errorf("%w: this endpoint is only for metadata-only documents", model.ErrInvalidState)
	}
	if doc.LocalPath == "" {
		return nil, fmt.Errorf("%w: document has no local path", model.ErrInvalidState)
	}
	return &LocalOpen{
		ID:        doc.ID,
		FileName:  doc.DisplayName,
		LocalPath: doc.LocalPath,
		FileType:  doc.MimeType,
	}, nil
}
