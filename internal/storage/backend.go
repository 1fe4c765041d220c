package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsync/internal/model"
)

// DefaultURLTTL is used when SignAccessURL is called without a positive TTL.
const DefaultURLTTL = time.Hour

// UploadResult identifies stored content.
type UploadResult struct {
	Reference   string
	LocationURL string
}

// Backend stores document content for owners and hands out access URLs.
type Backend interface {
	Upload(ctx context.Context, content []byte, fileName, mimeType, ownerID string) (UploadResult, error)
	Delete(ctx context.Context, reference string) error
	SignAccessURL(ctx context.Context, reference string, ttl time.Duration) (string, error)
}

type objectBackend struct {
	store Storage
	newID func() string
}

// NewBackend wraps a Storage driver.
func NewBackend(store Storage) Backend {
	return &objectBackend{store: store, newID: uuid.NewString}
}

func (b *objectBackend) Upload(ctx context.Context, content []byte, fileName, mimeType, ownerID string) (UploadResult, error) {
	owner := sanitizeSegment(ownerID)
	if owner == "" {
		return UploadResult{}, fmt.Errorf("%w: %w: owner id is required", ErrWrite, ErrInvalidKey)
	}

	key := "users/" + owner + "/documents/" + b.newID() + extOf(fileName)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	info, err := b.store.Put(ctx, key, bytes.NewReader(content), PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: mimeType,
		Metadata:    map[string]string{"original-filename": fileName},
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if info.Key != "" {
		key = info.Key
	}

	return UploadResult{Reference: key, LocationURL: b.store.Location(key)}, nil
}

func (b *objectBackend) Delete(ctx context.Context, reference string) error {
	if reference == "" {
		return fmt.Errorf("%w: %w", ErrDelete, ErrInvalidKey)
	}
	if err := b.store.Delete(ctx, reference); err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}
	return nil
}

func (b *objectBackend) SignAccessURL(ctx context.Context, reference string, ttl time.Duration) (string, error) {
	if reference == "" {
		return "", fmt.Errorf("%w: %w", ErrSign, ErrInvalidKey)
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	if _, err := b.store.Stat(ctx, reference); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSign, err)
	}
	u, err := b.store.PresignGet(ctx, reference, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSign, err)
	}
	return u, nil
}

var (
	dataURLPrefix = regexp.MustCompile(`^data:[^,]*?;base64,`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// DecodeBase64 decodes base64 content, optionally wrapped as a data URL.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(dataURLPrefix.ReplaceAllString(s, ""))
	if s == "" {
		return nil, fmt.Errorf("%w: content is empty", model.ErrValidation)
	}
	if out, err := base64.StdEncoding.DecodeString(s); err == nil {
		return out, nil
	}
	out, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: content is not valid base64", model.ErrValidation)
	}
	return out, nil
}

// IsNotFound reports whether err means the object is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func sanitizeSegment(s string) string {
	s = unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_")
	if strings.Trim(s, ".") == "" {
		return ""
	}
	return s
}

func extOf(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(strings.ReplaceAll(fileName, `\`, "/"))), ".")
	ext = unsafeChars.ReplaceAllString(ext, "")
	if ext == "" {
		return ""
	}
	return "." + ext
}
