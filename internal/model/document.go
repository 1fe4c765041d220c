package model

import (
	"fmt"
	"strings"
	"time"
)

// Document is one tracked file of an owner.
type Document struct {
	ID             string
	OwnerID        string
	DisplayName    string
	SizeBytes      int64
	MimeType       string
	LocalPath      string
	FolderName     string
	LastModifiedAt time.Time
	State          SyncState
	CreatedAt      time.Time
}

// Validate checks required fields and the sync state.
func (d *Document) Validate() error {
	var missing []string
	if strings.TrimSpace(d.OwnerID) == "" {
		missing = append(missing, "owner_id")
	}
	if strings.TrimSpace(d.DisplayName) == "" {
		missing = append(missing, "display_name")
	}
	if d.SizeBytes <= 0 {
		missing = append(missing, "size_bytes")
	}
	if strings.TrimSpace(d.MimeType) == "" {
		missing = append(missing, "mime_type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if d.State == nil {
		return fmt.Errorf("%w: sync state is required", ErrValidation)
	}
	if _, err := StateFromColumns(Columns(d.State)); err != nil {
		return err
	}
	return nil
}

// StorageReference returns the stored object reference, or "" for metadata-only documents.
func (d *Document) StorageReference() string {
	if obj, ok := ObjectOf(d.State); ok {
		return obj.Reference
	}
	return ""
}

// FolderOf returns the parent directory of a client path. Both '/' and '\'
// are treated as separators since clients may run on any OS.
func FolderOf(localPath string) string {
	i := strings.LastIndexAny(localPath, `/\`)
	switch {
	case i < 0:
		return "."
	case i == 0:
		return localPath[:1]
	case localPath[i-1] == ':':
		// keep the root of a drive path such as C:\a.pdf
		return localPath[:i+1]
	}
	return localPath[:i]
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	DisplayName    *string
	SizeBytes      *int64
	MimeType       *string
	LocalPath      *string
	FolderName     *string
	LastModifiedAt *time.Time
	SyncLocation   *Location
	IsMetadataOnly *bool
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply returns a copy of d with p merged and re-validated.
func (p Patch) Apply(d Document) (*Document, error) {
	if p.DisplayName != nil {
		d.DisplayName = *p.DisplayName
	}
	if p.SizeBytes != nil {
		d.SizeBytes = *p.SizeBytes
	}
	if p.MimeType != nil {
		d.MimeType = *p.MimeType
	}
	if p.LocalPath != nil {
		d.LocalPath = *p.LocalPath
		if p.FolderName == nil {
			d.FolderName = ""
			if d.LocalPath != "" {
				d.FolderName = FolderOf(d.LocalPath)
			}
		}
	}
	if p.FolderName != nil {
		d.FolderName = *p.FolderName
	}
	if p.LastModifiedAt != nil {
		d.LastModifiedAt = *p.LastModifiedAt
	}

	state, err := Transition(d.State, p.SyncLocation, p.IsMetadataOnly)
	if err != nil {
		return nil, err
	}
	d.State = state

	// a metadata-only record is only reachable through its local path
	if p.LocalPath != nil && d.LocalPath == "" && d.State.MetadataOnly() {
		return nil, fmt.Errorf("%w: localPath is required for metadata-only documents", ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
