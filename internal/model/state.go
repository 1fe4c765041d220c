package model

import "fmt"

// Location is where a document's content is available.
type Location string

const (
	LocationPC      Location = "pc"
	LocationWebsite Location = "website"
	LocationBoth    Location = "both"
)

// ParseLocation validates a client-supplied location string.
func ParseLocation(s string) (Location, error) {
	switch l := Location(s); l {
	case LocationPC, LocationWebsite, LocationBoth:
		return l, nil
	}
	return "", fmt.Errorf("%w: invalid sync location %q, must be one of pc, website, both", ErrValidation, s)
}

// StoredObject identifies content held by the storage backend.
type StoredObject struct {
	Reference   string
	LocationURL string
}

// SyncState is the sync status of a document. It is one of MetadataOnly,
// PendingUpload, Uploaded or Synced; only the last two carry a StoredObject.
type SyncState interface {
	Location() Location
	MetadataOnly() bool
	sealed()
}

// MetadataOnly documents exist only on the owner's machine.
type MetadataOnly struct{}

// PendingUpload documents were registered with a cloud target but their
// content has not been uploaded yet.
type PendingUpload struct {
	Target Location
}

// Uploaded documents have content in the storage backend only.
type Uploaded struct {
	Object StoredObject
}

// Synced documents have content both in the storage backend and locally.
type Synced struct {
	Object StoredObject
}

func (MetadataOnly) Location() Location    { return LocationPC }
func (s PendingUpload) Location() Location { return s.Target }
func (Uploaded) Location() Location        { return LocationWebsite }
func (Synced) Location() Location          { return LocationBoth }

func (MetadataOnly) MetadataOnly() bool  { return true }
func (PendingUpload) MetadataOnly() bool { return true }
func (Uploaded) MetadataOnly() bool      { return false }
func (Synced) MetadataOnly() bool        { return false }

func (MetadataOnly) sealed()  {}
func (PendingUpload) sealed() {}
func (Uploaded) sealed()      {}
func (Synced) sealed()        {}

// ObjectOf returns the stored object of s, if it has one.
func ObjectOf(s SyncState) (StoredObject, bool) {
	switch v := s.(type) {
	case Uploaded:
		return v.Object, v.Object.Reference != ""
	case Synced:
		return v.Object, v.Object.Reference != ""
	}
	return StoredObject{}, false
}

// StateColumns is the flattened persistence form of a SyncState.
type StateColumns struct {
	IsMetadataOnly   bool
	SyncLocation     Location
	StorageReference *string
	LocationURL      *string
}

// Columns flattens s for storage.
func Columns(s SyncState) StateColumns {
	c := StateColumns{IsMetadataOnly: s.MetadataOnly(), SyncLocation: s.Location()}
	if obj, ok := ObjectOf(s); ok {
		ref, u := obj.Reference, obj.LocationURL
		c.StorageReference = &ref
		if u != "" {
			c.LocationURL = &u
		}
	}
	return c
}

// StateFromColumns rebuilds a SyncState and rejects combinations that break
// the reference/metadata-only invariants.
func StateFromColumns(c StateColumns) (SyncState, error) {
	hasRef := c.StorageReference != nil && *c.StorageReference != ""
	if c.IsMetadataOnly == hasRef {
		return nil, fmt.Errorf("%w: storage reference must be set iff the document is not metadata-only", ErrValidation)
	}
	if !hasRef {
		switch c.SyncLocation {
		case LocationPC:
			return MetadataOnly{}, nil
		case LocationWebsite, LocationBoth:
			return PendingUpload{Target: c.SyncLocation}, nil
		}
		return nil, fmt.Errorf("%w: unknown sync location %q", ErrValidation, c.SyncLocation)
	}

	obj := StoredObject{Reference: *c.StorageReference}
	if c.LocationURL != nil {
		obj.LocationURL = *c.LocationURL
	}
	switch c.SyncLocation {
	case LocationWebsite:
		return Uploaded{Object: obj}, nil
	case LocationBoth:
		return Synced{Object: obj}, nil
	case LocationPC:
		return nil, fmt.Errorf("%w: uploaded document cannot have sync location pc", ErrValidation)
	}
	return nil, fmt.Errorf("%w: unknown sync location %q", ErrValidation, c.SyncLocation)
}

// RegisteredState is the state for a metadata registration targeting loc.
// No content is uploaded, so cloud targets become PendingUpload.
func RegisteredState(loc Location) SyncState {
	if loc == LocationPC {
		return MetadataOnly{}
	}
	return PendingUpload{Target: loc}
}

// UploadedState is the state of freshly uploaded content targeting loc.
func UploadedState(loc Location, obj StoredObject) (SyncState, error) {
	switch loc {
	case LocationWebsite:
		return Uploaded{Object: obj}, nil
	case LocationBoth:
		return Synced{Object: obj}, nil
	}
	return nil, fmt.Errorf("%w: upload sync location must be website or both", ErrValidation)
}

// Transition applies a requested location and/or metadata-only flag to s.
// Moves that would drop uploaded content or claim content that was never
// uploaded fail with ErrInvalidState.
func Transition(s SyncState, loc *Location, metadataOnly *bool) (SyncState, error) {
	obj, hasObj := ObjectOf(s)

	if metadataOnly != nil {
		if *metadataOnly && hasObj {
			return nil, fmt.Errorf("%w: uploaded document cannot become metadata-only", ErrInvalidState)
		}
		if !*metadataOnly && !hasObj {
			return nil, fmt.Errorf("%w: document has no uploaded content", ErrInvalidState)
		}
	}
	if loc == nil {
		return s, nil
	}

	if !hasObj {
		return RegisteredState(*loc), nil
	}
	switch *loc {
	case LocationWebsite:
		return Uploaded{Object: obj}, nil
	case LocationBoth:
		return Synced{Object: obj}, nil
	}
	return nil, fmt.Errorf("%w: uploaded document cannot move to pc, delete it instead", ErrInvalidState)
}
