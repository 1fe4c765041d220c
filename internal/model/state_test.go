package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseLocation(t *testing.T) {
	for _, s := range []string{"pc", "website", "both"} {
		loc, err := ParseLocation(s)
		require.NoError(t, err)
		assert.Equal(t, Location(s), loc)
	}

	_, err := ParseLocation("cloud")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseLocation("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestColumnsRoundTrip(t *testing.T) {
	obj := StoredObject{Reference: "users/u1/documents/x.pdf", LocationURL: "https://bucket/x.pdf"}

	tests := []struct {
		name  string
		state SyncState
		want  StateColumns
	}{
		{
			name:  "metadata only",
			state: MetadataOnly{},
			want:  StateColumns{IsMetadataOnly: true, SyncLocation: LocationPC},
		},
		{
			name:  "pending upload",
			state: PendingUpload{Target: LocationBoth},
			want:  StateColumns{IsMetadataOnly: true, SyncLocation: LocationBoth},
		},
		{
			name:  "uploaded",
			state: Uploaded{Object: obj},
			want: StateColumns{
				SyncLocation:     LocationWebsite,
				StorageReference: ptr(obj.Reference),
				LocationURL:      ptr(obj.LocationURL),
			},
		},
		{
			name:  "synced",
			state: Synced{Object: obj},
			want: StateColumns{
				SyncLocation:     LocationBoth,
				StorageReference: ptr(obj.Reference),
				LocationURL:      ptr(obj.LocationURL),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := Columns(tt.state)
			assert.Equal(t, tt.want, cols)

			back, err := StateFromColumns(cols)
			require.NoError(t, err)
			assert.Equal(t, tt.state, back)
		})
	}
}

func TestStateFromColumns_RejectsInconsistentRows(t *testing.T) {
	tests := []struct {
		name string
		cols StateColumns
	}{
		{name: "metadata only with reference", cols: StateColumns{IsMetadataOnly: true, SyncLocation: LocationPC, StorageReference: ptr("k")}},
		{name: "uploaded without reference", cols: StateColumns{SyncLocation: LocationWebsite}},
		{name: "uploaded with empty reference", cols: StateColumns{SyncLocation: LocationBoth, StorageReference: ptr("")}},
		{name: "uploaded at pc", cols: StateColumns{SyncLocation: LocationPC, StorageReference: ptr("k")}},
		{name: "unknown location", cols: StateColumns{IsMetadataOnly: true, SyncLocation: "cloud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StateFromColumns(tt.cols)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisteredAndUploadedState(t *testing.T) {
	assert.Equal(t, MetadataOnly{}, RegisteredState(LocationPC))
	assert.Equal(t, PendingUpload{Target: LocationWebsite}, RegisteredState(LocationWebsite))
	assert.Equal(t, PendingUpload{Target: LocationBoth}, RegisteredState(LocationBoth))

	obj := StoredObject{Reference: "k"}
	s, err := UploadedState(LocationWebsite, obj)
	require.NoError(t, err)
	assert.Equal(t, Uploaded{Object: obj}, s)

	s, err = UploadedState(LocationBoth, obj)
	require.NoError(t, err)
	assert.Equal(t, Synced{Object: obj}, s)

	_, err = UploadedState(LocationPC, obj)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTransition(t *testing.T) {
	obj := StoredObject{Reference: "k", LocationURL: "u"}

	tests := []struct {
		name         string
		from         SyncState
		loc          *Location
		metadataOnly *bool
		want         SyncState
		wantErr      error
	}{
		{name: "no change", from: Synced{Object: obj}, want: Synced{Object: obj}},
		{name: "uploaded to both", from: Uploaded{Object: obj}, loc: ptr(LocationBoth), want: Synced{Object: obj}},
		{name: "synced to website", from: Synced{Object: obj}, loc: ptr(LocationWebsite), want: Uploaded{Object: obj}},
		{name: "synced to pc", from: Synced{Object: obj}, loc: ptr(LocationPC), wantErr: ErrInvalidState},
		{name: "uploaded flagged metadata only", from: Uploaded{Object: obj}, metadataOnly: ptr(true), wantErr: ErrInvalidState},
		{name: "uploaded confirmed not metadata only", from: Uploaded{Object: obj}, metadataOnly: ptr(false), want: Uploaded{Object: obj}},
		{name: "metadata only to website", from: MetadataOnly{}, loc: ptr(LocationWebsite), want: PendingUpload{Target: LocationWebsite}},
		{name: "pending back to pc", from: PendingUpload{Target: LocationBoth}, loc: ptr(LocationPC), want: MetadataOnly{}},
		{name: "metadata only claims upload", from: MetadataOnly{}, metadataOnly: ptr(false), wantErr: ErrInvalidState},
		{name: "metadata only stays metadata only", from: MetadataOnly{}, metadataOnly: ptr(true), loc: ptr(LocationBoth), want: PendingUpload{Target: LocationBoth}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.loc, tt.metadataOnly)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFolderOf(t *testing.T) {
	tests := map[string]string{
		"/home/u/a.pdf":      "/home/u",
		"/a.pdf":             "/",
		"a.pdf":              ".",
		`C:\Users\u\a.pdf`:   `C:\Users\u`,
		`C:\a.pdf`:           `C:\`,
		"/home/u/docs/b.txt": "/home/u/docs",
	}
	for in, want := range tests {
		assert.Equal(t, want, FolderOf(in), in)
	}
}

func TestDocument_Validate(t *testing.T) {
	base := Document{
		OwnerID:     "u1",
		DisplayName: "a.pdf",
		SizeBytes:   100,
		MimeType:    "application/pdf",
		State:       MetadataOnly{},
	}
	require.NoError(t, base.Validate())

	missing := base
	missing.OwnerID = " "
	missing.SizeBytes = 0
	err := missing.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "owner_id")
	assert.Contains(t, err.Error(), "size_bytes")

	noState := base
	noState.State = nil
	assert.ErrorIs(t, noState.Validate(), ErrValidation)

	badObj := base
	badObj.State = Uploaded{}
	assert.ErrorIs(t, badObj.Validate(), ErrValidation)
}

func TestPatch_Apply(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := Document{
		ID:          "id-1",
		OwnerID:     "u1",
		DisplayName: "a.pdf",
		SizeBytes:   100,
		MimeType:    "application/pdf",
		LocalPath:   "/home/u/a.pdf",
		FolderName:  "/home/u",
		State:       Uploaded{Object: StoredObject{Reference: "k"}},
		CreatedAt:   created,
	}

	t.Run("empty", func(t *testing.T) {
		assert.True(t, Patch{}.Empty())
		assert.False(t, Patch{FolderName: ptr("x")}.Empty())
	})

	t.Run("location change keeps reference and immutable fields", func(t *testing.T) {
		out, err := Patch{SyncLocation: ptr(LocationBoth)}.Apply(doc)
		require.NoError(t, err)
		assert.Equal(t, Synced{Object: StoredObject{Reference: "k"}}, out.State)
		assert.Equal(t, "id-1", out.ID)
		assert.Equal(t, created, out.CreatedAt)
		assert.Equal(t, "k", out.StorageReference())
	})

	t.Run("local path derives folder", func(t *testing.T) {
		out, err := Patch{LocalPath: ptr("/srv/x/a.pdf")}.Apply(doc)
		require.NoError(t, err)
		assert.Equal(t, "/srv/x", out.FolderName)
	})

	t.Run("explicit folder wins", func(t *testing.T) {
		out, err := Patch{LocalPath: ptr("/srv/x/a.pdf"), FolderName: ptr("Work")}.Apply(doc)
		require.NoError(t, err)
		assert.Equal(t, "Work", out.FolderName)
	})

	t.Run("invalid transition", func(t *testing.T) {
		_, err := Patch{SyncLocation: ptr(LocationPC)}.Apply(doc)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("revalidates after merge", func(t *testing.T) {
		_, err := Patch{DisplayName: ptr("")}.Apply(doc)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		_, err := Patch{DisplayName: ptr("b.pdf")}.Apply(doc)
		require.NoError(t, err)
		assert.Equal(t, "a.pdf", doc.DisplayName)
	})

	t.Run("clearing local path of metadata-only record is rejected", func(t *testing.T) {
		local := doc
		local.State = MetadataOnly{}

		_, err := Patch{LocalPath: ptr("")}.Apply(local)
		assert.ErrorIs(t, err, ErrValidation)

		pending := doc
		pending.State = PendingUpload{Target: LocationWebsite}
		_, err = Patch{LocalPath: ptr("")}.Apply(pending)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("clearing local path of uploaded record drops folder", func(t *testing.T) {
		out, err := Patch{LocalPath: ptr("")}.Apply(doc)
		require.NoError(t, err)
		assert.Empty(t, out.LocalPath)
		assert.Empty(t, out.FolderName)
	})
}
