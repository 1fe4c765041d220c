package service

import (
	"strings"
	"time"

	"docsync/internal/model"
)

// FileMetadata describes one locally discovered file.
type FileMetadata struct {
	FileName     string
	FileSize     int64
	FileType     string
	LocalPath    string
	FolderName   string
	LastModified time.Time
}

func (f FileMetadata) complete() bool {
	return strings.TrimSpace(f.FileName) != "" &&
		f.FileSize > 0 &&
		strings.TrimSpace(f.FileType) != "" &&
		strings.TrimSpace(f.LocalPath) != ""
}

// UploadInput is a single-file upload. Content wins over Encoded, which may
// be plain base64 or a data URL.
type UploadInput struct {
	OwnerID      string
	Content      []byte
	Encoded      string
	FileName     string
	MimeType     string
	OriginalPath string
	FolderName   string
	SyncLocation string
	LastModified time.Time
}

// ItemError reports one failed batch item.
type ItemError struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// BatchResult holds the outcome of a metadata batch.
type BatchResult struct {
	Saved  []View      `json:"data"`
	Errors []ItemError `json:"errors"`
}

// View is the client-facing shape of a document. FilePath is the local path
// for metadata-only documents and the download URL otherwise.
type View struct {
	ID             string         `json:"id"`
	FileName       string         `json:"fileName"`
	FileSize       int64          `json:"fileSize"`
	FileType       string         `json:"fileType"`
	FolderName     string         `json:"folderName,omitempty"`
	FilePath       string         `json:"filePath,omitempty"`
	LocalPath      string         `json:"localPath,omitempty"`
	LastModified   time.Time      `json:"lastModified"`
	UploadedAt     time.Time      `json:"uploadedAt"`
	IsMetadataOnly bool           `json:"isMetadataOnly"`
	SyncLocation   model.Location `json:"syncLocation"`
	DownloadURL    string         `json:"downloadUrl,omitempty"`
}

// NewView maps a document without resolving any URL.
func NewView(d model.Document) View {
	v := View{
		ID:             d.ID,
		FileName:       d.DisplayName,
		FileSize:       d.SizeBytes,
		FileType:       d.MimeType,
		FolderName:     d.FolderName,
		LocalPath:      d.LocalPath,
		LastModified:   d.LastModifiedAt,
		UploadedAt:     d.CreatedAt,
		IsMetadataOnly: d.State.MetadataOnly(),
		SyncLocation:   d.State.Location(),
	}
	if v.IsMetadataOnly {
		v.FilePath = d.LocalPath
	}
	return v
}

// LocalOpen is returned to a desktop client asked to open a file from disk.
type LocalOpen struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	LocalPath string `json:"localPath"`
	FileType  string `json:"fileType"`
}
