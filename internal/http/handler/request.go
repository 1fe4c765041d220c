package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"docsync/internal/model"
	"docsync/internal/service"
)

// clientTime accepts RFC 3339 strings or epoch milliseconds, as sent by
// browsers (File.lastModified) and desktop clients.
type clientTime time.Time

func (t *clientTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := parseClientTime(s)
		if err != nil {
			return err
		}
		*t = clientTime(parsed)
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(b), 64)
		if ferr != nil {
			return fmt.Errorf("lastModified: %w", err)
		}
		ms = int64(f)
	}
	*t = clientTime(time.UnixMilli(ms).UTC())
	return nil
}

func (t clientTime) Time() time.Time { return time.Time(t) }

func parseClientTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("lastModified: %w", err)
	}
	return parsed.UTC(), nil
}

type fileMetadataRequest struct {
	FileName     string     `json:"fileName"`
	FileSize     int64      `json:"fileSize"`
	FileType     string     `json:"fileType"`
	LocalPath    string     `json:"localPath"`
	FolderName   string     `json:"folderName"`
	LastModified clientTime `json:"lastModified"`
}

// metadataRequest is the body of POST /documents and POST /documents/sync.
type metadataRequest struct {
	UserID       string                `json:"userId"`
	Files        []fileMetadataRequest `json:"files"`
	SyncLocation string                `json:"syncLocation"`
}

func (r metadataRequest) files() []service.FileMetadata {
	out := make([]service.FileMetadata, 0, len(r.Files))
	for _, f := range r.Files {
		out = append(out, service.FileMetadata{
			FileName:     f.FileName,
			FileSize:     f.FileSize,
			FileType:     f.FileType,
			LocalPath:    f.LocalPath,
			FolderName:   f.FolderName,
			LastModified: f.LastModified.Time(),
		})
	}
	return out
}

// uploadRequest is the JSON body of POST /documents/upload.
type uploadRequest struct {
	UserID       string     `json:"userId"`
	Base64Data   string     `json:"base64Data"`
	FileName     string     `json:"fileName"`
	MimeType     string     `json:"mimeType"`
	OriginalPath string     `json:"originalPath"`
	FolderName   string     `json:"folderName"`
	SyncLocation string     `json:"syncLocation"`
	LastModified clientTime `json:"lastModified"`
}

type openRequest struct {
	DocID string `json:"docId"`
}

// immutableFields are rejected by PATCH; the storage reference only changes
// through upload and the owner never changes.
var immutableFields = map[string]bool{
	"id":               true,
	"userId":           true,
	"storageReference": true,
	"s3Key":            true,
	"uploadedAt":       true,
	"createdAt":        true,
}

// parsePatch decodes a PATCH body into a model.Patch, rejecting unknown and
// immutable fields.
func parsePatch(body []byte) (model.Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Patch{}, badRequest("INVALID_BODY", "invalid JSON body")
	}

	var p model.Patch
	for key, val := range raw {
		if immutableFields[key] {
			return model.Patch{}, badRequest("IMMUTABLE_FIELD", fmt.Sprintf("field %q cannot be updated", key))
		}

		var err error
		switch key {
		case "fileName":
			p.DisplayName, err = decodeField[string](val)
		case "fileSize":
			p.SizeBytes, err = decodeField[int64](val)
		case "fileType":
			p.MimeType, err = decodeField[string](val)
		case "localPath":
			p.LocalPath, err = decodeField[string](val)
		case "folderName":
			p.FolderName, err = decodeField[string](val)
		case "isMetadataOnly":
			p.IsMetadataOnly, err = decodeField[bool](val)
		case "lastModified":
			var ct *clientTime
			if ct, err = decodeField[clientTime](val); err == nil && ct != nil {
				t := ct.Time()
				p.LastModifiedAt = &t
			}
		case "syncLocation":
			var s *string
			if s, err = decodeField[string](val); err == nil && s != nil {
				loc, perr := model.ParseLocation(*s)
				if perr != nil {
					return model.Patch{}, perr
				}
				p.SyncLocation = &loc
			}
		default:
			return model.Patch{}, badRequest("UNKNOWN_FIELD", fmt.Sprintf("unknown field %q", key))
		}
		if err != nil {
			return model.Patch{}, badRequest("INVALID_FIELD", fmt.Sprintf("invalid value for %q", key))
		}
	}
	return p, nil
}

// decodeField returns nil for an explicit JSON null.
func decodeField[T any](val json.RawMessage) (*T, error) {
	if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(val, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
