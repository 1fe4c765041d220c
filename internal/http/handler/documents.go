package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docsync/internal/service"
)

// RegisterMetadata handles POST /documents.
//
//	@Summary	Register local file metadata without uploading content
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Router		/documents [post]
func RegisterMetadata(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req metadataRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest("INVALID_BODY", "invalid JSON body")
		}

		res, err := svc.RegisterMetadata(c.UserContext(), req.UserID, req.files())
		if err != nil {
			return translate(err)
		}
		return batchResponse(c, res, "metadata")
	}
}

// SyncDocuments handles POST /documents/sync.
//
//	@Summary	Register local files with a sync location (pc, website, both)
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Router		/documents/sync [post]
func SyncDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req metadataRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest("INVALID_BODY", "invalid JSON body")
		}

		res, err := svc.Sync(c.UserContext(), req.UserID, req.files(), req.SyncLocation)
		if err != nil {
			return translate(err)
		}
		return batchResponse(c, res, "synced")
	}
}

func batchResponse(c *fiber.Ctx, res *service.BatchResult, verb string) error {
	n := len(res.Saved)
	body := envelope{
		Success: true,
		Message: fmt.Sprintf("%d file(s) %s successfully", n, verb),
		Count:   &n,
		Data:    res.Saved,
	}
	if len(res.Errors) > 0 {
		body.Errors = res.Errors
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// UploadDocument handles POST /documents/upload. It accepts either a JSON
// body with base64Data or a multipart form with a "file" part.
//
//	@Summary	Upload document content
//	@Tags		documents
//	@Accept		json,mpfd
//	@Produce	json
//	@Success	201	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Failure	413	{object}	envelope
//	@Failure	500	{object}	envelope
//	@Router		/documents/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			in  service.UploadInput
			err error
		)
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			in, err = multipartUpload(c)
		} else {
			in, err = jsonUpload(c)
		}
		if err != nil {
			return err
		}

		view, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			return translate(err)
		}
		return ok(c, fiber.StatusCreated, "Document uploaded successfully", view)
	}
}

func jsonUpload(c *fiber.Ctx) (service.UploadInput, error) {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil {
		return service.UploadInput{}, badRequest("INVALID_BODY", "invalid JSON body")
	}
	if req.Base64Data == "" {
		return service.UploadInput{}, badRequest("FILE_REQUIRED", "base64Data is required")
	}
	return service.UploadInput{
		OwnerID:      req.UserID,
		Encoded:      req.Base64Data,
		FileName:     req.FileName,
		MimeType:     req.MimeType,
		OriginalPath: req.OriginalPath,
		FolderName:   req.FolderName,
		SyncLocation: req.SyncLocation,
		LastModified: req.LastModified.Time(),
	}, nil
}

func multipartUpload(c *fiber.Ctx) (service.UploadInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return service.UploadInput{}, badRequest("FILE_REQUIRED", "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return service.UploadInput{}, badRequest("FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.UploadInput{}, badRequest("FILE_OPEN_ERROR", "cannot read uploaded file")
	}

	ct := c.FormValue("mimeType", fh.Header.Get(fiber.HeaderContentType))
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	lastModified, err := parseClientTime(c.FormValue("lastModified"))
	if err != nil {
		return service.UploadInput{}, badRequest("INVALID_FIELD", `invalid value for "lastModified"`)
	}

	return service.UploadInput{
		OwnerID:      c.FormValue("userId"),
		Content:      content,
		FileName:     c.FormValue("fileName", fh.Filename),
		MimeType:     ct,
		OriginalPath: c.FormValue("originalPath"),
		FolderName:   c.FormValue("folderName"),
		SyncLocation: c.FormValue("syncLocation"),
		LastModified: lastModified,
	}, nil
}

// ListDocuments handles GET /documents?userId= and GET /documents/user/:ownerId.
//
//	@Summary	List an owner's documents, newest first
//	@Tags		documents
//	@Produce	json
//	@Param		userId			query	string	false	"owner id"
//	@Param		metadataOnly	query	bool	false	"only metadata-only documents"
//	@Success	200	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Router		/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := c.Params("ownerId", c.Query("userId"))

		metadataOnly := false
		if v := c.Query("metadataOnly"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return badRequest("INVALID_QUERY", "metadataOnly must be a boolean")
			}
			metadataOnly = b
		}

		views, err := svc.List(c.UserContext(), owner, metadataOnly)
		if err != nil {
			return translate(err)
		}
		if views == nil {
			views = []service.View{}
		}
		n := len(views)
		return c.JSON(envelope{Success: true, Count: &n, Data: views})
	}
}

// GetDocument handles GET /documents/:id.
//
//	@Summary	Get one document with a signed download URL
//	@Tags		documents
//	@Produce	json
//	@Param		id	path	string	true	"document id"
//	@Success	200	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Failure	404	{object}	envelope
//	@Router		/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c.Params("id"))
		if err != nil {
			return err
		}
		view, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return translate(err)
		}
		return ok(c, fiber.StatusOK, "", view)
	}
}

// UpdateDocument handles PATCH /documents/:id.
//
//	@Summary	Partially update a document
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id	path	string	true	"document id"
//	@Success	200	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Failure	404	{object}	envelope
//	@Failure	409	{object}	envelope
//	@Router		/documents/{id} [patch]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c.Params("id"))
		if err != nil {
			return err
		}
		patch, err := parsePatch(c.Body())
		if err != nil {
			return translate(err)
		}

		view, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return translate(err)
		}
		return ok(c, fiber.StatusOK, "Document updated successfully", view)
	}
}

// DeleteDocument handles DELETE /documents/:id.
//
//	@Summary	Delete a document and its stored content
//	@Tags		documents
//	@Produce	json
//	@Param		id	path	string	true	"document id"
//	@Success	200	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Failure	404	{object}	envelope
//	@Router		/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c.Params("id"))
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return translate(err)
		}
		return ok(c, fiber.StatusOK, "Document deleted successfully", nil)
	}
}

// RequestLocalOpen handles POST /documents/open.
//
//	@Summary	Resolve the local path of a metadata-only document
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Failure	400	{object}	envelope
//	@Failure	404	{object}	envelope
//	@Failure	409	{object}	envelope
//	@Router		/documents/open [post]
func RequestLocalOpen(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req openRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest("INVALID_BODY", "invalid JSON body")
		}
		id, err := documentID(req.DocID)
		if err != nil {
			return err
		}

		out, err := svc.RequestLocalOpen(c.UserContext(), id)
		if err != nil {
			return translate(err)
		}
		return ok(c, fiber.StatusOK, "", out)
	}
}

func documentID(raw string) (string, error) {
	if raw == "" {
		return "", badRequest("ID_REQUIRED", "document id is required")
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return raw, nil
}
