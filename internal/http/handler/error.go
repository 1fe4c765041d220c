package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docsync/internal/http/middleware"
	"docsync/internal/model"
	"docsync/internal/service"
	"docsync/internal/storage"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Data      any    `json:"data,omitempty"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
	Errors    any    `json:"errors,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// apiError carries the response for a failed request to ErrorHandler.
// cause is only exposed in development.
type apiError struct {
	status  int
	code    string
	message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.cause }

// HTTPStatus lets the logging and metrics middleware see the final status.
func (e *apiError) HTTPStatus() int { return e.status }

func newError(status int, code, message string) *apiError {
	return &apiError{status: status, code: code, message: message}
}

func badRequest(code, message string) *apiError {
	return newError(fiber.StatusBadRequest, code, message)
}

// translate maps domain and storage errors to a response without leaking internals.
func translate(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, service.ErrTooLarge):
		return &apiError{status: fiber.StatusRequestEntityTooLarge, code: "PAYLOAD_TOO_LARGE", message: "document exceeds the upload size limit", cause: err}
	case errors.Is(err, model.ErrValidation):
		return &apiError{
			status:  fiber.StatusBadRequest,
			code:    "VALIDATION_ERROR",
			message: strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": "),
			cause:   err,
		}
	case errors.Is(err, model.ErrNotFound):
		return &apiError{status: fiber.StatusNotFound, code: "NOT_FOUND", message: "document not found", cause: err}
	case errors.Is(err, model.ErrInvalidState):
		return &apiError{
			status:  fiber.StatusConflict,
			code:    "INVALID_STATE",
			message: strings.TrimPrefix(err.Error(), model.ErrInvalidState.Error()+": "),
			cause:   err,
		}
	case errors.Is(err, storage.ErrWrite), errors.Is(err, storage.ErrDelete), errors.Is(err, storage.ErrSign):
		return &apiError{status: fiber.StatusInternalServerError, code: "STORAGE_ERROR", message: "storage operation failed", cause: err}
	}
	return &apiError{status: fiber.StatusInternalServerError, code: "INTERNAL_ERROR", message: "internal server error", cause: err}
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// ErrorHandler returns the Fiber global error handler. It renders errors
// returned by handlers, routing errors and recovered panics as an envelope.
// With dev set the underlying error text is included.
func ErrorHandler(dev bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		var ae *apiError
		switch {
		case errors.As(err, &ae):
		case errors.As(err, &fe):
			ae = fromFiberError(fe)
		default:
			ae = translate(err)
		}

		body := envelope{
			Message:   ae.message,
			Code:      ae.code,
			RequestID: requestIDFromCtx(c),
		}
		if dev && ae.cause != nil {
			body.Error = ae.cause.Error()
		}
		return c.Status(ae.status).JSON(body)
	}
}

func fromFiberError(fe *fiber.Error) *apiError {
	switch fe.Code {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return &apiError{status: fiber.StatusBadRequest, code: "BAD_REQUEST", message: "bad request", cause: fe}
	case fiber.StatusNotFound:
		return newError(fe.Code, "NOT_FOUND", "resource not found")
	case fiber.StatusMethodNotAllowed:
		return newError(fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
	case fiber.StatusRequestEntityTooLarge:
		return newError(fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
	case fiber.StatusServiceUnavailable:
		return newError(fe.Code, "SERVICE_UNAVAILABLE", "dependency unavailable")
	}
	return &apiError{status: fe.Code, code: "INTERNAL_ERROR", message: "internal server error", cause: fe}
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Message: message, Data: data})
}
