package transport

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/centerfuze/organization-service/pkg/orgs"
)

// Fixed error codes shared by all operations. Operation-specific fallback
// codes (for example CREATE_ORGANIZATION_ERROR) are passed per handler.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeSerialization   = "SERIALIZATION_ERROR"
)

// Response is the reply envelope for every request subject.
type Response struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Data      any            `json:"data,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// successResponse builds a serialized success envelope.
func successResponse(message string, data any) []byte {
	return marshalResponse(&Response{
		Status:    "success",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Data:      data,
	})
}

// errorResponse builds a serialized error envelope.
func errorResponse(message, errorCode string, details map[string]any) []byte {
	return marshalResponse(&Response{
		Status:    "error",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		ErrorCode: errorCode,
		Details:   details,
	})
}

// domainErrorResponse maps a service error to the wire envelope. Expected
// domain errors keep their message and structured code; anything else is
// collapsed into the operation's fallback code with a generic message so
// internal details never leak to callers.
func domainErrorResponse(err error, fallbackCode, fallbackMessage string) []byte {
	var validationErr *orgs.ValidationError
	if errors.As(err, &validationErr) {
		details := make(map[string]any, len(validationErr.Fields))
		for field, message := range validationErr.Fields {
			details[field] = message
		}
		return errorResponse(validationErr.Error(), CodeValidationError, details)
	}

	if orgs.IsNotFound(err) {
		return errorResponse(err.Error(), CodeNotFound, nil)
	}
	if orgs.IsAlreadyExists(err) {
		return errorResponse(err.Error(), CodeAlreadyExists, nil)
	}
	if orgs.IsInvalidArgument(err) {
		return errorResponse(err.Error(), CodeInvalidArgument, nil)
	}

	return errorResponse(fallbackMessage, fallbackCode, nil)
}

// marshalResponse serializes an envelope, falling back to a minimal
// hand-built error payload if the envelope itself cannot be serialized.
func marshalResponse(resp *Response) []byte {
	payload, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"status":"error","message":"failed to serialize response","error_code":"` +
			CodeSerialization + `","timestamp":"` + time.Now().UTC().Format(time.RFC3339Nano) + `"}`)
	}
	return payload
}
