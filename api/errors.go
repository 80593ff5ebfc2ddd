package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-session/core"
)

// responseError maps a non-success response onto a session error envelope.
// Field errors from a 400 body are carried as validation errors and metadata.
func responseError(operation string, res core.Response) error {
	body := map[string]any{}
	_ = json.Unmarshal(res.Body, &body)
	metadata := map[string]any{
		"operation":   operation,
		"status_code": res.StatusCode,
	}
	detail := ""
	if text, ok := body["detail"].(string); ok {
		detail = strings.TrimSpace(text)
		metadata["detail"] = detail
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		fields := fieldErrors(body)
		if len(fields) > 0 {
			metadata["fields"] = fieldMap(fields)
		}
		err := core.NewBadInputError(messageFor(operation, "rejected the request", detail), metadata)
		err.ValidationErrors = fields
		return err
	case http.StatusUnauthorized:
		return core.NewUnauthenticatedError(messageFor(operation, "requires authentication", detail), metadata)
	case http.StatusNotFound:
		return core.NewNotFoundError(messageFor(operation, "resource not found", detail), metadata)
	default:
		return core.NewOperationFailedError(messageFor(operation, fmt.Sprintf("failed with status %d", res.StatusCode), detail), res.StatusCode, metadata)
	}
}

func messageFor(operation string, fallback string, detail string) string {
	if detail != "" {
		return "api: " + operation + ": " + detail
	}
	return "api: " + operation + " " + fallback
}

func fieldErrors(body map[string]any) goerrors.ValidationErrors {
	fields := goerrors.ValidationErrors{}
	for key, value := range body {
		if key == "detail" {
			continue
		}
		message := ""
		switch typed := value.(type) {
		case string:
			message = typed
		case []any:
			parts := make([]string, 0, len(typed))
			for _, item := range typed {
				if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
					parts = append(parts, strings.TrimSpace(text))
				}
			}
			message = strings.Join(parts, " ")
		}
		if strings.TrimSpace(message) == "" {
			continue
		}
		fields = append(fields, goerrors.FieldError{Field: key, Message: strings.TrimSpace(message)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return fields
}

func fieldMap(fields goerrors.ValidationErrors) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		out[field.Field] = field.Message
	}
	return out
}

func requireField(fields *goerrors.ValidationErrors, name string, value string) {
	if strings.TrimSpace(value) == "" {
		*fields = append(*fields, goerrors.FieldError{Field: name, Message: "is required"})
	}
}

func validationError(operation string, fields goerrors.ValidationErrors) error {
	if len(fields) == 0 {
		return nil
	}
	err := core.NewBadInputError("api: "+operation+" input is invalid", map[string]any{
		"operation": operation,
		"fields":    fieldMap(fields),
	})
	err.ValidationErrors = fields
	return err
}
