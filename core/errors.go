package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorUnauthenticated    = "SESSION_UNAUTHENTICATED"
	ErrorInvalidCredentials = "SESSION_INVALID_CREDENTIALS"
	ErrorNetwork            = "SESSION_NETWORK_ERROR"
	ErrorRefreshFailed      = "SESSION_REFRESH_FAILED"
	ErrorBadInput           = "SESSION_BAD_INPUT"
	ErrorNotFound           = "SESSION_NOT_FOUND"
	ErrorOperationFailed    = "SESSION_OPERATION_FAILED"
	ErrorInternal           = "SESSION_INTERNAL_ERROR"
)

// NewUnauthenticatedError reports that no usable credential is available.
// Callers route the user to a login flow and do not retry.
func NewUnauthenticatedError(message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: session is not authenticated"
	}
	return newSessionError(message, goerrors.CategoryAuth, http.StatusUnauthorized, ErrorUnauthenticated, metadata)
}

// NewNetworkError wraps a transport-level failure. It is never retried by the
// executor.
func NewNetworkError(source error, message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: network request failed"
	}
	return wrapSessionError(source, message, goerrors.CategoryExternal, http.StatusBadGateway, ErrorNetwork, metadata)
}

// NewRefreshFailedError signals that the refresh token was rejected or the
// refresh call could not complete. It is terminal for the current session.
func NewRefreshFailedError(source error, message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: token refresh failed"
	}
	return wrapSessionError(source, message, goerrors.CategoryAuth, http.StatusUnauthorized, ErrorRefreshFailed, metadata)
}

func NewBadInputError(message string, metadata map[string]any) *goerrors.Error {
	return newSessionError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorBadInput, metadata)
}

// NewInvalidCredentialsError reports a rejected login. It satisfies
// IsUnauthenticated.
func NewInvalidCredentialsError(message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: invalid credentials"
	}
	return newSessionError(message, goerrors.CategoryAuth, http.StatusUnauthorized, ErrorInvalidCredentials, metadata)
}

func NewNotFoundError(message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: resource not found"
	}
	return newSessionError(message, goerrors.CategoryNotFound, http.StatusNotFound, ErrorNotFound, metadata)
}

// NewOperationFailedError reports a non-success status the caller cannot act
// on. status is the upstream HTTP status.
func NewOperationFailedError(message string, status int, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: operation failed"
	}
	if status < 400 {
		status = http.StatusBadGateway
	}
	return newSessionError(message, goerrors.CategoryOperation, status, ErrorOperationFailed, metadata)
}

func NewInternalError(message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "core: internal error"
	}
	return newSessionError(message, goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, metadata)
}

func IsUnauthenticated(err error) bool {
	return HasTextCode(err, ErrorUnauthenticated, ErrorInvalidCredentials)
}

func IsNetworkError(err error) bool {
	return HasTextCode(err, ErrorNetwork)
}

func IsRefreshFailed(err error) bool {
	return HasTextCode(err, ErrorRefreshFailed)
}

func HasTextCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr == nil {
		return false
	}
	textCode := strings.TrimSpace(strings.ToUpper(richErr.TextCode))
	for _, code := range codes {
		if textCode == code {
			return true
		}
	}
	return false
}

func newSessionError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func wrapSessionError(
	source error,
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	if source == nil {
		return newSessionError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	// Wrap keeps the category of a rich source.
	err.Category = category
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func sessionErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureSessionErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not authenticated"), strings.Contains(msg, "unauthenticated"):
		return ensureSessionErrorEnvelope(NewUnauthenticatedError(err.Error(), nil))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureSessionErrorEnvelope(NewBadInputError(err.Error(), nil))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureSessionErrorEnvelope(mapped)
}

func ensureSessionErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = sessionHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultSessionTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultSessionTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorNotFound
	case goerrors.CategoryAuth:
		return ErrorUnauthenticated
	case goerrors.CategoryExternal:
		return ErrorNetwork
	case goerrors.CategoryOperation:
		return ErrorOperationFailed
	default:
		return ErrorInternal
	}
}

func sessionHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
