package transport

import (
	"fmt"
	"maps"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-session/core"
)

// Errors raised before or after the round trip itself. Round trip failures
// use core.NewNetworkError directly.

func adapterFields(fields map[string]any) map[string]any {
	out := map[string]any{"adapter": KindREST}
	maps.Copy(out, fields)
	return out
}

func missingClientError() *goerrors.Error {
	return core.NewInternalError("transport: rest adapter requires an http client", adapterFields(nil))
}

// invalidRequestError is a bad input error carrying the parse or build
// failure as its source.
func invalidRequestError(source error, message string, fields map[string]any) *goerrors.Error {
	err := core.NewBadInputError(message, adapterFields(fields))
	if source != nil {
		err.Source = source
	}
	return err
}

func oversizedResponseError(limit int64, statusCode int) *goerrors.Error {
	return core.NewNetworkError(
		nil,
		fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
		adapterFields(map[string]any{"status_code": statusCode, "response_limit_b": limit}),
	)
}
