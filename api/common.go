// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/absmach/edgesync/pkg/errors"
)

var (
	// ErrValidation indicates that a request failed validation.
	ErrValidation = errors.New("failed to validate request")

	// ErrUnsupportedContentType indicates a request body that is not JSON.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrInvalidTenant indicates a malformed tenant id in the path.
	ErrInvalidTenant = errors.New("invalid tenant id")

	// ErrMissingEntityType indicates entity data without an entity type.
	ErrMissingEntityType = errors.New("missing entity type")

	// ErrInvalidEntityType indicates an unsupported entity type.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidAction indicates an unknown cloud event action.
	ErrInvalidAction = errors.New("invalid action")

	// ErrMissingID indicates a missing entity id.
	ErrMissingID = errors.New("missing entity id")
)

// EncodeResponse encodes successful responses.
func EncodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	if ar, ok := response.(Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

// EncodeError encodes an error response.
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status(err))

	if errorVal, ok := err.(errors.Error); ok {
		if err := json.NewEncoder(w).Encode(errorVal); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]string{"message": err.Error()}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func status(err error) int {
	switch {
	case errors.Contains(err, ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType
	case errors.Contains(err, ErrValidation),
		errors.Contains(err, errors.ErrMalformedEntity),
		errors.Contains(err, errors.ErrDecode):
		return http.StatusBadRequest
	case errors.Contains(err, errors.ErrConflict):
		return http.StatusConflict
	case errors.Contains(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Contains(err, errors.ErrDispatch),
		errors.Contains(err, errors.ErrSaveAttributes),
		errors.Contains(err, errors.ErrRemoveAttributes):
		return http.StatusServiceUnavailable
	case errors.Contains(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
