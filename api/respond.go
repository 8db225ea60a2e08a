package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
	// exposeDetails adds the internal error chain to 500 bodies. Off in production.
	exposeDetails bool
}

func NewResponder(logger zerolog.Logger, exposeDetails bool) Responder {
	return Responder{logger: logger, exposeDetails: exposeDetails}
}

// WriteJSON writes data with a 200 status.
func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteStatusJSON(w, http.StatusOK, data)
}

func (r Responder) WriteStatusJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// Unexpected errors and 5xx never leak their message to the client.
	if !errors.As(err, &apiErr) || apiErr.StatusCode >= http.StatusInternalServerError {
		detail := err.Error()
		if apiErr != nil {
			detail = apiErr.GetFullError()
		}
		r.logger.Error().Err(err).Str("detail", detail).Msg("internal server error")

		response := ErrorResponse{Error: "Internal Server Error"}
		if r.exposeDetails {
			response.Details = detail
		}
		r.WriteStatusJSON(w, http.StatusInternalServerError, response)
		return
	}

	response := ErrorResponse{
		Error:    apiErr.Error(),
		Field:    apiErr.Field,
		Details:  apiErr.Details,
		Required: apiErr.Required,
	}
	r.WriteStatusJSON(w, apiErr.StatusCode, response)
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
