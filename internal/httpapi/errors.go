package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/litescript/lunas/internal/ephem"
	"github.com/litescript/lunas/internal/snapshot"
)

// errUnavailable marks a provider that could not be loaded.
var errUnavailable = errors.New("ephemeris unavailable")

// Error kinds reported in error payloads.
const (
	KindInvalidInput = "invalid_input"
	KindOutOfRange   = "out_of_range"
	KindUnavailable  = "unavailable"
	KindTimeout      = "timeout"
	KindInternal     = "internal"
)

// ErrorBody is the payload of every non-2xx API response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeError maps err to a status code and structured payload.
func (s *Server) writeError(w http.ResponseWriter, kind string, err error) {
	var (
		inputErr *snapshot.InputError
		rangeErr *ephem.DataRangeError
	)

	switch {
	case errors.As(err, &inputErr):
		s.metrics.ComputeErrors.WithLabelValues(kind, "input").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{ErrorBody{
			Kind:    KindInvalidInput,
			Field:   inputErr.Field,
			Value:   inputErr.Value,
			Message: inputErr.Error(),
		}})

	case errors.As(err, &rangeErr), errors.Is(err, ephem.ErrOutOfRange):
		s.metrics.ComputeErrors.WithLabelValues(kind, "range").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{ErrorBody{
			Kind:    KindOutOfRange,
			Message: err.Error(),
		}})

	case errors.Is(err, errUnavailable):
		s.metrics.ComputeErrors.WithLabelValues(kind, "unavailable").Inc()
		s.log.Error().Err(err).Msg("ephemeris unavailable")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{ErrorBody{
			Kind:    KindUnavailable,
			Message: errUnavailable.Error(),
		}})

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.metrics.ComputeErrors.WithLabelValues(kind, "timeout").Inc()
		s.log.Warn().Err(err).Str("kind", kind).Msg("computation cut off")
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{ErrorBody{
			Kind:    KindTimeout,
			Message: "computation did not finish in time",
		}})

	default:
		s.metrics.ComputeErrors.WithLabelValues(kind, "internal").Inc()
		s.log.Error().Err(err).Str("kind", kind).Msg("computation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{ErrorBody{
			Kind:    KindInternal,
			Message: "internal error",
		}})
	}
}
