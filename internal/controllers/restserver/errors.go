package restserver

import (
	"errors"
	"net/http"

	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// classify maps an error to its HTTP status and the short kind reported in
// the error body.
func classify(err error) (int, string) {
	var (
		pe  *paramError
		ide *telemetry.InsufficientDataError
		ete *telemetry.EmptyTrackError
		use *telemetry.UnrecognizedSchemaError
		ime *telemetry.InvalidMetricError
	)
	switch {
	case errors.As(err, &pe):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, loader.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &ide):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.As(err, &ete):
		return http.StatusUnprocessableEntity, "empty_track"
	case errors.As(err, &use):
		return http.StatusUnprocessableEntity, "unrecognized_schema"
	case errors.As(err, &ime):
		return http.StatusUnprocessableEntity, "invalid_metric"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError logs err and sends the matching JSON error body
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status, kind := classify(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed",
			"request_id", log.RequestID(req.Context()),
			"path", req.URL.Path,
			"error", err)
		message = http.StatusText(status)
	} else {
		h.controller.logger.Debugw("request rejected",
			"request_id", log.RequestID(req.Context()),
			"path", req.URL.Path,
			"status", status,
			"error", err)
	}

	if werr := h.formatter.WriteError(w, status, kind, message); werr != nil {
		h.controller.logger.Errorw("error writing error response", "error", werr)
	}
}
