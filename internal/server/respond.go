package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tenderd/pkg/types"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// respondError translates domain errors onto HTTP statuses. Anything not
// classified is a 500 with the detail kept out of the response.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		s.respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, types.ErrInvalidArgument),
		errors.Is(err, types.ErrInvalidState),
		errors.Is(err, types.ErrDeadlinePassed):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, types.ErrConflict):
		s.respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		s.logger.WithError(err).Error("request failed")
		s.respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed json body", types.ErrInvalidArgument)
	}
	return nil
}
