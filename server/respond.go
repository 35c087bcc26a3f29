package server

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/musicrank/musicrank/db"
	"github.com/musicrank/musicrank/session"
	"github.com/musicrank/musicrank/spotify"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps the error taxonomy onto status codes: validation 400,
// bad session 401, missing entity 404, duplicate key 409, upstream failures
// 502, everything else 500.
func respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, spotify.ErrUpstream), errors.Is(err, spotify.ErrUpstreamAuth):
		log.Error().Err(err).Msg("upstream catalog failure")
		respondError(w, http.StatusBadGateway, "catalog unavailable")
	case errors.Is(err, spotify.ErrNotConfigured):
		log.Error().Err(err).Msg("catalog not configured")
		respondError(w, http.StatusInternalServerError, "catalog not configured")
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
