package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"instaview/pkg/instagram"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

// writeScrapeError maps a classified upstream failure onto the profile
// grid endpoint's response contract.
func writeScrapeError(w http.ResponseWriter, err error) {
	var igErr *instagram.Error
	if !errors.As(err, &igErr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch igErr.Type {
	case instagram.ErrorTypeNotFound:
		writeError(w, http.StatusNotFound, "Profile not found")
	case instagram.ErrorTypeRateLimited:
		writeError(w, http.StatusTooManyRequests, igErr.Message)
	case instagram.ErrorTypePrivate:
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":      "This profile is private.",
			"is_private": true,
		})
	case instagram.ErrorTypeConnection:
		writeError(w, http.StatusInternalServerError, "Connection error: "+igErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, igErr.Message)
	}
}

// writeHashtagError maps upstream failures for the hashtag explorer. A
// hashtag that cannot be resolved is an upstream fault, not a 404; only
// rate limiting and a missing login get dedicated statuses.
func writeHashtagError(w http.ResponseWriter, err error) {
	var igErr *instagram.Error
	if !errors.As(err, &igErr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch igErr.Type {
	case instagram.ErrorTypeRateLimited:
		writeError(w, http.StatusTooManyRequests, igErr.Message)
	case instagram.ErrorTypeLoginRequired:
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error":          "Hashtag browsing requires a logged-in session.",
			"login_required": true,
		})
	default:
		writeError(w, http.StatusInternalServerError, igErr.Message)
	}
}
