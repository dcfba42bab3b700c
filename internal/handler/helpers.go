package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mwhitfield/carecircle/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// circleIDQuery extracts the required family_circle_id query parameter.
func circleIDQuery(r *http.Request) string {
	return r.URL.Query().Get("family_circle_id")
}

// writeStoreError maps store errors onto HTTP statuses. Unknown circle or
// member is the caller's mistake; a busy database is transient and the
// client should retry.
func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrUnknownCircle):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family circle not found"})
	case errors.Is(err, store.ErrUnknownMember):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found in circle"})
	case errors.Is(err, store.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage temporarily unavailable, retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}
