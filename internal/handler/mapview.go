package handler

import (
	"net/http"

	"github.com/mwhitfield/carecircle/internal/geofence"
)

type MapViewHandler struct {
	assembler *geofence.Assembler
}

func NewMapViewHandler(assembler *geofence.Assembler) *MapViewHandler {
	return &MapViewHandler{assembler: assembler}
}

// Get serves the composed map view consumed by both the TV renderer and the
// web map.
func (h *MapViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	circleID := circleIDQuery(r)
	if circleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	view, err := h.assembler.Assemble(circleID)
	if err != nil {
		writeStoreError(w, err, "failed to build map view")
		return
	}

	writeJSON(w, http.StatusOK, view)
}
