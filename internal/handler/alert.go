package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/mwhitfield/carecircle/internal/store"
	"github.com/mwhitfield/carecircle/internal/websocket"
)

type AlertHandler struct {
	alertStore *store.AlertStore
	hub        *websocket.Hub
}

func NewAlertHandler(as *store.AlertStore, hub *websocket.Hub) *AlertHandler {
	return &AlertHandler{alertStore: as, hub: hub}
}

func (h *AlertHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Set raises the circle's alert banner, superseding any active one.
func (h *AlertHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CircleID string `json:"family_circle_id"`
		Message  string `json:"message"`
		SetBy    string `json:"set_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.CircleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	alert, err := h.alertStore.Set(req.CircleID, req.Message, req.SetBy)
	if err != nil {
		log.Printf("failed to set alert: %v", err)
		writeStoreError(w, err, "failed to set alert")
		return
	}

	h.broadcast(websocket.NewMessage(alert.CircleID, "alert", "set", alert.ID, nil))
	writeJSON(w, http.StatusCreated, alert)
}

// Clear takes down the circle's active alert. Clearing when none is active
// is a no-op.
func (h *AlertHandler) Clear(w http.ResponseWriter, r *http.Request) {
	circleID := circleIDQuery(r)
	if circleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	if err := h.alertStore.Clear(circleID); err != nil {
		writeStoreError(w, err, "failed to clear alert")
		return
	}

	h.broadcast(websocket.NewMessage(circleID, "alert", "cleared", 0, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Active returns the circle's active alert, or null when there is none.
func (h *AlertHandler) Active(w http.ResponseWriter, r *http.Request) {
	circleID := circleIDQuery(r)
	if circleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	alert, err := h.alertStore.Active(circleID)
	if err != nil {
		writeStoreError(w, err, "failed to get alert")
		return
	}

	writeJSON(w, http.StatusOK, alert)
}
