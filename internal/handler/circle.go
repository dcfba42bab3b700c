package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/mwhitfield/carecircle/internal/store"
)

type CircleHandler struct {
	circleStore *store.CircleStore
}

func NewCircleHandler(cs *store.CircleStore) *CircleHandler {
	return &CircleHandler{circleStore: cs}
}

func (h *CircleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	circle, err := h.circleStore.Create(req.Name)
	if err != nil {
		log.Printf("failed to create circle: %v", err)
		writeStoreError(w, err, "failed to create circle")
		return
	}

	writeJSON(w, http.StatusCreated, circle)
}

func (h *CircleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	circle, err := h.circleStore.GetByID(id)
	if err != nil {
		writeStoreError(w, err, "failed to get circle")
		return
	}
	if circle == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family circle not found"})
		return
	}

	writeJSON(w, http.StatusOK, circle)
}
