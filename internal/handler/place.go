package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/model"
	"github.com/mwhitfield/carecircle/internal/store"
	"github.com/mwhitfield/carecircle/internal/websocket"
)

type PlaceHandler struct {
	placeStore *store.PlaceStore
	hub        *websocket.Hub
}

func NewPlaceHandler(ps *store.PlaceStore, hub *websocket.Hub) *PlaceHandler {
	return &PlaceHandler{placeStore: ps, hub: hub}
}

func (h *PlaceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type placeRequest struct {
	CircleID     string  `json:"family_circle_id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	RadiusMetres float64 `json:"radius_metres"`
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	circleID := circleIDQuery(r)
	if circleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	places, err := h.placeStore.ListByCircle(circleID)
	if err != nil {
		writeStoreError(w, err, "failed to list places")
		return
	}
	if places == nil {
		places = []model.Place{}
	}
	writeJSON(w, http.StatusOK, places)
}

func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.CircleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	place, err := h.placeStore.Create(req.CircleID, req.Name, geo.Coordinate{Lat: req.Lat, Lon: req.Lon}, req.RadiusMetres)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPlace) || errors.Is(err, geo.ErrInvalidCoordinate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("failed to create place: %v", err)
		writeStoreError(w, err, "failed to create place")
		return
	}

	h.broadcast(websocket.NewMessage(place.CircleID, "place", "created", place.ID, nil))
	writeJSON(w, http.StatusCreated, place)
}

func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.placeStore.GetByID(id)
	if err != nil {
		writeStoreError(w, err, "failed to get place")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "place not found"})
		return
	}

	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	place, err := h.placeStore.Update(id, req.Name, geo.Coordinate{Lat: req.Lat, Lon: req.Lon}, req.RadiusMetres)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPlace) || errors.Is(err, geo.ErrInvalidCoordinate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeStoreError(w, err, "failed to update place")
		return
	}

	h.broadcast(websocket.NewMessage(place.CircleID, "place", "updated", place.ID, nil))
	writeJSON(w, http.StatusOK, place)
}

func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.placeStore.GetByID(id)
	if err != nil {
		writeStoreError(w, err, "failed to get place")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "place not found"})
		return
	}

	if err := h.placeStore.Delete(id); err != nil {
		writeStoreError(w, err, "failed to delete place")
		return
	}

	h.broadcast(websocket.NewMessage(existing.CircleID, "place", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
