package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mwhitfield/carecircle/internal/geo"
	"github.com/mwhitfield/carecircle/internal/geofence"
	"github.com/mwhitfield/carecircle/internal/store"
	"github.com/mwhitfield/carecircle/internal/websocket"
)

// defaultCheckinNote is attached when a member checks in without writing
// anything.
const defaultCheckinNote = "Checked in via web"

type CheckinHandler struct {
	checkinStore *store.CheckinStore
	placeStore   *store.PlaceStore
	assembler    *geofence.Assembler
	hub          *websocket.Hub
}

func NewCheckinHandler(cs *store.CheckinStore, ps *store.PlaceStore, assembler *geofence.Assembler, hub *websocket.Hub) *CheckinHandler {
	return &CheckinHandler{checkinStore: cs, placeStore: ps, assembler: assembler, hub: hub}
}

func (h *CheckinHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type checkinRequest struct {
	CircleID string   `json:"family_circle_id"`
	MemberID string   `json:"member_id"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Notes    *string  `json:"notes"`
}

// Create records a check-in. The coordinate must come from a real device
// fix: requests missing lat or lon are rejected rather than defaulted, so a
// failed geolocation acquisition on the client can never masquerade as a
// position.
func (h *CheckinHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.CircleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}
	if req.MemberID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member_id is required"})
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required"})
		return
	}

	coord := geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
	if err := coord.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinate"})
		return
	}

	notes := req.Notes
	if notes == nil || strings.TrimSpace(*notes) == "" {
		n := defaultCheckinNote
		notes = &n
	}

	// Resolve the place label at write time. The stored label is advisory;
	// readers recompute against the current registry.
	var placeLabel *string
	places, err := h.placeStore.ListByCircle(req.CircleID)
	if err != nil {
		writeStoreError(w, err, "failed to load places")
		return
	}
	if match, err := geofence.Match(coord, places); err == nil && match.Matched() {
		placeLabel = &match.Place.Name
	}

	checkin, err := h.checkinStore.Append(req.CircleID, req.MemberID, coord, placeLabel, notes)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinate"})
			return
		}
		log.Printf("failed to record check-in: %v", err)
		writeStoreError(w, err, "failed to record check-in")
		return
	}

	h.broadcast(websocket.NewMessage(checkin.CircleID, "checkin", "created", checkin.ID, map[string]any{
		"member_id": checkin.MemberID,
	}))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        checkin.ID,
		"timestamp": checkin.Timestamp.Format(time.RFC3339),
	})
}

// LatestPositions serves one row per member with a check-in history, the
// freshest observation first.
func (h *CheckinHandler) LatestPositions(w http.ResponseWriter, r *http.Request) {
	circleID := circleIDQuery(r)
	if circleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	view, err := h.assembler.Assemble(circleID)
	if err != nil {
		writeStoreError(w, err, "failed to resolve positions")
		return
	}

	writeJSON(w, http.StatusOK, view.Positions)
}
