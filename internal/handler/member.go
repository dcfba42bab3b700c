package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/mwhitfield/carecircle/internal/model"
	"github.com/mwhitfield/carecircle/internal/store"
	"github.com/mwhitfield/carecircle/internal/websocket"
)

type MemberHandler struct {
	memberStore *store.MemberStore
	hub         *websocket.Hub
}

func NewMemberHandler(ms *store.MemberStore, hub *websocket.Hub) *MemberHandler {
	return &MemberHandler{memberStore: ms, hub: hub}
}

func (h *MemberHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	circleID := circleIDQuery(r)
	if circleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	members, err := h.memberStore.ListByCircle(circleID)
	if err != nil {
		writeStoreError(w, err, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CircleID    string `json:"family_circle_id"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display_name is required"})
		return
	}
	if req.CircleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family_circle_id is required"})
		return
	}

	member, err := h.memberStore.Create(req.CircleID, req.DisplayName)
	if err != nil {
		log.Printf("failed to create member: %v", err)
		writeStoreError(w, err, "failed to create member")
		return
	}

	h.broadcast(websocket.NewMessage(member.CircleID, "member", "created", 0, map[string]any{"member_id": member.ID}))
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.memberStore.GetByID(id)
	if err != nil {
		writeStoreError(w, err, "failed to get member")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display_name is required"})
		return
	}

	member, err := h.memberStore.Update(id, req.DisplayName)
	if err != nil {
		writeStoreError(w, err, "failed to update member")
		return
	}

	h.broadcast(websocket.NewMessage(member.CircleID, "member", "updated", 0, map[string]any{"member_id": member.ID}))
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.memberStore.GetByID(id)
	if err != nil {
		writeStoreError(w, err, "failed to get member")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	// Check-in history survives the member row; positions for a removed
	// member simply stop appearing once the roster no longer lists them.
	if err := h.memberStore.Delete(id); err != nil {
		writeStoreError(w, err, "failed to delete member")
		return
	}

	h.broadcast(websocket.NewMessage(existing.CircleID, "member", "deleted", 0, map[string]any{"member_id": existing.ID}))
	w.WriteHeader(http.StatusNoContent)
}
