package handler

import (
	"log"
	"net/http"

	"github.com/mwhitfield/carecircle/internal/snapshot"
	"github.com/mwhitfield/carecircle/internal/store"
)

type SnapshotHandler struct {
	manager       *snapshot.Manager
	snapshotStore *store.SnapshotStore
}

func NewSnapshotHandler(manager *snapshot.Manager, ss *store.SnapshotStore) *SnapshotHandler {
	return &SnapshotHandler{manager: manager, snapshotStore: ss}
}

// RunNow triggers an immediate encrypted snapshot upload.
func (h *SnapshotHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "snapshots are not configured"})
		return
	}

	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		log.Printf("snapshot run failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]int64{"id": id})
}

// List returns completed snapshots, newest first.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.snapshotStore.ListCompleted()
	if err != nil {
		writeStoreError(w, err, "failed to list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}
