package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwhitfield/carecircle/internal/geofence"
	"github.com/mwhitfield/carecircle/internal/handler"
	"github.com/mwhitfield/carecircle/internal/middleware"
	"github.com/mwhitfield/carecircle/internal/snapshot"
	"github.com/mwhitfield/carecircle/internal/store"
	ws "github.com/mwhitfield/carecircle/internal/websocket"
)

type Server struct {
	db              *sql.DB
	hub             *ws.Hub
	circleH         *handler.CircleHandler
	memberH         *handler.MemberHandler
	placeH          *handler.PlaceHandler
	checkinH        *handler.CheckinHandler
	mapViewH        *handler.MapViewHandler
	alertH          *handler.AlertHandler
	snapshotH       *handler.SnapshotHandler
	rateLimiter     *middleware.RateLimiter
	snapshotManager *snapshot.Manager
	logger          *slog.Logger
}

func New(db *sql.DB, snapshotCfg snapshot.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	circleStore := store.NewCircleStore(db)
	memberStore := store.NewMemberStore(db)
	placeStore := store.NewPlaceStore(db)
	checkinStore := store.NewCheckinStore(db)
	alertStore := store.NewAlertStore(db)
	snapshotStore := store.NewSnapshotStore(db)

	resolver := geofence.NewResolver(checkinStore, placeStore, memberStore)
	assembler := geofence.NewAssembler(placeStore, resolver, alertStore)

	snapshotMgr := snapshot.NewManager(snapshotCfg, db, snapshotStore, logger.With("component", "snapshot"))

	return &Server{
		db:              db,
		hub:             hub,
		circleH:         handler.NewCircleHandler(circleStore),
		memberH:         handler.NewMemberHandler(memberStore, hub),
		placeH:          handler.NewPlaceHandler(placeStore, hub),
		checkinH:        handler.NewCheckinHandler(checkinStore, placeStore, assembler, hub),
		mapViewH:        handler.NewMapViewHandler(assembler),
		alertH:          handler.NewAlertHandler(alertStore, hub),
		snapshotH:       handler.NewSnapshotHandler(snapshotMgr, snapshotStore),
		rateLimiter:     middleware.NewRateLimiter(),
		snapshotManager: snapshotMgr,
		logger:          logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// SnapshotManager returns the snapshot manager for lifecycle control.
func (s *Server) SnapshotManager() *snapshot.Manager {
	return s.snapshotManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Family circles
	mux.HandleFunc("POST /circles", s.circleH.Create)
	mux.HandleFunc("GET /circles/{id}", s.circleH.Get)

	// Members
	mux.HandleFunc("GET /members", s.memberH.List)
	mux.HandleFunc("POST /members", s.memberH.Create)
	mux.HandleFunc("PUT /members/{id}", s.memberH.Update)
	mux.HandleFunc("DELETE /members/{id}", s.memberH.Delete)

	// Named places
	mux.HandleFunc("GET /places", s.placeH.List)
	mux.HandleFunc("POST /places", s.placeH.Create)
	mux.HandleFunc("PUT /places/{id}", s.placeH.Update)
	mux.HandleFunc("DELETE /places/{id}", s.placeH.Delete)

	// Check-ins and positions
	mux.HandleFunc("POST /checkins", s.rateLimitedHandler(s.checkinH.Create))
	mux.HandleFunc("GET /positions/latest", s.checkinH.LatestPositions)
	mux.HandleFunc("GET /map-view", s.mapViewH.Get)

	// Alerts
	mux.HandleFunc("POST /alerts", s.alertH.Set)
	mux.HandleFunc("DELETE /alerts", s.alertH.Clear)
	mux.HandleFunc("GET /alerts", s.alertH.Active)

	// Snapshots
	mux.HandleFunc("POST /snapshots/run", s.snapshotH.RunNow)
	mux.HandleFunc("GET /snapshots", s.snapshotH.List)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
