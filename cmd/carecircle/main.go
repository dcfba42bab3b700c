package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mwhitfield/carecircle/internal/database"
	"github.com/mwhitfield/carecircle/internal/logging"
	"github.com/mwhitfield/carecircle/internal/server"
	"github.com/mwhitfield/carecircle/internal/snapshot"
)

func main() {
	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("CARECIRCLE_LOG_LEVEL"))

	port := os.Getenv("CARECIRCLE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CARECIRCLE_DB_PATH")
	if dbPath == "" {
		dbPath = "carecircle.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	snapshotCfg := snapshot.Config{
		S3: snapshot.S3Config{
			Endpoint:  os.Getenv("CARECIRCLE_S3_ENDPOINT"),
			Bucket:    os.Getenv("CARECIRCLE_S3_BUCKET"),
			Region:    os.Getenv("CARECIRCLE_S3_REGION"),
			AccessKey: os.Getenv("CARECIRCLE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CARECIRCLE_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("CARECIRCLE_SNAPSHOT_PASSPHRASE"),
		ScheduleHour:  envInt("CARECIRCLE_SNAPSHOT_HOUR", 3),
		RetentionDays: envInt("CARECIRCLE_SNAPSHOT_RETENTION_DAYS", 30),
	}

	srv := server.New(db, snapshotCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.SnapshotManager().Start(ctx)
	defer srv.SnapshotManager().Stop()

	// Expired rate-limit windows accumulate without periodic cleanup.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("CareCircle running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
