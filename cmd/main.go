// getready-ats-service
//
// Applicant tracking backend. Exposes a REST API used by the Gateway to
// implement:
//   - job posting management (create, edit, toggle, deadline sweep)
//   - resume submission with keyword-overlap screening scores
//   - application lifecycle (status updates, interview scheduling)
//   - user/recruiter administration
//
// Publishes EVENT_* messages to Redis for Gateway SSE forward.
// Consumes rescreen_queue from RabbitMQ to re-score applications after a
// posting's required skills change.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"getready/ats-service/internal/config"
	"getready/ats-service/internal/db"
	"getready/ats-service/internal/queue"
	"getready/ats-service/internal/recruit"
	"getready/ats-service/internal/sweeper"
	"getready/ats-service/internal/upload"
	"getready/ats-service/internal/users"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ats-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[ats-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ats-service] PostgreSQL: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("[ats-service] Migrate: %v", err)
	}
	log.Println("[ats-service] PostgreSQL connected, schema ready ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[ats-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[ats-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[ats-service] Redis connected ✓")

	// ── RabbitMQ ─────────────────────────────────────────────────────────────
	log.Println("[ats-service] Connecting to RabbitMQ…")
	rmq, err := queue.New(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("[ats-service] RabbitMQ: %v", err)
	}
	defer rmq.Close()
	log.Println("[ats-service] RabbitMQ connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	store := upload.NewStore(pool, cfg.UploadDir)
	recruitSvc := recruit.NewService(pool, rdb, store, rmq)
	userSvc := users.NewService(pool)

	if err := userSvc.EnsureAdmin(ctx, cfg.AdminPassword); err != nil {
		log.Fatalf("[ats-service] Admin seed: %v", err)
	}

	// ── Re-screen worker ─────────────────────────────────────────────────────
	err = rmq.ConsumeRescreens(func(job queue.RescreenJob) {
		log.Printf("[worker] Re-screening application %d (job %d): %s",
			job.ApplicationID, job.JobID, job.Reason)
		if err := recruitSvc.RescoreApplication(ctx, job.ApplicationID); err != nil {
			log.Printf("[worker] Re-screen failed for application %d: %v", job.ApplicationID, err)
		}
	})
	if err != nil {
		log.Fatalf("[ats-service] Consumer: %v", err)
	}

	// ── Deadline sweeper ─────────────────────────────────────────────────────
	sw := sweeper.New(pool, cfg.SweepIntervalHours)
	if err := sw.Start(ctx); err != nil {
		log.Fatalf("[ats-service] Sweeper: %v", err)
	}
	defer sw.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	recruit.NewHandler(recruitSvc).RegisterRoutes(mux)
	users.NewHandler(userSvc).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[ats-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[ats-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[ats-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ats-service] Shutdown error: %v", err)
	}
	log.Println("[ats-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "ats-service",
		"version": version,
	})
}
