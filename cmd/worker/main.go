package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rollcall/internal/config"
	"rollcall/internal/devicelog"
	"rollcall/internal/store"
)

// Worker drains queued device sightings and applies them to the store.
// Sightings are analytics bookkeeping; a failed apply is logged and
// dropped, never retried against the scan that produced it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	var q devicelog.Queue
	if cfg.QueueBackend == "memory" {
		q = devicelog.NewInMemory(64)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		q = devicelog.NewRedisQueue(redisClient.Client, "rollcall:sightings")
	}

	recorder := devicelog.NewRecorder(db.Client)

	sightings, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for sightings...")
	for s := range sightings {
		if s.StudentID == "" || s.DeviceID == "" {
			continue
		}
		if err := recorder.Apply(ctx, s); err != nil {
			log.Printf("sighting apply failed for %s: %v", s.StudentID, err)
			continue
		}
		log.Printf("recorded device %s for student %s", s.DeviceID, s.StudentID)
	}

	log.Println("worker stopped")
}
