package main

import (
	"log"
	"os"

	"github.com/rawblock/seedfinder/internal/api"
	"github.com/rawblock/seedfinder/internal/store"
)

func main() {
	log.Println("Starting bedrock-pattern seed search engine...")

	// ─── Environment Variables ───────────────────────────────────
	// DATABASE_URL is optional: the engine runs fine without durable
	// job history, exactly as the teacher degrades without Bitcoin
	// RPC configured.
	// ────────────────────────────────────────────────────────────

	var dbConn *store.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := store.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, continuing without persisting job history. Error: %v", err)
		} else {
			dbConn = conn
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	} else {
		log.Println("DATABASE_URL not set — running without job persistence")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(dbConn, wsHub)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
