// Command api serves persisted snapshot runs over a read-only HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apisnapshot "github.com/tanishhky/chronofund-fundamental-engine/pkg/api/snapshot"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/store"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogJSON)

	if err := store.InitDB(context.Background(), cfg.DatabaseURL); err != nil {
		fmt.Printf("[ERROR] Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	handler := apisnapshot.NewHandler()
	http.HandleFunc("/api/health", handler.HandleHealth)
	http.HandleFunc("/api/runs", handler.HandleRuns)
	http.HandleFunc("/api/runs/", handler.HandleRunCoverage)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Snapshot API listening on :%s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[ERROR] Server failed: %v\n", err)
		os.Exit(1)
	}
}
