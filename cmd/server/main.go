package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Joseph-eiei/AirlineApp/internal/devserver"
)

const (
	DefaultPort   = "54321"
	DefaultAPIKey = "dev-anon-key"
)

func main() {
	// Optional .env for dev convenience; absence is fine.
	_ = godotenv.Load()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = DefaultPort
	}
	apiKey := os.Getenv("SUPABASE_ANON_KEY")
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}

	var store devserver.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pg, err := devserver.NewPGStore(ctx, dsn)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize Postgres store: %v", err)
		}
		defer pg.Close()
		store = pg
		log.Printf("Using Postgres store")
	} else {
		mem, err := devserver.NewMemStore()
		if err != nil {
			log.Fatalf("Failed to initialize in-memory store: %v", err)
		}
		store = mem
		log.Printf("Using in-memory store seeded with fixture data")
	}

	server := devserver.NewServer(store, apiKey)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Dev backend listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
