package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drawbridge-io/drawbridge/internal/api"
	"github.com/drawbridge-io/drawbridge/internal/auth"
	"github.com/drawbridge-io/drawbridge/internal/config"
	"github.com/drawbridge-io/drawbridge/internal/relay"
	"github.com/drawbridge-io/drawbridge/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("DRAWBRIDGE_CONFIG"), "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize event log: %v", err)
	}
	defer st.Close()

	var verifier auth.Verifier
	switch cfg.Auth.Mode {
	case config.AuthModeStatic:
		verifier = auth.Static(cfg.Auth.Tokens)
	default:
		verifier, err = auth.NewTokenStore(st.DB())
		if err != nil {
			log.Fatalf("Failed to initialize token store: %v", err)
		}
	}

	hub := relay.NewHub()
	go hub.Run()

	apiHandler := api.New(hub, st)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		relay.ServeWs(hub, st, verifier, w, r)
	})
	mux.HandleFunc("/health", apiHandler.HealthHandler)
	mux.HandleFunc("/api/stats", apiHandler.StatsHandler)
	mux.HandleFunc("/api/rooms", apiHandler.RoomsRouter)
	mux.HandleFunc("/api/rooms/", apiHandler.RoomsRouter)
	mux.HandleFunc("/chats/", apiHandler.ChatsHandler)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.WithCORS(mux),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Drawbridge server starting on %s", cfg.Addr)
	log.Printf("Event log: %s (auth mode: %s)", cfg.DBPath, cfg.Auth.Mode)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws?token={token}")
	log.Println("  - History:   GET /chats/{roomId}")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Rooms:     GET /api/rooms")
	log.Println("  - Room:      GET/DELETE /api/rooms/{id}")
	log.Println("  - Export:    GET /api/rooms/{id}/export.pdf")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ListenAndServe: ", err)
	}
}
