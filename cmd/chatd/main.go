package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/api"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/usecase"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/conf"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/data"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/service"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/ws"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.Transcript.DBPath, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Transcript.Close()

	fmt.Printf("[Chatd] Transcript DB: %s\n", cfg.Transcript.DBPath)
	if cfg.OpenAI.APIKey != "" {
		fmt.Println("[Chatd] OpenAI responder enabled")
	}

	// Initialize service layer
	manager := service.NewSessionManager(
		cfg.ToSessionConfig(),
		repos.Responder,
		repos.Transcript,
		data.NewScheduler,
	)

	// Event fan-out to WebSocket subscribers
	hub := ws.NewHub()
	manager.SetEventCallback(func(ev usecase.Event) {
		if cfg.Debug {
			fmt.Printf("[Chatd] Event %s for session %s\n", ev.Type, ev.SessionID)
		}
		hub.Broadcast(ev)
	})

	// Initialize HTTP API server
	apiServer := api.NewServer(manager, repos.Transcript, hub, cfg.Counterpart.Name, cfg.Server.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		manager.CloseAll(context.Background())
		apiServer.Stop()
	}()

	fmt.Printf("Starting Solofoodies chat prototype (counterpart: %s)...\n", cfg.Counterpart.Name)
	if err := apiServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
