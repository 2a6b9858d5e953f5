package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kipped/internal/app"
	"kipped/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create application: %v", err)
	}

	if err := application.Start(); err != nil {
		log.Fatalf("❌ Failed to start application: %v", err)
	}
	defer application.Stop()

	waitForShutdown()
	log.Println("👋 Shutting down")
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}
