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

	"github.com/Team-Elite-2025/midas/server"
)

func main() {
	addr := flag.String("addr", "", "Listen address (overrides config)")
	configPath := flag.String("config", "", "Path to YAML config file")
	verbose := flag.Bool("verbose", false, "Log every trace record")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *verbose {
		cfg.Verbose = true
	}

	log.Printf("Starting midas goalie server on %s (feed=%s, tick=%dHz)", cfg.Addr, cfg.Feed, cfg.TickHz)

	// Create the decision server and start its control loop
	goalieServer := server.NewServer(cfg)
	go goalieServer.Run()

	log.Printf("Run %s", goalieServer.RunID())

	// Start HTTP server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.NewRouter(goalieServer),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal from OS
	sig := <-sigChan
	log.Printf("Shutting down server (signal: %v)...", sig)

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop the control loop and background sinks
	goalieServer.Shutdown()

	// Shutdown the HTTP server gracefully
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
