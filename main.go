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

	"bubble-defense/internal/game"
	"bubble-defense/internal/progression"
	"bubble-defense/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "bubble-defense.db", "SQLite database path (empty disables persistence)")
	configPath := flag.String("config", "", "Gameplay tuning YAML file")
	staticDir := flag.String("static", "", "Path to client directory (empty serves no client)")
	flag.Parse()

	cfg, err := game.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var store *progression.Store
	if *dbPath != "" {
		store, err = progression.OpenStore(*dbPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer store.Close()
	} else {
		log.Printf("no database, progression disabled")
	}

	hub := server.NewHub(cfg, store)
	hubStop := make(chan struct{})
	go hub.Run(hubStop)

	mux := server.SetupRoutes(hub, *staticDir)
	srv := &http.Server{Addr: *addr, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s (tick %d Hz, coin rate %.2f, combo reset %s)",
			*addr, cfg.TickRate, cfg.CoinRate, cfg.ComboPolicy)
		if *staticDir != "" {
			log.Printf("Serving client files from %s", *staticDir)
		}
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	close(hubStop)
	hub.Shutdown()
}
