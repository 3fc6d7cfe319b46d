package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/joelkehle/webhook-inbox/internal/config"
	"github.com/joelkehle/webhook-inbox/internal/httpapi"
	"github.com/joelkehle/webhook-inbox/internal/inbox"
)

func main() {
	dbFlag := flag.String("db", "", "database URL or SQLite file path (overrides DATABASE_URL)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	databaseURL := cfg.DatabaseURL
	if *dbFlag != "" {
		databaseURL = *dbFlag
	}

	var store inbox.Store
	if databaseURL == "memory" {
		store = inbox.NewMemStore()
		log.Printf("using in-memory store")
	} else {
		ss, err := inbox.OpenSQLStore(databaseURL)
		if err != nil {
			log.Fatalf("failed to open store (%s): %v", databaseURL, err)
		}
		store = ss
		log.Printf("using sql store at %s", databaseURL)
	}
	defer store.Close()

	if cfg.WebhookSecret == "" {
		log.Printf("WEBHOOK_SECRET not set; webhook ingestion unavailable until configured")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	metrics := inbox.NewMetrics()
	ingestor := inbox.NewIngestor(inbox.IngestorConfig{Secret: cfg.WebhookSecret}, store, metrics)
	queries := inbox.NewQueryService(store)

	h := httpapi.NewServer(ingestor, queries, store, metrics, cfg.WebhookSecret != "", logger)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("webhook-inbox listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal(err)
	}
}
