// Command localize runs the translation sync module standalone: it loads a
// YAML configuration, seeds an in-memory document store with sample content
// when no database is wired, and either serves the HTTP API or executes a
// bulk sync writing NDJSON events to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	localize "github.com/goliatone/go-localize"
	"github.com/goliatone/go-localize/internal/bulk"
	"github.com/goliatone/go-localize/internal/di"
	"github.com/goliatone/go-localize/internal/store"
	"github.com/goliatone/go-localize/internal/translator"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	serveAddr := flag.String("serve", "", "serve the HTTP API on this address instead of running a bulk sync")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	docs := store.NewMemoryDocumentStore()
	opts := []di.Option{localize.WithDocumentStore(docs)}
	if cfg.Provider.Name == "" || cfg.Provider.Name == "static" {
		opts = append(opts, localize.WithTranslator(&translator.Static{Prefix: "[demo] "}))
	}

	module, err := localize.New(cfg, opts...)
	if err != nil {
		log.Fatalf("build module: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := module.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	seedSampleDocuments(docs, cfg)

	if *serveAddr != "" {
		serve(ctx, module, *serveAddr)
		return
	}

	runBulk(ctx, module, cfg)
}

func loadConfig(path string) (localize.Config, error) {
	cfg := localize.DefaultConfig()
	if path == "" {
		cfg.Locales = []string{"nl", "fr"}
		cfg.Provider.Name = "static"
		cfg.Collections = []localize.CollectionConfig{
			{
				Slug: "posts",
				Fields: []localize.Field{
					{Name: "title", Type: localize.FieldText, Localized: true},
					{Name: "summary", Type: localize.FieldTextarea, Localized: true},
				},
			},
		}
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func seedSampleDocuments(docs *store.MemoryDocumentStore, cfg localize.Config) {
	for _, collection := range cfg.Collections {
		docs.Seed(collection.Slug, "sample-1", cfg.DefaultLocale, map[string]any{
			"title":   "Getting started",
			"summary": "A short walkthrough of the localization workflow.",
		})
	}
}

func serve(ctx context.Context, module *localize.Module, addr string) {
	mux := http.NewServeMux()
	if err := module.RegisterRoutes(mux); err != nil {
		log.Fatalf("register routes: %v", err)
	}

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}

func runBulk(ctx context.Context, module *localize.Module, cfg localize.Config) {
	runner := module.Bulk()
	if runner == nil {
		log.Fatal("bulk feature is disabled in configuration")
	}

	collections := make([]string, 0, len(cfg.Collections))
	for _, collection := range cfg.Collections {
		collections = append(collections, collection.Slug)
	}

	encoder := json.NewEncoder(os.Stdout)
	if err := runner.Run(ctx, collections, func(event bulk.Event) error {
		return encoder.Encode(event)
	}); err != nil {
		log.Fatalf("bulk sync: %v", err)
	}
}
