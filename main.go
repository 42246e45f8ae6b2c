package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"resume-ranker/internal/api"
	"resume-ranker/internal/config"
	"resume-ranker/internal/email"
	"resume-ranker/internal/extract"
	"resume-ranker/internal/history"
	"resume-ranker/internal/llm"
	"resume-ranker/internal/pipeline"
	"resume-ranker/internal/sink"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	source, err := email.NewGmailSource(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath)
	if err != nil {
		log.Fatalf("failed to connect to Gmail: %v", err)
	}

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create LLM client: %v", err)
	}

	var db *sink.Postgres
	if cfg.DatabaseURL != "" {
		db, err = sink.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
	} else {
		log.Println("DATABASE_URL not set, database sink disabled")
	}

	pipe := pipeline.New(source, extract.New(), llm.NewExtractor(generator), cfg.OutputDir, db)
	server := api.NewServer(pipe, history.New(history.DefaultLimit))

	fmt.Printf("Starting Resume Ranker on port %s...\n", cfg.Port)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /process - Run resume ranking for a job ID\n")
	fmt.Printf("  GET /recent-jobs - List recently processed job IDs\n")

	if err := http.ListenAndServe(":"+cfg.Port, server.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.LLMModel)
	default:
		return llm.NewVertexAIClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, cfg.LLMModel)
	}
}
