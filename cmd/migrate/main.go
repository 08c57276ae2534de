package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/zfogg/murmur/internal/config"
	"github.com/zfogg/murmur/internal/database"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/search"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	case "reindex":
		runReindex()
	default:
		fmt.Println("Usage: migrate [up|reindex]")
		fmt.Println("  up      - Create or update all tables and indexes")
		fmt.Println("  reindex - Rebuild the Elasticsearch indices from the database")
		os.Exit(1)
	}
}

func connect() {
	log.Println("🔄 Connecting to database...")
	if err := database.Initialize(config.DatabaseURL(), false); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connected")
}

func runMigrationsUp() {
	connect()
	defer database.Close()

	log.Println("📈 Running migrations...")
	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ All migrations completed successfully!")
}

func runReindex() {
	url := os.Getenv("ELASTICSEARCH_URL")
	if url == "" {
		log.Fatal("❌ ELASTICSEARCH_URL is required for reindex")
	}

	connect()
	defer database.Close()

	client, err := search.NewClient(url)
	if err != nil {
		log.Fatalf("❌ Failed to create search client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := client.InitializeIndices(ctx); err != nil {
		log.Fatalf("❌ Failed to create indices: %v", err)
	}

	reindexer := search.NewReindexer(client,
		repository.NewPostRepository(database.DB),
		repository.NewProfileRepository(database.DB))

	log.Println("🔎 Reindexing posts and profiles...")
	if err := reindexer.Run(ctx); err != nil {
		log.Fatalf("❌ Reindex failed: %v", err)
	}

	log.Println("✅ Reindex complete")
}
