package main

import (
	"fmt"
	"log"
	"os"

	"github.com/zfogg/murmur/internal/config"
	"github.com/zfogg/murmur/internal/database"
	"github.com/zfogg/murmur/internal/seed"
)

func main() {
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var run func(*seed.Seeder) error
	switch command {
	case "dev":
		log.Println("🌱 Seeding development database...")
		run = (*seed.Seeder).SeedDev
	case "test":
		log.Println("🧪 Seeding test database...")
		run = (*seed.Seeder).SeedTest
	case "clean":
		log.Println("🧹 Cleaning seed data...")
		run = (*seed.Seeder).Clean
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed a few fixed accounts for end-to-end tests")
		fmt.Println("  clean - Remove all seed data (use with caution)")
		os.Exit(1)
	}

	if err := database.Initialize(config.DatabaseURL(), false); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database connected")

	if err := run(seed.NewSeeder(database.DB)); err != nil {
		log.Fatalf("❌ %s failed: %v", command, err)
	}

	log.Printf("✅ Seed %s finished (password for seeded accounts: %s)", command, seed.DefaultPassword)
}
