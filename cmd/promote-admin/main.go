package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/zfogg/murmur/internal/config"
	"github.com/zfogg/murmur/internal/database"
	"github.com/zfogg/murmur/internal/models"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "Email address of user to promote to admin")
	revoke := flag.Bool("revoke", false, "Revoke admin privileges instead of granting")
	flag.Parse()

	if *email == "" {
		fmt.Println("Usage: go run cmd/promote-admin/main.go -email=user@example.com")
		fmt.Println("       go run cmd/promote-admin/main.go -email=user@example.com -revoke")
		return
	}

	if err := database.Initialize(config.DatabaseURL(), false); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer database.Close()

	db := database.DB

	var profile models.Profile
	if err := db.Where("email = ?", *email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("❌ User not found: %s\n", *email)
			return
		}
		log.Fatalf("❌ Failed to load user: %v", err)
	}

	grant := !*revoke
	if profile.IsAdmin == grant {
		if grant {
			fmt.Printf("⚠️  User %s is already an admin\n", profile.Username)
		} else {
			fmt.Printf("⚠️  User %s is not an admin\n", profile.Username)
		}
		return
	}

	// UpdateColumn leaves updated_at alone so the change does not count as activity
	if err := db.Model(&profile).UpdateColumn("is_admin", grant).Error; err != nil {
		fmt.Printf("❌ Failed to update admin privileges: %v\n", err)
		return
	}

	if grant {
		fmt.Printf("✓ Admin privileges granted to %s (%s)\n", profile.Username, profile.Email)
		fmt.Printf("  User ID: %s\n", profile.ID)
	} else {
		fmt.Printf("✓ Admin privileges revoked for %s (%s)\n", profile.Username, profile.Email)
	}
}
