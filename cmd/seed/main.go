package main

import (
	"log"

	"talenthub-backend/shared/config"
	"talenthub-backend/shared/database"
)

// Standalone seeder: creates roles, the default plan catalog and the super
// admin account. Safe to run repeatedly.
func main() {
	log.Println("🌱 Running database seeder...")

	config.LoadConfig()

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.SeedDatabase(database.GetDB()); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Seeding finished")
}
