package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"talenthub-backend/shared/config"
	"talenthub-backend/shared/database"
)

// Drops every table owned by this service and recreates the schema with seed
// data. Destructive; asks for confirmation unless --force is passed.
func main() {
	force := len(os.Args) > 1 && os.Args[1] == "--force"

	config.LoadConfig()
	cfg := config.GetConfig()

	if !force {
		fmt.Printf("⚠️  This will DROP ALL TABLES in database %q on %s. Type 'yes' to continue: ", cfg.DBName, cfg.DBHost)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			log.Println("Aborted")
			return
		}
	}

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	db := database.GetDB()

	// Drop order is the reverse of the foreign key dependencies
	tables := []string{
		"user_roles",
		"refresh_tokens",
		"normal_user_quotas",
		"upgrade_requests",
		"organizations",
		"users",
		"subscription_plans",
		"roles",
	}

	log.Println("🔄 Dropping tables...")
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Fatalf("❌ Failed to drop table %s: %v", table, err)
		}
	}
	log.Println("✅ All tables dropped")

	if err := database.MigrateModels(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	if err := database.SeedDatabase(db); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Database reset complete")
}
