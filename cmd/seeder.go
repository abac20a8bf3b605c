package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a bootstrap admin user",
	Long:  `Create the initial admin account. Email and password come from ADMIN_EMAIL and ADMIN_PASSWORD, with development defaults.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		adminEmail := os.Getenv("ADMIN_EMAIL")
		if adminEmail == "" {
			adminEmail = "admin@coloradoleasecheck.com"
		}
		adminPassword := os.Getenv("ADMIN_PASSWORD")
		if adminPassword == "" {
			adminPassword = "change-me-on-first-login"
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		var exists int
		row := db.QueryRow("SELECT 1 FROM admin_users WHERE email = $1", adminEmail)
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists:", adminEmail)
			return
		}

		_, err = db.Exec(
			"INSERT INTO admin_users (email, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, true, now(), now())",
			adminEmail, string(hash),
		)
		if err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}

		fmt.Println("Seeded admin user:", adminEmail)
	},
}
