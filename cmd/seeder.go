package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/ad-management/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
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

		if clearData {
			for _, table := range []string{"ad_attributes", "ad_graphics", "ads", "sessions", "users"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUsers := []struct {
			Email string
			Name  string
			Role  auth.Role
		}{
			{"admin@mail.com", "Ada Admin", auth.RoleAdmin},
			{"advertiser@mail.com", "Andi Advertiser", auth.RoleAdvertiser},
			{"moderator@mail.com", "Mona Moderator", auth.RoleModerator},
			{"analytics@mail.com", "Anna Analytics", auth.RoleAnalytics},
			{"support@mail.com", "Sari Support", auth.RoleSupport},
		}

		for _, u := range seedUsers {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM users WHERE email = $1", u.Email).Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Email)
				continue
			}

			_, err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, created_at, updated_at) VALUES ($1, $2, $3, $4, now(), now())",
				u.Email, u.Name, string(hash), string(u.Role))
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", u.Email, u.Role)
		}

		var advertiserID int64
		if err := db.QueryRow("SELECT id FROM users WHERE email = $1", "advertiser@mail.com").Scan(&advertiserID); err != nil {
			log.Fatalf("failed to lookup advertiser id: %v", err)
		}

		sampleAds := []struct {
			Title       string
			Description string
		}{
			{"Summer Sale", "Everything off season up to 70 percent"},
			{"New Arrivals", "Fresh collection for the new quarter"},
		}

		for _, a := range sampleAds {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM ads WHERE title = $1 AND user_id = $2", a.Title, advertiserID).Scan(&exists); err == nil {
				continue
			}

			var adID int64
			err := db.QueryRow(
				"INSERT INTO ads (user_id, title, description, created_at, updated_at) VALUES ($1, $2, $3, now(), now()) RETURNING id",
				advertiserID, a.Title, a.Description).Scan(&adID)
			if err != nil {
				log.Fatalf("failed to insert ad %s: %v", a.Title, err)
			}

			_, err = db.Exec(
				"INSERT INTO ad_attributes (ad_id, key, value, created_at, updated_at) VALUES ($1, $2, $3, now(), now())",
				adID, "category", "retail")
			if err != nil {
				log.Fatalf("failed to insert attribute for ad %s: %v", a.Title, err)
			}
			fmt.Printf("Seeded ad: %s\n", a.Title)
		}

		fmt.Println("Seeding complete")
	},
}
