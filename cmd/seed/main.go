// seed creates a few login-ready users in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/authmail/internal/password"
	"github.com/joho/godotenv"
)

const seedPassword = "seed-password"

var users = []domain.User{
	{Name: "Seed One", Email: "seed1@test.local"},
	{Name: "Seed Two", Email: "seed2@test.local"},
	{Name: "Seed Three", Email: "seed3@test.local"},
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set (export it or add it to .env)")
	}

	pool, err := postgres.NewPool(ctx, dbURL, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	repo := postgres.NewUserRepository(pool)
	hasher := password.NewBcrypt(password.DefaultCost)

	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	// Re-runs reset the password of existing seed users instead of failing.
	var created, reset int
	for _, u := range users {
		u.PasswordHash = hash
		_, err := repo.Create(ctx, &u)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrEmailTaken):
			existing, err := repo.FindByEmail(ctx, u.Email)
			if err != nil {
				log.Fatalf("find %s: %v", u.Email, err)
			}
			if err := repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
				log.Fatalf("reset %s: %v", u.Email, err)
			}
			reset++
		default:
			log.Fatalf("create %s: %v", u.Email, err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users created: %d  (password reset on %d existing)\n", created, reset)
	fmt.Printf("  Password:      %s\n", seedPassword)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as a seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:5000/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", users[0].Email, seedPassword)
	fmt.Println("    # → {\"status\":true,\"authKey\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2: send a mail on their behalf:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:5000/sendMail \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"authKey\":\"eyJ...\",\"receiver_email\":\"%s\",\"subject\":\"Hi\",\"content\":\"Hello\"}'\n", users[1].Email)
	fmt.Println()
	fmt.Println("  With MAIL_PROVIDER=log the message shows up in the server log.")
}
