// Command seed-user creates an initial user account directly in the
// database, bypassing the HTTP API. Intended for bootstrapping a fresh
// deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/repository"
)

type output struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "User email (required)")
		fullName    = flag.String("name", "", "User full name (required)")
		password    = flag.String("password", "", "User password (required)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || *fullName == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-email, -name and -password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to database: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	user := &model.User{
		Email:          *email,
		FullName:       *fullName,
		HashedPassword: hash,
		IsActive:       true,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "create user: %v\n", err)
		os.Exit(1)
	}

	if *format == "json" {
		out := output{
			UserID:   user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			IsActive: user.IsActive,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
}
