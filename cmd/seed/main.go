// Package main provides a tool to seed a PromptStash database with sample
// data for development: one account plus a spread of tagged prompts to
// exercise search and pagination.
//
// Usage:
//
//	DB_PATH=~/promptstash/promptstash.db go run ./cmd/seed
//	go run ./cmd/seed --count 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/auth"
	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/id"
	"github.com/promptstashapp/promptstash-server/internal/service"
	"github.com/promptstashapp/promptstash-server/internal/store/sqlite"
)

var (
	count    = flag.Int("count", 50, "Number of prompts to create")
	email    = flag.String("email", "dev@example.com", "Seed account email")
	password = flag.String("password", "devpassword", "Seed account password")
)

var tagPool = []string{
	"go", "python", "review", "debugging", "writing", "summarize",
	"refactor", "tests", "sql", "docs",
}

var titleTemplates = []string{
	"Code review for %s",
	"Explain %s step by step",
	"Refactoring plan: %s",
	"Debug session notes on %s",
	"Summarize a document about %s",
	"", // untitled prompts are valid
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home dir: %v", err)
		}
		dbPath = filepath.Join(home, "promptstash", "promptstash.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	owner, err := ensureAccount(ctx, st)
	if err != nil {
		log.Fatalf("Failed to ensure seed account: %v", err)
	}
	fmt.Printf("Seeding as %s (%s)\n", owner.Email, owner.ID)

	prompts := service.NewPromptService(st, false, nil)

	for i := 0; i < *count; i++ {
		topic := tagPool[rand.Intn(len(tagPool))]
		title := titleTemplates[rand.Intn(len(titleTemplates))]
		if title != "" {
			title = fmt.Sprintf(title, topic)
		}

		tags := []string{topic}
		if rand.Intn(2) == 0 {
			tags = append(tags, tagPool[rand.Intn(len(tagPool))])
		}

		_, err := prompts.Create(ctx, owner, service.CreateRequest{
			Title: title,
			Content: fmt.Sprintf(
				"You are an expert on %s.\n\nTask %d: respond concisely and show your reasoning.",
				topic, i+1,
			),
			Tags: tags,
		})
		if err != nil {
			log.Fatalf("Failed to create prompt %d: %v", i+1, err)
		}
	}

	fmt.Printf("Created %d prompts.\n", *count)
	fmt.Printf("Login with %s / %s\n", *email, *password)
}

// ensureAccount returns the seed user, creating it (as root when the
// database is empty) on first run.
func ensureAccount(ctx context.Context, st *sqlite.Store) (*domain.User, error) {
	if user, err := st.GetUserByEmail(ctx, *email); err == nil {
		return user, nil
	}

	total, err := st.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Email:        *email,
		PasswordHash: hash,
		IsRoot:       total == 0,
		DisplayName:  "Dev User",
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}

	if err := st.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
