// Package main provides a read-only inspector for a PromptStash database.
//
// Usage:
//
//	DB_PATH=~/promptstash/promptstash.db go run ./cmd/dbinspect
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home dir: %v", err)
		}
		dbPath = filepath.Join(home, "promptstash", "promptstash.db")
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s\n\n", dbPath)

	counts := []struct {
		label string
		query string
	}{
		{"Users", "SELECT COUNT(*) FROM users"},
		{"Sessions", "SELECT COUNT(*) FROM sessions"},
		{"Prompts (live)", "SELECT COUNT(*) FROM prompts WHERE is_deleted = 0"},
		{"Prompts (deleted)", "SELECT COUNT(*) FROM prompts WHERE is_deleted = 1"},
		{"Tags (live)", "SELECT COUNT(*) FROM tags WHERE is_deleted = 0"},
		{"Tags (deleted)", "SELECT COUNT(*) FROM tags WHERE is_deleted = 1"},
		{"Tag associations", "SELECT COUNT(*) FROM prompt_tags"},
	}
	for _, c := range counts {
		var n int
		if err := db.QueryRow(c.query).Scan(&n); err != nil {
			log.Fatalf("Failed to count %s: %v", c.label, err)
		}
		fmt.Printf("%-20s %d\n", c.label+":", n)
	}

	fmt.Println()
	fmt.Println("Most recently updated prompts:")

	rows, err := db.Query(`
		SELECT id, COALESCE(title, ''), length(content), updated_at
		FROM prompts
		WHERE is_deleted = 0
		ORDER BY updated_at DESC, id DESC
		LIMIT 10`)
	if err != nil {
		log.Fatalf("Failed to list prompts: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title, updatedAt string
		var contentLen int
		if err := rows.Scan(&id, &title, &contentLen, &updatedAt); err != nil {
			log.Fatalf("Failed to scan prompt: %v", err)
		}
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  %s  %-40s  %5d bytes  %s\n", id, title, contentLen, updatedAt)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to iterate prompts: %v", err)
	}

	fmt.Println()
	fmt.Println("Tags by usage:")

	rows, err = db.Query(`
		SELECT t.name, COUNT(pt.prompt_id)
		FROM tags t
		LEFT JOIN prompt_tags pt ON pt.tag_id = t.id
		WHERE t.is_deleted = 0
		GROUP BY t.id
		ORDER BY COUNT(pt.prompt_id) DESC, t.name
		LIMIT 20`)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var uses int
		if err := rows.Scan(&name, &uses); err != nil {
			log.Fatalf("Failed to scan tag: %v", err)
		}
		fmt.Printf("  %-30s %d\n", name, uses)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to iterate tags: %v", err)
	}
}
