// Package main provides the PromptStash terminal client.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/promptstashapp/promptstash-server/internal/tui"
	"github.com/promptstashapp/promptstash-server/pkg/client"
)

func main() {
	serverURL := flag.String("server", "", "Server URL (default: $PROMPTSTASH_SERVER or http://localhost:8080)")
	flag.Parse()

	baseURL := *serverURL
	if baseURL == "" {
		baseURL = os.Getenv("PROMPTSTASH_SERVER")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c := client.New(baseURL)

	tokenPath, err := defaultTokenPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve config dir: %v\n", err)
		os.Exit(1)
	}
	if token := loadToken(tokenPath); token != "" {
		c.SetToken(token)
	}

	err = tui.Run(tui.Options{
		Client: c,
		OnToken: func(token string) {
			if err := saveToken(tokenPath, token); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save token: %v\n", err)
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultTokenPath() (string, error) {
	if env := os.Getenv("PROMPTSTASH_TOKEN_FILE"); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "promptstash", "token"), nil
}

func loadToken(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func saveToken(path string, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}
