package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the data layer needs. It is built once
// in main and injected into constructors; nothing mutates it afterwards.
type Config struct {
	// SupabaseURL and SupabaseKey configure the remote backend. Both must
	// be non-empty for remote mode; otherwise the app runs on the local
	// fallback store.
	SupabaseURL string
	SupabaseKey string

	// DataDir is where the local fallback store keeps its files.
	DataDir string
}

// Load reads configuration from the environment, optionally preloaded from
// the given env files (missing files are ignored, matching godotenv's use
// as a dev convenience rather than a requirement).
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	cfg := Config{
		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: firstEnv("SUPABASE_ANON_KEY", "SUPABASE_SERVICE_ROLE_KEY"),
		DataDir:     getEnv("AIRLINE_DATA_DIR", defaultDataDir()),
	}
	return cfg, nil
}

// IsConfigured reports whether a remote backend is configured. Both the URL
// and the access key must be present.
func (c Config) IsConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".airlineapp"
	}
	return filepath.Join(home, ".airlineapp")
}
