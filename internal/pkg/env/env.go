package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var Env map[string]string

// GetEnv reads key from the loaded .env map first, then the process
// environment, then falls back to def.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	// Process environment covers Docker and test runs without a .env file
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses key as an integer. Unset, empty, or malformed values fall
// back to def so tuning knobs like WEBHOOK_WORKERS never break startup.
func GetEnvInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func SetupEnvFile() {
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/threls-billing to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	panic("No .env file found in any of the expected locations")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
