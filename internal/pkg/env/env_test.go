package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrecedence(t *testing.T) {
	old := Env
	defer func() { Env = old }()

	Env = map[string]string{"APP_HOST": "from-file"}
	t.Setenv("APP_HOST", "from-os")
	t.Setenv("APP_PORT", "9000")

	// .env wins over the process environment, which wins over the default
	assert.Equal(t, "from-file", GetEnv("APP_HOST", "fallback"))
	assert.Equal(t, "9000", GetEnv("APP_PORT", "4000"))
	assert.Equal(t, "fallback", GetEnv("UNSET_KEY", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	old := Env
	defer func() { Env = old }()

	Env = map[string]string{
		"WEBHOOK_WORKERS": "8",
		"BAD_NUMBER":      "eight",
	}

	assert.Equal(t, 8, GetEnvInt("WEBHOOK_WORKERS", 3))
	assert.Equal(t, 3, GetEnvInt("BAD_NUMBER", 3))
	assert.Equal(t, 3, GetEnvInt("UNSET_KEY", 3))
}
