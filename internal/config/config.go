// Package config provides Viper-backed configuration helpers for the
// curator CLI.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/townscout/curator/pkg/errors"
)

// Environment variable names for research collaborator credentials.
const (
	AnthropicKeyEnv = "ANTHROPIC_API_KEY"
	GeminiKeyEnv    = "GEMINI_API_KEY"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// ResearchAPIKey returns the API key for the named research provider.
func ResearchAPIKey(provider string) (string, error) {
	var env string
	switch strings.ToLower(provider) {
	case "anthropic":
		env = AnthropicKeyEnv
	case "google", "gemini":
		env = GeminiKeyEnv
	default:
		return "", errors.NewConfigError("config", "unknown research provider "+provider, nil)
	}

	key := GetString(env)
	if key == "" {
		return "", errors.ErrAPIKeyRequired
	}
	return key, nil
}
