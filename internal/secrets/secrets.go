// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// resolves the model credential. Each file in the directory holds one
// secret: the filename is the key name and the trimmed contents the value.
//
// Recognised key files: gemini-api-key, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-intel/pkg/types"
)

// DefaultDir is the secrets directory used when none is configured.
const DefaultDir = ".secrets"

// ConfigurationError reports a missing credential. Analysis is disabled
// until the process is restarted with the credential in place.
type ConfigurationError struct {
	Provider types.ModelProvider
	EnvVar   string
	File     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not found. Set it in the environment, in %s or as model.api_key in the config file.",
		e.EnvVar, e.File)
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// EnvVar returns the environment variable holding provider's key.
func EnvVar(provider types.ModelProvider) string {
	switch provider {
	case types.ProviderClaude:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// KeyFile returns the secrets file name holding provider's key.
func KeyFile(provider types.ModelProvider) string {
	switch provider {
	case types.ProviderClaude:
		return "anthropic-api-key"
	default:
		return "gemini-api-key"
	}
}

// Lookup returns an environment variable value. Tests substitute it.
type Lookup func(key string) (string, bool)

// Credential resolves the API key for cfg.Provider. The environment
// variable wins, then cfg.APIKey, then the key file in loaded. It returns
// a *ConfigurationError when none is set.
func Credential(cfg types.ModelConfig, loaded map[string]string, env Lookup, dir string) (string, error) {
	if env == nil {
		env = os.LookupEnv
	}
	if dir == "" {
		dir = DefaultDir
	}
	envVar := EnvVar(cfg.Provider)
	if v, ok := env(envVar); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	if v := strings.TrimSpace(cfg.APIKey); v != "" {
		return v, nil
	}
	if v := loaded[KeyFile(cfg.Provider)]; v != "" {
		return v, nil
	}
	return "", &ConfigurationError{
		Provider: cfg.Provider,
		EnvVar:   envVar,
		File:     filepath.Join(dir, KeyFile(cfg.Provider)),
	}
}
