// Package config provides functionality for loading and saving configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/williamzujkowski/domainchecker/pkg/domain"
)

// DefaultConfigFileName is the default name for the configuration file
const DefaultConfigFileName = "config.json"

// Defaults returns a configuration populated with the documented
// default for every option.
func Defaults() *domain.Config {
	return &domain.Config{
		ThreadCount:      10,
		CheckTimeout:     10,
		DomainrAPIType:   "rapidapi",
		DomainrRateLimit: 5,
		SMTPPort:         465,
		OutputDir:        "output",
		LogDir:           "logs",
	}
}

// Load loads the configuration from the config file.
// If the file doesn't exist, it returns the default configuration.
// String values of the form ${ENV_VAR} are resolved from the
// environment; a .env file in the working directory is honoured.
func Load(configFileName string) (*domain.Config, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	config := Defaults()

	if _, err := os.Stat(configFileName); os.IsNotExist(err) {
		log.Warn().Str("file", configFileName).Msg("Configuration file not found, using defaults")
		return config, nil
	}

	data, err := os.ReadFile(configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig domain.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	merge(config, &fileConfig)
	resolveEnv(config)

	return config, nil
}

// Save saves the configuration to the config file
func Save(config *domain.Config, configFileName string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// merge overlays file values onto the defaults, keeping the default
// wherever the file leaves a field at its zero value.
func merge(config, fileConfig *domain.Config) {
	if fileConfig.ThreadCount > 0 {
		config.ThreadCount = fileConfig.ThreadCount
	}
	if fileConfig.CheckTimeout > 0 {
		config.CheckTimeout = fileConfig.CheckTimeout
	}
	if fileConfig.DomainrAPIType != "" {
		config.DomainrAPIType = fileConfig.DomainrAPIType
	}
	if fileConfig.DomainrAPIKeys != "" {
		config.DomainrAPIKeys = fileConfig.DomainrAPIKeys
	}
	if fileConfig.DomainrRateLimit > 0 {
		config.DomainrRateLimit = fileConfig.DomainrRateLimit
	}
	config.EnableEmail = fileConfig.EnableEmail
	if fileConfig.SMTPHost != "" {
		config.SMTPHost = fileConfig.SMTPHost
	}
	if fileConfig.SMTPPort > 0 {
		config.SMTPPort = fileConfig.SMTPPort
	}
	if fileConfig.SMTPUser != "" {
		config.SMTPUser = fileConfig.SMTPUser
	}
	if fileConfig.SMTPPass != "" {
		config.SMTPPass = fileConfig.SMTPPass
	}
	if fileConfig.EmailTo != "" {
		config.EmailTo = fileConfig.EmailTo
	}
	config.EnableWebhook = fileConfig.EnableWebhook
	if fileConfig.WebhookURL != "" {
		config.WebhookURL = fileConfig.WebhookURL
	}
	if fileConfig.OutputDir != "" {
		config.OutputDir = fileConfig.OutputDir
	}
	if fileConfig.LogDir != "" {
		config.LogDir = fileConfig.LogDir
	}
}

// resolveEnv replaces ${ENV_VAR} placeholders in string options with
// the environment value. Unset variables leave the placeholder intact.
func resolveEnv(config *domain.Config) {
	fields := []*string{
		&config.DomainrAPIType,
		&config.DomainrAPIKeys,
		&config.SMTPHost,
		&config.SMTPUser,
		&config.SMTPPass,
		&config.EmailTo,
		&config.WebhookURL,
		&config.OutputDir,
		&config.LogDir,
	}
	for _, f := range fields {
		*f = resolvePlaceholder(*f)
	}
}

func resolvePlaceholder(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	name := value[2 : len(value)-1]
	if env, ok := os.LookupEnv(name); ok {
		return env
	}
	return value
}
