// Package config loads application configuration.
//
// Configuration comes from three places, in increasing precedence:
//  1. defaults set below
//  2. an optional config file (config.yaml/json/toml in the working dir)
//  3. environment variables with the RECIPEAPI_ prefix
//     (RECIPEAPI_SERVER_PORT, RECIPEAPI_DATABASE_PATH, ...)
//
// A .env file in the working directory is read first for local development;
// variables already set in the real environment win over .env entries.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the server and CLI tools.
type Config struct {
	Server struct {
		Port int
	}
	Database struct {
		Path string
	}
	Auth struct {
		// BcryptCost is the bcrypt work factor for password hashing.
		// 0 means "use the package default" (cost 12).
		BcryptCost int
	}
	Log struct {
		Level string // debug, info, warn, error
	}
}

// Load reads configuration from defaults, an optional config file, and the
// environment.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("RECIPEAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/recipes.db")
	v.SetDefault("auth.bcryptcost", 0)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // config file is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads KEY=VALUE lines from a .env file into the process
// environment without overwriting variables that are already set.
func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:eq])
		value := strings.Trim(strings.TrimSpace(line[eq+1:]), `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
