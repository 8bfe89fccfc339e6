// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultPort       = 3318
	DefaultSQLiteURL  = "file:elections.db"
	DefaultGatewayRef = "reporting-gateway"
	DefaultEnvFile    = ".env"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	IdentitySalt  string
	AdminIdentity string
	AdminName     string
	GatewayRef    string
	EnvFile       string
}

// RegisterFlags binds every setting onto fs. Unset flags keep their zero
// value so Resolve can fall back to the environment.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network and storage (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port (env PORT)")
	fs.StringVarP(&cfg.DatabaseURL, "database", "d", "", "Database URL (env DATABASE_URL)")
	fs.StringVarP(&cfg.DatabaseType, "db-type", "t", "", "Database type, sqlite or postgres (env DATABASE_TYPE)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IdentitySalt, "identity-salt", "", "Identity token salt (prefer env IDENTITY_TOKEN_SALT)")

	fs.StringVar(&cfg.AdminIdentity, "admin", "", "Bootstrap admin identity (env ADMIN_IDENTITY)")
	fs.StringVar(&cfg.AdminName, "admin-name", "", "Bootstrap admin name (env ADMIN_NAME)")
	fs.StringVar(&cfg.GatewayRef, "gateway-ref", "", "Reporting gateway reference (env REPORTING_GATEWAY_REF)")
	fs.StringVar(&cfg.EnvFile, "env-file", DefaultEnvFile, "Env file loaded before reading the environment")
}

// Resolve fills settings not given as flags from the env file, then the
// environment, then defaults.
func Resolve(cfg *Config) error {
	if cfg.EnvFile != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", cfg.EnvFile, err)
		}
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLiteURL
	}

	if cfg.IdentitySalt == "" {
		cfg.IdentitySalt = os.Getenv("IDENTITY_TOKEN_SALT")
	}
	if cfg.AdminIdentity == "" {
		cfg.AdminIdentity = os.Getenv("ADMIN_IDENTITY")
	}
	if cfg.AdminName == "" {
		cfg.AdminName = os.Getenv("ADMIN_NAME")
	}
	if cfg.AdminName == "" {
		cfg.AdminName = cfg.AdminIdentity
	}
	if cfg.GatewayRef == "" {
		cfg.GatewayRef = os.Getenv("REPORTING_GATEWAY_REF")
	}
	if cfg.GatewayRef == "" {
		cfg.GatewayRef = DefaultGatewayRef
	}

	return nil
}

// RequireSalt fails when no identity token salt is configured. Commands
// that verify or mint tokens call it after Resolve.
func (c Config) RequireSalt() error {
	if c.IdentitySalt == "" {
		return errors.New("IDENTITY_TOKEN_SALT required")
	}
	return nil
}
