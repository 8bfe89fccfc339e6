// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line flags and configuration.

# Configuration

Commands register the flags on their flag set and resolve the rest:

	var cfg cliparse.Config
	cliparse.RegisterFlags(cmd.Flags(), &cfg)
	// after parsing
	err := cliparse.Resolve(&cfg)

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (default for sqlite: file:elections.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - IdentitySalt: Secret for identity token HMAC
  - AdminIdentity, AdminName: Bootstrap admin, installed on first start
  - GatewayRef: Reporting gateway reference (default: reporting-gateway)
  - EnvFile: Env file loaded first (default: .env)

# CLI Flags

	-p, --port          Server port
	-d, --database      Database URL
	-t, --db-type       Database type
	--identity-salt     Identity token salt
	--admin             Bootstrap admin identity
	--admin-name        Bootstrap admin name
	--gateway-ref       Reporting gateway reference
	--env-file          Env file path

# Environment Variables

Flags fall back to environment variables:

	PORT                  → -p
	DATABASE_URL          → -d
	DATABASE_TYPE         → -t
	IDENTITY_TOKEN_SALT   → --identity-salt
	ADMIN_IDENTITY        → --admin
	ADMIN_NAME            → --admin-name
	REPORTING_GATEWAY_REF → --gateway-ref

CLI flags take precedence over environment variables, which take
precedence over the env file. A missing env file is ignored.

# Validation

Resolve fails on a malformed port, an unknown database type, or postgres
without a URL. The salt is only needed by commands that handle tokens:

	if err := cfg.RequireSalt(); err != nil {
		return err
	}
*/
package cliparse
