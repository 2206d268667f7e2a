// Package config loads and validates configuration for streamkit binaries.
//
// LoadConfig reads an optional YAML file with Viper, loads an optional .env
// file with godotenv, and overlays environment variables named after the
// service:
//
//	EVENTFEED_ENGINE__WORKERS=8   ->  engine.workers
//	EVENTFEED_HTTP__ADDR=:9090    ->  http.addr
//
// The prefix is the upper-cased service name and a double underscore
// separates nesting levels, so single underscores inside keys survive.
//
// Validate checks `validate` struct tags with go-playground/validator and
// reports failures as an INVALID_CONFIG errors.AppError.
package config
