// Package config loads and validates the orchestration layer's
// configuration.
//
// Configuration comes from a YAML file plus environment variables, with
// environment variables taking precedence. A .env file, when present, is
// loaded before binding. Struct tag validation uses the validator library;
// invalid configuration fails at load time, never at dispatch time.
//
// # Usage
//
//	cfg, err := config.Load("analytics",
//	    config.WithConfigFile("config.yml"),
//	)
package config
