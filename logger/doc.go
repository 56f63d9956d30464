// Package logger provides structured logging for analyticskit built on
// zerolog.
//
// Core components (registry, queue, manager) receive a *Logger as an
// explicit constructor dependency. Package-level functions delegating to a
// global logger exist for application glue code only.
//
//	log := logger.NewDefault("analytics")
//	log.Info("provider installed", logger.Fields(logger.FieldProvider, "sentry"))
package logger
