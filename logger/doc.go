// Package logger provides structured logging for filekit using zerolog.
//
// It supports JSON and console output, level configuration from config or
// environment, and component-scoped loggers carrying disk/driver fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("filesystem.local")
//	log.Info("disk bound", logger.Fields(logger.FieldDisk, "local"))
package logger
