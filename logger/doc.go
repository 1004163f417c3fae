// Package logger provides structured logging for the sonix pipeline
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("vad")
//	log.Info("segmentation complete", logger.Fields("segments", 4))
package logger
