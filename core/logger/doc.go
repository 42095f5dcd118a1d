// Package logger provides a structured logging facility based on Zap.
//
// Every migration run is tagged with a run_id so the warnings emitted for
// dropped records can be grouped per run, and HTTP requests served by the
// status API are tagged with their ray_id.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log, runID := logger.WithRunID(log)
//	log.Info("Import started")
package logger
