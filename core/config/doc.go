// Package config provides configuration management for the forum importer.
//
// Values come from environment variables, optionally preloaded from a .env
// file, with defaults taken from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP status server settings (port, API key)
//   - Storage: S3/MinIO credentials and bucket, for dumps kept in object storage
//   - Log: Logging level and format
//   - Staging: Staging store connection (STAGING_DRIVER, STAGING_HOST, ...)
//   - Target: Content platform connection (TARGET_DRIVER, TARGET_HOST, ...)
//   - Import: Dump location, administrator account, identity masking
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Import.AdminUsername)
package config
