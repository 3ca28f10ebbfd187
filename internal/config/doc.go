// Package config provides centralized configuration management for CRVX.
//
// # Configuration Sources
//
// Configuration is resolved in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. A YAML configuration file, when one is given or found
//	3. Environment variables prefixed with CRVX_
//
// # Environment Variables
//
//	CRVX_SOURCE_KIND=sheets
//	CRVX_SOURCE_SPREADSHEET_ID=1AbC...
//	CRVX_SOURCE_CREDENTIALS_FILE=/secrets/service-account.json
//	CRVX_PIPELINE_SEED=42
//	CRVX_PIPELINE_TOP_K=1,3,5,10
//	CRVX_OUTPUT_DIR=out
//	CRVX_LOGGING_LEVEL=debug
//
// # Validation
//
// The merged configuration is validated with struct tags
// (github.com/go-playground/validator/v10) before it is returned.
package config
