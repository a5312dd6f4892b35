// Package config provides configuration management for the Azure OpenAI proxy.
//
// Configuration comes from an optional YAML file plus environment variables.
// The proxy can run from the environment alone: the only required values are
// the resource endpoint and the chat deployment name.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file (or none) with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("")
//
// # Environment Variables
//
// The upstream resource is described by the variables Azure Functions
// deployments already set:
//
//   - AZURE_OPENAI_BASE (required) overrides upstream.base_url
//   - AZURE_OPENAI_DEPLOYMENT (required) overrides upstream.deployment
//   - AZURE_OPENAI_API_VERSION overrides upstream.api_version
//   - AZURE_OPENAI_V1_API_VERSION overrides upstream.v1_api_version
//
// Everything else follows the naming convention AOAI_PROXY_SECTION_FIELD,
// for example AOAI_PROXY_PROXY_LISTEN_ADDRESS or
// AOAI_PROXY_TELEMETRY_LOGGING_LEVEL. AOAI_PROXY_FUNCTION_KEYS takes a
// comma-separated key list and enables key checking.
//
// # Configuration Precedence
//
//  1. Values from YAML file
//  2. Default values for anything left unset
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and publishes each
// new, valid Config through a callback. Invalid edits are rejected and the
// running configuration is kept.
package config
