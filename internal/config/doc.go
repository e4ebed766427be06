// Package config manages bgit's per-repository settings.
//
// Settings live as JSON in .git/.bgit_config and supply defaults for the
// remote, push-after-commit, pull request base and fetch-before-seeding
// behavior. Command-line flags always win over these values.
package config
