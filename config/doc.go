// Package config loads client settings from YAML files, .env files and
// environment variables using Viper, and validates them with struct tags.
//
// # Usage
//
//	s, err := config.LoadSettings("billing")
//	client, err := httpclient.NewFromSettings(s)
//
// A config.yml looks like:
//
//	name: billing
//	base_url: https://api.example.com
//	timeout: 5s
//	headers:
//	  X-Client: billing
//	tls:
//	  ca_file: /etc/ssl/internal-ca.pem
//	logging:
//	  level: debug
//	  format: json
//
// Environment variables prefixed with ANYHTTP_ override file values using
// underscore-separated paths (e.g., ANYHTTP_TIMEOUT, ANYHTTP_TLS_SKIP_VERIFY).
package config
