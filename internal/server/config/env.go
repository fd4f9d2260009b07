package config

import "os"

// parseEnv applies the conventional deployment environment variables.
// Unset or empty variables leave the current value untouched.
//
//	JWT_SECRET    signing secret
//	PORT          HTTP port, bound on all interfaces
//	DATABASE_URL  PostgreSQL DSN
//	UPLOAD_DIR    filesystem blob root
func parseEnv(config *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		config.BlobRoot = v
	}
}
