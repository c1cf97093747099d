package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions returns credential options for cfg, falling back to the
// GOOGLE_APPLICATION_CREDENTIALS_JSON / GOOGLE_APPLICATION_CREDENTIALS
// variables. Nil means application default credentials.
func ClientOptions(cfg StorageConfig) []option.ClientOption {
	creds := cfg.CredentialsJSON
	if creds == "" {
		creds = cfg.CredentialsFile
	}
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	}
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
