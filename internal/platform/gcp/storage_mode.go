package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// StorageConfig selects how the Cloud Storage client authenticates and
// where it connects.
type StorageConfig struct {
	Mode            ObjectStorageMode
	EmulatorHost    string
	CredentialsFile string
	CredentialsJSON string
}

func (cfg StorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
)

type ObjectStorageConfigError struct {
	Code         ObjectStorageConfigErrorCode
	Mode         string
	EmulatorHost string
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid gcs mode %q (allowed: %q, %q)", e.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("gcs mode %q requires an emulator host", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid gcs emulator host %q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid object storage config"
	}
}

// ResolveStorageConfig normalizes cfg. An empty mode becomes the emulator
// when a host is set and real GCS otherwise.
func ResolveStorageConfig(cfg StorageConfig) (StorageConfig, error) {
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.CredentialsFile = strings.TrimSpace(cfg.CredentialsFile)
	cfg.CredentialsJSON = strings.TrimSpace(cfg.CredentialsJSON)

	switch mode := ObjectStorageMode(strings.ToLower(strings.TrimSpace(string(cfg.Mode)))); mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
		} else {
			cfg.Mode = ObjectStorageModeGCS
		}
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
		cfg.Mode = mode
	default:
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}

	if cfg.IsEmulatorMode() {
		if cfg.EmulatorHost == "" {
			return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost}
		}
		u, err := url.Parse(cfg.EmulatorHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidEmulatorHost, EmulatorHost: cfg.EmulatorHost}
		}
	}
	return cfg, nil
}
