package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/yungbote/heartcheck/internal/config"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/platform/gcp"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

var newStorageClient = gcp.NewStorageClient

type ArtifactSourceBootstrapErrorCode string

const (
	ArtifactSourceBootstrapErrorInvalidLocation     ArtifactSourceBootstrapErrorCode = "invalid_location"
	ArtifactSourceBootstrapErrorInvalidMode         ArtifactSourceBootstrapErrorCode = "invalid_mode"
	ArtifactSourceBootstrapErrorMissingEmulatorHost ArtifactSourceBootstrapErrorCode = "missing_emulator_host"
	ArtifactSourceBootstrapErrorInvalidEmulatorHost ArtifactSourceBootstrapErrorCode = "invalid_emulator_host"
	ArtifactSourceBootstrapErrorConnectFailed       ArtifactSourceBootstrapErrorCode = "connect_failed"
)

type ArtifactSourceBootstrapError struct {
	Code     ArtifactSourceBootstrapErrorCode
	Location string
	Mode     string
	Cause    error
}

func (e *ArtifactSourceBootstrapError) Error() string {
	if e == nil {
		return "model artifact source bootstrap failed"
	}
	return fmt.Sprintf(
		"model artifact source bootstrap failed (code=%s location=%q mode=%q): %v",
		e.Code,
		e.Location,
		e.Mode,
		e.Cause,
	)
}

func (e *ArtifactSourceBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func noopClose() error { return nil }

// wireArtifactSource resolves cfg.Model.Artifact to a model.Source. The
// returned close func releases any client it opened. The mock kind needs no
// source.
func wireArtifactSource(ctx context.Context, log *logger.Logger, cfg *config.Config) (model.Source, func() error, error) {
	if model.Kind(cfg.Model.Kind) == model.KindMock {
		return nil, noopClose, nil
	}

	loc, err := model.ParseLocation(cfg.Model.Artifact)
	if err != nil {
		return nil, noopClose, &ArtifactSourceBootstrapError{
			Code:     ArtifactSourceBootstrapErrorInvalidLocation,
			Location: cfg.Model.Artifact,
			Cause:    err,
		}
	}

	switch loc.Scheme {
	case model.SchemeGCS:
		storageCfg := gcp.StorageConfig{
			Mode:            gcp.ObjectStorageMode(cfg.GCS.Mode),
			EmulatorHost:    cfg.GCS.EmulatorHost,
			CredentialsFile: cfg.GCS.CredentialsFile,
			CredentialsJSON: cfg.GCS.CredentialsJSON,
		}
		log.Info(
			"Selecting model artifact source",
			"location", loc.String(),
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
		)
		client, err := newStorageClient(ctx, storageCfg)
		if err != nil {
			classified := classifyArtifactSourceBootstrapError(loc, storageCfg, err)
			log.Error(
				"Model artifact source bootstrap failed",
				"location", loc.String(),
				"error_code", artifactSourceBootstrapErrorCode(classified),
				"error", classified,
			)
			return nil, noopClose, classified
		}
		return gcp.NewObjectSource(client, loc.Bucket, loc.Object), closeClient(client), nil
	default:
		log.Info("Selecting model artifact source", "location", loc.Path)
		return model.NewFileSource(loc.Path), noopClose, nil
	}
}

func closeClient(client *storage.Client) func() error {
	return func() error {
		if client == nil {
			return nil
		}
		return client.Close()
	}
}

func classifyArtifactSourceBootstrapError(loc model.Location, storageCfg gcp.StorageConfig, err error) error {
	code := ArtifactSourceBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = ArtifactSourceBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = ArtifactSourceBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = ArtifactSourceBootstrapErrorInvalidEmulatorHost
		}
	}
	return &ArtifactSourceBootstrapError{
		Code:     code,
		Location: loc.String(),
		Mode:     string(storageCfg.Mode),
		Cause:    err,
	}
}

func artifactSourceBootstrapErrorCode(err error) ArtifactSourceBootstrapErrorCode {
	var bootstrapErr *ArtifactSourceBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return ArtifactSourceBootstrapErrorConnectFailed
}
