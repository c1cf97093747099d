package model

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrDeserialization  = errors.New("model artifact could not be deserialized")
)

type ArtifactNotFoundError struct {
	URI   string
	Cause error
}

func (e *ArtifactNotFoundError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("model artifact not found: %s", e.URI)
	}
	return fmt.Sprintf("model artifact not found: %s: %v", e.URI, e.Cause)
}

func (e *ArtifactNotFoundError) Is(target error) bool { return target == ErrArtifactNotFound }

func (e *ArtifactNotFoundError) Unwrap() error { return e.Cause }

// DeserializationError covers artifacts that exist but are corrupt, of an
// unknown format, or trained on a different feature schema.
type DeserializationError struct {
	URI   string
	Cause error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize model artifact %s: %v", e.URI, e.Cause)
}

func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }

func (e *DeserializationError) Unwrap() error { return e.Cause }

// IsArtifactError reports whether err means the model could not be obtained.
func IsArtifactError(err error) bool {
	return errors.Is(err, ErrArtifactNotFound) || errors.Is(err, ErrDeserialization)
}
