// Package common defines shared constants and sentinel errors used across
// charkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors (bad user input, recovered locally by the caller).
	ErrValidation = errors.New("validation error")

	// ErrDuplicateName is returned when a collection name is already in use.
	ErrDuplicateName = errors.New("collection name already exists")

	// Lookup errors.
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCharacterNotFound  = errors.New("character not found")

	// Archive errors.
	ErrArchiveFormat    = errors.New("invalid archive format")
	ErrCollectionExists = errors.New("collection already exists")

	// ErrBackupDisabled is returned when no object storage is configured.
	ErrBackupDisabled = errors.New("backup storage is not configured")
)

// IsExpected reports whether err is one of the domain errors above, i.e. an
// outcome the user can act on rather than a fault worth reporting.
func IsExpected(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrDuplicateName, ErrCollectionNotFound,
		ErrCharacterNotFound, ErrArchiveFormat, ErrCollectionExists,
		ErrBackupDisabled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
