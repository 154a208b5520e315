package persist

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Load when no record exists for a key.
// It is an expected condition: the caller generates the slot instead.
var ErrNotFound = errors.New("persist: record not found")

// VersionError reports a record written by an unknown format version
type VersionError struct {
	Version int
}

func (e VersionError) Error() string {
	return fmt.Sprintf("persist: unsupported record version %d", e.Version)
}
