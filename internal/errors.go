package internal

import (
	"errors"
	"fmt"
)

// ErrPluginNotFound reports a plugin URI that is not present in the catalog.
var ErrPluginNotFound = errors.New("plugin not found")

// ErrBackupExists reports that the backup path is already occupied. An
// existing backup is never overwritten.
var ErrBackupExists = errors.New("backup file already exists")

// ParseError represents errors parsing a session document
type ParseError struct {
	Offset int64 // byte offset where the decoder stopped
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse session file at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CatalogError represents errors querying the plugin catalog
type CatalogError struct {
	URI string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog error [%s]: %v", e.URI, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// BackupError represents errors writing or verifying the session backup
type BackupError struct {
	Path string
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup error: %s: %v", e.Path, e.Err)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// PatchError represents errors writing the patched session file
type PatchError struct {
	Path string
	Err  error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch error: %s: %v", e.Path, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}
