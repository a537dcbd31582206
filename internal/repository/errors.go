// Package repository holds the errors shared by the storage backends.
package repository

import "errors"

var (
	// ErrNotFound indicates no configuration document exists for the restaurant yet.
	ErrNotFound = errors.New("configuration not found")

	// ErrVersionConflict indicates the configuration changed since it was loaded.
	ErrVersionConflict = errors.New("configuration was modified concurrently")
)
