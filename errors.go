package patchview

import "errors"

// Errors returned by Viewport and Config.
var (
	// ErrInvalidShape is returned when a scene shape has a non-positive
	// dimension.
	ErrInvalidShape = errors.New("patchview: invalid scene shape")

	// ErrNilHost is returned by New when no host is given.
	ErrNilHost = errors.New("patchview: nil host")

	// ErrInvalidConfig is returned when a configuration value is out of
	// range.
	ErrInvalidConfig = errors.New("patchview: invalid config")

	// ErrPatchIndex is returned when a patch id is outside the grid.
	ErrPatchIndex = errors.New("patchview: patch index out of range")

	// ErrNoGrid is returned when an operation needs patches before a scene
	// shape has been set.
	ErrNoGrid = errors.New("patchview: no patches, set a scene shape first")
)
