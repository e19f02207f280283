package core

import "errors"

// Validation and lookup failures. Each is recovered locally by the caller
// and leaves the model or the stored arrangements unchanged.
var (
	ErrBlankName           = errors.New("arrangement name is required")
	ErrNoCSVLoaded         = errors.New("no csv loaded")
	ErrStructureMismatch   = errors.New("arrangement does not match the current csv structure")
	ErrIndexOutOfRange     = errors.New("column index out of range")
	ErrArrangementNotFound = errors.New("arrangement not found")
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrNothingToExport     = errors.New("no arrangements selected to export")
	ErrNoFile              = errors.New("no file provided")
)

// ErrTooManyWorkspaces is returned by OpenWorkspace when the registry is full.
var ErrTooManyWorkspaces = errors.New("too many workspaces open")
