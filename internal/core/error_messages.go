package core

// error_messages.go maps technical errors to messages a user can act on.
//
// Each message carries a code for support reference. Codes are grouped by
// category:
//
//	VAL001-VAL004  column edits and arrangement names
//	ARR001-ARR003  saved arrangements
//	FILE001-FILE005  uploaded files
//	IMP001-IMP002  arrangement import
//	UPL001-UPL005  workspaces and request lifecycle
//	RATE001  rate limiting
//	ERR000  fallback; check the logs for the technical error

import (
	"fmt"
	"strings"
)

// UserMessage contains a user-friendly error message with an action and a
// support code.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is searched in order; the first pattern contained in the
// lowercased error text wins. More specific patterns go first.
var errorPatterns = []errorPattern{
	// Column and name validation (VAL001-VAL004)
	{
		pattern: "arrangement name is required",
		msg: UserMessage{
			Message: "Please enter a name for this arrangement",
			Action:  "Type a name and save again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "column index out of range",
		msg: UserMessage{
			Message: "That column no longer exists",
			Action:  "Refresh the workspace and try again",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request payload and try again",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid column index",
		msg: UserMessage{
			Message: "Column position must be a whole number",
			Action:  "Pick a column from the list",
			Code:    "VAL004",
		},
	},

	// Saved arrangements (ARR001-ARR003)
	{
		pattern: "does not match the current csv structure",
		msg: UserMessage{
			Message: "This arrangement doesn't match the current CSV structure",
			Action:  "Pick an arrangement saved for a file with the same columns",
			Code:    "ARR001",
		},
	},
	{
		pattern: "arrangement not found",
		msg: UserMessage{
			Message: "Arrangement not found",
			Action:  "It may have been deleted. Reload the arrangement list",
			Code:    "ARR002",
		},
	},
	{
		pattern: "no arrangements selected to export",
		msg: UserMessage{
			Message: "Please select at least one arrangement to export",
			Action:  "Select arrangements and export again",
			Code:    "ARR003",
		},
	},

	// File errors (FILE001-FILE005)
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no csv loaded",
		msg: UserMessage{
			Message: "No CSV file is loaded",
			Action:  "Upload a CSV file first",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "Export format is not supported",
			Action:  "Choose csv or xlsx",
			Code:    "FILE005",
		},
	},

	// Arrangement import (IMP001-IMP002)
	{
		pattern: "invalid file format",
		msg: UserMessage{
			Message: "Invalid file format",
			Action:  "Import a file produced by arrangement export",
			Code:    "IMP001",
		},
	},
	{
		pattern: "error reading file",
		msg: UserMessage{
			Message: "Error reading file",
			Action:  "Make sure the file is valid JSON",
			Code:    "IMP002",
		},
	},

	// Workspaces and request lifecycle (UPL001-UPL005)
	{
		pattern: "workspace not found",
		msg: UserMessage{
			Message: "Workspace not found",
			Action:  "The workspace may have expired. Please upload the file again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "too many workspaces",
		msg: UserMessage{
			Message: "Too many open workspaces",
			Action:  "Close a workspace or wait for idle ones to expire",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Rate limiting (RATE001)
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches the known patterns case-insensitively and returns the first
// match, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(fmt.Errorf("apply: %w", ErrStructureMismatch))
//	// msg.Code == "ARR001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern, i.e. it maps to
// something other than the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
