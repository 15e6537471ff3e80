package logger

// Standard field names for consistent structured logging across ipcforge.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID = "run_id"

	// Transform inputs
	FieldFile    = "file"
	FieldRole    = "role"
	FieldContext = "context"

	// Transform outputs
	FieldExport   = "export"
	FieldChannel  = "channel"
	FieldStrategy = "strategy"

	// Counts and timing
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
)
