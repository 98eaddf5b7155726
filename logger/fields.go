package logger

// Standard field names for consistent structured logging across the ISL
// toolchain. Use these constants instead of raw strings.
const (
	// Identity and context
	FieldDomain   = "domain"
	FieldBehavior = "behavior"
	FieldClause   = "clause"
	FieldTrace    = "trace"
	FieldOutcome  = "outcome"

	// Verification
	FieldVerdict    = "verdict"
	FieldTriState   = "tri_state"
	FieldExpression = "expression"
	FieldReason     = "reason"

	// Components
	FieldComponent = "component"
	FieldOperation = "operation"

	// Timing
	FieldDurationMS = "duration_ms"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"

	// Errors
	FieldError     = "error"
	FieldErrorCode = "error_code"

	// Counts and sizes
	FieldCount      = "count"
	FieldBatchSize  = "batch_size"
	FieldTotalCount = "total_count"

	// Files and paths
	FieldFile = "file"
	FieldLine = "line"
	FieldPath = "path"
)
