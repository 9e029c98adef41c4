package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Service
	FieldService = "service"

	// Jobs
	FieldJobType  = "job_type"
	FieldJobID    = "job_id"
	FieldAttempt  = "attempt"
	FieldMaxRetry = "max_retry"

	// Entities
	FieldPostID = "post_id"
	FieldUserTo = "user_to"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
