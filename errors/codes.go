package errors

// ErrorCode identifies an application error category independent of HTTP status.
type ErrorCode string

const (
	// General
	ErrorCode_HTTP_OK          ErrorCode = "OK"
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS   ErrorCode = "ALREADY_EXISTS"
	ErrorCode_FORBIDDEN        ErrorCode = "FORBIDDEN"
	ErrorCode_UNAUTHENTICATED  ErrorCode = "UNAUTHENTICATED"

	// Webhook processing
	ErrorCode_WEBHOOK_MISSING_HEADERS   ErrorCode = "WEBHOOK_MISSING_HEADERS"
	ErrorCode_WEBHOOK_INVALID_SIGNATURE ErrorCode = "WEBHOOK_INVALID_SIGNATURE"
	ErrorCode_WEBHOOK_INVALID_PAYLOAD   ErrorCode = "WEBHOOK_INVALID_PAYLOAD"

	// Meeting lifecycle
	ErrorCode_MEETING_NOT_FOUND     ErrorCode = "MEETING_NOT_FOUND"
	ErrorCode_AGENT_NOT_FOUND       ErrorCode = "AGENT_NOT_FOUND"
	ErrorCode_MEETING_INVALID_STATE ErrorCode = "MEETING_INVALID_STATE"

	// AI / LLM
	ErrorCode_AI_EMPTY_RESPONSE ErrorCode = "AI_EMPTY_RESPONSE"
	ErrorCode_AI_REQUEST_FAILED ErrorCode = "AI_REQUEST_FAILED"

	// Collaborators
	ErrorCode_INTEGRATION_VIDEO_FAILED   ErrorCode = "INTEGRATION_VIDEO_FAILED"
	ErrorCode_INTEGRATION_CHAT_FAILED    ErrorCode = "INTEGRATION_CHAT_FAILED"
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_JOB_ENQUEUE_FAILED         ErrorCode = "JOB_ENQUEUE_FAILED"

	// Persistence
	ErrorCode_DB_QUERY_FAILED ErrorCode = "DB_QUERY_FAILED"
)

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	return string(c)
}
