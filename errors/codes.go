package errors

// ErrorCode identifies an application error class in API responses.
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1003

	ErrorCode_INTERVIEW_NOT_FOUND        ErrorCode = 2000
	ErrorCode_INTERVIEW_PERSIST_FAILED   ErrorCode = 2001
	ErrorCode_INTERVIEW_INVALID_IDENTITY ErrorCode = 2002
	ErrorCode_SESSION_CONTEXT_MISSING    ErrorCode = 2003
	ErrorCode_SESSION_TRANSPORT_FAILED   ErrorCode = 2004
	ErrorCode_SESSION_SHUTTING_DOWN      ErrorCode = 2005

	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 3000
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 3001
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = 3002
	ErrorCode_INTEGRATION_LOCK_FAILED         ErrorCode = 3003

	ErrorCode_DB_QUERY_FAILED ErrorCode = 4000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                     "UNSPECIFIED",
	ErrorCode_HTTP_OK:                         "HTTP_OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_INTERVIEW_NOT_FOUND:             "INTERVIEW_NOT_FOUND",
	ErrorCode_INTERVIEW_PERSIST_FAILED:        "INTERVIEW_PERSIST_FAILED",
	ErrorCode_INTERVIEW_INVALID_IDENTITY:      "INTERVIEW_INVALID_IDENTITY",
	ErrorCode_SESSION_CONTEXT_MISSING:         "SESSION_CONTEXT_MISSING",
	ErrorCode_SESSION_TRANSPORT_FAILED:        "SESSION_TRANSPORT_FAILED",
	ErrorCode_SESSION_SHUTTING_DOWN:           "SESSION_SHUTTING_DOWN",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_LOCK_FAILED:         "INTEGRATION_LOCK_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
