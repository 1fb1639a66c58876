package models

// LogEntry is the shape of one structured log line.
type LogEntry struct {
	ServiceName string                 `json:"service_name"`
	TraceID     string                 `json:"trace_id,omitempty"`
	UserID      string                 `json:"user_id,omitempty"`
	RequestInfo *RequestInfo           `json:"request_info,omitempty"`
	Error       *ErrorInfo             `json:"error,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// RequestInfo describes the HTTP request a log line belongs to.
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	Status     int    `json:"status,omitempty"`
	LatencyMs  int64  `json:"latency_ms,omitempty"`
}

// ErrorInfo is the structured form of an error attached to a log line.
type ErrorInfo struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"` // "index_error", "model_error", "validation_error"
	StatusCode int    `json:"status_code,omitempty"`
}

// NewErrorInfo wraps err with a category.
func NewErrorInfo(errType string, err error) ErrorInfo {
	info := ErrorInfo{Type: errType}
	if err != nil {
		info.Message = err.Error()
	}
	return info
}
