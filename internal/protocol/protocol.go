package protocol

// Execution statuses.
const (
	StatusSuccess      = "success"
	StatusError        = "error"
	StatusUnconfigured = "unconfigured"
)

// ExecuteResponse is the structured result attached to every execute_go
// call next to its text content.
type ExecuteResponse struct {
	// Status indicates the execution status.
	Status string `json:"status"`
	// ErrorKind is the failure category when Status is error.
	ErrorKind string `json:"error_kind,omitempty"`
	// CorrelationID links the call to its log and audit entries.
	CorrelationID string `json:"correlation_id"`
}
