package apperrors

import (
	"encoding/json"
)

// Envelope is the wire envelope returned on every failed HTTP/RPC call.
type Envelope struct {
	Success   bool              `json:"success"`
	ErrorCode string            `json:"error_code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ToEnvelope converts err into the wire envelope, wrapping non-*Error
// values as an internal error first.
func ToEnvelope(err error, requestID string) Envelope {
	if err == nil {
		return Envelope{Success: false, ErrorCode: CodeInternal, Message: "unknown error", RequestID: requestID}
	}

	ae, ok := err.(*Error)
	if !ok {
		ae = Wrap(CodeInternal, err)
	}

	rid := requestID
	if rid == "" {
		rid = ae.RequestID
	}

	return Envelope{
		Success:   false,
		ErrorCode: ae.Code,
		Message:   ae.Message,
		Details:   ae.Details,
		RequestID: rid,
	}
}

// FormatJSON returns the JSON wire envelope for err.
func FormatJSON(err error, requestID string) ([]byte, error) {
	return json.Marshal(ToEnvelope(err, requestID))
}

// FormatForLog formats an error for structured logging, returning
// key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	ae, ok := err.(*Error)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": ae.Code,
		"message":    ae.Message,
		"kind":       string(ae.Kind),
		"severity":   string(ae.Severity),
		"retryable":  ae.Retryable,
	}

	if ae.Cause != nil {
		result["cause"] = ae.Cause.Error()
	}

	if ae.RequestID != "" {
		result["request_id"] = ae.RequestID
	}

	for k, v := range ae.Details {
		result["detail_"+k] = v
	}

	return result
}
