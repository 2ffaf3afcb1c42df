package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEnvelopePrefersExplicitRequestID(t *testing.T) {
	e := New(CodeDatasetNotFound, "missing", nil).WithRequestID("from-error")
	env := ToEnvelope(e, "from-caller")
	assert.Equal(t, "from-caller", env.RequestID)

	env = ToEnvelope(e, "")
	assert.Equal(t, "from-error", env.RequestID)
}

func TestToEnvelopeWrapsPlainError(t *testing.T) {
	env := ToEnvelope(errors.New("boom"), "req-1")
	assert.False(t, env.Success)
	assert.Equal(t, CodeInternal, env.ErrorCode)
	assert.Equal(t, "boom", env.Message)
	assert.Equal(t, "req-1", env.RequestID)
}

func TestFormatJSON(t *testing.T) {
	e := InvalidDimensions("expected 128, got 64")
	data, err := FormatJSON(e, "req-2")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success":false`)
	assert.Contains(t, string(data), CodeInvalidDimensions)
	assert.Contains(t, string(data), "req-2")
}

func TestFormatForLog(t *testing.T) {
	cause := errors.New("disk unreadable")
	e := StorageError("failed to read column", cause).WithRequestID("req-3")
	fields := FormatForLog(e)
	assert.Equal(t, CodeStorageError, fields["error_code"])
	assert.Equal(t, string(KindStorageError), fields["kind"])
	assert.Equal(t, "disk unreadable", fields["cause"])
	assert.Equal(t, "req-3", fields["request_id"])
}

func TestFormatForLogPlainError(t *testing.T) {
	fields := FormatForLog(errors.New("plain"))
	assert.Equal(t, "plain", fields["error"])
}

func TestFormatForLogNil(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
}
