package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{-1, ErrTransport},
		{400, ErrProtocolRejected},
		{401, ErrAuth},
		{403, ErrAuth},
		{404, ErrNotFound},
		{500, ErrServer},
		{503, ErrServer},
		{200, ErrUnknown},
		{409, ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("connection refused")

	err := WithOp(Wrap(cause, ErrTransport, "sending request"), "transport.Send")
	assert.Equal(t, "transport.Send: sending request: connection refused", err.Error())

	bare := New(ErrUsage, "wrong argument count")
	assert.Equal(t, "wrong argument count", bare.Error())
}

func TestUnwrapAndIs(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, ErrPartialPower, "power on failed")

	assert.ErrorIs(t, err, cause)
	assert.True(t, stderrors.Is(err, New(ErrPartialPower, "anything")))
	assert.False(t, stderrors.Is(err, New(ErrAuth, "anything")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrAuth, GetCode(New(ErrAuth, "denied")))
	assert.Equal(t, ErrUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrUnknown, GetCode(nil))

	wrapped := fmt.Errorf("outer: %w", New(ErrRedirectExhausted, "second redirect"))
	assert.Equal(t, ErrRedirectExhausted, GetCode(wrapped))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsAuth(New(ErrAuth, "x")))
	assert.True(t, IsTransport(New(ErrTimeout, "x")))
	assert.True(t, IsTransport(New(ErrTransport, "x")))
	assert.True(t, IsPartialPower(New(ErrPartialPower, "x")))
	assert.False(t, IsPartialPower(New(ErrServer, "x")))
}
