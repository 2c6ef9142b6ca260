package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ValidateText("")))
	assert.Equal(t, KindTransport, KindOf(&TransportError{Message: "down"}))
	assert.Equal(t, KindServer, KindOf(fmt.Errorf("classify: %w", &ServerError{StatusCode: 500, Message: "boom"})))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, APIError{}, Describe(nil))
	assert.Equal(t, APIError{Message: "Select a file"}, Describe(ValidateFile(nil)))
	assert.Equal(t,
		APIError{Message: "slow", Detail: "context deadline exceeded"},
		Describe(&TransportError{Message: "slow", Detail: "context deadline exceeded", Timeout: true}))
	assert.Equal(t,
		APIError{Message: "bad input", Detail: "Bad Request"},
		Describe(&ServerError{StatusCode: 400, Message: "bad input", Detail: "Bad Request"}))
	assert.Equal(t, APIError{Message: "other"}, Describe(errors.New("other")))
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{Message: "slow", Timeout: true, Err: context.DeadlineExceeded}
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
