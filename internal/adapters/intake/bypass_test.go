package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBypass_Skips(t *testing.T) {
	b := NewBypass([]string{" Example.COM ", "", "corp.test"}, zap.NewNop())

	tests := []struct {
		sender string
		want   bool
	}{
		{"alice@example.com", true},
		{"Alice <alice@EXAMPLE.com>", true},
		{"bob@corp.test", true},
		{"bob@sub.corp.test", false},
		{"mallory@evil.test", false},
		{"no-domain", false},
		{"trailing@", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Skips(tt.sender), "sender %q", tt.sender)
	}
}

func TestBypass_Empty(t *testing.T) {
	assert.False(t, NewBypass(nil, nil).Skips("alice@example.com"))

	var b *Bypass
	assert.False(t, b.Skips("alice@example.com"))
}
