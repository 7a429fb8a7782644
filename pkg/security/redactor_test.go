package security_test

import (
	"testing"

	"github.com/arnavsurve/wfcapture/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_Redact(t *testing.T) {
	tests := []struct {
		name    string
		secrets []string
		input   string
		want    string
	}{
		{
			name:    "exact match",
			secrets: []string{"supersecret"},
			input:   "The key is supersecret",
			want:    "The key is ********",
		},
		{
			name:    "multiple occurrences",
			secrets: []string{"abcdef"},
			input:   "API key: abcdef is being used. Backup key: abcdef should be stored.",
			want:    "API key: ******** is being used. Backup key: ******** should be stored.",
		},
		{
			name:    "substring of another word",
			secrets: []string{"key"},
			input:   "The keyboard has keys for typing. The key is important.",
			want:    "The ********board has ********s for typing. The ******** is important.",
		},
		{
			name:    "multiple secrets",
			secrets: []string{"pass123", "key456"},
			input:   "Password: pass123, API Key: key456",
			want:    "Password: ********, API Key: ********",
		},
		{
			name:    "empty secret is skipped",
			secrets: []string{"", "valid"},
			input:   "Empty: , Valid: valid",
			want:    "Empty: , Valid: ********",
		},
		{
			name:    "no secrets returns original string",
			secrets: nil,
			input:   "Original string",
			want:    "Original string",
		},
		{
			name:    "secret not found in input",
			secrets: []string{"notused"},
			input:   "This string doesn't contain the secret",
			want:    "This string doesn't contain the secret",
		},
		{
			name:    "overlapping secrets redact longest first",
			secrets: []string{"secret", "supersecret"},
			input:   "This contains supersecret and secret values",
			want:    "This contains ******** and ******** values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := security.NewRedactor(tt.secrets...)
			got := r.Redact(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactor_NilReceiver(t *testing.T) {
	var r *security.Redactor
	assert.Equal(t, "untouched", r.Redact("untouched"))
}
