package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@x.com", "a@x.com"},
		{"A@X.com", "a@x.com"},
		{"  Alice@Example.COM ", "alice@example.com"},
		// Decomposed e + combining acute composes to é.
		{"Jose\u0301@example.com", "jos\u00e9@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestEmail_CaseVariantsShareKey(t *testing.T) {
	assert.Equal(t, Email("a@x.com"), Email("A@X.com"))
}

func TestText(t *testing.T) {
	assert.Equal(t, "Cien a\u00f1os de soledad", Text("  Cien an\u0303os de soledad "))
}
