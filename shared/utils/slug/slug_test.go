package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme", "acme"},
		{"Acme Corp.", "acme-corp"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Already-Dashed", "already-dashed"},
		{"Mixed CASE 42", "mixed-case-42"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), "Make(%q)", tt.in)
	}
}
