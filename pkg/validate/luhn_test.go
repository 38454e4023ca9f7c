package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLuhn(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{name: "valid membership number", number: "2377225624", valid: true},
		{name: "invalid check digit", number: "2377225625", valid: false},
		{name: "non-numeric", number: "23abc", valid: false},
		{name: "empty", number: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsLuhn(tt.number))
		})
	}
}
