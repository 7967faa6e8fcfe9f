package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain digits", "9876543210", "9876543210", false},
		{"with spaces and dashes", "98765 432-10", "9876543210", false},
		{"with country code", "+919876543210", "9876543210", false},
		{"too short", "12345", "", true},
		{"empty", "", "", true},
		{"letters only", "abcdef", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMobile(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMobile)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
