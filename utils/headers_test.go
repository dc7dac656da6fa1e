// utils/headers_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FilterId", "FilterId"},
		{"\uFEFFFilterId", "FilterId"},
		{"  OC_ftir  ", "OC_ftir"},
		{"OC  MDL", "OC MDL"},
		{"OC\tMDL", "OC MDL"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanHeader(tt.in), "input %q", tt.in)
	}
}

func TestCleanHeaders(t *testing.T) {
	got := CleanHeaders([]string{"\uFEFFsample", " FTIR_OC ", "OC  MDL"})
	assert.Equal(t, []string{"sample", "FTIR_OC", "OC MDL"}, got)
}
