// ingest/resolver_test.go
package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFilterKey(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"Tensor II_SN151_SM_ETAD_0042_2_PM2_5_02_13_2023_0_csv", "ETAD-0042-2", true},
		{"prefix_XSTN_0007_1_suffix", "XSTN-0007-1", true},
		{"a_ABCD_0001_1_b", "ABCD-0001-1", true},
		// Pattern absent or malformed.
		{"randomtext", "", false},
		{"", "", false},
		{"_etad_0042_2_", "", false},  // lowercase site token
		{"_ETAD_42_2_", "", false},    // sequence not 4 digits
		{"_ETAD_0042_22_", "", false}, // port not a single digit
		{"_ETA_0042_2_", "", false},   // site token not 4 letters
		{"ETAD_0042_2", "", false},    // no delimiting underscores
	}
	for _, tt := range tests {
		got, ok := ResolveFilterKey(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestResolveFilterKeyFirstMatchWins(t *testing.T) {
	got, ok := ResolveFilterKey("x_AAAA_1111_1_y_BBBB_2222_2_z")
	assert.True(t, ok)
	assert.Equal(t, "AAAA-1111-1", got)
}

func TestSiteFromFilterKey(t *testing.T) {
	assert.Equal(t, "ETAD", SiteFromFilterKey("ETAD-0042-2"))
	assert.Equal(t, "XSTN", SiteFromFilterKey("XSTN-0007-1"))
	assert.Equal(t, "NODASH", SiteFromFilterKey("NODASH"))
}
