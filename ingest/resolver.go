// ingest/resolver.go
package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// filterKeyPattern matches the station/sequence/port triple embedded in
// instrument sample labels: a 4-letter uppercase site token, a 4-digit
// sequence, and a single-digit port, each underscore-delimited, e.g.
// "Tensor II_SN151_SM_ETAD_0042_2_PM2_5_02_13_2023_0_csv".
var filterKeyPattern = regexp.MustCompile(`_([A-Z]{4})_(\d{4})_(\d)_`)

// ResolveFilterKey extracts the canonical SITE-NNNN-P filter key from a
// free-text sample label. The second return is false when the label does
// not embed the triple; callers must leave such rows unresolved rather
// than fabricate a partial key.
func ResolveFilterKey(label string) (string, bool) {
	m := filterKeyPattern.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
}

// SiteFromFilterKey returns the leading site segment of a filter key
// (everything before the first dash).
func SiteFromFilterKey(key string) string {
	if i := strings.Index(key, "-"); i >= 0 {
		return key[:i]
	}
	return key
}
