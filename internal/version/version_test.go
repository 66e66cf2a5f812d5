// SPDX-License-Identifier: Apache-2.0

package version_test

import (
	"testing"

	"github.com/schemalane/schemalane/internal/version"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		name   string
		binary string
		schema string
		want   version.Compatibility
	}{
		{"equal", "1.2.3", "1.2.3", version.CompatEqual},
		{"equal with v prefix mismatch", "v1.2.3", "1.2.3", version.CompatEqual},
		{"binary older", "1.2.3", "1.3.0", version.CompatOlder},
		{"binary newer", "1.3.0", "1.2.3", version.CompatNewer},
		{"development binary skips", "development", "1.2.3", version.CompatCheckSkipped},
		{"development schema skips", "1.2.3", "development", version.CompatCheckSkipped},
		{"malformed binary skips", "not-a-version", "1.2.3", version.CompatCheckSkipped},
		{"malformed schema skips", "1.2.3", "not-a-version", version.CompatCheckSkipped},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := version.Compare(tc.binary, tc.schema); got != tc.want {
				t.Errorf("Compare(%q, %q) = %v, want %v", tc.binary, tc.schema, got, tc.want)
			}
		})
	}
}
