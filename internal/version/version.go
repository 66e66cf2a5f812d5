// SPDX-License-Identifier: Apache-2.0

// Package version compares the schemalane binary version against the
// version recorded in a schema's history table at bootstrap time, so that an
// older binary opening a history table written by a newer one can warn
// instead of silently misbehaving.
package version

import "golang.org/x/mod/semver"

// Compatibility describes the result of comparing a binary version against
// a schema's recorded version marker.
type Compatibility int

const (
	// CompatCheckSkipped means no comparison was possible (development
	// build, unversioned schema, or invalid semver on either side).
	CompatCheckSkipped Compatibility = iota
	CompatOlder
	CompatEqual
	CompatNewer
)

// Compare reports how binaryVersion relates to schemaVersion. Development
// builds and malformed semver strings are never treated as an error:
// schemalane must inform, never refuse to operate, on a version mismatch.
func Compare(binaryVersion, schemaVersion string) Compatibility {
	if binaryVersion == "development" || schemaVersion == "development" {
		return CompatCheckSkipped
	}

	bv := ensureVPrefix(binaryVersion)
	sv := ensureVPrefix(schemaVersion)

	if !semver.IsValid(bv) || !semver.IsValid(sv) {
		return CompatCheckSkipped
	}

	switch semver.Compare(semver.Canonical(bv), semver.Canonical(sv)) {
	case -1:
		return CompatOlder
	case 1:
		return CompatNewer
	default:
		return CompatEqual
	}
}

func ensureVPrefix(v string) string {
	if len(v) > 0 && v[0] != 'v' {
		return "v" + v
	}
	return v
}
