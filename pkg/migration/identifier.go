// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"regexp"
	"strconv"
	"strings"
)

// versionPattern and descriptionPattern are frozen: changing them reclassifies
// every migration file already on disk in every consumer of this package.
var (
	versionPattern     = regexp.MustCompile(`^[0-9]+([._][0-9]+)*$`)
	descriptionPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	filenamePattern    = regexp.MustCompile(`^V([0-9._]+)__([a-z0-9_]+)\.([A-Za-z0-9]+)$`)
)

// identifier is the parsed form of a migration filename, before the Kind for
// its extension has been resolved against the directory's extension map.
type identifier struct {
	versionDisplay string
	version        []int64
	description    string
	ext            string
}

// parseIdentifier parses a migration filename of the form
// V<version>__<description>.<ext>. The version vector is built by splitting
// the version string on '.' or '_' and parsing each token as an integer;
// leading zeros are accepted but do not affect ordering.
func parseIdentifier(filename string) (identifier, error) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return identifier{}, BadFilenameError{Filename: filename}
	}

	versionDisplay, description, ext := m[1], m[2], m[3]

	if !versionPattern.MatchString(versionDisplay) {
		return identifier{}, BadFilenameError{Filename: filename, Reason: "invalid version"}
	}
	if !descriptionPattern.MatchString(description) {
		return identifier{}, BadFilenameError{Filename: filename, Reason: "invalid description"}
	}

	version, err := parseVersionVector(versionDisplay)
	if err != nil {
		return identifier{}, BadFilenameError{Filename: filename, Reason: err.Error()}
	}

	return identifier{
		versionDisplay: versionDisplay,
		version:        version,
		description:    description,
		ext:            ext,
	}, nil
}

// parseVersionVector splits a version string on '.' or '_' and parses each
// component as a non-negative integer.
func parseVersionVector(versionDisplay string) ([]int64, error) {
	parts := strings.FieldsFunc(versionDisplay, func(r rune) bool {
		return r == '.' || r == '_'
	})

	vector := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		vector[i] = n
	}
	return vector, nil
}

// displayDescription turns the stored lowercase/underscore description into
// its human-readable form, with underscores replaced by single spaces.
func displayDescription(description string) string {
	return strings.ReplaceAll(description, "_", " ")
}

// compareVersions implements the total order required by spec §4.3: shorter
// vectors are less than longer ones once the shared prefix is equal, e.g.
// 2 < 2.1.
func compareVersions(a, b []int64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// versionKey renders a version vector into a string usable as a map key for
// duplicate detection, independent of the original display form.
func versionKey(v []int64) string {
	var sb strings.Builder
	for i, n := range v {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatInt(n, 10))
	}
	return sb.String()
}
