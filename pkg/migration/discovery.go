// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/schemalane/schemalane/internal/connstr"
)

// DefaultExtensions maps the two recognized migration file extensions to
// their Kind. "rs" is kept as the historical executor-backed extension from
// schemalane's Flyway lineage; embedding applications that compile
// executor-backed migrations under a different extension should pass
// WithExtensions.
var DefaultExtensions = map[string]Kind{
	"sql": KindFileSQL,
	"rs":  KindExecutorBacked,
}

type discoverOptions struct {
	extensions map[string]Kind
}

// Option customizes a Discover call.
type Option func(*discoverOptions)

// WithExtensions overrides the file-extension-to-Kind mapping used during
// discovery. The zero value of the map is never valid; omit this option to
// use DefaultExtensions.
func WithExtensions(extensions map[string]Kind) Option {
	return func(o *discoverOptions) {
		o.extensions = extensions
	}
}

// Discover walks dir (a single flat directory; recursive discovery is not
// supported), validates every recognized migration filename, and returns a
// Plan ordered by version. databaseURL is validated for a postgres scheme
// here so that validation is atomic with discovery, per spec.
func Discover(dir, databaseURL string, opts ...Option) (*Plan, error) {
	options := discoverOptions{extensions: DefaultExtensions}
	for _, o := range opts {
		o(&options)
	}

	if !connstr.IsPostgres(databaseURL) {
		return nil, NonPostgresURLError{URL: databaseURL}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, UnreadableDirectoryError{Dir: dir, Cause: err}
	}

	var (
		migrations     []Migration
		validationErrs []error
		byVersion      = map[string][]string{}
		byScript       = map[string]bool{}
	)

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		ext := extOf(entry.Name())
		kind, recognized := options.extensions[ext]
		if !recognized {
			continue
		}

		id, err := parseIdentifier(entry.Name())
		if err != nil {
			validationErrs = append(validationErrs, err)
			continue
		}

		if byScript[entry.Name()] {
			validationErrs = append(validationErrs, DuplicateScriptError{Script: entry.Name()})
			continue
		}
		byScript[entry.Name()] = true

		vk := versionKey(id.version)
		byVersion[vk] = append(byVersion[vk], entry.Name())

		m := Migration{
			Kind:           kind,
			Version:        id.version,
			VersionDisplay: id.versionDisplay,
			Description:    id.description,
			Script:         entry.Name(),
		}

		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			validationErrs = append(validationErrs, UnreadableDirectoryError{Dir: dir, Cause: err})
			continue
		}
		m.Checksum = Checksum(payload)

		switch kind {
		case KindFileSQL:
			m.SQL = string(payload)
		default:
			m.ExecutorName = entry.Name()
		}

		migrations = append(migrations, m)
	}

	for vk, scripts := range byVersion {
		if len(scripts) > 1 {
			sort.Strings(scripts)
			versionErr := DuplicateVersionError{Version: displayVersionFor(migrations, vk), Scripts: scripts}
			validationErrs = append(validationErrs, versionErr)
		}
	}

	if len(validationErrs) > 0 {
		return nil, ValidationErrors{Errors: validationErrs}
	}

	sort.Slice(migrations, func(i, j int) bool {
		return compareVersions(migrations[i].Version, migrations[j].Version) < 0
	})

	return &Plan{Migrations: migrations}, nil
}

func extOf(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}

// displayVersionFor finds a human-readable version string for an error
// message, falling back to the version key itself if every Migration with
// that key failed to parse.
func displayVersionFor(migrations []Migration, vk string) string {
	for _, m := range migrations {
		if versionKey(m.Version) == vk {
			return m.VersionDisplay
		}
	}
	return vk
}
