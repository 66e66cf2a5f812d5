// SPDX-License-Identifier: Apache-2.0

package migration

import "hash/crc32"

// Checksum returns a deterministic signed 32-bit digest of payload,
// computed with CRC-32 (IEEE polynomial) and cast to int32. This is frozen:
// changing the algorithm retroactively reclassifies every previously applied
// migration as ChecksumMismatch. For file-sql migrations payload is the
// exact file contents, including trailing newlines; for executor-backed
// migrations it is the bytes of the source file declaring the migration.
func Checksum(payload []byte) int32 {
	return int32(crc32.ChecksumIEEE(payload)) //nolint:gosec // deliberate truncation to int32 per spec
}
