// Package canonical provides the byte-stable serialization used for dataset
// fingerprints, golden snapshots and JSONL export.
//
// Canonical JSON here follows RFC 8785 ordering rules:
//   - Object keys sorted by UTF-16 code units
//   - No HTML escaping
//   - Strings NFC normalized
//   - No floats
//
// Unlike strict RFC 8785 JSON, null is permitted because exported rows carry
// optional columns (a missing count, an unknown pitcher).
//
// Hashes are SHA-256 with domain separation: SHA256(domain + 0x00 + data).
package canonical
