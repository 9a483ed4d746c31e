// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest.
type Digest [32]byte

// recordDomainKey is the BLAKE3 key for event-record digests. Domain
// separation keeps record digests from colliding with any other
// BLAKE3 use of the same bytes. The value is the ASCII domain name
// zero-padded to 32 bytes, readable in hex dumps.
var recordDomainKey = [32]byte{
	'h', 'e', 'a', 'r', 't', 'h', '.', 'e', 'v', 'e', 'n', 't', '.',
	'r', 'e', 'c', 'o', 'r', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashRecord computes the record-domain BLAKE3 keyed digest of a
// stored event record. The digest is computed over the encoded record
// bytes exactly as they sit on disk, so verification needs no
// decoding.
func HashRecord(data []byte) Digest {
	// NewKeyed only fails for a wrong key length, which the fixed-size
	// array rules out.
	hasher, err := blake3.NewKeyed(recordDomainKey[:])
	if err != nil {
		panic("binhash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format stored alongside records and
// used in log output.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded digest string into a Digest.
// Returns an error if the string is not a valid 64-character hex
// encoding of 32 bytes.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("hash digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}
