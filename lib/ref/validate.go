// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// validateServer checks that a Matrix server name is minimally valid:
// non-empty, no control characters or spaces, no Matrix sigils.
func validateServer(server string) error {
	if server == "" {
		return fmt.Errorf("server name is empty")
	}
	for i := 0; i < len(server); i++ {
		c := server[i]
		if c <= ' ' || c == '@' || c == '#' || c == '!' || c == '$' {
			return fmt.Errorf("server name %q: invalid character at position %d", server, i)
		}
	}
	return nil
}

// parseSigilID splits a Matrix identifier with the given sigil prefix
// into its localpart and server name. The server part is optional when
// allowServerless is set (event IDs since room version 4, room IDs
// under the create-hash room ID rule).
func parseSigilID(identifier string, sigil byte, kind string, allowServerless bool) (localpart, server string, err error) {
	if len(identifier) < 2 || identifier[0] != sigil {
		return "", "", fmt.Errorf("invalid %s %q: must start with %c", kind, identifier, sigil)
	}
	colonIndex := strings.IndexByte(identifier[1:], ':')
	if colonIndex < 0 {
		if allowServerless {
			return identifier[1:], "", nil
		}
		return "", "", fmt.Errorf("invalid %s %q: missing :server", kind, identifier)
	}
	localpart = identifier[1 : 1+colonIndex]
	server = identifier[1+colonIndex+1:]
	if localpart == "" {
		return "", "", fmt.Errorf("invalid %s %q: empty localpart", kind, identifier)
	}
	if server == "" {
		return "", "", fmt.Errorf("invalid %s %q: empty server", kind, identifier)
	}
	return localpart, server, nil
}
