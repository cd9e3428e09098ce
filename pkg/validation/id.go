// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for caller-provided identifiers that
// end up in storage keys, file paths, or audit chain scopes. Using these
// validators prevents injection attacks (key-space collisions, path
// traversal) from externally supplied IDs.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches valid Proofdesk identifiers (run, candidate,
// application, and organization IDs).
// Allows: letters, digits, dots, underscores, hyphens.
// Max length: 64 characters.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{0,63}$`)

// ValidateID validates an externally supplied identifier before it is
// used in a storage key or audit chain scope.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters and digits
//   - Dots (.), underscores (_), hyphens (-) after the first character
//
// kind names the identifier in the error message ("run", "org", ...).
//
// Returns an error if the identifier is invalid.
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s ID must not be empty", kind)
	}
	if len(id) > 64 {
		return fmt.Errorf("%s ID too long: %d characters (max 64)", kind, len(id))
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("%s ID must not contain path separators: %q", kind, id)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid %s ID: %q", kind, id)
	}
	return nil
}

// ValidateOptionalID is ValidateID for identifiers that may be absent.
// An empty string is accepted; anything else must validate.
func ValidateOptionalID(kind, id string) error {
	if id == "" {
		return nil
	}
	return ValidateID(kind, id)
}
