package validation

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid identifiers
		{"simple", "run-1", false},
		{"single char", "a", false},
		{"uuid", "7f6c0f3e-9a4b-4c0d-8d2e-1f5a6b7c8d9e", false},
		{"dotted", "org.acme", false},
		{"underscored", "candidate_42", false},
		{"max length", strings.Repeat("a", 64), false},

		// Invalid identifiers
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"path separator", "org/1", true},
		{"backslash", `org\1`, true},
		{"leading dot", ".hidden", true},
		{"traversal", "../../etc", true},
		{"whitespace", "org 1", true},
		{"null byte", "org\x001", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("test", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOptionalID(t *testing.T) {
	if err := ValidateOptionalID("org", ""); err != nil {
		t.Errorf("empty optional ID should validate, got %v", err)
	}
	if err := ValidateOptionalID("org", "bad/id"); err == nil {
		t.Error("invalid optional ID should fail")
	}
}
