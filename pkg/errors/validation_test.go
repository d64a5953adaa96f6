package errors

import (
	"strings"
	"testing"
)

func TestValidateRepository(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "nginx", false},
		{"namespaced", "library/nginx", false},
		{"separators", "my_org/my-app.web", false},
		{"double underscore", "a__b", false},
		{"registry host", "ghcr.io/org/app", false},
		{"registry with port", "localhost:5000/app", false},
		{"registry mixed case host", "Registry.Example.com/app", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"uppercase path", "library/Nginx", true},
		{"with tag", "nginx:1.25", true},
		{"with digest", "nginx@sha256:abc", true},
		{"leading separator", "-nginx", true},
		{"trailing slash", "nginx/", true},
		{"double slash", "org//app", true},
		{"control char", "ngi\x01nx", true},
		{"space", "my app", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepository(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRepository) {
				t.Errorf("ValidateRepository(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRepository)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"semver", "1.25.3", false},
		{"suffix", "3.19-alpine", false},
		{"latest", "latest", false},
		{"underscore start", "_x", false},
		{"max length", strings.Repeat("a", 128), false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"leading dot", ".1", true},
		{"leading dash", "-rc", true},
		{"colon", "1:2", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersions(t *testing.T) {
	if err := ValidateVersions(nil); err == nil {
		t.Error("ValidateVersions(nil) should fail")
	}
	if err := ValidateVersions([]string{"1", "bad:tag"}); err == nil {
		t.Error("ValidateVersions with an invalid entry should fail")
	}
	if err := ValidateVersions([]string{"1", "2"}); err != nil {
		t.Errorf("ValidateVersions() = %v", err)
	}
}

func TestValidateArchivePath(t *testing.T) {
	if err := ValidateArchivePath("/tmp/app.tar"); err != nil {
		t.Errorf("absolute path rejected: %v", err)
	}
	if err := ValidateArchivePath(""); err == nil {
		t.Error("empty path accepted")
	}
	if err := ValidateArchivePath("a\nb.tar"); err == nil {
		t.Error("control character accepted")
	}
}
