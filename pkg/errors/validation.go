package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxReferenceLength bounds repository names and references.
const maxReferenceLength = 255

// tagRegex matches a docker tag: a word character followed by up to 127
// word characters, dots or dashes.
var tagRegex = regexp.MustCompile(`^[\w][\w.-]{0,127}$`)

// repositoryRegex matches a repository name with an optional registry host:
// lowercase path components separated by '/', where each component may
// contain single '.', '_', '__' or dash-runs between alphanumerics.
var repositoryRegex = regexp.MustCompile(
	`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?)*(?::[0-9]+)?/)?` +
		`[a-z0-9]+(?:(?:[._]|__|-+)[a-z0-9]+)*(?:/[a-z0-9]+(?:(?:[._]|__|-+)[a-z0-9]+)*)*$`)

// ValidateRepository validates an image repository name such as "nginx",
// "library/nginx" or "registry.example.com:5000/team/app".
// Tags and digests are not allowed: versions are passed separately.
func ValidateRepository(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRepository, "repository name cannot be empty")
	}
	if len(name) > maxReferenceLength {
		return New(ErrCodeInvalidRepository, "repository name too long (max %d characters)", maxReferenceLength)
	}
	if hasControl(name) {
		return New(ErrCodeInvalidRepository, "repository name contains invalid control characters")
	}
	if strings.Contains(name, "@") {
		return New(ErrCodeInvalidRepository, "repository name cannot contain a digest: %q", name)
	}
	if !repositoryRegex.MatchString(name) {
		return New(ErrCodeInvalidRepository, "invalid repository name: %q", name)
	}
	return nil
}

// ValidateVersion validates a version suffix (an image tag such as "1.25"
// or "3.19-alpine").
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if !tagRegex.MatchString(version) {
		return New(ErrCodeInvalidVersion, "invalid version: %q", version)
	}
	return nil
}

// ValidateVersions validates every version and rejects an empty list.
func ValidateVersions(versions []string) error {
	if len(versions) == 0 {
		return New(ErrCodeInvalidVersion, "at least one version is required")
	}
	for _, v := range versions {
		if err := ValidateVersion(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateArchivePath validates the path of an image archive.
// Absolute paths are allowed; control characters and empty paths are not.
func ValidateArchivePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidReference, "archive path cannot be empty")
	}
	if hasControl(path) {
		return New(ErrCodeInvalidReference, "archive path contains invalid characters")
	}
	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
