package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds datasource names; they end up in DOM attributes.
const maxNameLength = 256

// datasourceNameRegex matches names usable as datasource identifiers.
var datasourceNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateDatasourceName validates a datasource name.
//
// Names must be non-empty, at most 256 characters, start with a letter or
// digit and contain only letters, digits, '.', '_', ':' and '-'.
func ValidateDatasourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "datasource name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "datasource name too long (max %d characters)", maxNameLength)
	}
	if !datasourceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid datasource name: %q", name)
	}
	return nil
}

// ValidatePath validates a data file path referenced from a config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateChromosome validates a chromosome (reference sequence) name.
// Names cannot be empty or contain whitespace, ':' or control characters.
func ValidateChromosome(chr string) error {
	if chr == "" {
		return New(ErrCodeInvalidWindow, "chromosome cannot be empty")
	}
	if strings.ContainsAny(chr, ": \t\r\n") {
		return New(ErrCodeInvalidWindow, "invalid chromosome name: %q", chr)
	}
	for _, r := range chr {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidWindow, "chromosome contains invalid characters")
		}
	}
	return nil
}
