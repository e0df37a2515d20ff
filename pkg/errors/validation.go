package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for user-supplied identifiers and queries.
const (
	MaxPersonIDLength    = 256
	MaxSearchQueryLength = 200
)

// ValidatePersonID validates a person or union id received from a shell
// (flag, URL segment, key press). It does not check that the id exists.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Valid UTF-8
//   - Maximum length of 256 bytes
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "person id cannot be empty")
	}
	if len(id) > MaxPersonIDLength {
		return New(ErrCodeInvalidInput, "person id too long (max %d characters)", MaxPersonIDLength)
	}
	if !utf8.ValidString(id) {
		return New(ErrCodeInvalidInput, "person id is not valid UTF-8")
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidInput, "person id contains invalid control characters")
	}
	return nil
}

// ValidateSearchQuery validates a name search. Surrounding whitespace is
// ignored; what remains must be non-empty printable text.
func ValidateSearchQuery(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return New(ErrCodeInvalidInput, "search query cannot be empty")
	}
	if len(q) > MaxSearchQueryLength {
		return New(ErrCodeInvalidInput, "search query too long (max %d characters)", MaxSearchQueryLength)
	}
	if strings.IndexFunc(q, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidInput, "search query contains invalid control characters")
	}
	return nil
}

// ValidatePhotoName validates a photo file name carried in a person record.
// It must be a plain file name, so a renderer can resolve it inside its
// photo directory without escaping it.
func ValidatePhotoName(name string) error {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "photo name cannot contain path separators: %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "\x00") {
		return New(ErrCodeInvalidPath, "invalid photo name: %q", name)
	}
	return nil
}

// ValidateMongoURI validates a MongoDB connection string scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongodb uri cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongodb uri must use the mongodb or mongodb+srv scheme")
	}
	return nil
}
