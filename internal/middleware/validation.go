// Package middleware provides HTTP middleware for the Pictoria API.
package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Validation limits.
const (
	// MaxTagLength is the maximum length for a single tag.
	MaxTagLength = 64

	// MaxTagsPerImage is the maximum number of tags on one image.
	MaxTagsPerImage = 25

	// MaxImageNameLength is the maximum length for an image display name.
	MaxImageNameLength = 128

	// MaxPromptLength is the maximum length for a generation prompt.
	MaxPromptLength = 2000

	// MaxImageURLLength is the maximum length for stored image URLs.
	MaxImageURLLength = 2048
)

// Validation errors.
var (
	ErrTagEmpty          = errors.New("tag is empty")
	ErrTagTooLong        = errors.New("tag exceeds maximum length")
	ErrTagInvalid        = errors.New("tag contains invalid characters")
	ErrTooManyTags       = errors.New("too many tags")
	ErrImageNameTooLong  = errors.New("image name exceeds maximum length")
	ErrPromptEmpty       = errors.New("prompt is empty")
	ErrPromptTooLong     = errors.New("prompt exceeds maximum length")
	ErrImageURLTooLong   = errors.New("image URL exceeds maximum length")
	ErrImageURLInvalid   = errors.New("image URL is invalid")
	ErrImageURLUnsafe    = errors.New("image URL uses unsafe scheme")
	ErrNameInvalidEncode = errors.New("image name contains control characters")
)

// validTagPattern matches valid tag characters.
// Allowed: letters, digits, space, hyphen, underscore
var validTagPattern = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)

// ValidateTag validates a single tag value.
func ValidateTag(tag string) error {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return ErrTagEmpty
	}

	if len(trimmed) > MaxTagLength {
		return ErrTagTooLong
	}

	if !validTagPattern.MatchString(trimmed) {
		return ErrTagInvalid
	}

	return nil
}

// ValidateTags validates a full tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagsPerImage {
		return ErrTooManyTags
	}

	for _, tag := range tags {
		if err := ValidateTag(tag); err != nil {
			return err
		}
	}

	return nil
}

// ValidateImageName validates an image display name.
func ValidateImageName(name string) error {
	if name == "" {
		return nil // Empty is valid (name is optional)
	}

	if len(name) > MaxImageNameLength {
		return ErrImageNameTooLong
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrNameInvalidEncode
		}
	}

	return nil
}

// ValidatePrompt validates a generation prompt.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrPromptEmpty
	}

	if len(prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}

	return nil
}

// ValidateImageURL validates a stored image URL.
func ValidateImageURL(url string) error {
	if len(url) > MaxImageURLLength {
		return ErrImageURLTooLong
	}

	// Basic scheme validation
	lowerURL := strings.ToLower(url)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return ErrImageURLInvalid
	}

	// Block dangerous schemes (in case of URL encoding tricks)
	forbiddenSchemes := []string{"javascript:", "data:", "vbscript:", "file:"}
	for _, scheme := range forbiddenSchemes {
		if strings.Contains(lowerURL, scheme) {
			return ErrImageURLUnsafe
		}
	}

	return nil
}
