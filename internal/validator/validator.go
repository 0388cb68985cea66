package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidAddress      = errors.New("invalid wallet address")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidSource       = errors.New("invalid withdrawal source")
	ErrSubjectRequired     = errors.New("subject is required")
	ErrDescriptionTooShort = errors.New("description must be at least 20 characters")
	ErrInvalidUploadType   = errors.New("only JPG, PNG or PDF files are accepted")
	ErrUploadTooLarge      = errors.New("file size must be under 5MB")
)

const maxUploadBytes = 5 * 1024 * 1024

// TRC20 addresses: base58, "T" prefix, 34 chars.
var trc20Regex = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

var allowedMethods = map[string]bool{
	"USDT_TRC20": true,
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

func ValidateTargetAddress(address string) error {
	if !trc20Regex.MatchString(strings.TrimSpace(address)) {
		return ErrInvalidAddress
	}
	return nil
}

func ValidateMethod(method string) error {
	if !allowedMethods[method] {
		return ErrInvalidMethod
	}
	return nil
}

func ValidateSource(source string) error {
	if source != "PROFIT" && source != "CAPITAL" {
		return ErrInvalidSource
	}
	return nil
}

func ValidateTicket(subject, description string) error {
	if strings.TrimSpace(subject) == "" {
		return ErrSubjectRequired
	}
	if len(strings.TrimSpace(description)) < 20 {
		return ErrDescriptionTooShort
	}
	return nil
}

func ValidateUpload(mimeType string, sizeBytes int64) error {
	if !allowedMimeTypes[mimeType] {
		return ErrInvalidUploadType
	}
	if sizeBytes <= 0 || sizeBytes > maxUploadBytes {
		return ErrUploadTooLarge
	}
	return nil
}
