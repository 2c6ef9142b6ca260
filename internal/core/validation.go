package core

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MinTextLength is the minimum number of characters of a text submission
	MinTextLength = 10
	// MaxTextLength is the maximum number of characters of a text submission
	MaxTextLength = 5000
	// MaxFileSize is the largest file accepted for classification
	MaxFileSize = 10 * 1024 * 1024

	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
)

// MessageFileTooLarge is shown for uploads over MaxFileSize
const MessageFileTooLarge = "File too large. Maximum allowed: 10MB"

// ErrFileTooLarge rejects uploads that exceed MaxFileSize before they are fully read
var ErrFileTooLarge = &ValidationError{Reason: ReasonTooLarge, Message: MessageFileTooLarge}

// NormalizeText trims surrounding whitespace and composes the text to NFC,
// so that "é" typed as e + combining accent counts as one character.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// TextLength returns the number of characters of the normalized text
func TextLength(text string) int {
	return utf8.RuneCountInString(NormalizeText(text))
}

// ValidateText checks a text submission before it is sent anywhere
func ValidateText(text string) error {
	length := TextLength(text)

	if length == 0 {
		return newValidationError(ReasonEmptyInput, "Please insert text to classify")
	}
	if length < MinTextLength {
		return newValidationError(ReasonTooShort, "Text too short. Minimum of %d characters", MinTextLength)
	}
	if length > MaxTextLength {
		return newValidationError(ReasonTooLong, "Text too long. Maximum of %d characters", MaxTextLength)
	}
	return nil
}

// ValidateFile checks a file submission before it is sent anywhere
func ValidateFile(file *FileInput) error {
	if file == nil {
		return newValidationError(ReasonNoFile, "Select a file")
	}
	if file.Size > MaxFileSize {
		return newValidationError(ReasonTooLarge, MessageFileTooLarge)
	}
	if file.MediaType != MediaTypeText && file.MediaType != MediaTypePDF {
		return newValidationError(ReasonUnsupportedType, "Unsupported file type. Use only .txt or .pdf")
	}
	return nil
}

// MediaTypeForFilename returns the media type a browser would declare for an
// accepted file extension, or "" when the extension is not accepted.
func MediaTypeForFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return MediaTypeText
	case ".pdf":
		return MediaTypePDF
	default:
		return ""
	}
}
