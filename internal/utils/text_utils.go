package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// truncationMarker ends a text that was cut to fit a character limit
const truncationMarker = " [...]"

// TextProcessor prepares free text for classification
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxChars characters, marker included.
// Characters are counted on the NFC form, the same way submissions are validated.
func (tp *TextProcessor) TruncateText(text string, maxChars int) string {
	text = norm.NFC.String(text)
	length := utf8.RuneCountInString(text)
	if maxChars <= 0 || length <= maxChars {
		return text
	}

	keep := maxChars - utf8.RuneCountInString(truncationMarker)
	if keep <= 0 {
		return string([]rune(text)[:maxChars])
	}

	truncated := strings.TrimRightFunc(string([]rune(text)[:keep]), unicode.IsSpace)

	tp.logger.Debug("Text truncated",
		zap.Int("original_chars", length),
		zap.Int("max_chars", maxChars))

	return truncated + truncationMarker
}

// SanitizeUTF8 drops invalid UTF-8 bytes and control characters other than
// line breaks and tabs
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	dropped := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			dropped++
			continue
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			if r != '\r' {
				dropped++
			}
			continue
		}
		b.WriteRune(r)
	}

	if dropped > 0 {
		tp.logger.Debug("Text sanitized", zap.Int("dropped", dropped))
	}

	return b.String()
}

// ProcessText sanitizes, trims and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxChars int) string {
	sanitized := strings.TrimSpace(tp.SanitizeUTF8(text))
	return tp.TruncateText(sanitized, maxChars)
}
