package tui

import "github.com/mikey/email-classifier/internal/core"

// ClassifiedMsg carries the outcome of submission Seq
type ClassifiedMsg struct {
	Seq    uint64
	Result *core.ClassificationResult
	Err    error
}
