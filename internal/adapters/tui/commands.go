package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/utils"
)

// classifyText creates a command that classifies a text as submission seq
func classifyText(ctx context.Context, service Service, seq uint64, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := service.ClassifyText(ctx, text)
		return ClassifiedMsg{Seq: seq, Result: result, Err: err}
	}
}

// classifyFile creates a command that loads and classifies a file as submission seq
func classifyFile(ctx context.Context, service Service, seq uint64, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := utils.LoadFile(path)
		if err != nil {
			return ClassifiedMsg{Seq: seq, Err: err}
		}
		result, err := service.ClassifyFile(ctx, file)
		return ClassifiedMsg{Seq: seq, Result: result, Err: err}
	}
}

// Service is the classification use case the terminal UI drives
type Service interface {
	ClassifyText(ctx context.Context, text string) (*core.ClassificationResult, error)
	ClassifyFile(ctx context.Context, file *core.FileInput) (*core.ClassificationResult, error)
}
