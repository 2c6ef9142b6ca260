package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/tui"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/di"
)

func main() {
	flags := &di.CLIFlags{}
	di.RegisterClientFlags(flag.CommandLine, flags)
	flag.Parse()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(logger *zap.Logger, service *core.ClassificationService) error {
		defer logger.Sync()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p := tea.NewProgram(tui.NewModel(ctx, service), tea.WithAltScreen())
		_, err := p.Run()
		return err
	})
	if err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
