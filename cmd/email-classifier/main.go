package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/adapters/tui"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/di"
	"github.com/mikey/email-classifier/internal/presentation"
	"github.com/mikey/email-classifier/internal/utils"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(
		logger *zap.Logger,
		service *core.ClassificationService,
		textProcessor *utils.TextProcessor,
	) error {
		defer logger.Sync()
		return run(context.Background(), flags, service, textProcessor)
	})
	if err != nil {
		apiErr := core.Describe(err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", apiErr.Message)
		if apiErr.Detail != "" {
			fmt.Fprintf(os.Stderr, "Detail: %s\n", apiErr.Detail)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *di.CLIFlags, service *core.ClassificationService, textProcessor *utils.TextProcessor) error {
	switch {
	case flags.Health:
		payload, err := service.Health(ctx)
		if err != nil {
			return err
		}
		return printJSON(payload)
	case flags.SystemInfo:
		payload, err := service.SystemInfo(ctx)
		if err != nil {
			return err
		}
		return printJSON(payload)
	}

	result, err := classify(ctx, flags, service, textProcessor)
	if err != nil {
		return err
	}

	if flags.JSON {
		return printJSON(result)
	}
	fmt.Println(tui.RenderResult(presentation.NewView(result)))
	return nil
}

func classify(
	ctx context.Context,
	flags *di.CLIFlags,
	service *core.ClassificationService,
	textProcessor *utils.TextProcessor,
) (*core.ClassificationResult, error) {
	switch {
	case flags.InputFile != "":
		file, err := utils.LoadFile(flags.InputFile)
		if err != nil {
			return nil, err
		}
		return service.ClassifyFile(ctx, file)
	case flags.EmailFile != "":
		text, err := readEmail(flags.EmailFile, textProcessor)
		if err != nil {
			return nil, err
		}
		return service.ClassifyText(ctx, text)
	case flags.Text != "":
		return service.ClassifyText(ctx, flags.Text)
	default:
		// Read the text from stdin
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return service.ClassifyText(ctx, string(data))
	}
}

// readEmail extracts the classifiable text of a message file
func readEmail(path string, textProcessor *utils.TextProcessor) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open message: %w", err)
		}
		defer f.Close()
		r = f
	}

	msg, err := intake.ParseMessage(r)
	if err != nil {
		return "", err
	}
	return textProcessor.ProcessText(msg.Text(), core.MaxTextLength), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
