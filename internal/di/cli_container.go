package di

import (
	"flag"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/logging"
)

// CLIFlags contains all command line flags for the CLI applications
type CLIFlags struct {
	// Input flags
	Text      string
	InputFile string
	EmailFile string

	// Remote endpoint flags
	Health     bool
	SystemInfo bool

	// Classification service flags
	APIURL  string
	Timeout time.Duration

	// Output flags
	JSON    bool
	Verbose bool
	JSONLog bool

	// Configuration file flag
	ConfigFile string
}

// RegisterClientFlags registers the flags shared by every client of the
// classification service
func RegisterClientFlags(fs *flag.FlagSet, flags *CLIFlags) {
	fs.StringVar(&flags.APIURL, "api-url", "", "Base URL of the classification service (overrides config)")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "Request timeout, e.g. 30s (overrides config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")
}

// ParseFlags parses the command line flags of the classifier CLI
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("email-classifier", flag.ContinueOnError)

	// Input flags
	fs.StringVar(&flags.Text, "text", "", "Email text to classify")
	fs.StringVar(&flags.InputFile, "file", "", "Path of a .txt or .pdf file to classify")
	fs.StringVar(&flags.EmailFile, "eml", "", "Path of an RFC 5322 message to classify, - for stdin")

	// Remote endpoint flags
	fs.BoolVar(&flags.Health, "health", false, "Print the health of the classification service")
	fs.BoolVar(&flags.SystemInfo, "system-info", false, "Print the system information of the classification service")

	// Output flags
	fs.BoolVar(&flags.JSON, "json", false, "Print results as JSON")

	RegisterClientFlags(fs, flags)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates a dependency injection container for the CLI
// applications
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags {
		return flags
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags) (*config.Config, error) {
		return createConfigFromFlags(flags)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	if err := provideClassification(container); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags loads the configuration and applies the command line
// overrides on top of it
func createConfigFromFlags(flags *CLIFlags) (*config.Config, error) {
	cfg, err := config.New(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	// Set some cli specific settings
	cfg.Set("cli.verbose", flags.Verbose)

	if flags.APIURL != "" {
		cfg.Set("api.base_url", flags.APIURL)
	}
	if flags.Timeout > 0 {
		cfg.Set("api.timeout_ms", flags.Timeout.Milliseconds())
	}

	return cfg, nil
}
