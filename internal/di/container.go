package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/factory"
	"github.com/mikey/email-classifier/internal/logging"
	"github.com/mikey/email-classifier/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the web front end and the mail intake
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.New(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideClassification(container); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSessionStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewWebFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}

	// Register session store
	if err := container.Provide(func(f *factory.SessionStoreFactory) (factory.SessionStore, error) {
		return f.CreateSessionStore()
	}); err != nil {
		return nil, err
	}

	// Register submission tracker
	if err := container.Provide(func(store factory.SessionStore, logger *zap.Logger) *core.Tracker {
		return core.NewTracker(store, logger)
	}); err != nil {
		return nil, err
	}

	// Register web server
	if err := container.Provide(func(f *factory.WebFactory) (*web.Server, error) {
		return f.CreateServer()
	}); err != nil {
		return nil, err
	}

	// Register mail intake, nil when disabled
	if err := container.Provide(func(f *factory.IntakeFactory) *intake.Intake {
		if !f.IsEnabled() {
			return nil
		}
		return f.CreateIntake()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideClassification registers the API client, the classification
// service and the text processor
func provideClassification(container *dig.Container) error {
	if err := container.Provide(factory.NewAPIClientFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.APIClientFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return err
	}

	// Register classification service
	if err := container.Provide(core.NewClassificationService); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	return nil
}
