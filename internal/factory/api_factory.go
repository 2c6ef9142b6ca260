package factory

import (
	"fmt"

	"github.com/mikey/email-classifier/internal/adapters/api"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// APIClientFactory creates classification service clients
type APIClientFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAPIClientFactory creates a new API client factory
func NewAPIClientFactory(cfg *config.Config, logger *zap.Logger) *APIClientFactory {
	return &APIClientFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a classifier backed by the remote classification API
func (f *APIClientFactory) CreateClassifier() (core.Classifier, error) {
	apiCfg := f.cfg.GetAPI()
	if apiCfg.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required")
	}
	if apiCfg.Timeout <= 0 {
		return nil, fmt.Errorf("api.timeout_ms must be positive")
	}

	f.logger.Info("Using classification API",
		zap.String("base_url", apiCfg.BaseURL),
		zap.Duration("timeout", apiCfg.Timeout))

	return api.NewClient(api.ClientConfig{
		BaseURL:            apiCfg.BaseURL,
		Timeout:            apiCfg.Timeout,
		SlowBackendMessage: apiCfg.SlowBackendMessage,
	}, f.logger), nil
}
