package factory

import (
	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/utils"
	"go.uber.org/zap"
)

// IntakeFactory creates the mail intake
type IntakeFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.ClassificationService
	textProcessor *utils.TextProcessor
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ClassificationService,
	textProcessor *utils.TextProcessor,
) *IntakeFactory {
	return &IntakeFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// IsEnabled returns whether the mail intake should run
func (f *IntakeFactory) IsEnabled() bool {
	return f.cfg.GetIntake().Enabled
}

// CreateIntake creates the mail intake from the configuration
func (f *IntakeFactory) CreateIntake() *intake.Intake {
	intakeCfg := f.cfg.GetIntake()
	apiCfg := f.cfg.GetAPI()

	if !intakeCfg.Relay.Enabled {
		f.logger.Warn("Mail intake relay is disabled, classified mail will not be delivered")
	}

	return intake.New(intake.Config{
		ListenAddress:   intakeCfg.ListenAddress,
		Domain:          intakeCfg.Domain,
		MaxMessageBytes: intakeCfg.MaxBodySize,
		ClassifyTimeout: apiCfg.Timeout,
		RelayEnabled:    intakeCfg.Relay.Enabled,
		RelayAddress:    intakeCfg.Relay.Address,
		RelayPort:       intakeCfg.Relay.Port,
		SkipDomains:     intakeCfg.SkipDomains,
		Headers: intake.Headers{
			Category:   intakeCfg.Headers.Category,
			Confidence: intakeCfg.Headers.Confidence,
			Method:     intakeCfg.Headers.Method,
			Error:      intakeCfg.Headers.Error,
		},
	}, f.service, f.textProcessor, f.logger)
}
