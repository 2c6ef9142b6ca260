package factory

import (
	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// WebFactory creates the browser front end
type WebFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ClassificationService
	tracker *core.Tracker
}

// NewWebFactory creates a new web factory
func NewWebFactory(cfg *config.Config, logger *zap.Logger, service *core.ClassificationService, tracker *core.Tracker) *WebFactory {
	return &WebFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		tracker: tracker,
	}
}

// CreateServer creates the web server
func (f *WebFactory) CreateServer() (*web.Server, error) {
	serverCfg := f.cfg.GetServer()
	sessionCfg, err := f.cfg.GetSession()
	if err != nil {
		return nil, err
	}

	return web.NewServer(web.Config{
		ListenAddress: serverCfg.ListenAddress,
		Mode:          serverCfg.Mode,
		CookieName:    sessionCfg.CookieName,
		SessionTTL:    sessionCfg.TTL,
	}, f.service, f.tracker, f.logger)
}
