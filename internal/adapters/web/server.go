package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/presentation"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Service is the classification use case the front end drives
type Service interface {
	ClassifyText(ctx context.Context, text string) (*core.ClassificationResult, error)
	ClassifyFile(ctx context.Context, file *core.FileInput) (*core.ClassificationResult, error)
	Health(ctx context.Context) (map[string]interface{}, error)
	SystemInfo(ctx context.Context) (map[string]interface{}, error)
}

// Config holds the settings of the web front end
type Config struct {
	ListenAddress string
	Mode          string
	CookieName    string
	SessionTTL    time.Duration
}

// Server is the browser front end of the classifier
type Server struct {
	cfg     Config
	engine  *gin.Engine
	service Service
	tracker *core.Tracker
	logger  *zap.Logger
}

// NewServer creates the web server and registers its routes
func NewServer(cfg Config, service Service, tracker *core.Tracker, logger *zap.Logger) (*Server, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.MaxMultipartMemory = core.MaxFileSize

	// Middleware
	engine.Use(RequestID())
	engine.Use(Logger(logger))
	engine.Use(Recovery(logger))

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		service: service,
		tracker: tracker,
		logger:  logger,
	}
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.healthz)

	api := s.engine.Group("/api")
	{
		api.GET("/health", s.remoteHealth)
		api.GET("/system_info", s.remoteSystemInfo)
	}

	pages := s.engine.Group("/", Session(s.cfg.CookieName, s.cfg.SessionTTL))
	{
		pages.GET("", s.index)
		pages.GET("/mode/:mode", s.switchMode)
		pages.POST("/classify/text", s.classifyText)
		pages.POST("/classify/file", s.classifyFile)
	}
}

// Handler returns the HTTP handler of the front end
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting web server", zap.String("address", s.cfg.ListenAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

var templateFuncs = template.FuncMap{
	"lower": func(s string) string { return strings.ToLower(s) },
	"tierClass": func(t presentation.Tier) string {
		return strings.ToLower(strings.Fields(t.Label())[0])
	},
	"timestamp": func(t time.Time) string {
		return t.Local().Format("02/01/2006 15:04:05")
	},
}
