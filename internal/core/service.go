package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ClassificationService validates submissions and forwards them to the classifier
type ClassificationService struct {
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewClassificationService creates a new classification service
func NewClassificationService(classifier Classifier, logger *zap.Logger) *ClassificationService {
	return &ClassificationService{
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// ClassifyText validates and classifies a text submission
func (s *ClassificationService) ClassifyText(ctx context.Context, text string) (*ClassificationResult, error) {
	// Validation failures never reach the network
	if err := ValidateText(text); err != nil {
		s.logger.Debug("Rejected text submission", zap.Error(err))
		return nil, err
	}

	startTime := time.Now()
	resp, err := s.classifier.ClassifyText(ctx, text)
	if err != nil {
		s.logFailure("text", startTime, err)
		return nil, err
	}

	result := NewClassificationResult(resp, text, s.now())
	s.logSuccess("text", startTime, result)
	return result, nil
}

// ClassifyFile validates and classifies a file submission
func (s *ClassificationService) ClassifyFile(ctx context.Context, file *FileInput) (*ClassificationResult, error) {
	if err := ValidateFile(file); err != nil {
		s.logger.Debug("Rejected file submission", zap.Error(err))
		return nil, err
	}

	startTime := time.Now()
	resp, err := s.classifier.ClassifyFile(ctx, file)
	if err != nil {
		s.logFailure("file", startTime, err)
		return nil, err
	}

	result := NewClassificationResult(resp, "File: "+file.Name, s.now())
	s.logSuccess("file", startTime, result)
	return result, nil
}

// Health returns the classification service health payload
func (s *ClassificationService) Health(ctx context.Context) (map[string]interface{}, error) {
	return s.classifier.CheckHealth(ctx)
}

// SystemInfo returns the classification service information payload
func (s *ClassificationService) SystemInfo(ctx context.Context) (map[string]interface{}, error) {
	return s.classifier.GetSystemInfo(ctx)
}

func (s *ClassificationService) logSuccess(input string, startTime time.Time, result *ClassificationResult) {
	s.logger.Info("Classified email",
		zap.String("input", input),
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence),
		zap.String("method", string(result.MethodUsed)),
		zap.Duration("duration", time.Since(startTime)))
}

func (s *ClassificationService) logFailure(input string, startTime time.Time, err error) {
	s.logger.Warn("Classification failed",
		zap.String("input", input),
		zap.String("kind", string(KindOf(err))),
		zap.Duration("duration", time.Since(startTime)),
		zap.Error(err))
}
