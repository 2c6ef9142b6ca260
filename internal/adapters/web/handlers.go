package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/presentation"
)

// multipartOverhead is the room left for form boundaries around an upload
const multipartOverhead = 1 << 20

// pageData is what the index template renders
type pageData struct {
	Mode     core.Mode
	Loading  bool
	Failure  *core.Failure
	View     *presentation.View
	MinChars int
	MaxChars int
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

func (s *Server) index(c *gin.Context) {
	state, err := s.tracker.State(c.Request.Context(), sessionID(c))
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		c.String(http.StatusInternalServerError, "Session unavailable")
		return
	}

	c.HTML(http.StatusOK, "index.html", pageData{
		Mode:     state.Mode,
		Loading:  state.Loading,
		Failure:  state.Failure,
		View:     presentation.NewView(state.Result),
		MinChars: core.MinTextLength,
		MaxChars: core.MaxTextLength,
	})
}

func (s *Server) switchMode(c *gin.Context) {
	mode, err := core.ParseMode(c.Param("mode"))
	if err != nil {
		c.String(http.StatusNotFound, "Unknown mode")
		return
	}

	if _, err := s.tracker.SwitchMode(c.Request.Context(), sessionID(c), mode); err != nil {
		s.logger.Error("Failed to switch mode", zap.Error(err))
		c.String(http.StatusInternalServerError, "Session unavailable")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) classifyText(c *gin.Context) {
	ctx := c.Request.Context()
	text := c.PostForm("text")

	var err error
	if validationErr := core.ValidateText(text); validationErr != nil {
		_, err = s.tracker.Reject(ctx, sessionID(c), validationErr)
	} else {
		_, err = s.tracker.Submit(ctx, sessionID(c), func(ctx context.Context) (*core.ClassificationResult, error) {
			return s.service.ClassifyText(ctx, text)
		})
	}

	s.finish(c, err)
}

func (s *Server) classifyFile(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, core.MaxFileSize+multipartOverhead)

	file, err := readUpload(c)
	if err == nil && file == nil {
		err = core.ValidateFile(nil)
	}

	var storeErr error
	if err != nil {
		if core.KindOf(err) != core.KindValidation {
			s.logger.Warn("Failed to read upload", zap.Error(err))
		}
		_, storeErr = s.tracker.Reject(ctx, sessionID(c), err)
	} else {
		_, storeErr = s.tracker.Submit(ctx, sessionID(c), func(ctx context.Context) (*core.ClassificationResult, error) {
			return s.service.ClassifyFile(ctx, file)
		})
	}

	s.finish(c, storeErr)
}

// readUpload reads the "file" form field. A missing file yields a nil input
// so that validation reports it.
func readUpload(c *gin.Context) (*core.FileInput, error) {
	header, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return nil, core.ErrFileTooLarge
		case errors.Is(err, http.ErrMissingFile):
			return nil, nil
		default:
			return nil, err
		}
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = core.MediaTypeForFilename(header.Filename)
	}
	file := &core.FileInput{
		Name:      header.Filename,
		MediaType: mediaType,
		Size:      header.Size,
	}
	// Reject before reading the content
	if err := core.ValidateFile(file); err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file.Content, err = io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// finish redirects back to the page, which renders the stored outcome.
// A refused duplicate submission lands on the page of the one in flight.
func (s *Server) finish(c *gin.Context, err error) {
	if errors.Is(err, core.ErrSubmissionInFlight) {
		s.logger.Debug("Submission refused, session already loading", zap.String("session", sessionID(c)))
		err = nil
	}
	if err != nil {
		s.logger.Error("Failed to record submission", zap.Error(err))
		c.String(http.StatusInternalServerError, "Session unavailable")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) remoteHealth(c *gin.Context) {
	payload, err := s.service.Health(c.Request.Context())
	s.respondRemote(c, payload, err)
}

func (s *Server) remoteSystemInfo(c *gin.Context) {
	payload, err := s.service.SystemInfo(c.Request.Context())
	s.respondRemote(c, payload, err)
}

func (s *Server) respondRemote(c *gin.Context, payload map[string]interface{}, err error) {
	if err != nil {
		status := http.StatusBadGateway
		if transportErr := new(core.TransportError); errors.As(err, &transportErr) && transportErr.Timeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{
			"error": core.Describe(err),
			"kind":  core.KindOf(err),
		})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
