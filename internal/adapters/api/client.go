package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

const (
	// DefaultSlowBackendMessage is shown when the service does not answer in time
	DefaultSlowBackendMessage = "The classification service took too long to respond. " +
		"It may be starting up after a period of inactivity (cold start); please try again in a few seconds."

	processEmailPath = "/process_email"
	healthPath       = "/health"
	systemInfoPath   = "/system_info"

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 4 << 20
)

// ClientConfig holds the settings of the classification API client
type ClientConfig struct {
	BaseURL            string
	Timeout            time.Duration
	SlowBackendMessage string
}

// Client is an HTTP client for the classification service
type Client struct {
	baseURL            string
	httpClient         *http.Client
	slowBackendMessage string
	logger             *zap.Logger
}

// NewClient creates a new classification service client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	message := cfg.SlowBackendMessage
	if message == "" {
		message = DefaultSlowBackendMessage
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		slowBackendMessage: message,
		logger:             logger,
	}
}

// ClassifyText sends a text for classification
func (c *Client) ClassifyText(ctx context.Context, text string) (*core.ClassificationResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("text", strings.TrimSpace(text)); err != nil {
		return nil, fmt.Errorf("failed to write text field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.processEmail(ctx, &body, writer.FormDataContentType())
}

// ClassifyFile sends a file for classification
func (c *Client) ClassifyFile(ctx context.Context, file *core.FileInput) (*core.ClassificationResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", file.MediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.processEmail(ctx, &body, writer.FormDataContentType())
}

// CheckHealth returns the health payload of the classification service
func (c *Client) CheckHealth(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, healthPath)
}

// GetSystemInfo returns the information payload of the classification service
func (c *Client) GetSystemInfo(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, systemInfoPath)
}

func (c *Client) processEmail(ctx context.Context, body io.Reader, contentType string) (*core.ClassificationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processEmailPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, c.invalidResponse(fmt.Errorf("failed to decode response: %w", err))
	}
	result, err := wire.toCore()
	if err != nil {
		return nil, c.invalidResponse(err)
	}

	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, c.invalidResponse(fmt.Errorf("failed to decode response: %w", err))
	}
	return payload, nil
}

// do sends one request and returns the body of a 2xx response. Any other
// outcome is normalized into a TransportError or a ServerError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := serverErrorFromResponse(resp.StatusCode, body)
		c.logger.Warn("Classification service returned an error",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", serverErr.Message))
		return nil, serverErr
	}

	return body, nil
}

func (c *Client) transportError(err error) *core.TransportError {
	if isTimeout(err) {
		c.logger.Warn("Classification service timed out",
			zap.Duration("timeout", c.httpClient.Timeout),
			zap.Error(err))
		return &core.TransportError{
			Message: c.slowBackendMessage,
			Detail:  err.Error(),
			Timeout: true,
			Err:     err,
		}
	}

	c.logger.Warn("Classification service unreachable", zap.Error(err))
	return &core.TransportError{
		Message: err.Error(),
		Err:     err,
	}
}

func (c *Client) invalidResponse(err error) *core.ServerError {
	c.logger.Warn("Classification service returned an invalid response", zap.Error(err))
	return &core.ServerError{
		StatusCode: http.StatusOK,
		Code:       "invalid_response",
		Message:    "The classification service returned an unexpected response",
		Detail:     err.Error(),
	}
}

// isTimeout reports whether err means the call ran out of time or was aborted
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// errorBody is the error payload of the classification service
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// serverErrorFromResponse prefers the server's own message and falls back to
// the status line
func serverErrorFromResponse(status int, body []byte) *core.ServerError {
	serverErr := &core.ServerError{
		StatusCode: status,
		Code:       "http_" + fmt.Sprint(status),
		Message:    fmt.Sprintf("Request failed with status code %d", status),
		Detail:     http.StatusText(status),
	}

	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return serverErr
	}

	if detail := detailMessage(payload.Detail); detail != "" {
		serverErr.Message = detail
	} else if payload.Message != "" {
		serverErr.Message = payload.Message
	} else if payload.Error != "" {
		serverErr.Message = payload.Error
	}
	if payload.Message != "" && payload.Message != serverErr.Message {
		serverErr.Detail = payload.Message
	}

	return serverErr
}

// detailMessage reads a "detail" field that is either a string or a list of
// validation entries with a "msg" field
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil {
		messages := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				messages = append(messages, e.Msg)
			}
		}
		return strings.Join(messages, "; ")
	}

	return ""
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
