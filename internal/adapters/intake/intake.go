package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/utils"
)

// Service classifies the text of an incoming message
type Service interface {
	ClassifyText(ctx context.Context, text string) (*core.ClassificationResult, error)
}

// Headers names the headers added to classified mail
type Headers struct {
	Category   string
	Confidence string
	Method     string
	Error      string
}

// Config holds the settings of the mail intake
type Config struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	ClassifyTimeout time.Duration
	RelayEnabled    bool
	RelayAddress    string
	RelayPort       int
	Headers         Headers
	SkipDomains     []string
}

// Intake is an SMTP content filter that classifies each message and hands
// it on to the next hop with the classification in its headers
type Intake struct {
	cfg           Config
	service       Service
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	server        *smtp.Server
	bypass        *Bypass
}

// New creates a new mail intake
func New(cfg Config, service Service, textProcessor *utils.TextProcessor, logger *zap.Logger) *Intake {
	i := &Intake{
		cfg:           cfg,
		service:       service,
		textProcessor: textProcessor,
		logger:        logger,
		bypass:        NewBypass(cfg.SkipDomains, logger),
	}

	i.server = smtp.NewServer(&smtpBackend{intake: i})
	i.server.Addr = cfg.ListenAddress
	i.server.Domain = cfg.Domain
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = cfg.MaxMessageBytes
	i.server.MaxRecipients = 50

	return i
}

// Start starts the SMTP listener in the background
func (i *Intake) Start() error {
	l, err := net.Listen("tcp", i.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", i.cfg.ListenAddress, err)
	}

	go i.Serve(l)
	return nil
}

// Serve accepts SMTP connections on l until Stop is called
func (i *Intake) Serve(l net.Listener) {
	i.logger.Info("Mail intake starting", zap.String("address", l.Addr().String()))
	if err := i.server.Serve(l); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
		i.logger.Error("SMTP server error", zap.Error(err))
	}
}

// Stop stops the SMTP listener
func (i *Intake) Stop() error {
	return i.server.Close()
}

// Process classifies a raw message and returns it with the classification
// headers prepended. A classification failure is recorded in a header and
// never rejects the message.
func (i *Intake) Process(ctx context.Context, raw []byte) ([]byte, *core.ClassificationResult, error) {
	msg, err := ParseMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}

	text := i.textProcessor.ProcessText(msg.Text(), core.MaxTextLength)

	if i.cfg.ClassifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.cfg.ClassifyTimeout)
		defer cancel()
	}

	var out bytes.Buffer
	result, classifyErr := i.service.ClassifyText(ctx, text)
	if classifyErr != nil {
		i.logger.Warn("Failed to classify email",
			zap.String("from", msg.From),
			zap.String("kind", string(core.KindOf(classifyErr))),
			zap.Error(classifyErr))
		writeHeader(&out, i.cfg.Headers.Error, core.Describe(classifyErr).Message)
	} else {
		writeHeader(&out, i.cfg.Headers.Category, string(result.Category))
		writeHeader(&out, i.cfg.Headers.Confidence, fmt.Sprintf("%.4f", result.Confidence))
		writeHeader(&out, i.cfg.Headers.Method, string(result.MethodUsed))
	}

	// The original message follows untouched
	out.Write(raw)
	return out.Bytes(), result, nil
}

// writeHeader writes one header line, folding any line breaks in value away
func writeHeader(w io.Writer, name, value string) {
	value = strings.Join(strings.Fields(value), " ")
	fmt.Fprintf(w, "%s: %s\r\n", name, value)
}

// relay sends the processed message to the next hop using go-smtp
func (i *Intake) relay(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(i.cfg.RelayAddress, fmt.Sprint(i.cfg.RelayPort))

	// Get hostname for EHLO
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			i.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The message has already been accepted
		i.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *Intake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *Intake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and relays it
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	processed := raw
	var result *core.ClassificationResult
	if !s.intake.bypass.Skips(s.sender) {
		processed, result, err = s.intake.Process(context.Background(), raw)
		if err != nil {
			// Unparseable mail is passed on as received
			s.intake.logger.Warn("Relaying unparsed message", zap.Error(err))
			processed = raw
		}
	}

	if s.intake.cfg.RelayEnabled {
		if err := s.intake.relay(s.sender, s.recipients, processed); err != nil {
			s.intake.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", s.sender))
			return &smtp.SMTPError{
				Code:         451,
				EnhancedCode: smtp.EnhancedCode{4, 4, 1},
				Message:      "Next hop unavailable, try again later",
			}
		}
	} else {
		s.intake.logger.Warn("Relay disabled, message dropped after classification")
	}

	fields := []zap.Field{
		zap.String("from", s.sender),
		zap.Int("recipients", len(s.recipients)),
	}
	if result != nil {
		fields = append(fields,
			zap.String("category", string(result.Category)),
			zap.Float64("confidence", result.Confidence),
			zap.String("method", string(result.MethodUsed)))
	}
	s.intake.logger.Info("Processed email", fields...)

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
