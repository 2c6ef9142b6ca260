package intake

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Bypass decides which senders are relayed without classification
type Bypass struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewBypass creates a bypass for the given sender domains
func NewBypass(domains []string, logger *zap.Logger) *Bypass {
	b := &Bypass{
		domains: make(map[string]struct{}, len(domains)),
		logger:  logger,
	}
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			b.domains[domain] = struct{}{}
		}
	}

	if len(b.domains) > 0 && logger != nil {
		logger.Info("Initialized sender bypass", zap.Strings("domains", domains))
	}
	return b
}

// Skips reports whether mail from sender is exempt from classification
func (b *Bypass) Skips(sender string) bool {
	if b == nil || len(b.domains) == 0 {
		return false
	}

	address := sender
	if parsed, err := mail.ParseAddress(sender); err == nil {
		address = parsed.Address
	}
	at := strings.LastIndexByte(address, '@')
	if at < 0 || at == len(address)-1 {
		return false
	}
	domain := strings.ToLower(address[at+1:])

	if _, ok := b.domains[domain]; ok {
		if b.logger != nil {
			b.logger.Debug("Sender domain bypasses classification",
				zap.String("domain", domain),
				zap.String("sender", sender))
		}
		return true
	}
	return false
}
