package intake

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// maxPartDepth bounds how deep nested multipart bodies are searched
const maxPartDepth = 5

// Message is the classifiable content of an email
type Message struct {
	From    string
	Subject string
	Body    string
}

// Text returns the subject and body as one classification input
func (m *Message) Text() string {
	if m.Subject == "" {
		return m.Body
	}
	return m.Subject + "\n\n" + m.Body
}

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// charsetReader decodes any charset known to the WHATWG encoding index
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// ParseMessage reads an RFC 5322 message and extracts its subject and text body
func ParseMessage(r io.Reader) (*Message, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	subject, err := wordDecoder.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		subject = msg.Header.Get("Subject")
	}

	body, err := extractText(msg.Header, msg.Body, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	return &Message{
		From:    msg.Header.Get("From"),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}, nil
}

// header is the subset of MIME header access shared by messages and parts
type header interface {
	Get(key string) string
}

// extractText returns the text/plain content of an entity. For multipart
// entities every text/plain part is collected, nested parts included.
func extractText(h header, body io.Reader, depth int) (string, error) {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable content type, treat the body as plain text
		mediaType, params = "text/plain", nil
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" || depth >= maxPartDepth {
			return "", nil
		}
		return extractMultipart(multipart.NewReader(body, boundary), depth)
	case mediaType == "text/plain":
		return decodeBody(body, h.Get("Content-Transfer-Encoding"), params["charset"])
	default:
		return "", nil
	}
}

func extractMultipart(mr *multipart.Reader, depth int) (string, error) {
	var text bytes.Buffer

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep what was read before the malformed part
			if text.Len() > 0 {
				break
			}
			return "", err
		}

		if disposition, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition")); disposition == "attachment" {
			continue
		}

		partText, err := extractText(part.Header, part, depth+1)
		if err != nil {
			continue
		}
		if partText != "" {
			text.WriteString(partText)
			text.WriteString("\n")
		}
	}

	return text.String(), nil
}

// decodeBody undoes the transfer encoding and converts the charset to UTF-8.
// multipart.Reader already removes quoted-printable encoding from parts.
func decodeBody(body io.Reader, transferEncoding, charset string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, newlineStripper{body})
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}

	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
		if decoded, err := charsetReader(charset, body); err == nil {
			body = decoded
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newlineStripper drops line breaks so base64 bodies decode
type newlineStripper struct {
	r io.Reader
}

func (n newlineStripper) Read(p []byte) (int, error) {
	count, err := n.r.Read(p)
	kept := 0
	for _, b := range p[:count] {
		if b != '\r' && b != '\n' {
			p[kept] = b
			kept++
		}
	}
	return kept, err
}
