package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestParseMessage_Plain(t *testing.T) {
	raw := crlf(`From: alice@example.com
To: support@example.com
Subject: Invoice 1234

Please confirm the payment of invoice 1234.
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", msg.From)
	assert.Equal(t, "Invoice 1234", msg.Subject)
	assert.Equal(t, "Please confirm the payment of invoice 1234.", msg.Body)
	assert.Equal(t, "Invoice 1234\n\nPlease confirm the payment of invoice 1234.", msg.Text())
}

func TestParseMessage_EncodedSubjectAndCharset(t *testing.T) {
	raw := crlf(`From: bob@example.com
Subject: =?ISO-8859-1?Q?Solicita=E7=E3o_urgente?=
Content-Type: text/plain; charset=ISO-8859-1
Content-Transfer-Encoding: quoted-printable

Preciso da atualiza=E7=E3o do chamado.
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Solicitação urgente", msg.Subject)
	assert.Equal(t, "Preciso da atualização do chamado.", msg.Body)
}

func TestParseMessage_Multipart(t *testing.T) {
	raw := crlf(`From: carol@example.com
Subject: Report
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: base64

VGhlIG1vbnRobHkgcmVwb3J0IGlz
IGF0dGFjaGVkLg==
--inner
Content-Type: text/html

<p>The monthly report is attached.</p>
--inner--
--outer
Content-Type: text/plain
Content-Disposition: attachment; filename="notes.txt"

attachment text
--outer--
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "The monthly report is attached.", msg.Body)
	assert.NotContains(t, msg.Body, "attachment text")
	assert.NotContains(t, msg.Body, "<p>")
}

func TestParseMessage_Invalid(t *testing.T) {
	_, err := ParseMessage(strings.NewReader("not a message"))
	assert.Error(t, err)
}
