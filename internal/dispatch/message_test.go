package dispatch

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentAt = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

func TestBuildMIME_Alternative(t *testing.T) {
	raw, err := buildMIME(Envelope{
		From: `"Acme" <no-reply@acme.io>`,
		Message: Message{
			To:      "ada@example.com",
			Subject: "Grüße from Acme",
			HTML:    `<p style="color:#333">Hello Ada, this line is long enough to be wrapped by the quoted-printable writer at 76 chars</p>`,
			Text:    "Hello Ada",
		},
	}, "<abc@acme.io>", sentAt)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Grüße from Acme", subject)
	assert.Equal(t, `"Acme" <no-reply@acme.io>`, msg.Header.Get("From"))
	assert.Equal(t, "<abc@acme.io>", msg.Header.Get("Message-Id"))
	assert.Equal(t, "Mon, 03 Mar 2025 09:30:00 +0000", msg.Header.Get("Date"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])

	text, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=UTF-8", text.Header.Get("Content-Type"))
	body, _ := io.ReadAll(text)
	assert.Equal(t, "Hello Ada", string(body))

	htmlPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=UTF-8", htmlPart.Header.Get("Content-Type"))
	body, _ = io.ReadAll(htmlPart)
	assert.Contains(t, string(body), "wrapped by the quoted-printable writer at 76 chars</p>")

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestBuildMIME_SinglePart(t *testing.T) {
	raw, err := buildMIME(Envelope{
		From:    "no-reply@acme.io",
		Message: Message{To: "ada@example.com", Subject: "Hi", HTML: "<p>Hi</p>"},
	}, "<x@y>", sentAt)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=UTF-8", msg.Header.Get("Content-Type"))
	assert.Equal(t, "quoted-printable", msg.Header.Get("Content-Transfer-Encoding"))
}

func TestEncodeAddressHeader(t *testing.T) {
	assert.Equal(t, "no-reply@acme.io", encodeAddressHeader("no-reply@acme.io"))
	assert.Equal(t, `"Acme" <a@acme.io>`, encodeAddressHeader(`"Acme" <a@acme.io>`))

	got := encodeAddressHeader(`"Café Acme" <a@acme.io>`)
	addr, err := mail.ParseAddress(got)
	require.NoError(t, err)
	assert.Equal(t, "Café Acme", addr.Name)
	assert.Equal(t, "a@acme.io", addr.Address)
}

func TestNewMessageID(t *testing.T) {
	pattern := regexp.MustCompile(`^<[0-9a-f-]{36}@smtp\.acme\.io>$`)
	assert.Regexp(t, pattern, newMessageID("smtp.acme.io"))
	assert.NotEqual(t, newMessageID("h"), newMessageID("h"))
	assert.Contains(t, newMessageID(""), "@localhost>")
}
