package dispatch

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one outbound email. ConfigID, when set, sends through that
// settings record instead of the active one.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html,omitempty"`
	Text     string `json:"text,omitempty"`
	ConfigID string `json:"configId,omitempty"`
}

// Envelope is a Message with its resolved sender.
type Envelope struct {
	From        string
	FromAddress string
	Message
}

func newMessageID(host string) string {
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

// buildMIME renders env as an RFC 5322 message. With both parts present the
// body is multipart/alternative, text first.
func buildMIME(env Envelope, messageID string, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}

	header("From", encodeAddressHeader(env.From))
	header("To", env.To)
	header("Subject", mime.QEncoding.Encode("utf-8", env.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")

	switch {
	case env.HTML != "" && env.Text != "":
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary()))
		buf.WriteString("\r\n")

		for _, part := range []struct{ ctype, content string }{
			{"text/plain; charset=UTF-8", env.Text},
			{"text/html; charset=UTF-8", env.HTML},
		} {
			w, err := mw.CreatePart(textproto.MIMEHeader{
				"Content-Type":              {part.ctype},
				"Content-Transfer-Encoding": {"quoted-printable"},
			})
			if err != nil {
				return nil, err
			}
			if err := writeQP(w, part.content); err != nil {
				return nil, err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		buf.Write(body.Bytes())

	default:
		ctype, content := "text/plain; charset=UTF-8", env.Text
		if env.HTML != "" {
			ctype, content = "text/html; charset=UTF-8", env.HTML
		}
		header("Content-Type", ctype)
		header("Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQP(&buf, content); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeQP(w interface{ Write([]byte) (int, error) }, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}

// encodeAddressHeader Q-encodes a quoted display name when it is not ASCII.
func encodeAddressHeader(from string) string {
	if !strings.HasPrefix(from, `"`) {
		return from
	}
	end := strings.Index(from[1:], `"`)
	if end < 0 {
		return from
	}
	name := from[1 : end+1]
	for _, r := range name {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", name) + from[end+2:]
		}
	}
	return from
}
