// Package mail builds and delivers transactional email.
//
// Messages are assembled with a small fluent builder and handed to a
// Mailer:
//
//	msg := mail.To("amy@example.com").
//	    Subject("Your GroupCart invoice").
//	    HTML(body).
//	    Attach("invoice.pdf", "application/pdf", pdf)
//	err := mailer.Send(ctx, msg)
//
// SMTPMailer talks to a real server; LogMailer only logs, which is the
// default for local development.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

// Mailer delivers one message. Implementations must be safe for concurrent
// use.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Message is a fluent builder for an email.
type Message struct {
	to          []string
	cc          []string
	subject     string
	html        string
	text        string
	attachments []Attachment
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

// CC adds CC recipients.
func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// HTML sets the HTML body.
func (m *Message) HTML(body string) *Message {
	m.html = body
	return m
}

// Text sets the plain-text alternative body.
func (m *Message) Text(body string) *Message {
	m.text = body
	return m
}

// Attach adds an in-memory attachment.
func (m *Message) Attach(name, contentType string, content []byte) *Message {
	m.attachments = append(m.attachments, Attachment{Name: name, ContentType: contentType, Content: content})
	return m
}

// Recipients returns every envelope recipient.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.to)+len(m.cc))
	out = append(out, m.to...)
	return append(out, m.cc...)
}

func (m *Message) GetSubject() string        { return m.subject }
func (m *Message) GetHTML() string           { return m.html }
func (m *Message) Attachments() []Attachment { return m.attachments }

// Validate reports a message that can never be delivered.
func (m *Message) Validate() error {
	if len(m.to) == 0 {
		return fmt.Errorf("mail: message has no recipients")
	}
	if m.subject == "" {
		return fmt.Errorf("mail: message has no subject")
	}
	if m.html == "" && m.text == "" {
		return fmt.Errorf("mail: message has no body")
	}
	return nil
}

// Bytes renders the message as RFC 5322 with a multipart/mixed body.
func (m *Message) Bytes(from string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	hdr("From", from)
	hdr("To", strings.Join(m.to, ", "))
	if len(m.cc) > 0 {
		hdr("Cc", strings.Join(m.cc, ", "))
	}
	hdr("Subject", mime.QEncoding.Encode("utf-8", m.subject))
	hdr("Date", now.Format(time.RFC1123Z))
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", "multipart/mixed; boundary="+w.Boundary())
	buf.WriteString("\r\n")

	if m.text != "" {
		if err := writePart(w, "text/plain; charset=utf-8", "", []byte(m.text)); err != nil {
			return nil, err
		}
	}
	if m.html != "" {
		if err := writePart(w, "text/html; charset=utf-8", "", []byte(m.html)); err != nil {
			return nil, err
		}
	}
	for _, a := range m.attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := writePart(w, ct, a.Name, a.Content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType, filename string, content []byte) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "base64")
	if filename != "" {
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	pw, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	enc := base64.StdEncoding.EncodeToString(content)
	for len(enc) > 76 {
		if _, err := pw.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err = pw.Write([]byte(enc + "\r\n"))
	return err
}
