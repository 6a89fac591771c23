// Package mail sends email over SMTP with a small fluent builder.
//
//	err := mail.New().
//		To("customer@example.com").
//		Subject("Order confirmed").
//		HTML(body).
//		Send()
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/coldcutclub/storefront/config"
	"github.com/coldcutclub/storefront/pkg/logger"
)

// Message is a pending email built up with the fluent setters.
type Message struct {
	from    string
	to      []string
	cc      []string
	subject string
	body    string
	isHTML  bool
}

// Sender delivers a rendered message. Replaced in tests.
type Sender func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

var sendFunc Sender = smtp.SendMail

// SetSender overrides the SMTP transport. Pass nil to restore the default.
func SetSender(s Sender) {
	if s == nil {
		sendFunc = smtp.SendMail
		return
	}
	sendFunc = s
}

// New starts a message with the configured from address.
func New() *Message {
	return &Message{from: config.MailFrom()}
}

func (m *Message) From(addr string) *Message    { m.from = addr; return m }
func (m *Message) To(addrs ...string) *Message  { m.to = append(m.to, addrs...); return m }
func (m *Message) Cc(addrs ...string) *Message  { m.cc = append(m.cc, addrs...); return m }
func (m *Message) Subject(s string) *Message    { m.subject = s; return m }
func (m *Message) Text(body string) *Message    { m.body = body; m.isHTML = false; return m }
func (m *Message) HTML(body string) *Message    { m.body = body; m.isHTML = true; return m }

// Send delivers the message via the configured SMTP server.
func (m *Message) Send() error {
	if len(m.to) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	host := config.MailHost()
	addr := fmt.Sprintf("%s:%s", host, config.MailPort())

	var auth smtp.Auth
	if user := config.MailUsername(); user != "" {
		auth = smtp.PlainAuth("", user, config.MailPassword(), host)
	}

	contentType := "text/plain; charset=UTF-8"
	if m.isHTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.to, ", "))
	if len(m.cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(m.cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", m.subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	b.WriteString(m.body)

	recipients := append(append([]string{}, m.to...), m.cc...)
	if err := sendFunc(addr, auth, m.from, recipients, []byte(b.String())); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	logger.Info("mail: sent", "to", strings.Join(m.to, ","), "subject", m.subject)
	return nil
}
