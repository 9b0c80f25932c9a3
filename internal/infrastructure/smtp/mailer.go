package smtp

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
)

// Message is one outbound HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer sends emails. VerifyConnection is called before every send; a failed
// verify is a hard stop for the caller.
type Mailer interface {
	VerifyConnection() error
	Send(msg Message) (messageID string, err error)
}

type mailer struct {
	host     string
	port     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
	}
}

func (m *mailer) addr() string {
	return fmt.Sprintf("%s:%s", m.host, m.port)
}

// VerifyConnection dials the SMTP server and exchanges a greeting.
func (m *mailer) VerifyConnection() error {
	c, err := smtp.Dial(m.addr())
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()
	if err := c.Hello("b8shield"); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}
	return c.Quit()
}

func (m *mailer) Send(msg Message) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", id.New(), m.host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	from := extractAddress(msg.From)
	if err := smtp.SendMail(m.addr(), auth, from, []string{msg.To}, []byte(b.String())); err != nil {
		return "", err
	}
	return messageID, nil
}

// extractAddress pulls the bare address out of a "Name <addr>" header value.
func extractAddress(from string) string {
	if i := strings.Index(from, "<"); i >= 0 {
		if j := strings.Index(from[i:], ">"); j > 0 {
			return from[i+1 : i+j]
		}
	}
	return from
}
