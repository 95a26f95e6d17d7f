package notification

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"talenthub-backend/shared/config"
)

// Message is a plain-text email ready for dispatch.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations must be safe for use
// from the mailer worker goroutine.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers messages over SMTP using the shared configuration.
type SMTPSender struct {
	cfg *config.Config
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(msg Message) error {
	host := s.cfg.SMTPHost
	port := s.cfg.SMTPPort
	username := s.cfg.SMTPUsername
	password := s.cfg.SMTPPassword
	from := s.cfg.EmailFrom

	if host == "" || from == "" {
		return fmt.Errorf("SMTP configuration is incomplete")
	}

	headers := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n",
		s.cfg.EmailFromName, from, msg.To, msg.Subject)
	payload := []byte(headers + msg.Body)

	auth := smtp.PlainAuth("", username, password, host)
	addr := fmt.Sprintf("%s:%s", host, port)

	// Port 465 uses implicit TLS, other ports plain SMTP or STARTTLS
	if port == "465" || s.cfg.SMTPUseTLS {
		return s.sendWithTLS(addr, auth, from, msg.To, payload)
	}

	return smtp.SendMail(addr, auth, from, []string{msg.To}, payload)
}

func (s *SMTPSender) sendWithTLS(addr string, auth smtp.Auth, from, to string, payload []byte) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return err
	}
	if err = client.Mail(from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = writer.Write(payload); err != nil {
		return err
	}
	return writer.Close()
}

// LogSender writes messages to the log instead of delivering them. Used when
// SMTP is not configured so the rest of the system behaves identically.
type LogSender struct{}

func (LogSender) Send(msg Message) error {
	log.Printf("📧 [dry-run] to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
