package email

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// Sender delivers plain text e-mail through an SMTP relay.
type Sender struct {
	Host     string
	Port     string
	From     string
	Password string

	// send is smtp.SendMail outside tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(host, port, from, password string) *Sender {
	return &Sender{Host: host, Port: port, From: from, Password: password, send: smtp.SendMail}
}

// Send sends a plain text email using SMTP.
func (s *Sender) Send(to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")

	if err := s.send(s.Host+":"+s.Port, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
