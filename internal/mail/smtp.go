package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Log      *zap.Logger
}

func NewSMTP(host string, port int, username, password, from string, l *zap.Logger) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, From: from, Log: l}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + htmlBody)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, msg); err != nil {
		s.Log.Error("send mail", zap.String("to", to), zap.Error(err))
		return err
	}
	s.Log.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
