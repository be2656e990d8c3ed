package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/KNICEX/trade-alert/internal/service/notification"
)

var _ notification.Notifier = (*Service)(nil)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	To       string
}

type Service struct {
	cfg Config
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.Username == "" || cfg.Password == "" || cfg.To == "" {
		return nil, errors.New("incomplete smtp config")
	}
	return &Service{cfg: cfg}, nil
}

func (s *Service) Notify(ctx context.Context, alert notification.Alert) error {
	subject := fmt.Sprintf("TradeAlert: %s %s", alert.Symbol, strings.ToUpper(alert.Kind))
	body := fmt.Sprintf("Symbol: %s\r\nPrice: %s\r\nKind: %s\r\nTime: %s\r\n\r\n%s\r\n",
		alert.Symbol,
		alert.Price,
		alert.Kind,
		alert.Timestamp.Format(time.DateTime),
		alert.Message,
	)
	return s.send(subject, body)
}

func (s *Service) NotifyTest(ctx context.Context) error {
	return s.send("TradeAlert test", "TradeAlert notification channel is working.\r\n")
}

func (s *Service) send(subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.Username, s.cfg.To, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.Username, []string{s.cfg.To}, []byte(msg))
}
