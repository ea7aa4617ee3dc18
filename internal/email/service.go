// Package email renders and sends transactional mail over SMTP.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/otaku-market/internal/config"
)

// Sender is the seam the notifier tests stub out.
type Sender interface {
	SendOrderConfirmation(to, orderID string, total int64, items []OrderItem) error
	SendOrderStatusUpdate(to, customerName, orderID, status string) error
	SendRestockAlert(to, productName, productURL string) error
}

// Service sends mail through a plain SMTP relay.
type Service struct {
	host string
	port string
	from string
}

func NewService(cfg config.SMTPConfig) *Service {
	return &Service{host: cfg.Host, port: cfg.Port, from: cfg.From}
}

func (s *Service) SendOrderConfirmation(to, orderID string, total int64, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmed, thank you! (#%s)", shortID(orderID))
	body := BuildOrderConfirmationBody(orderID, total, items)
	return s.send(to, subject, body)
}

func (s *Service) SendOrderStatusUpdate(to, customerName, orderID, status string) error {
	subject := fmt.Sprintf("Your order #%s is now %s", shortID(orderID), statusLabel(status))
	body := BuildStatusUpdateBody(customerName, orderID, status)
	return s.send(to, subject, body)
}

func (s *Service) SendRestockAlert(to, productName, productURL string) error {
	subject := fmt.Sprintf("Back in stock: %s", productName)
	body := BuildRestockAlertBody(productName, productURL)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
