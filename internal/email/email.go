package email

import (
	"context"
	"fmt"
	"time"

	"inventaris/internal/config"
	"inventaris/internal/logger"
	"inventaris/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

const sendTimeout = 10 * time.Second

type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.enabled
}

func (s *Service) SendWelcomeEmail(user models.Session) error {
	subject := "Selamat datang di Inventaris"
	return s.send(user.Email, subject, welcomeText(user), welcomeHTML(user))
}

// SendLoanReceipt confirms a recorded loan to the borrower.
func (s *Service) SendLoanReceipt(loan models.Loan, itemName string) error {
	subject := fmt.Sprintf("Bukti peminjaman: %s", itemName)
	return s.send(loan.BorrowerEmail, subject, receiptText(loan, itemName), receiptHTML(loan, itemName))
}

func (s *Service) send(to, subject, text, html string) error {
	if !s.IsEnabled() {
		return fmt.Errorf("email service is not configured")
	}

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		text,
		to,
	)
	message.SetHTML(html)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send email %q: %w", subject, err)
	}

	logger.Info("Email sent", "email", to, "subject", subject)
	return nil
}
