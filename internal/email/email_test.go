package email

import (
	"testing"
	"time"

	"inventaris/internal/config"
	"inventaris/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestServiceDisabledWithoutCredentials(t *testing.T) {
	s := NewService(&config.Config{MailgunDomain: "mg.example.com"})

	assert.False(t, s.IsEnabled())
	assert.Error(t, s.SendWelcomeEmail(models.Session{Email: "ani@example.com"}))

	var nilService *Service
	assert.False(t, nilService.IsEnabled())
}

func TestServiceEnabled(t *testing.T) {
	s := NewService(&config.Config{MailgunDomain: "mg.example.com", MailgunAPIKey: "key"})
	assert.True(t, s.IsEnabled())
}

func TestReceiptContent(t *testing.T) {
	loan := models.Loan{
		BorrowerName: "Ani <script>",
		Quantity:     3,
		Status:       models.StatusBorrowed,
		BorrowedAt:   models.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	text := receiptText(loan, "Proyektor")
	assert.Contains(t, text, "Barang : Proyektor")
	assert.Contains(t, text, "Jumlah : 3")
	assert.Contains(t, text, "01-03-2024")

	page := receiptHTML(loan, "Proyektor")
	assert.Contains(t, page, "Ani &lt;script&gt;")
	assert.NotContains(t, page, "<script>")
}

func TestWelcomeDefaultsUsername(t *testing.T) {
	assert.Contains(t, welcomeText(models.Session{Email: "a@b.co"}), "Halo User,")
}
