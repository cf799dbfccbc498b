package email

import (
	"fmt"
	"html"
	"time"

	"inventaris/internal/models"
)

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa; }
        .container { background-color: white; padding: 32px; border-radius: 12px; }
        .title { font-size: 22px; color: #1e40af; margin-bottom: 16px; }
        table { border-collapse: collapse; width: 100%%; }
        td { padding: 6px 0; border-bottom: 1px solid #eee; }
        .footer { margin-top: 24px; font-size: 13px; color: #888; }
    </style>
</head>
<body>
    <div class="container">
        <div class="title">%s</div>
        %s
        <div class="footer">Email ini dikirim otomatis oleh sistem Inventaris.</div>
    </div>
</body>
</html>`

func welcomeHTML(user models.Session) string {
	body := fmt.Sprintf(`<p>Halo %s,</p>
        <p>Akun Anda dengan email <strong>%s</strong> berhasil dibuat. Anda sekarang dapat melihat data barang dan mengajukan peminjaman.</p>`,
		html.EscapeString(displayName(user)), html.EscapeString(user.Email))
	return fmt.Sprintf(htmlLayout, "Selamat datang", "Selamat datang di Inventaris", body)
}

func welcomeText(user models.Session) string {
	return fmt.Sprintf(`Halo %s,

Akun Anda dengan email %s berhasil dibuat. Anda sekarang dapat melihat data barang dan mengajukan peminjaman.

Inventaris`, displayName(user), user.Email)
}

func receiptHTML(loan models.Loan, itemName string) string {
	body := fmt.Sprintf(`<p>Halo %s,</p>
        <p>Peminjaman Anda telah dicatat:</p>
        <table>
            <tr><td>Barang</td><td>%s</td></tr>
            <tr><td>Jumlah</td><td>%d</td></tr>
            <tr><td>Status</td><td>%s</td></tr>
            <tr><td>Tanggal</td><td>%s</td></tr>
        </table>`,
		html.EscapeString(loan.BorrowerName),
		html.EscapeString(itemName),
		loan.Quantity,
		html.EscapeString(string(loan.Status)),
		html.EscapeString(receiptDate(loan)))
	return fmt.Sprintf(htmlLayout, "Bukti peminjaman", "Bukti Peminjaman", body)
}

func receiptText(loan models.Loan, itemName string) string {
	return fmt.Sprintf(`Halo %s,

Peminjaman Anda telah dicatat:
Barang : %s
Jumlah : %d
Status : %s
Tanggal: %s

Inventaris`, loan.BorrowerName, itemName, loan.Quantity, loan.Status, receiptDate(loan))
}

func displayName(user models.Session) string {
	if user.Username == "" {
		return "User"
	}
	return user.Username
}

func receiptDate(loan models.Loan) string {
	if d := loan.BorrowedAt.Display(); d != "" {
		return d
	}
	return time.Now().Format("02-01-2006")
}
