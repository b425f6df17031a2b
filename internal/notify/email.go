package notify

import (
	"fmt"
	"strings"

	"cicli-volante/internal/domain"

	"github.com/shopspring/decimal"
)

// SalesMailbox receives a copy of every order confirmation
const SalesMailbox = "info@ciclivolante.it"

// Email is a plain-text message ready to be handed to a mailer
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ConfirmationEmail composes the customer confirmation with the payment
// instructions for orderNumber
func ConfirmationEmail(customerName, customerEmail, orderNumber string, total decimal.Decimal, payment domain.PaymentInfo) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Ciao %s,\n\n", customerName)
	b.WriteString("Grazie per il tuo ordine su Cicli Volante!\n\n")
	fmt.Fprintf(&b, "Numero Ordine: #%s\n", orderNumber)
	fmt.Fprintf(&b, "Totale: € %s\n\n", FormatEuro(total))
	b.WriteString("INFORMAZIONI PER IL PAGAMENTO:\n")
	b.WriteString("Effettua il bonifico o ricarica PostePay alle seguenti coordinate:\n")
	fmt.Fprintf(&b, "IBAN: %s\n", payment.IBAN)
	fmt.Fprintf(&b, "BIC/SWIFT: %s\n", payment.BIC)
	fmt.Fprintf(&b, "Banca: %s\n", payment.Bank)
	fmt.Fprintf(&b, "Beneficiario: %s\n", payment.Beneficiary)
	fmt.Fprintf(&b, "Causale: Ordine #%s\n\n", orderNumber)
	b.WriteString("La spedizione con BRT/SDA avverrà entro 24-48h dalla ricezione del pagamento.\n\n")
	b.WriteString("Cordiali saluti,\nIl team Cicli Volante")

	return Email{
		To:      customerEmail,
		Subject: fmt.Sprintf("Conferma Ordine #%s - Cicli Volante", orderNumber),
		Body:    b.String(),
	}
}

// FormatEuro renders an amount the Italian way: 1.234,50
func FormatEuro(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + grouped.String() + "," + cents
}
