package notification

import (
	"fmt"
	"strings"

	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentRecord is the settled payment written to every sink
type PaymentRecord struct {
	EventID       string
	EventType     types.WebhookEventType
	SessionID     string
	CreatedUnix   int64
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	BusinessName  string
	ContactName   string
	Phone         string
	PaymentStatus string
	Livemode      bool
	// DedupKey is stable per session so sinks can upsert on redelivery
	DedupKey string
}

// Amount converts AmountTotal from minor units
func (r *PaymentRecord) Amount() decimal.Decimal {
	if types.IsZeroDecimalCurrency(r.Currency) {
		return decimal.NewFromInt(r.AmountTotal)
	}
	return decimal.New(r.AmountTotal, -2)
}

// FormattedAmount renders Amount with the currency's number of decimals, e.g. 25.00
func (r *PaymentRecord) FormattedAmount() string {
	if types.IsZeroDecimalCurrency(r.Currency) {
		return r.Amount().StringFixed(0)
	}
	return r.Amount().StringFixed(2)
}

// CurrencyCode is the upper-case ISO code
func (r *PaymentRecord) CurrencyCode() string {
	return strings.ToUpper(r.Currency)
}

// Subject is the notification email subject, e.g. "Payment received — 25.00 CAD"
func (r *PaymentRecord) Subject() string {
	return fmt.Sprintf("Payment received — %s %s", r.FormattedAmount(), r.CurrencyCode())
}

// Text is the plain-text notification body. Blank fields print as "-".
func (r *PaymentRecord) Text() string {
	lines := []string{
		"New payment received:",
		"",
		"Session: " + r.SessionID,
		fmt.Sprintf("Amount: %s %s", r.FormattedAmount(), r.CurrencyCode()),
		"Email: " + orDash(r.CustomerEmail),
		"Business: " + orDash(r.BusinessName),
		"Contact: " + orDash(r.ContactName),
		"Phone: " + orDash(r.Phone),
	}
	return strings.Join(lines, "\n")
}

// SheetRow is the JSON row appended to the spreadsheet
type SheetRow struct {
	Type          string `json:"type"`
	SessionID     string `json:"session_id"`
	CreatedUnix   int64  `json:"created_unix"`
	AmountTotal   int64  `json:"amount_total"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	BusinessName  string `json:"businessName"`
	ContactName   string `json:"contactName"`
	Phone         string `json:"phone"`
	PaymentStatus string `json:"payment_status"`
	EventID       string `json:"event_id"`
	DedupKey      string `json:"dedup_key"`
}

func (r *PaymentRecord) SheetRow() SheetRow {
	return SheetRow{
		Type:          string(r.EventType),
		SessionID:     r.SessionID,
		CreatedUnix:   r.CreatedUnix,
		AmountTotal:   r.AmountTotal,
		Amount:        r.FormattedAmount(),
		Currency:      r.CurrencyCode(),
		CustomerEmail: r.CustomerEmail,
		BusinessName:  r.BusinessName,
		ContactName:   r.ContactName,
		Phone:         r.Phone,
		PaymentStatus: r.PaymentStatus,
		EventID:       r.EventID,
		DedupKey:      r.DedupKey,
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
