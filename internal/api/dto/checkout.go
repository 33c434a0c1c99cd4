package dto

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/Filament-Bry/gd-checkout/internal/validator"
)

// CreateCheckoutRequest is the order submitted by the site, either as a JSON body
// or as query parameters. amount_cents may be a number or a numeric string.
type CreateCheckoutRequest struct {
	AmountCents  json.Number `json:"amount_cents" form:"amount_cents"`
	Currency     string      `json:"currency" form:"currency"`
	Email        string      `json:"email" form:"email"`
	Description  string      `json:"description" form:"description"`
	BusinessName string      `json:"businessName" form:"businessName"`
	ContactName  string      `json:"contactName" form:"contactName"`
	Phone        string      `json:"phone" form:"phone"`
}

// CheckoutOrder is a validated CreateCheckoutRequest with defaults applied
type CheckoutOrder struct {
	AmountCents int64
	Currency    string
	Email       string
	Description string
	Metadata    types.Metadata
}

// ToOrder validates the request against the checkout limits in cfg
func (r *CreateCheckoutRequest) ToOrder(cfg config.CheckoutConfig) (*CheckoutOrder, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(r.AmountCents.String()), 10, 64)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("amount_cents must be a whole number of minor units").
			WithReportableDetails(map[string]any{
				"amount_cents": r.AmountCents.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if amount < cfg.MinAmount {
		return nil, ierr.NewError("amount below minimum").
			WithHint("Amount too small").
			WithReportableDetails(map[string]any{
				"amount_cents": amount,
				"min_amount":   cfg.MinAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	if cfg.MaxAmount > 0 && amount > cfg.MaxAmount {
		return nil, ierr.NewError("amount above maximum").
			WithHint("Amount too large").
			WithReportableDetails(map[string]any{
				"amount_cents": amount,
				"max_amount":   cfg.MaxAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	currency := types.NormalizeCurrency(r.Currency)
	if currency == "" {
		currency = types.NormalizeCurrency(cfg.DefaultCurrency)
	}
	if !types.IsCurrencyCode(currency) {
		return nil, ierr.NewError("invalid currency").
			WithHint("Currency must be a 3-letter ISO code").
			WithReportableDetails(map[string]any{
				"currency": r.Currency,
			}).
			Mark(ierr.ErrValidation)
	}

	email := strings.TrimSpace(r.Email)
	if email != "" {
		if err := validator.GetValidator().Var(email, "email"); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Email address is invalid").
				Mark(ierr.ErrValidation)
		}
	}

	description := strings.TrimSpace(r.Description)
	if description == "" {
		description = cfg.DefaultDescription
	}

	metadata := types.Metadata{
		types.MetadataKeyBusinessName: r.BusinessName,
		types.MetadataKeyContactName:  r.ContactName,
		types.MetadataKeyPhone:        r.Phone,
	}.Compact()

	return &CheckoutOrder{
		AmountCents: amount,
		Currency:    currency,
		Email:       email,
		Description: description,
		Metadata:    metadata,
	}, nil
}

// CheckoutSessionResponse is returned to POST callers
type CheckoutSessionResponse struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// WebhookAck is the body returned to the provider for every verified delivery
type WebhookAck struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

// ErrorMessage is the plain {"error": "..."} body used on the public endpoints
type ErrorMessage struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
