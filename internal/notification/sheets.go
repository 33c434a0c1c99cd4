package notification

import (
	"context"
	"encoding/json"
	"net/http"

	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/httpclient"
)

// SheetsSink appends one JSON row per payment to a spreadsheet web app
type SheetsSink struct {
	client httpclient.Client
	url    string
}

func NewSheetsSink(client httpclient.Client, url string) *SheetsSink {
	return &SheetsSink{
		client: client,
		url:    url,
	}
}

func (s *SheetsSink) Name() string {
	return "sheets"
}

func (s *SheetsSink) Send(ctx context.Context, record *PaymentRecord) error {
	body, err := json.Marshal(record.SheetRow())
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode sheet row").
			Mark(ierr.ErrSystem)
	}

	_, err = s.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    s.url,
		Body:   body,
	})
	return err
}
