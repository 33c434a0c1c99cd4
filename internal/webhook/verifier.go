package webhook

import (
	"crypto/sha256"
	"net/http"
	"time"

	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
)

// Verifier authenticates a raw delivery. It is handed the bytes exactly as
// they arrived and must never see a re-serialized body.
type Verifier interface {
	Scheme() types.SigningScheme
	// DeliveryID returns the transport level message id, if the scheme has one
	DeliveryID(header http.Header) string
	Verify(payload []byte, header http.Header) error
}

// Verification is proof that one specific payload passed a Verifier.
// The zero value proves nothing.
type Verification struct {
	scheme     types.SigningScheme
	digest     [sha256.Size]byte
	deliveryID string
	verifiedAt time.Time
}

// Authenticate runs v over payload and, on success, returns a Verification bound to those bytes
func Authenticate(v Verifier, payload []byte, header http.Header) (Verification, error) {
	if v == nil {
		return Verification{}, ierr.NewError("no webhook verifier configured").
			WithHint("Webhook endpoint is not configured").
			Mark(ierr.ErrSignature)
	}

	if err := v.Verify(payload, header); err != nil {
		if !ierr.IsSignature(err) {
			err = ierr.WithError(err).
				WithHint("Invalid webhook signature").
				Mark(ierr.ErrSignature)
		}
		return Verification{}, err
	}

	return Verification{
		scheme:     v.Scheme(),
		digest:     sha256.Sum256(payload),
		deliveryID: v.DeliveryID(header),
		verifiedAt: time.Now().UTC(),
	}, nil
}

func (v Verification) Scheme() types.SigningScheme {
	return v.scheme
}

func (v Verification) VerifiedAt() time.Time {
	return v.verifiedAt
}

func (v Verification) covers(payload []byte) bool {
	return !v.verifiedAt.IsZero() && v.digest == sha256.Sum256(payload)
}
