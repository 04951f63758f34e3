package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"github.com/brandbeam/brandbeam-backend/pkg/config"
)

// Signer produces and verifies the HMAC signatures exchanged with the
// payment gateway. The checkout signature covers the order we hand out;
// the proof signature covers the callback the gateway sends back.
type Signer struct {
	merchantCode string
	sharedSecret string
	checkoutURL  string
}

// NewSigner builds a Signer from the gateway configuration.
func NewSigner(cfg config.GatewayConfig) (*Signer, error) {
	if cfg.MerchantCode == "" {
		return nil, fmt.Errorf("gateway merchant code is required")
	}
	if cfg.SharedSecret == "" {
		return nil, fmt.Errorf("gateway shared secret is required")
	}
	return &Signer{
		merchantCode: cfg.MerchantCode,
		sharedSecret: cfg.SharedSecret,
		checkoutURL:  cfg.CheckoutURL,
	}, nil
}

// CheckoutSignature signs the order handed to the gateway at checkout time.
func (s *Signer) CheckoutSignature(orderReference string, amountCents int64) string {
	return s.sign(s.merchantCode + orderReference + strconv.FormatInt(amountCents, 10))
}

// ProofSignature signs the payment proof fields the gateway echoes back.
func (s *Signer) ProofSignature(orderReference, paymentID string) string {
	return s.sign(s.merchantCode + orderReference + paymentID)
}

// VerifyProof checks a callback signature in constant time.
func (s *Signer) VerifyProof(orderReference, paymentID, signature string) bool {
	expected := s.ProofSignature(orderReference, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CheckoutURL builds the hosted checkout link for a signed order.
func (s *Signer) CheckoutURL(orderReference string, amountCents int64) string {
	q := url.Values{}
	q.Set("merchant", s.merchantCode)
	q.Set("ref", orderReference)
	q.Set("amount", strconv.FormatInt(amountCents, 10))
	q.Set("signature", s.CheckoutSignature(orderReference, amountCents))
	return s.checkoutURL + "?" + q.Encode()
}

func (s *Signer) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.sharedSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
