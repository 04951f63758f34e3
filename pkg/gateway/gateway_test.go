package gateway

import (
	"net/url"
	"strings"
	"testing"

	"github.com/brandbeam/brandbeam-backend/pkg/config"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()

	signer, err := NewSigner(config.GatewayConfig{
		MerchantCode: "BB-TEST",
		SharedSecret: "shared-secret",
		CheckoutURL:  "https://pay.example.com/checkout",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return signer
}

func TestNewSignerRequiresCredentials(t *testing.T) {
	if _, err := NewSigner(config.GatewayConfig{SharedSecret: "x"}); err == nil {
		t.Fatal("expected error for missing merchant code")
	}
	if _, err := NewSigner(config.GatewayConfig{MerchantCode: "x"}); err == nil {
		t.Fatal("expected error for missing shared secret")
	}
}

func TestProofSignatureRoundTrip(t *testing.T) {
	signer := newTestSigner(t)

	sig := signer.ProofSignature("BB-DEP-ABC123", "pay_42")
	if sig == "" {
		t.Fatal("empty signature")
	}
	if !signer.VerifyProof("BB-DEP-ABC123", "pay_42", sig) {
		t.Fatal("valid proof rejected")
	}
}

func TestVerifyProofRejectsTampering(t *testing.T) {
	signer := newTestSigner(t)
	sig := signer.ProofSignature("BB-DEP-ABC123", "pay_42")

	if signer.VerifyProof("BB-DEP-ABC999", "pay_42", sig) {
		t.Fatal("accepted signature for a different order")
	}
	if signer.VerifyProof("BB-DEP-ABC123", "pay_43", sig) {
		t.Fatal("accepted signature for a different payment")
	}
	if signer.VerifyProof("BB-DEP-ABC123", "pay_42", sig+"0") {
		t.Fatal("accepted a tampered signature")
	}

	other, err := NewSigner(config.GatewayConfig{
		MerchantCode: "BB-TEST",
		SharedSecret: "different-secret",
		CheckoutURL:  "https://pay.example.com/checkout",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.VerifyProof("BB-DEP-ABC123", "pay_42", sig) {
		t.Fatal("accepted signature minted with another secret")
	}
}

func TestCheckoutURLCarriesSignedOrder(t *testing.T) {
	signer := newTestSigner(t)

	raw := signer.CheckoutURL("BB-DEP-ABC123", 5000)
	if !strings.HasPrefix(raw, "https://pay.example.com/checkout?") {
		t.Fatalf("unexpected checkout url %q", raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing checkout url: %v", err)
	}
	q := parsed.Query()
	if q.Get("merchant") != "BB-TEST" {
		t.Fatalf("unexpected merchant %q", q.Get("merchant"))
	}
	if q.Get("ref") != "BB-DEP-ABC123" {
		t.Fatalf("unexpected ref %q", q.Get("ref"))
	}
	if q.Get("amount") != "5000" {
		t.Fatalf("unexpected amount %q", q.Get("amount"))
	}
	if q.Get("signature") != signer.CheckoutSignature("BB-DEP-ABC123", 5000) {
		t.Fatal("signature does not match the signed order")
	}
}
