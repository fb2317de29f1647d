package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := &Client{secret: "test-secret"}

	orderID := "order_abc123"
	paymentID := "pay_xyz789"
	good := sign("test-secret", orderID, paymentID)

	if !client.VerifySignature(orderID, paymentID, good) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifySignature(orderID, paymentID, good[:len(good)-1]+"0") {
		t.Fatal("tampered signature should not verify")
	}
	if client.VerifySignature("order_other", paymentID, good) {
		t.Fatal("signature bound to a different order should not verify")
	}
	if client.VerifySignature("", paymentID, good) {
		t.Fatal("empty order id should not verify")
	}
	if client.VerifySignature(orderID, paymentID, "") {
		t.Fatal("empty signature should not verify")
	}
}
