package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	svc := NewWebhookService("topsecret", nil)
	payload := []byte(`{"current":{"id":7}}`)

	assert.True(t, svc.VerifySignature(payload, sign("topsecret", payload)))
	assert.False(t, svc.VerifySignature(payload, sign("wrong", payload)))
	assert.False(t, svc.VerifySignature(payload, ""))
}

func TestVerifySignatureWithoutSecret(t *testing.T) {
	svc := NewWebhookService("", nil)
	payload := []byte(`{}`)

	assert.False(t, svc.VerifySignature(payload, sign("", payload)),
		"an unset secret must reject everything")
}
