// Package otp talks to the external auth provider that owns one-time
// passcode generation and verification.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "bidmarket/internal/errors"
)

// Verifier checks that a one-time passcode belongs to a phone number.
type Verifier interface {
	Verify(ctx context.Context, phoneNumber, otp string) error
}

// Client is the HTTP implementation of Verifier, backed by the auth
// provider's /verify-otp endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Verifier = (*Client)(nil)

// NewClient builds a verifier client for the given base URL. Requests are
// bounded by the given timeout so a stalled provider fails the operation
// instead of blocking it.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Verify posts the phone number and code to the provider. Any status other
// than "success" is a rejection; the provider message is passed through.
func (c *Client) Verify(ctx context.Context, phoneNumber, otp string) error {
	payload, err := json.Marshal(verifyRequest{PhoneNumber: phoneNumber, OTP: otp})
	if err != nil {
		return fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify-otp", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call auth service: %w", err)
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode auth service response: %w", err)
	}

	if body.Status != "success" {
		return &apperrors.OTPError{Message: body.Message}
	}
	return nil
}
