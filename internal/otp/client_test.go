package otp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "bidmarket/internal/errors"
)

func TestClient_VerifySuccess(t *testing.T) {
	var gotBody verifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/verify-otp", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(verifyResponse{Status: "success"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Verify(context.Background(), "+1555", "000000")
	assert.NoError(t, err)
	assert.Equal(t, "+1555", gotBody.PhoneNumber)
	assert.Equal(t, "000000", gotBody.OTP)
}

func TestClient_VerifyRejectedPassesMessageThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(verifyResponse{Status: "error", Message: "otp expired"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Verify(context.Background(), "+1555", "000000")

	var otpErr *apperrors.OTPError
	assert.ErrorAs(t, err, &otpErr)
	assert.Equal(t, "otp expired", otpErr.Message)
}

func TestClient_VerifyMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Verify(context.Background(), "+1555", "000000")
	assert.Error(t, err)

	// a transport failure must not look like a rejection
	var otpErr *apperrors.OTPError
	assert.False(t, errors.As(err, &otpErr))
}

func TestClient_VerifyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(verifyResponse{Status: "success"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	err := client.Verify(context.Background(), "+1555", "000000")
	assert.Error(t, err)
}
