package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user matches the given key.
	ErrUserNotFound = errors.New("user not found")
	// ErrAddressNotFound is returned when an address sub-id does not exist for the user.
	ErrAddressNotFound = errors.New("address not found")
	// ErrPhoneNumberTaken is returned when the phone number is already registered.
	ErrPhoneNumberTaken = errors.New("phone number already registered")
	// ErrMissingRefreshToken is returned when a refresh request carries no token.
	ErrMissingRefreshToken = errors.New("no refresh token provided")
	// ErrInvalidRefreshToken is returned when a refresh token is malformed,
	// expired, or no longer the user's current one.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// OTPError carries the rejection message from the external credential
// verifier so it can be passed through to the caller.
type OTPError struct {
	Message string
}

func (e *OTPError) Error() string {
	if e.Message == "" {
		return "otp verification failed"
	}
	return e.Message
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var otpErr *OTPError
	if errors.As(err, &otpErr) {
		return NewHTTPError(http.StatusBadRequest, otpErr.Error(), "OTP_REJECTED")
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrAddressNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ADDRESS_NOT_FOUND")
	case errors.Is(err, ErrPhoneNumberTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "PHONE_NUMBER_TAKEN")
	case errors.Is(err, ErrMissingRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "MISSING_REFRESH_TOKEN")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusForbidden, err.Error(), "INVALID_REFRESH_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
