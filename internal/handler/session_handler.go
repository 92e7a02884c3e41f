package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/errors"
	"bidmarket/internal/model"
	"bidmarket/internal/service"
)

// SessionHandler handles registration, login, token refresh, and logout.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	PhoneNumber string          `json:"phoneNumber" validate:"required"`
	OTP         string          `json:"otp" validate:"required"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Role        string          `json:"role" validate:"omitempty,oneof=admin user"`
	Addresses   []model.Address `json:"addresses"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	UserID uint `json:"userId" validate:"required"`
}

// SessionResponse represents a session response with optional tokens.
type SessionResponse struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	User         *model.User `json:"user,omitempty"`
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// httpError converts a domain error into an echo HTTP error with the
// standard body.
func httpError(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// Register godoc
// @Summary Register a user via phone number and OTP
// @Description Verifies the OTP with the auth provider and creates the user.
// @Description Registering an existing phone number returns the existing user without new tokens.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} SessionResponse
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Register(c.Request().Context(), service.RegisterInput{
		PhoneNumber: req.PhoneNumber,
		OTP:         req.OTP,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Role:        req.Role,
		Addresses:   req.Addresses,
	})
	if err != nil {
		return httpError(err)
	}

	if !result.Created {
		return c.JSON(http.StatusOK, SessionResponse{
			Status:  "success",
			Message: "user already exists",
			User:    result.User,
		})
	}

	return c.JSON(http.StatusCreated, SessionResponse{
		Status:       "success",
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Login godoc
// @Summary Login via phone number and OTP
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Login(c.Request().Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, SessionResponse{
		Status:       "success",
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Description Rotates the refresh token: the presented token stops being valid.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /refresh-token [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	accessToken, refreshToken, err := h.sessions.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, SessionResponse{
		Status:       "success",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout godoc
// @Summary Invalidate the user's refresh token
// @Description Idempotent: logging out an already logged-out user succeeds.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "User ID"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.sessions.Logout(c.Request().Context(), req.UserID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, SessionResponse{
		Status:  "success",
		Message: "logged out",
	})
}
