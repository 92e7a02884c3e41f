package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bidmarket/internal/model"
	"bidmarket/internal/service"
)

// UserHandler handles profile reads and updates plus bid upserts.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ProfileRequest selects a profile by phone number.
type ProfileRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

// UpdateProfileRequest patches profile fields of the user with the given
// phone number.
type UpdateProfileRequest struct {
	PhoneNumber string  `json:"phoneNumber" validate:"required"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// BidRequest upserts a bid for a product.
type BidRequest struct {
	UserID    uint    `json:"userId" validate:"required"`
	ProductID string  `json:"productId" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// UserResponse wraps a user payload.
type UserResponse struct {
	Status string      `json:"status"`
	User   *model.User `json:"user"`
}

func parseUserID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}

// GetUserByID godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /{userId} [get]
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{Status: "success", User: user})
}

// GetProfile godoc
// @Summary Get the profile for a phone number
// @Tags users
// @Accept json
// @Produce json
// @Param request body ProfileRequest true "Phone number"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /profile [post]
func (h *UserHandler) GetProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.GetProfile(c.Request().Context(), req.PhoneNumber)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{Status: "success", User: user})
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Description Patches the given fields and clears the new-user flag.
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /update-profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), req.PhoneNumber, model.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{Status: "success", User: user})
}

// UpdateBid godoc
// @Summary Upsert a bid
// @Description Replaces the amount if the user already bid on the product, appends otherwise.
// @Tags bids
// @Accept json
// @Produce json
// @Param request body BidRequest true "Bid"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bid-update [put]
func (h *UserHandler) UpdateBid(c echo.Context) error {
	var req BidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.UpsertBid(c.Request().Context(), req.UserID, req.ProductID, req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, UserResponse{Status: "success", User: user})
}
