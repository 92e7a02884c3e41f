package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bidmarket/internal/model"
	"bidmarket/internal/service"
)

// AddressHandler handles the address sub-collection of a user.
type AddressHandler struct {
	users service.UserService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(users service.UserService) *AddressHandler {
	return &AddressHandler{users: users}
}

// AddAddressRequest appends an address to a user.
type AddAddressRequest struct {
	UserID  uint          `json:"userId" validate:"required"`
	Address model.Address `json:"address" validate:"required"`
}

// EditAddressRequest patches one address of a user by its sub-id.
type EditAddressRequest struct {
	UserID    uint               `json:"userId" validate:"required"`
	AddressID uuid.UUID          `json:"addressId" validate:"required"`
	Address   model.AddressPatch `json:"address"`
}

// DeleteAddressRequest removes one address of a user by its sub-id.
type DeleteAddressRequest struct {
	UserID    uint      `json:"userId" validate:"required"`
	AddressID uuid.UUID `json:"addressId" validate:"required"`
}

// AddressesResponse wraps the user's full address list.
type AddressesResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	Addresses []model.Address `json:"addresses"`
}

// AddAddress godoc
// @Summary Add an address
// @Tags addresses
// @Accept json
// @Produce json
// @Param request body AddAddressRequest true "Address"
// @Success 200 {object} AddressesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /add-address [post]
func (h *AddressHandler) AddAddress(c echo.Context) error {
	var req AddAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addresses, err := h.users.AddAddress(c.Request().Context(), req.UserID, req.Address)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AddressesResponse{Status: "success", Addresses: addresses})
}

// EditAddress godoc
// @Summary Edit an address by sub-id
// @Description Merges the given fields into the address; unset fields are untouched.
// @Tags addresses
// @Accept json
// @Produce json
// @Param request body EditAddressRequest true "Address patch"
// @Success 200 {object} AddressesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /edit-address [put]
func (h *AddressHandler) EditAddress(c echo.Context) error {
	var req EditAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addresses, err := h.users.EditAddress(c.Request().Context(), req.UserID, req.AddressID, req.Address)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AddressesResponse{Status: "success", Addresses: addresses})
}

// GetAllAddresses godoc
// @Summary List all addresses of a user
// @Tags addresses
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} AddressesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /{userId}/addresses [get]
func (h *AddressHandler) GetAllAddresses(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	addresses, err := h.users.ListAddresses(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AddressesResponse{Status: "success", Addresses: addresses})
}

// DeleteAddress godoc
// @Summary Delete an address by sub-id
// @Tags addresses
// @Accept json
// @Produce json
// @Param request body DeleteAddressRequest true "Address reference"
// @Success 200 {object} AddressesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /delete-address [delete]
func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	var req DeleteAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addresses, err := h.users.DeleteAddress(c.Request().Context(), req.UserID, req.AddressID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AddressesResponse{Status: "success", Message: "address removed", Addresses: addresses})
}
