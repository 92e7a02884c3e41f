package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bidmarket/internal/config"
	"bidmarket/internal/handler"
)

// Register wires routes and middleware. Paths follow the public API contract:
// session routes are open, profile routes require a valid access token.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	sessionHandler *handler.SessionHandler,
	userHandler *handler.UserHandler,
	addressHandler *handler.AddressHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Session routes
	e.POST("/register", sessionHandler.Register)
	e.POST("/login", sessionHandler.Login)
	e.POST("/refresh-token", sessionHandler.Refresh)
	e.POST("/logout", sessionHandler.Logout)

	// User routes
	e.GET("/:userId", userHandler.GetUserByID)
	e.PUT("/bid-update", userHandler.UpdateBid)

	// Address routes
	e.POST("/add-address", addressHandler.AddAddress)
	e.PUT("/edit-address", addressHandler.EditAddress)
	e.GET("/:userId/addresses", addressHandler.GetAllAddresses)
	e.DELETE("/delete-address", addressHandler.DeleteAddress)

	// Profile routes require a valid access token.
	requireAccessToken := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTAccessSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	})
	e.POST("/profile", userHandler.GetProfile, requireAccessToken)
	e.PUT("/update-profile", userHandler.UpdateProfile, requireAccessToken)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
