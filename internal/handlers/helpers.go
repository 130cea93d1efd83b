package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aurelia-jewels/aurelia/internal/shopping"
)

// GuestCookieName is where the anonymous session id travels.
const GuestCookieName = "guest_session"

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// identity assembles the caller's identity from what the auth and guest
// session middlewares stored on the context.
func identity(c echo.Context) shopping.Identity {
	id := shopping.Identity{}
	if v, ok := c.Get("userID").(uint); ok && v != 0 {
		id.UserID = v
		id.Authenticated = true
	}
	if v, ok := c.Get("guestSessionID").(string); ok {
		id.SessionID = v
	}
	return id
}

func requireUser(c echo.Context) (uint, error) {
	v, ok := c.Get("userID").(uint)
	if !ok || v == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return v, nil
}
