package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aurelia-jewels/aurelia/internal/guest"
)

// GuestSessionMiddleware guarantees every request on cart and wishlist
// routes carries a live guest session id, issuing and re-issuing the cookie
// as the keeper decides.
func GuestSessionMiddleware(keeper *guest.SessionKeeper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current := ""
			if ck, err := c.Cookie(GuestCookieName); err == nil {
				current = ck.Value
			}

			id, err := keeper.GetOrCreate(c.Request().Context(), current)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "guest session unavailable")
			}

			if id != current {
				c.SetCookie(&http.Cookie{
					Name:     GuestCookieName,
					Value:    id,
					Path:     "/",
					Expires:  time.Now().Add(guest.SessionTTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set("guestSessionID", id)
			return next(c)
		}
	}
}
