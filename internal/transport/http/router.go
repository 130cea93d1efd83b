package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/guest"
	"github.com/aurelia-jewels/aurelia/internal/handlers"
	"github.com/aurelia-jewels/aurelia/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CartHandler     *handlers.CartHandler
	WishlistHandler *handlers.WishlistHandler
	OrderHandler    *handlers.OrderHandler
	SearchHandler   *handlers.SearchHandler
	TokenService    *token.TokenService
	SessionKeeper   *guest.SessionKeeper
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	products := v1.Group("/products")

	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("", d.ProductHandler.GetProducts)

	// Cart and wishlist serve guests and logged-in users on the same
	// routes: the guest session middleware guarantees a session id, the
	// optional auth middleware upgrades the identity when a token is
	// present.
	cart := v1.Group("/cart",
		handlers.GuestSessionMiddleware(d.SessionKeeper),
		d.TokenService.OptionalAuthMiddleware,
	)

	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PATCH("/:id", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	wishlist := v1.Group("/wishlist",
		handlers.GuestSessionMiddleware(d.SessionKeeper),
		d.TokenService.OptionalAuthMiddleware,
	)

	wishlist.GET("", d.WishlistHandler.GetWishlist)
	wishlist.POST("/toggle", d.WishlistHandler.ToggleWishlist)
	wishlist.DELETE("/:id", d.WishlistHandler.RemoveFromWishlist)
	wishlist.GET("/:id/status", d.WishlistHandler.WishlistStatus)

	orders := v1.Group("/orders", d.TokenService.AutoRefreshMiddleware)

	orders.POST("", d.OrderHandler.MakeOrder)
	orders.GET("", d.OrderHandler.GetOrders)
}
