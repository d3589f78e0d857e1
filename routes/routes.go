package routes

import (
	"calufestas/auth"
	"calufestas/cart"
	"calufestas/checkout"
	"calufestas/confirmation"
	"calufestas/middleware"
	"calufestas/orders"
	"calufestas/products"
	"calufestas/ratelim"

	"github.com/julienschmidt/httprouter"
)

// Deps carries every handler the router exposes.
type Deps struct {
	Auth         *middleware.Auth
	RateLimiter  *ratelim.RateLimiter
	Accounts     *auth.Handler
	Products     *products.Handler
	Cart         *cart.Handler
	Checkout     *checkout.Handler
	Confirmation *confirmation.Handler
	Orders       *orders.Handler
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	limited := middleware.Chain(d.RateLimiter.Limit, d.Auth.Session)

	router.POST("/api/auth/login", limited(d.Accounts.Login))
	router.POST("/api/auth/logout", d.Auth.Session(d.Accounts.Logout))
	router.GET("/api/auth/me", d.Auth.Authenticate(d.Accounts.Me))

	router.POST("/api/auth/register", limited(d.Accounts.Register))
	router.POST("/api/auth/forgot-password", limited(d.Accounts.ForgotPassword))
	router.POST("/api/auth/verify-code", limited(d.Accounts.VerifyCode))
	router.POST("/api/auth/reset-password", limited(d.Accounts.ResetPassword))
}

func AddProductRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/products", d.Products.GetProducts)
	router.GET("/api/products/:id", d.Products.GetProduct)
	router.GET("/api/products/:id/thumb", d.Products.GetThumbnail)
}

func AddCartRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/cart", d.Auth.Session(d.Cart.GetCart))
	router.POST("/api/cart/items", d.Auth.Session(d.Cart.AddItem))
	router.PUT("/api/cart/items/:id", d.Auth.Session(d.Cart.UpdateItem))
	router.DELETE("/api/cart/items/:id", d.Auth.Session(d.Cart.RemoveItem))
	router.DELETE("/api/cart", d.Auth.Session(d.Cart.ClearCart))
	router.GET("/ws/cart", d.Auth.Session(d.Cart.Sync))
}

func AddCheckoutRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/checkout", d.Auth.Session(d.Checkout.GetCheckout))
	router.POST("/api/checkout", d.Auth.Session(d.Checkout.Submit))

	router.GET("/api/checkout/confirmation", d.Auth.Session(d.Confirmation.GetConfirmation))
	router.GET("/api/checkout/confirmation/qr.png", d.Auth.Session(d.Confirmation.GetQRCode))
	router.GET("/api/checkout/confirmation/receipt.pdf", d.Auth.Session(d.Confirmation.GetReceipt))
}

func AddOrderRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/orders/mine", d.Auth.Authenticate(d.Orders.GetMine))
}

func AddAdminRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/admin/orders", d.Auth.RequireAdmin(d.Orders.GetAll))
	router.PUT("/api/admin/orders/:id", d.Auth.RequireAdmin(d.Orders.UpdateState))
	router.DELETE("/api/admin/orders/:id", d.Auth.RequireAdmin(d.Orders.DeleteOrder))
	router.POST("/api/admin/products", d.Auth.RequireAdmin(d.Products.CreateProduct))
}
