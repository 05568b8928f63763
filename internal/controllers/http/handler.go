package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"greenmart/internal/auth"
	"greenmart/internal/domain"
	"greenmart/internal/services"
)

type Handler struct {
	auth       *services.AuthService
	users      *services.UserService
	categories *services.CategoryService
	products   *services.ProductService
	carts      *services.CartService
	wishlists  *services.WishlistService
	orders     *services.OrderService
	payments   *services.PaymentService
	tokens     *auth.TokenService

	// secureCookies marks auth cookies Secure; set in production.
	secureCookies bool
}

type Services struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Categories *services.CategoryService
	Products   *services.ProductService
	Carts      *services.CartService
	Wishlists  *services.WishlistService
	Orders     *services.OrderService
	Payments   *services.PaymentService
}

func NewHandler(s Services, tokens *auth.TokenService, secureCookies bool) *Handler {
	return &Handler{
		auth:          s.Auth,
		users:         s.Users,
		categories:    s.Categories,
		products:      s.Products,
		carts:         s.Carts,
		wishlists:     s.Wishlists,
		orders:        s.Orders,
		payments:      s.Payments,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	authed := h.requireAuth()
	admin := requireRole(domain.RoleAdmin)

	a := api.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", authed, h.Logout)
	a.GET("/me", authed, h.Me)
	a.PUT("/me", authed, h.UpdateMe)

	u := api.Group("/users", authed, admin)
	u.GET("", h.ListUsers)
	u.GET("/:id", h.GetUser)
	u.PUT("/:id", h.UpdateUser)
	u.DELETE("/:id", h.DeleteUser)

	c := api.Group("/categories")
	c.GET("", h.ListCategories)
	c.GET("/:id", h.GetCategory)
	c.POST("", authed, admin, h.CreateCategory)
	c.PUT("/:id", authed, admin, h.UpdateCategory)
	c.DELETE("/:id", authed, admin, h.DeleteCategory)

	p := api.Group("/products")
	p.GET("", h.ListProducts)
	p.GET("/featured", h.FeaturedProducts)
	p.GET("/slug/:slug", h.GetProductBySlug)
	p.GET("/:id", h.GetProduct)
	p.POST("", authed, admin, h.CreateProduct)
	p.PUT("/:id", authed, admin, h.UpdateProduct)
	p.POST("/:id/images", authed, admin, h.AddProductImages)
	p.DELETE("/:id", authed, admin, h.DeleteProduct)
	p.PATCH("/:id/stock", authed, admin, h.UpdateStock)

	cart := api.Group("/cart", authed)
	cart.GET("", h.GetCart)
	cart.POST("/items", h.AddCartItem)
	cart.PUT("/items/:productId", h.UpdateCartItem)
	cart.DELETE("/items/:productId", h.RemoveCartItem)
	cart.DELETE("", h.ClearCart)

	w := api.Group("/wishlist", authed)
	w.GET("", h.GetWishlist)
	w.POST("/:productId", h.AddToWishlist)
	w.DELETE("/:productId", h.RemoveFromWishlist)

	o := api.Group("/orders", authed)
	o.GET("", h.MyOrders)
	o.POST("", h.CreateOrder)
	o.GET("/all/list", admin, h.AllOrders)
	o.GET("/:id", h.GetOrder)
	o.PATCH("/:id/cancel", h.CancelOrder)
	o.PATCH("/:id/status", admin, h.UpdateOrderStatus)
	o.POST("/:id/tracking", admin, h.AddTracking)

	pay := api.Group("/payments")
	pay.POST("/webhook", h.Webhook)
	pay.POST("/create-intent", authed, h.CreatePaymentIntent)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "GreenMart API is running",
		"timestamp": time.Now().UTC(),
	})
}
