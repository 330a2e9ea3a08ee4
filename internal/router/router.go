// Package router wires the HTTP surface: public storefront, guest
// checkout, authenticated customer routes and the admin back office.
package router

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/cache"
	"github.com/swadeshika/storefront/internal/config"
	"github.com/swadeshika/storefront/internal/constants"
	adminhandlers "github.com/swadeshika/storefront/internal/http/handlers/admin"
	publichandlers "github.com/swadeshika/storefront/internal/http/handlers/public"
	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/provider"
)

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxAttempts,
		Message:       "too many checkout attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Storefront, no auth.
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:slug", publicHandler.GetProduct)
			public.GET("/categories", publicHandler.ListCategories)
			public.GET("/payment-methods", publicHandler.ListPaymentMethods)
			public.GET("/captcha/image", publicHandler.GetCaptcha)
		}

		// Guest checkout, identified by email.
		guest := apiV1.Group("/guest")
		{
			guest.POST("/orders",
				RateLimitMiddleware(redisClient, checkoutRule, KeyByIPAndJSONField("email")),
				publicHandler.CreateGuestOrder)
			guest.POST("/orders/lookup", publicHandler.LookupGuestOrder)
			guest.POST("/orders/cancel", publicHandler.CancelGuestOrder)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login",
				RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
				publicHandler.Login)
		}

		// Gateway callbacks. The client-side verify stays public so a
		// payment can settle even when the buyer's session expired
		// mid-checkout; the signature is the proof.
		apiV1.POST("/payments/verify", publicHandler.VerifyPayment)
		apiV1.POST("/payments/webhook/razorpay", publicHandler.PaymentWebhook)

		// Customer routes.
		user := apiV1.Group("")
		user.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.Me)
			user.GET("/me/addresses", publicHandler.ListAddresses)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PATCH("/cart/items/:variant_id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:variant_id", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/orders/preview", publicHandler.PreviewOrder)
			user.POST("/orders",
				RateLimitMiddleware(redisClient, checkoutRule, KeyByIP),
				publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:order_no", publicHandler.GetOrder)
			user.POST("/orders/:order_no/cancel", publicHandler.CancelOrder)
			user.GET("/orders/:order_no/payment", publicHandler.GetOrderPayment)
		}

		// Back office.
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), AdminRBACMiddleware(c.AuthzService))
		{
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:order_no", adminHandler.GetOrder)
			admin.PATCH("/orders/:order_no/status", adminHandler.UpdateOrderStatus)

			admin.GET("/products", adminHandler.ListProducts)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)

			admin.GET("/categories", adminHandler.ListCategories)
			admin.POST("/categories", adminHandler.CreateCategory)

			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.GET("/coupons/:id", adminHandler.GetCoupon)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.PUT("/coupons/:id", adminHandler.UpdateCoupon)
			admin.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

			admin.GET("/settings", adminHandler.GetStoreSettings)
			admin.PUT("/settings", adminHandler.UpdateSetting)
			admin.POST("/settings/smtp/test", adminHandler.SendTestEmail)

			admin.GET("/authz/roles", adminHandler.ListRoles)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
			admin.POST("/authz/roles/:role/policies", adminHandler.GrantRolePolicy)
			admin.DELETE("/authz/roles/:role/policies", adminHandler.RevokeRolePolicy)
			admin.GET("/authz/users/:id/roles", adminHandler.GetUserRoles)
			admin.PUT("/authz/users/:id/roles", adminHandler.SetUserRoles)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
