package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"storefront/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Auth      AuthAPI
	Products  ProductAPI
	Orders    OrderAPI
	Tokens    TokenVerifier
	DB        Pinger
	RateLimit bool

	// TrustedProxies may set X-Forwarded-For; when empty the peer address
	// is the client IP.
	TrustedProxies []string
}

func NewRouter(d Deps) *gin.Engine {
	registerValidators()

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		log.Printf("Ignoring trusted proxies: %v", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Logger(), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		respondError(c, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
	}))
	r.MaxMultipartMemory = maxImageSize
	r.NoRoute(func(c *gin.Context) {
		respondError(c, apperr.NotFound("Not found"))
	})

	limit := func(l func() *RateLimiter) gin.HandlerFunc {
		if !d.RateLimit {
			return func(c *gin.Context) { c.Next() }
		}
		return l().Middleware()
	}

	authH := NewAuthHandler(d.Auth)
	productH := NewProductHandler(d.Products)
	orderH := NewOrderHandler(d.Orders)
	requireAuth := RequireAuth(d.Tokens)

	r.GET("/healthz", health(d.DB))

	v1 := r.Group("/api/v1", limit(globalLimiter))
	{
		authG := v1.Group("/auth", limit(authLimiter))
		{
			authG.POST("/register", authH.Register)
			authG.POST("/login", authH.Login)
			authG.GET("/me", requireAuth, authH.Me)
		}

		products := v1.Group("/products", limit(productLimiter))
		{
			products.GET("", productH.List)
			products.GET("/:id", productH.Get)
			products.POST("", requireAuth, RequireAdmin(), productH.Create)
			products.PUT("/:id", requireAuth, RequireAdmin(), productH.Update)
			products.DELETE("/:id", requireAuth, RequireAdmin(), productH.Delete)
		}

		v1.GET("/categories", productH.Categories)

		orders := v1.Group("/orders", requireAuth)
		{
			orders.POST("", orderH.Create)
			orders.GET("", orderH.List)
		}
	}
	return r
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				respondError(c, apperr.Internal(fmt.Errorf("ping database: %w", err)))
				return
			}
		}
		respond(c, http.StatusOK, "OK", nil)
	}
}
