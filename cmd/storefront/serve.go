package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handlers"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repo"
	"storefront/internal/service"
	"storefront/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if migrateOnStart {
			if _, err := db.Migrate(ctx, conn); err != nil {
				return err
			}
		}

		if cfg.Env == config.EnvProduction {
			gin.SetMode(gin.ReleaseMode)
		}

		productRepo := repo.NewProductRepo(conn)
		orderRepo := repo.NewOrderRepo(conn)
		userRepo := repo.NewUserRepo(conn)

		var uploader service.ImageUploader
		if cfg.CloudinaryEnabled() {
			u, err := upload.NewCloudinaryUploader(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
			if err != nil {
				return err
			}
			uploader = u
		} else {
			log.Printf("Cloudinary is not configured, image uploads disabled")
		}

		var notifier service.OrderNotifier
		if cfg.NotificationsEnabled() {
			tg, err := notify.NewTelegram(cfg.BotToken, cfg.AdminChatID)
			if err != nil {
				log.Printf("Order notifications disabled: %v", err)
			} else {
				notifier = tg
			}
		}

		lists := cache.New[models.ProductPage](cfg.CacheCapacity, cfg.CacheTTL)
		tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
		products := service.NewProductService(productRepo, lists, uploader)
		orders := service.NewOrderService(orderRepo, productRepo, products, notifier)
		users := service.NewAuthService(userRepo, tokens)

		router := handlers.NewRouter(handlers.Deps{
			Auth:      users,
			Products:  products,
			Orders:    orders,
			Tokens:    tokens,
			DB:        conn,
			RateLimit: cfg.RateLimitEnabled,

			TrustedProxies: cfg.TrustedProxies,
		})

		return run(ctx, &http.Server{
			Addr:              ":" + cfg.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		})
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

// run serves until ctx is cancelled, then drains open requests.
func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
