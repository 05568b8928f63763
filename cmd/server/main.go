package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"

	"greenmart/internal/auth"
	"greenmart/internal/config"
	httpctl "greenmart/internal/controllers/http"
	"greenmart/internal/infra"
	"greenmart/internal/infra/cache"
	"greenmart/internal/infra/cloudinary"
	imongo "greenmart/internal/infra/mongo"
	imysql "greenmart/internal/infra/mysql"
	"greenmart/internal/infra/rabbitmq"
	"greenmart/internal/infra/stripe"
	"greenmart/internal/logging"
	"greenmart/internal/repository"
	mongorepo "greenmart/internal/repository/mongo"
	mysqlrepo "greenmart/internal/repository/mysql"
	"greenmart/internal/services"
)

type stores struct {
	users      repository.UserRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	carts      repository.CartRepository
	wishlists  repository.WishlistRepository
	orders     repository.OrderRepository
	sequences  repository.SequenceRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.Production())

	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db: connect")
	}
	defer st.close()

	var userCache infra.CacheInterface = cache.NopCache{}
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Warn().Err(err).Msg("redis unreachable, caching disabled")
		} else {
			userCache = cache.NewRedisCache(rdb, "greenmart:")
		}
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to init publisher")
		}
		defer pub.Close()
		publisher = pub
	}

	payments := stripe.NewGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency)
	if cfg.StripeSecretKey == "" {
		zlog.Warn().Msg("STRIPE_SECRET_KEY not set, card payments disabled")
	}

	var images infra.ImageGatewayInterface = cloudinary.Disabled{}
	if cfg.CloudinaryCloudName != "" {
		gw, err := cloudinary.NewGateway(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			zlog.Fatal().Err(err).Msg("image storage")
		}
		images = gw
	} else {
		zlog.Warn().Msg("CLOUDINARY_CLOUD_NAME not set, image uploads disabled")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpire, cfg.JWTRefreshExpire)

	users := services.NewUserService(st.users, userCache)
	if cfg.AdminEmail != "" {
		if _, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			zlog.Fatal().Err(err).Msg("admin bootstrap")
		}
	}

	handler := httpctl.NewHandler(httpctl.Services{
		Auth:       services.NewAuthService(st.users, tokens, userCache),
		Users:      users,
		Categories: services.NewCategoryService(st.categories, images),
		Products:   services.NewProductService(st.products, st.categories, images),
		Carts:      services.NewCartService(st.carts, st.products),
		Wishlists:  services.NewWishlistService(st.wishlists, st.products),
		Orders:     services.NewOrderService(st.orders, st.products, st.carts, st.sequences, payments, publisher),
		Payments:   services.NewPaymentService(st.orders, st.products, payments, userCache, publisher),
	}, tokens, cfg.Production())

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("starting GreenMart API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server run")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server shutdown")
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.DBDriver {
	case "mysql":
		db, err := imysql.Open(cfg.MySQLDSN(), mysqlrepo.Models()...)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:      mysqlrepo.NewUserRepository(db),
			products:   mysqlrepo.NewProductRepository(db),
			categories: mysqlrepo.NewCategoryRepository(db),
			carts:      mysqlrepo.NewCartRepository(db),
			wishlists:  mysqlrepo.NewWishlistRepository(db),
			orders:     mysqlrepo.NewOrderRepository(db),
			sequences:  mysqlrepo.NewSequenceRepository(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	default:
		client, db, err := imongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:      mongorepo.NewUserRepository(db),
			products:   mongorepo.NewProductRepository(db),
			categories: mongorepo.NewCategoryRepository(db),
			carts:      mongorepo.NewCartRepository(db),
			wishlists:  mongorepo.NewWishlistRepository(db),
			orders:     mongorepo.NewOrderRepository(db),
			sequences:  mongorepo.NewSequenceRepository(db),
			close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil
	}
}
