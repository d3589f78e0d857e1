package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"calufestas/auth"
	"calufestas/backend"
	"calufestas/cart"
	"calufestas/checkout"
	"calufestas/config"
	"calufestas/confirmation"
	"calufestas/db"
	"calufestas/globals"
	"calufestas/hub"
	"calufestas/logging"
	"calufestas/middleware"
	"calufestas/mq"
	"calufestas/orders"
	"calufestas/products"
	"calufestas/ratelim"
	"calufestas/rdx"
	"calufestas/routes"
	"calufestas/storage"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// stores holds the key/value backends picked by configuration: slots for
// carts, sessions and confirmations, and a cache for the catalog and
// thumbnails.
type stores struct {
	slots storage.KV
	cache storage.KV
	redis *redis.Client
	mongo *mongo.Client
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{slots: storage.NewMemory(), cache: storage.NewMemory()}

	if cfg.RedisAddr != "" {
		conn, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		s.redis = conn
		s.cache = rdx.NewKV(conn, globals.CacheNamespace)
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	switch cfg.CartBackend {
	case config.BackendRedis:
		s.slots = rdx.NewKV(s.redis, "")
	case config.BackendMongo:
		client, err := db.Connect(ctx, cfg.MongoURI)
		if err != nil {
			s.close(ctx)
			return nil, err
		}
		s.mongo = client
		kv := db.NewKV(client.Database(cfg.MongoDB).Collection("slots"))
		if err := kv.EnsureIndexes(ctx); err != nil {
			log.Warn("mongo ttl index", zap.Error(err))
		}
		s.slots = kv
		log.Info("mongo connected", zap.String("db", cfg.MongoDB))
	}
	log.Info("cart storage", zap.String("backend", cfg.CartBackend))
	return s, nil
}

func (s *stores) close(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mongo != nil {
		_ = s.mongo.Disconnect(ctx)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	st, err := openStores(connectCtx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("storage unavailable", zap.Error(err))
	}
	defer st.close(context.Background())

	// initialize rate limiter
	rateLimiter := ratelim.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	janitorStop := make(chan struct{})
	go rateLimiter.Janitor(time.Minute, janitorStop)
	defer close(janitorStop)

	// initialize cart sync hub
	sockets := hub.NewHub(log.Named("hub"), func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.AllowedOrigins, origin)
	})
	go sockets.Run()

	var publisher cart.Publisher
	var emitter *mq.Emitter
	if st.redis != nil {
		emitter = mq.NewEmitter(st.redis, log.Named("mq"))
		publisher = emitter
	}

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, log.Named("backend"))
	sessions := auth.NewSessions(st.slots, []byte(cfg.JWTSecret), log.Named("auth"))
	catalog := products.NewService(client, st.cache, cfg.CatalogTTL, log.Named("products"))
	carts := cart.NewRegistry(st.slots, sockets, publisher, log.Named("cart"))
	go carts.Janitor(time.Minute, janitorStop)
	flow := checkout.NewFlow(
		checkout.NewValidator(cfg.Location()),
		client, catalog, carts, st.slots,
		log.Named("checkout"),
	)

	if emitter != nil {
		ready := make(chan struct{})
		go func() {
			if err := emitter.Listen(ctx, ready, carts.HandleStorageEvent); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("storage event listener stopped", zap.Error(err))
			}
		}()
		select {
		case <-ready:
		case <-time.After(5 * time.Second):
			log.Warn("storage event subscription not ready yet")
		}
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Deps{
		Auth:         middleware.NewAuth(sessions, cfg.CookieSecure, log.Named("session")),
		RateLimiter:  rateLimiter,
		Accounts:     auth.NewHandler(client, sessions, carts, log.Named("auth")),
		Products:     products.NewHandler(catalog, log.Named("products")),
		Cart:         cart.NewHandler(carts, catalog, sockets, log.Named("cart")),
		Checkout:     checkout.NewHandler(flow, log.Named("checkout")),
		Confirmation: confirmation.NewHandler(st.slots, cfg.WhatsAppNumber, log.Named("confirmation")),
		Orders:       orders.NewHandler(orders.NewService(client), log.Named("orders")),
	})

	// apply middleware: logging → security headers → CORS → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.RequestLogger(log.Named("http"))(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// on shutdown: close every cart socket
	server.RegisterOnShutdown(func() {
		log.Info("shutting down cart hub")
		sockets.Stop()
	})

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr()), zap.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	log.Info("server stopped cleanly")
}
