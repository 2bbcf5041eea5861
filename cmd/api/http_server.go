package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Noop27/lesson-store/config"
	"github.com/Noop27/lesson-store/domain/lesson"
	infra "github.com/Noop27/lesson-store/infra"
	"github.com/Noop27/lesson-store/infra/events"
	"github.com/Noop27/lesson-store/infra/gateways"
	"github.com/Noop27/lesson-store/infra/metrics"
	"github.com/Noop27/lesson-store/infra/tracing"
	protocols "github.com/Noop27/lesson-store/protocols"
	"github.com/Noop27/lesson-store/use_cases/cart"
	"github.com/Noop27/lesson-store/use_cases/catalog"
	"github.com/Noop27/lesson-store/use_cases/checkout"
)

const sessionCookie = "session_id"

var defaultFilter = protocols.Filter{SortBy: protocols.SortByTopic, Ascending: true}

// session is one browser session's transient state: its own catalog
// cache and cart, mutated under one mutex so reads never observe a
// half-applied add or remove.
type session struct {
	id         string
	mu         sync.Mutex
	cache      *catalog.Cache
	reconciler *cart.Reconciler
	checkout   *checkout.Checkout
}

type sessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*session
	newSession func(id string) *session
}

func (s *sessionStore) fromRequest(c *gin.Context) *session {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = s.newSession(id)
		s.sessions[id] = sess
	}
	s.mu.Unlock()
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return sess
}

type checkoutRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// serverDeps are the remote collaborators the router wires into each
// session's use cases.
type serverDeps struct {
	catalogGateway   protocols.CatalogGateway
	orderGateway     protocols.OrderGateway
	inventoryGateway protocols.InventoryGateway
	submitLock       protocols.SubmitLockGateway
	publisher        protocols.EventPublisher
}

func StartServer(cfg config.Config, log *zap.Logger) {
	httpClient := &http.Client{Timeout: cfg.API.RequestTimeout}
	deps := serverDeps{
		catalogGateway:   gateways.NewCatalogGatewayHttp(httpClient, cfg.API.BaseURL),
		orderGateway:     gateways.NewOrderGatewayHttp(httpClient, cfg.API.BaseURL),
		inventoryGateway: gateways.NewInventoryGatewayHttp(httpClient, cfg.API.BaseURL),
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis ping failed, using in-memory submit lock",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			deps.submitLock = gateways.NewSubmitLockMemory()
		} else {
			deps.submitLock = gateways.NewSubmitLockRedis(rdb)
			log.Info("submit lock: redis", zap.String("addr", cfg.Redis.Addr))
		}
	} else {
		deps.submitLock = gateways.NewSubmitLockMemory()
		log.Info("submit lock: in-memory (set REDIS_ADDR for redis)")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		deps.publisher = kafkaPublisher
		log.Info("operator events: kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		deps.publisher = events.NewNopPublisher()
		log.Info("operator events: disabled (set KAFKA_BROKERS to enable)")
	}

	if shutdown := tracing.Init("storefront", cfg.Observability.OTLPEndpoint); shutdown != nil {
		defer shutdown()
	}

	r := newRouter(deps, log, cfg.Redis.Addr)
	log.Info("storefront listening", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newRouter(deps serverDeps, log *zap.Logger, redisAddr string) *gin.Engine {
	store := &sessionStore{
		sessions: make(map[string]*session),
		newSession: func(id string) *session {
			cache := catalog.NewCache(deps.catalogGateway)
			reconciler := cart.NewReconciler(cache)
			return &session{
				id:         id,
				cache:      cache,
				reconciler: reconciler,
				checkout:   checkout.NewCheckout(reconciler, cache, deps.orderGateway, deps.inventoryGateway, deps.submitLock, deps.publisher, log),
			}
		},
	}

	r := gin.Default()
	r.Use(metrics.Middleware)
	r.Use(tracing.Middleware())

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		redisCheck := "n/a"
		if redisAddr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				status = "degraded"
				redisCheck = "down"
			} else {
				redisCheck = "up"
			}
			_ = rdb.Close()
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "checks": gin.H{"redis": redisCheck}})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/lessons", func(c *gin.Context) {
		sess := store.fromRequest(c)
		filter := filterFromQuery(c)

		sess.mu.Lock()
		err := sess.cache.Refresh(c.Request.Context(), filter)
		lessons := sess.cache.Lessons()
		sess.mu.Unlock()

		if err != nil {
			log.Error("catalog refresh failed", zap.Error(err))
			c.JSON(transportStatus(err), gin.H{"error": "could not load lessons: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, lessons)
	})

	r.GET("/cart", func(c *gin.Context) {
		sess := store.fromRequest(c)
		sess.mu.Lock()
		lines := sess.reconciler.Detail()
		total := sess.reconciler.Total()
		sess.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"lines": lines, "total": total})
	})

	r.POST("/cart/:lessonId", func(c *gin.Context) {
		sess := store.fromRequest(c)
		id := lesson.ID(c.Param("lessonId"))

		sess.mu.Lock()
		err := sess.reconciler.Add(id)
		quantity := sess.reconciler.Quantity(id)
		sess.mu.Unlock()

		switch {
		case errors.Is(err, cart.ErrUnknownLesson):
			metrics.CartMutations.WithLabelValues("add", "rejected").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, cart.ErrSoldOut):
			metrics.CartMutations.WithLabelValues("add", "rejected").Inc()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			metrics.CartMutations.WithLabelValues("add", "ok").Inc()
			c.JSON(http.StatusOK, gin.H{"id": id, "quantity": quantity})
		}
	})

	r.DELETE("/cart/:lessonId", func(c *gin.Context) {
		sess := store.fromRequest(c)
		id := lesson.ID(c.Param("lessonId"))
		count := 1
		if raw := c.Query("count"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a positive integer"})
				return
			}
			count = parsed
		}

		sess.mu.Lock()
		removed := sess.reconciler.Remove(id, count)
		quantity := sess.reconciler.Quantity(id)
		sess.mu.Unlock()

		outcome := "ok"
		if removed == 0 {
			outcome = "noop"
		}
		metrics.CartMutations.WithLabelValues("remove", outcome).Inc()
		c.JSON(http.StatusOK, gin.H{"id": id, "removed": removed, "quantity": quantity})
	})

	r.POST("/checkout", func(c *gin.Context) {
		sess := store.fromRequest(c)
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sess.mu.Lock()
		out, err := sess.checkout.Submit(c.Request.Context(), checkout.Input{
			SessionID: sess.id,
			Name:      req.Name,
			Phone:     req.Phone,
		})
		sess.mu.Unlock()

		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrInvalidName),
				errors.Is(err, checkout.ErrInvalidPhone),
				errors.Is(err, checkout.ErrEmptyCart):
				metrics.OrderSubmissions.WithLabelValues("rejected").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, checkout.ErrSubmitInFlight):
				metrics.OrderSubmissions.WithLabelValues("rejected").Inc()
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				metrics.OrderSubmissions.WithLabelValues("failed").Inc()
				log.Error("order submission failed", zap.Error(err))
				c.JSON(transportStatus(err), gin.H{"error": err.Error()})
			}
			return
		}

		metrics.OrderSubmissions.WithLabelValues("placed").Inc()
		metrics.InventoryDrift.Add(float64(out.DriftWarnings))
		c.JSON(http.StatusOK, gin.H{
			"orderId":       out.OrderID,
			"total":         out.Total,
			"driftWarnings": out.DriftWarnings,
		})
	})

	return r
}

func filterFromQuery(c *gin.Context) protocols.Filter {
	filter := defaultFilter
	filter.Search = c.Query("search")
	if raw := c.Query("minSpace"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			filter.MinSpace = parsed
		}
	}
	switch protocols.SortField(c.Query("sortBy")) {
	case protocols.SortByTopic:
		filter.SortBy = protocols.SortByTopic
	case protocols.SortByLocation:
		filter.SortBy = protocols.SortByLocation
	case protocols.SortByPrice:
		filter.SortBy = protocols.SortByPrice
	case protocols.SortBySpace:
		filter.SortBy = protocols.SortBySpace
	}
	if order := c.Query("order"); order != "" {
		filter.Ascending = order != "desc"
	}
	return filter
}

func transportStatus(err error) int {
	switch {
	case errors.Is(err, infra.ErrTimeout):
		return http.StatusGatewayTimeout
	case infra.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
