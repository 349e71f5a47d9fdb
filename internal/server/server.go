package server

import (
	"log"
	"time"

	"backend-sstrack/internal/admin"
	"backend-sstrack/internal/auth"
	"backend-sstrack/internal/config"
	"backend-sstrack/internal/movement"
	"backend-sstrack/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	policy := movementPolicy(s.Cfg)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	movement.RegisterRoutes(s.App.Group("/movements"), movement.NewService(s.DB, s.Stream, policy), jwtMiddleware)
	admin.RegisterRoutes(s.App.Group("/admin", jwtMiddleware), admin.NewService(s.DB, policy.ToleranceKm, policy.Location))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

func movementPolicy(cfg config.Config) movement.Policy {
	policy := movement.DefaultPolicy()
	if cfg.DailyLimit > 0 {
		policy.DailyLimit = cfg.DailyLimit
	}
	if cfg.ToleranceKm > 0 {
		policy.ToleranceKm = cfg.ToleranceKm
	}
	policy.StrictBounds = cfg.StrictBounds
	if cfg.StrictBounds {
		policy.MinLat, policy.MaxLat = cfg.MinLat, cfg.MaxLat
		policy.MinLng, policy.MaxLng = cfg.MinLng, cfg.MaxLng
	}

	if cfg.QuotaTimezone != "" {
		loc, err := time.LoadLocation(cfg.QuotaTimezone)
		if err != nil {
			log.Printf("invalid QUOTA_TIMEZONE %q, falling back to UTC: %v", cfg.QuotaTimezone, err)
			loc = time.UTC
		}
		policy.Location = loc
	}
	return policy
}
