package router

import (
	"log/slog"
	"net/http"
	"time"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/middleware"
	"attendance/tracker/internal/pkg/metrics"
	"attendance/tracker/internal/pkg/repository/postgresql"
	"attendance/tracker/internal/repository/postgres/attendance"
	"attendance/tracker/internal/repository/postgres/user"
	"attendance/tracker/internal/repository/redis"

	attendance_controller "attendance/tracker/internal/controller/http/v1/attendance"
	auth_controller "attendance/tracker/internal/controller/http/v1/auth"
	attendance_service "attendance/tracker/internal/service/attendance"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

type Router struct {
	*web.App
	postgresDB     *postgresql.Database
	redisDB        *goredis.Client
	auth           *auth.Auth
	log            *slog.Logger
	registry       *prometheus.Registry
	metrics        *metrics.Metrics
	allowedOrigins []string
	authPerMinute  int
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *goredis.Client,
	auth *auth.Auth,
	log *slog.Logger,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	allowedOrigins []string,
	authPerMinute int,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		auth,
		log,
		registry,
		m,
		allowedOrigins,
		authPerMinute,
	}
}

func (r Router) Init() {
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(r.log, r.metrics))
	r.Use(middleware.CORS(r.allowedOrigins))

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	attendancePostgres := attendance.NewRepository(r.postgresDB)

	// service
	attendanceService := attendance_service.NewService(attendancePostgres, time.Now, r.log, r.metrics)

	// controller
	authController := auth_controller.NewController(userPostgres, r.auth)
	attendanceController := attendance_controller.NewController(attendanceService)

	// - redis, optional
	var counter middleware.Counter
	if r.redisDB != nil {
		counter = redis.NewCounter(r.redisDB, "ratelimit:")
	}
	limited := middleware.RateLimit(counter, r.authPerMinute, time.Minute, r.log)

	self := middleware.Authenticate(r.auth, auth.ScopeSelf)
	admin := middleware.Authenticate(r.auth, auth.ScopeAdmin)
	delegated := middleware.Delegated("userId")

	// #auth
	r.Post("/auth/register", authController.Register, limited)
	r.Post("/auth/login", authController.Login, limited)
	r.Get("/auth/users", authController.Users, admin)

	// #attendance
	r.Post("/attendance/checkin", attendanceController.CheckIn, self)
	r.Post("/attendance/checkout", attendanceController.CheckOut, self)
	r.Get("/attendance/me", attendanceController.GetMine, self, delegated)
	r.Get("/attendance/report", attendanceController.GetReport, self, delegated)
	r.Get("/attendance/all", attendanceController.GetAll, admin)
	r.Get("/attendance/all/export", attendanceController.ExportAll, admin)

	// #ops
	r.GET("/healthz", func(c *gin.Context) {
		if err := r.postgresDB.StatusCheck(c.Request.Context()); err != nil {
			r.log.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": false, "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
}
