package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"gowaay/internal/infra/config"
	"gowaay/internal/infra/obs"
)

type Handlers struct {
	Auth     AuthHTTP
	Hosts    HostHTTP
	Rooms    RoomHTTP
	Bookings BookingHTTP
	Payments PaymentHTTP
	Admin    AdminHTTP
	Uploads  UploadHTTP

	AuthMiddleware gin.HandlerFunc
	RateLimit      gin.HandlerFunc
	// Metrics serves the Prometheus scrape endpoint when set.
	Metrics http.Handler
	// UploadDir is served under /uploads for locally stored images.
	UploadDir string
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}
	newAPIDocs().register(router)
	if h.UploadDir != "" {
		router.Static("/uploads", h.UploadDir)
	}

	api := router.Group("/api/v1")
	if h.RateLimit != nil {
		api.Use(h.RateLimit)
	}
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware)
	}
	api.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, "GoWaay API is running", gin.H{"time": time.Now().UTC()})
	})

	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Hosts != nil {
		api.POST("/hosts/apply", h.Hosts.Apply)
		api.GET("/hosts/me", h.Hosts.Me)
	}
	if h.Rooms != nil {
		api.GET("/rooms", h.Rooms.List)
		api.GET("/rooms/mine", h.Rooms.Mine)
		api.GET("/rooms/:id", h.Rooms.Get)
		api.POST("/rooms", h.Rooms.Submit)
		api.PUT("/rooms/:id", h.Rooms.Update)
		api.GET("/pricing/commission", h.Rooms.CommissionQuote)
	}
	if h.Bookings != nil {
		api.POST("/bookings", h.Bookings.Create)
		api.GET("/bookings/mine", h.Bookings.Mine)
		api.POST("/bookings/:id/cancel", h.Bookings.Cancel)
	}
	if h.Payments != nil {
		payments := api.Group("/payments")
		payments.POST("/create", h.Payments.Create)
		payments.GET("/verify", h.Payments.Verify)
		payments.POST("/ipn", h.Payments.IPN)
		payments.POST("/manual/confirm", h.Payments.ConfirmManual)
		payments.GET("/:id/status", h.Payments.Status)
	}
	if h.Uploads != nil {
		api.POST("/uploads/image", h.Uploads.Upload)
		api.DELETE("/uploads/image", h.Uploads.Delete)
	}
	if h.Admin != nil {
		admin := api.Group("/admin", roleGuard("admin"))
		admin.GET("/stats", h.Admin.Stats)
		admin.GET("/hosts", h.Admin.ListHosts)
		admin.GET("/rooms", h.Admin.ListRooms)
		admin.GET("/bookings", h.Admin.ListBookings)
		admin.GET("/users", h.Admin.ListUsers)
		admin.POST("/rooms", h.Admin.CreateRoom)
		admin.PATCH("/rooms/:id/assign-host", h.Admin.AssignHost)
		admin.POST("/hosts/:id/approve", h.Admin.ApproveHost)
		admin.POST("/hosts/:id/reject", h.Admin.RejectHost)
		admin.POST("/rooms/:id/approve", h.Admin.ApproveRoom)
		admin.POST("/rooms/:id/reject", h.Admin.RejectRoom)
		admin.POST("/bookings/:id/payment/approve", h.Admin.ApprovePayment)
		admin.POST("/bookings/:id/payment/reject", h.Admin.RejectPayment)
	}

	router.NoRoute(func(c *gin.Context) {
		respondFailure(c, http.StatusNotFound, "Route not found")
	})
	return router
}

func roleGuard(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireRole(c, role); !ok {
			return
		}
		c.Next()
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
			"X-RateLimit-Remaining",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
