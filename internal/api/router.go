package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/auth"
	"github.com/nekogravitycat/league-admin-backend/internal/facilitator"
	facilitatorHttp "github.com/nekogravitycat/league-admin-backend/internal/facilitator/http"
	"github.com/nekogravitycat/league-admin-backend/internal/mail"
	mailHttp "github.com/nekogravitycat/league-admin-backend/internal/mail/http"
	"github.com/nekogravitycat/league-admin-backend/internal/registration"
	registrationHttp "github.com/nekogravitycat/league-admin-backend/internal/registration/http"
	"github.com/nekogravitycat/league-admin-backend/internal/roster"
	rosterHttp "github.com/nekogravitycat/league-admin-backend/internal/roster/http"
	"github.com/nekogravitycat/league-admin-backend/internal/team"
	teamHttp "github.com/nekogravitycat/league-admin-backend/internal/team/http"
	"github.com/nekogravitycat/league-admin-backend/internal/user"
	userHttp "github.com/nekogravitycat/league-admin-backend/internal/user/http"
)

var devOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:8081", // Swagger
}

// Config holds the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	RosterSessions     *roster.Manager
	FacilitatorService facilitator.Service
	TeamService        team.Service
	MailService        mail.Service
	RegistrationFeed   *registration.Feed
	RegistrationHub    *registration.Hub
	JWTManager         *auth.JWTManager

	Gatherer prometheus.Gatherer
	Logger   *zap.SugaredLogger
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r := gin.New()
	r.Use(RequestLogger(log.Named("http")), gin.Recovery())

	// cors.New rejects an empty origin list, so production without
	// PROD_ORIGINS serves same-origin only.
	origins := allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	if len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		corsConfig.ExposeHeaders = []string{"Content-Disposition"}
		r.Use(cors.New(corsConfig))
	}

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user has the admin flag.
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager, cfg.RosterSessions.Drop)
	rosterHandler := rosterHttp.NewRosterHandler(cfg.RosterSessions)
	facilitatorHandler := facilitatorHttp.NewHandler(cfg.FacilitatorService)
	teamHandler := teamHttp.NewHandler(cfg.TeamService)
	mailHandler := mailHttp.NewHandler(cfg.MailService)
	registrationHandler := registrationHttp.NewHandler(
		cfg.RegistrationFeed,
		cfg.RegistrationHub,
		originChecker(origins),
		log.Named("registration"),
	)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		rosterHttp.RegisterRoutes(v1, rosterHandler, authMiddleware, adminMiddleware)
		facilitatorHttp.RegisterRoutes(v1, facilitatorHandler, authMiddleware, adminMiddleware)
		teamHttp.RegisterRoutes(v1, teamHandler, authMiddleware, adminMiddleware)
		mailHttp.RegisterRoutes(v1, mailHandler, authMiddleware, adminMiddleware)
		registrationHttp.RegisterRoutes(v1, registrationHandler, authMiddleware, adminMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return devOrigins
	}
	var out []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// originChecker accepts websocket upgrades from the CORS origins and from
// clients that send no Origin header.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
