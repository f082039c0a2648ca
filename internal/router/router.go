package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/internal/email"
	"github.com/freee021022/onconet/internal/geocode"
	"github.com/freee021022/onconet/internal/handler/audit"
	authhandler "github.com/freee021022/onconet/internal/handler/auth"
	forumhandler "github.com/freee021022/onconet/internal/handler/forum"
	geocodehandler "github.com/freee021022/onconet/internal/handler/geocode"
	"github.com/freee021022/onconet/internal/handler/health"
	medicalhandler "github.com/freee021022/onconet/internal/handler/medical"
	messagehandler "github.com/freee021022/onconet/internal/handler/message"
	pharmacyhandler "github.com/freee021022/onconet/internal/handler/pharmacy"
	prometheushandler "github.com/freee021022/onconet/internal/handler/prometheus"
	secondopinionhandler "github.com/freee021022/onconet/internal/handler/secondopinion"
	soshandler "github.com/freee021022/onconet/internal/handler/sos"
	userhandler "github.com/freee021022/onconet/internal/handler/user"
	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/repository"
	auditsvc "github.com/freee021022/onconet/internal/service/audit"
	"github.com/freee021022/onconet/internal/service/auth"
	"github.com/freee021022/onconet/internal/service/forum"
	"github.com/freee021022/onconet/internal/service/medical"
	"github.com/freee021022/onconet/internal/service/message"
	"github.com/freee021022/onconet/internal/service/pharmacy"
	"github.com/freee021022/onconet/internal/service/secondopinion"
	"github.com/freee021022/onconet/internal/service/sos"
	"github.com/freee021022/onconet/internal/service/user"
	"github.com/freee021022/onconet/internal/session"
	"github.com/freee021022/onconet/pkg/security"
)

const metricsNamespace = "onconet"

// Dependencies are the long-lived components the HTTP surface is built
// from. They are created once by the serve command.
type Dependencies struct {
	Config   *config.Config
	Store    repository.Store
	Sessions *session.Manager
	Hasher   security.PasswordHasher
	Geocoder geocode.Geocoder
	Mailer   email.Service
	Auditor  *auditsvc.Service
	Registry *prometheus.Registry
}

type Router struct {
	engine *gin.Engine
	deps   Dependencies
}

func NewRouter(deps Dependencies) *Router {
	engine := gin.New()
	engine.HandleMethodNotAllowed = false
	if err := engine.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	r := &Router{engine: engine, deps: deps}
	r.setup()
	return r
}

func (r *Router) setup() {
	cfg := r.deps.Config
	metrics := prometheushandler.New(r.deps.Registry, metricsNamespace)

	r.engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.SecurityConfig{}),
		middleware.CORS(cfg.CORS),
	)
	if cfg.RateLimit.Enabled {
		r.engine.Use(middleware.NewRateLimiter(cfg.RateLimit).RateLimit())
	}
	r.engine.Use(
		middleware.SizeLimit(cfg.Server.MaxBodyBytes),
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.AuditClient(),
		middleware.Session(r.deps.Sessions, cfg.Session.CookieName),
	)

	health.NewHandler(r.deps.Store).RegisterRoutes(r.engine)
	r.engine.GET("/metrics", metrics.Handler())

	r.engine.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, "Not found")
	})

	api := r.engine.Group("/api", middleware.NoStore())
	r.setupRoutes(api)
}

func (r *Router) setupRoutes(api *gin.RouterGroup) {
	store := r.deps.Store
	auditor := r.deps.Auditor
	requireSession := middleware.RequireSession()

	users := user.NewService(store)
	authhandler.NewHandler(
		auth.NewService(store, r.deps.Hasher, r.deps.Sessions, auditor),
		users,
		r.deps.Config.Session,
	).RegisterRoutes(api)
	userhandler.NewHandler(users).RegisterRoutes(api, requireSession)

	forumhandler.NewHandler(forum.NewService(store)).RegisterRoutes(api, requireSession)
	secondopinionhandler.NewHandler(secondopinion.NewService(store, r.deps.Mailer)).RegisterRoutes(api)
	messagehandler.NewHandler(message.NewService(store)).RegisterRoutes(api)
	pharmacyhandler.NewHandler(pharmacy.NewService(store)).RegisterRoutes(api)
	medicalhandler.NewHandler(medical.NewService(store, auditor)).RegisterRoutes(api, requireSession)
	soshandler.NewHandler(sos.NewService(store, r.deps.Mailer, auditor)).RegisterRoutes(api, requireSession)
	audit.NewHandler(auditor).RegisterRoutes(api, requireSession)
	geocodehandler.NewHandler(r.deps.Geocoder).RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
