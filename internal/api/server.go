package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vietanh2810/eventbooking-api/docs"
	v1 "github.com/vietanh2810/eventbooking-api/internal/api/handler/v1"
	"github.com/vietanh2810/eventbooking-api/internal/api/middleware"
	"github.com/vietanh2810/eventbooking-api/internal/config"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/service"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Booking *service.BookingService
	Feed    *v1.SummaryFeed

	redis     redis.Scripter
	notifiers service.Notifiers
	clock     func() time.Time
}

type Option func(*Server)

// WithRedis enables the booking rate limiter when rate_limit.enabled is set.
func WithRedis(rdb redis.Scripter) Option {
	return func(s *Server) {
		s.redis = rdb
	}
}

// WithNotifier adds a post-commit booking notifier next to the summary feed.
func WithNotifier(n service.BookingNotifier) Option {
	return func(s *Server) {
		s.notifiers = append(s.notifiers, n)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.clock = now
	}
}

func NewServer(conf *config.AppConfig, repos Repositories, opts ...Option) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(repos)
	userHandler := s.initUserHandler(repos)
	eventHandler := s.initEventHandler(repos)
	summaryHandler := s.initSummaryHandler(repos)
	ticketHandler := s.initTicketHandler(repos)
	s.MountHandlers(authHandler, userHandler, eventHandler, summaryHandler, ticketHandler)

	return s
}

func (s *Server) initAuthHandler(repos Repositories) *v1.AuthHandler {
	svc := service.NewAuthService(repos.Users)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(repos Repositories) *v1.UserHandler {
	svc := service.NewUserService(repos.Users)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(repos Repositories) *v1.EventHandler {
	svc := service.NewEventService(repos.Events)
	handler := v1.NewEventHandler(svc)

	return handler
}

func (s *Server) initSummaryHandler(repos Repositories) *v1.SummaryHandler {
	svc := service.NewSummaryService(repos.Events, repos.Ledger)
	s.Feed = v1.NewSummaryFeed(svc, s.Config.API.AllowedCORSDomains)
	handler := v1.NewSummaryHandler(svc, s.Feed)

	return handler
}

// initTicketHandler must run after initSummaryHandler, the feed is one of
// the booking notifiers.
func (s *Server) initTicketHandler(repos Repositories) *v1.TicketHandler {
	policy := service.DefaultBookingPolicy
	if b := s.Config.Booking; b != nil {
		policy = service.BookingPolicy{
			LockTimeout:  b.LockTimeout,
			MaxRetries:   b.MaxRetries,
			RetryBackoff: b.RetryBackoff,
		}
	}

	notifiers := append(service.Notifiers{s.Feed}, s.notifiers...)
	s.Booking = service.NewBookingService(repos.Ledger, repos.Ledger, policy,
		service.WithNotifier(notifiers),
		service.WithClock(s.clock),
	)
	handler := v1.NewTicketHandler(s.Booking)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	summaryHandler *v1.SummaryHandler,
	ticketHandler *v1.TicketHandler,
) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	public := s.Router.Group(basePath)
	{
		public.POST("/users/register/", authHandler.HandleRegister)
		public.POST("/users/admin/register/", authHandler.HandleRegisterAdmin)
		public.POST("/users/login/", authHandler.HandleLogin)

		public.GET("/events/", eventHandler.HandleListEvents)
		public.GET("/events/:eventID/", eventHandler.HandleGetEvent)
	}

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/users/me/", userHandler.HandleGetMe)
	}

	tickets := s.Router.Group(basePath, verifyJWT, middleware.RequireCapability(domain.CapBookTickets))
	{
		tickets.GET("/events/tickets/", ticketHandler.HandleListTickets)
		tickets.POST("/events/tickets/create/",
			middleware.RateLimit(s.Config.RateLimit, s.redis),
			ticketHandler.HandleCreateTicket,
		)
	}

	admin := s.Router.Group(basePath, verifyJWT, middleware.RequireCapability(domain.CapManageEvents))
	{
		admin.POST("/events/create/", eventHandler.HandleCreateEvent)
		admin.PUT("/events/:eventID/update/", eventHandler.HandleUpdateEvent)
		admin.PATCH("/events/:eventID/update/", eventHandler.HandleUpdateEvent)
	}

	summaries := s.Router.Group(basePath, verifyJWT, middleware.RequireCapability(domain.CapViewSummaries))
	{
		summaries.GET("/events/:eventID/summary/", summaryHandler.HandleGetSummary)
		summaries.GET("/events/:eventID/summary/ws", summaryHandler.HandleSummaryFeed)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event booking API"
	docs.SwaggerInfo.Description = "Events, ticket bookings and booking summaries."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
