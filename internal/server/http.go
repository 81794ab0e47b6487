package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"knowledgebase/internal/domain"
	"knowledgebase/internal/service"
	"knowledgebase/pkg/auth"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr         string
	Mode         string // gin mode: debug, release, test
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Services bundles the handler groups the server routes to.
type Services struct {
	Auth          *service.AuthService
	Account       *service.AccountService
	Content       *service.ContentService
	Comments      *service.CommentService
	Taxonomy      *service.TaxonomyService
	Announcements *service.AnnouncementService
	Notifications *service.NotificationService
	Site          *service.SiteService
	Admin         *service.AdminService
}

// HTTPServer is the gin-backed HTTP transport.
type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	jwt    *auth.JWTManager
	svc    Services
	log    *log.Helper
}

// NewHTTPServer builds the engine, middleware chain and route table.
func NewHTTPServer(config Config, jwtManager *auth.JWTManager, svc Services, logger log.Logger) *HTTPServer {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()

	s := &HTTPServer{
		engine: engine,
		jwt:    jwtManager,
		svc:    svc,
		log:    log.NewHelper(logger),
	}

	engine.Use(RecoveryMiddleware(logger))
	engine.Use(CORSMiddleware())
	engine.Use(MetricsMiddleware())
	engine.Use(LoggingMiddleware(logger))

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      engine,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

func (s *HTTPServer) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api/v1")

	// Public endpoints.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.svc.Auth.Register)
		authGroup.POST("/login", s.svc.Auth.Login)
	}

	// Read endpoints usable anonymously; a token personalizes them.
	public := api.Group("")
	public.Use(OptionalAuthMiddleware(s.jwt))
	{
		public.GET("/home", s.svc.Site.Home)
		public.GET("/search", s.svc.Site.Search)
		public.GET("/profiles/:id", s.svc.Site.Profile)

		public.GET("/posts", s.svc.Content.ListPosts)
		public.GET("/posts/:id", s.svc.Content.GetPost)
		public.GET("/documents", s.svc.Content.ListDocuments)
		public.GET("/documents/:id", s.svc.Content.GetDocument)
		public.GET("/widgets/posts", s.svc.Content.PostWidget)
		public.GET("/widgets/documents", s.svc.Content.DocumentWidget)

		public.GET("/categories", s.svc.Taxonomy.ListCategories)
		public.GET("/tags/autocomplete", s.svc.Taxonomy.AutocompleteTags)

		public.GET("/announcements", s.svc.Announcements.List)
		public.GET("/announcements/:id", s.svc.Announcements.Get)
	}

	// Endpoints requiring a signed-in user.
	authed := api.Group("")
	authed.Use(AuthMiddleware(s.jwt))
	{
		authed.POST("/posts", RequireRoles(domain.RoleAdmin, domain.RoleDeveloper), s.svc.Content.CreatePost)
		authed.PUT("/posts/:id", s.svc.Content.UpdatePost)
		authed.DELETE("/posts/:id", s.svc.Content.DeletePost)

		authed.POST("/documents", s.svc.Content.CreateDocument)
		authed.PUT("/documents/:id", s.svc.Content.UpdateDocument)
		authed.DELETE("/documents/:id", s.svc.Content.DeleteDocument)

		authed.POST("/comments", s.svc.Comments.Create)

		authed.GET("/notifications", s.svc.Notifications.List)
		authed.GET("/notifications/unread-count", s.svc.Notifications.UnreadCount)
		authed.POST("/notifications/:id/open", s.svc.Notifications.Open)
		authed.POST("/notifications/read-all", s.svc.Notifications.MarkAllRead)

		authed.GET("/me", s.svc.Account.Me)
		authed.PUT("/me/notification-settings", s.svc.Account.UpdateNotificationSettings)
		authed.POST("/me/avatar", s.svc.Account.UploadAvatar)
	}

	// Admin-only endpoints.
	admin := api.Group("")
	admin.Use(AuthMiddleware(s.jwt), RequireRoles(domain.RoleAdmin))
	{
		admin.GET("/admin/dashboard", s.svc.Admin.Dashboard)
		admin.GET("/admin/users", s.svc.Admin.ListUsers)
		admin.GET("/admin/users/:id/roles", s.svc.Admin.UserRoles)
		admin.PUT("/admin/users/:id/roles", s.svc.Admin.UpdateUserRoles)

		admin.GET("/tags", s.svc.Taxonomy.ListTags)
		admin.PUT("/tags/:id", s.svc.Taxonomy.RenameTag)
		admin.DELETE("/tags/:id", s.svc.Taxonomy.DeleteTag)

		admin.GET("/categories/usage", s.svc.Taxonomy.ListCategoryUsage)
		admin.POST("/categories", s.svc.Taxonomy.CreateCategory)
		admin.PUT("/categories/:id", s.svc.Taxonomy.RenameCategory)
		admin.DELETE("/categories/:id", s.svc.Taxonomy.DeleteCategory)

		admin.POST("/announcements", s.svc.Announcements.Create)
	}
}

// Start begins serving. It blocks until the listener fails or Stop is called.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.log.Infof("http server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
