package server

import (
	"net/http"
	"strings"

	"bookmarks/internal/auth"
	"bookmarks/internal/middleware"
	"bookmarks/internal/users"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Route binds a method and path to its handler chain
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Routes returns the route table
func (s *Server) Routes() []Route {
	authHandler := auth.NewHandler(s.auth, s.logger)
	usersHandler := users.NewHandler(s.auth, s.logger)
	requireAuth := auth.BearerAuthMiddleware(s.auth, s.logger)

	return []Route{
		{http.MethodGet, "/health", []gin.HandlerFunc{s.healthHandler}},

		{http.MethodPost, "/auth/signup", []gin.HandlerFunc{authHandler.Signup}},
		{http.MethodPost, "/auth/signin", []gin.HandlerFunc{authHandler.Signin}},
		{http.MethodPost, "/auth/logout", []gin.HandlerFunc{requireAuth, authHandler.Logout}},

		{http.MethodGet, "/users/me", []gin.HandlerFunc{requireAuth, usersHandler.GetMe}},
	}
}

// RegisterRoutes builds the gin engine from the route table. Paths match with
// or without a trailing slash.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(s.logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	for _, route := range s.Routes() {
		r.Handle(route.Method, route.Path, route.Handlers...)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return trimTrailingSlash(r)
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": s.cfg.ServiceName,
	}

	if s.db == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	stats := s.db.Health(c.Request.Context())
	resp["database"] = stats
	if stats["status"] != "up" {
		resp["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func trimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}
