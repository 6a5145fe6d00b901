// Package api wires the HTTP surface: routing, authentication, and the
// translation between transport shapes and the service layer.
package api

import (
	"errors"
	"net/http"

	"tabletap/internal/apperr"
	"tabletap/internal/config"
	"tabletap/internal/images"
	"tabletap/internal/menu"
	"tabletap/internal/orders"
	"tabletap/internal/subscribers"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

// Server is the main API handler.
type Server struct {
	router      *gin.Engine
	cfg         *config.Config
	log         *zap.Logger
	menus       *menu.Service
	orders      *orders.Service
	subscribers *subscribers.Service
}

// NewServer builds the services and routes on a shared database handle.
func NewServer(cfg *config.Config, db *gorm.DB, store *images.Store, log *zap.Logger) *Server {
	s := &Server{
		router:      gin.New(),
		cfg:         cfg,
		log:         log.Named("api"),
		menus:       menu.NewService(db, store, log),
		orders:      orders.NewService(db, log),
		subscribers: subscribers.NewService(db, log),
	}

	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(store)
	return s
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes(store *images.Store) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.Static("/media", store.Dir())

	// Diner-facing, no authentication required
	s.router.GET("/table/:table_number/", s.TableView)
	s.router.POST("/submit-order/", s.SubmitOrder)
	s.router.GET("/get-order-details/:order_id/", s.GetOrderDetails)

	auth := s.router.Group("/api/auth")
	{
		auth.POST("/register/", s.Register)
		auth.POST("/login/", s.Login)
	}

	api := s.router.Group("/api", s.authRequired())
	{
		api.GET("/menus/", s.GetMenus)
		api.POST("/menus/create/", s.CreateMenu)
		api.PUT("/menu/:id/", s.UpdateMenu)
		api.DELETE("/menu/:id/", s.ArchiveMenu)
		api.POST("/menu/:id/data/", s.SaveMenuData)

		api.GET("/orders/", s.ListOrders)
		api.PUT("/orders/:id/status/", s.UpdateOrderStatus)

		admin := api.Group("/subscribers", s.superuserRequired())
		{
			admin.GET("/", s.ListSubscribers)
			admin.POST("/", s.CreateSubscriber)
			admin.PUT("/:id/", s.UpdateSubscriber)
			admin.POST("/:id/archive/", s.ArchiveSubscriber)
		}
	}
}

// requestLogger logs every request with its status and latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()))
	}
}

// respondError maps service errors to HTTP statuses. Unrecognized
// errors log their detail and return an opaque 500.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("internal error",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
