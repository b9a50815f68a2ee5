package server

import (
	"context"
	"net/http"

	"campus-booking/internal/model"
	"campus-booking/internal/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthService covers registration and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, model.Role, error)
}

// ResourceService covers the admin resource CRUD and slot listings.
type ResourceService interface {
	Create(ctx context.Context, res *model.Resource, slots []string) error
	List(ctx context.Context) ([]model.Resource, error)
	Search(ctx context.Context, query string) ([]model.Resource, error)
	Update(ctx context.Context, res *model.Resource, slots []string) error
	Delete(ctx context.Context, resourceID int64) error
	Slots(ctx context.Context, resourceID int64) ([]model.SlotAvailability, error)
}

// BookingService covers the booking lifecycle on both the student and
// admin sides.
type BookingService interface {
	Create(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error)
	ListForUser(ctx context.Context, userID int64) ([]model.StudentBooking, error)
	ListAll(ctx context.Context) ([]model.AdminBooking, error)
	UpdateSlot(ctx context.Context, bookingID, userID, newSlotID int64) error
	Cancel(ctx context.Context, bookingID, userID int64) error
	Approve(ctx context.Context, bookingID int64) error
	Reject(ctx context.Context, bookingID int64) error
	Delete(ctx context.Context, bookingID int64) error
}

type Config struct {
	Auth        AuthService
	Resources   ResourceService
	Bookings    BookingService
	Tokens      *token.Manager
	Logger      *zap.Logger
	StaticDir   string
	Environment string
}

type Server struct {
	auth      AuthService
	resources ResourceService
	bookings  BookingService
	tokens    *token.Manager
	logger    *zap.Logger
	engine    *gin.Engine
}

func New(cfg Config) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		auth:      cfg.Auth,
		resources: cfg.Resources,
		bookings:  cfg.Bookings,
		tokens:    cfg.Tokens,
		logger:    cfg.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.Default())
	if cfg.StaticDir != "" {
		r.Use(static.Serve("/", static.LocalFile(cfg.StaticDir, true)))
	}

	r.POST("/register", s.handleRegister)
	r.POST("/login", s.handleLogin)

	api := r.Group("/api", s.authenticate())

	studentAPI := api.Group("", s.requireRole(model.RoleStudent))
	studentAPI.GET("/resources", s.handleListResources)
	studentAPI.GET("/slots/:resourceId", s.handleListSlots)
	studentAPI.POST("/bookings", s.handleCreateBooking)
	studentAPI.GET("/bookings", s.handleListOwnBookings)
	studentAPI.PUT("/bookings/:bookingId", s.handleUpdateBooking)
	studentAPI.DELETE("/bookings/:bookingId", s.handleCancelBooking)

	adminAPI := api.Group("/admin", s.requireRole(model.RoleAdmin))
	adminAPI.POST("/resources", s.handleCreateResource)
	adminAPI.GET("/resources", s.handleAdminListResources)
	adminAPI.GET("/resources/search/:query", s.handleSearchResources)
	adminAPI.PUT("/resources/:id", s.handleUpdateResource)
	adminAPI.DELETE("/resources/:resourceId", s.handleDeleteResource)
	adminAPI.GET("/bookings", s.handleAdminListBookings)
	adminAPI.PATCH("/bookings/:id/approve", s.handleApproveBooking)
	adminAPI.PATCH("/bookings/:id/reject", s.handleRejectBooking)
	adminAPI.DELETE("/bookings/:id", s.handleDeleteBooking)

	s.engine = r

	return s
}

// Router exposes the configured engine as an http.Handler.
func (s *Server) Router() http.Handler {
	return s.engine
}
