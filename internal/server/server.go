package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/service"
)

// RoleDirectory resolves and lists roles for the middleware and admin API.
type RoleDirectory interface {
	GetByID(ctx context.Context, id model.RoleID) (*model.Role, error)
	List(ctx context.Context) ([]*model.Role, error)
}

type Server struct {
	engine     *gin.Engine
	users      *service.UserService
	roles      RoleDirectory
	scheduling *service.SchedulingService
	courses    *service.CourseService
	library    *service.LibraryService
	audit      *service.AuditService
	stats      *service.StatsService
	logger     *zap.Logger
}

func New(
	users *service.UserService,
	roles RoleDirectory,
	scheduling *service.SchedulingService,
	courses *service.CourseService,
	library *service.LibraryService,
	audit *service.AuditService,
	stats *service.StatsService,
	allowedOrigins []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		users:      users,
		roles:      roles,
		scheduling: scheduling,
		courses:    courses,
		library:    library,
		audit:      audit,
		stats:      stats,
		logger:     logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-User-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(s.identity())
	{
		api.GET("/me", s.getMe)

		// appointments and availability
		api.GET("/appointments", s.listAppointments)
		api.POST("/appointments", s.bookAppointment)
		api.PATCH("/appointments/:id", s.updateAppointment)
		api.POST("/appointments/:id/cancel", s.cancelAppointment)
		api.GET("/advisors", s.listAdvisors)
		api.GET("/advisors/:id/slots", s.listBookableSlots)
		api.GET("/advisors/:id/slots/occupied", s.isSlotOccupied)
		api.POST("/advisors/:id/availability", s.toggleAvailability)
		api.GET("/advisors/:id/schedule.png", s.renderSchedule)

		// user directory and roles
		api.GET("/users", s.requirePermission(model.PermManageUsers), s.listUsers)
		api.POST("/users", s.requirePermission(model.PermManageUsers), s.createUser)
		api.PUT("/users/:id", s.requirePermission(model.PermManageUsers), s.updateUser)
		api.DELETE("/users/:id", s.requirePermission(model.PermManageUsers), s.deleteUser)
		api.GET("/roles", s.listRoles)

		// course catalog
		api.GET("/courses", s.listCourses)
		api.POST("/courses", s.createCourse)
		api.PUT("/courses/:code", s.updateCourse)
		api.DELETE("/courses/:code", s.deleteCourse)
		api.POST("/courses/:code/enrollment", s.toggleEnrollment)

		// digital library
		api.GET("/books", s.requirePermission(model.PermAccessLibrary), s.listBooks)
		api.POST("/books", s.requirePermission(model.PermManageSettings), s.addBook)
		api.POST("/books/:id/borrow", s.requirePermission(model.PermAccessLibrary), s.toggleBorrow)

		// audit log and analytics
		api.GET("/audit-logs", s.requirePermission(model.PermViewAuditLogs), s.listAuditLogs)
		api.POST("/audit-logs/summarize", s.requirePermission(model.PermViewAuditLogs), s.summarizeAuditLogs)
		api.GET("/stats", s.requirePermission(model.PermViewAnalytics), s.getStats)
	}

	s.engine = r
	return s
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves HTTP until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.engine.Run(addr)
}
