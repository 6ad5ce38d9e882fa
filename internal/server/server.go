package server

import (
	"context"
	"net/http"
	"time"

	"github.com/erayastyle/ops-hub/internal/attendance"
	attendancedomain "github.com/erayastyle/ops-hub/internal/attendance/domain"
	"github.com/erayastyle/ops-hub/internal/auth"
	authdomain "github.com/erayastyle/ops-hub/internal/auth/domain"
	"github.com/erayastyle/ops-hub/internal/chat"
	chatdomain "github.com/erayastyle/ops-hub/internal/chat/domain"
	"github.com/erayastyle/ops-hub/internal/config"
	"github.com/erayastyle/ops-hub/internal/logger"
	obsmetrics "github.com/erayastyle/ops-hub/internal/observability/metrics"
	"github.com/erayastyle/ops-hub/internal/order"
	orderdomain "github.com/erayastyle/ops-hub/internal/order/domain"
	"github.com/erayastyle/ops-hub/internal/ordersync"
	"github.com/erayastyle/ops-hub/internal/scheduler"
	"github.com/erayastyle/ops-hub/internal/task"
	taskdomain "github.com/erayastyle/ops-hub/internal/task/domain"
	"github.com/erayastyle/ops-hub/internal/user"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(obsmetrics.NewHTTPMetrics),
	fx.Provide(registerGin),
	user.Module,
	auth.Module,
	order.Module,
	ordersync.Module,
	chat.Module,
	attendance.Module,
	task.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	authsvc       authdomain.Service
	usersvc       userdomain.Service
	ordersvc      orderdomain.Service
	syncsvc       *ordersync.Service
	chatsvc       chatdomain.Service
	attendancesvc attendancedomain.Service
	tasksvc       taskdomain.Service
	scheduler     *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Authsvc       authdomain.Service
	Usersvc       userdomain.Service
	Ordersvc      orderdomain.Service
	Syncsvc       *ordersync.Service
	Chatsvc       chatdomain.Service
	Attendancesvc attendancedomain.Service
	Tasksvc       taskdomain.Service
	Scheduler     *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("server"),
		authsvc:       p.Authsvc,
		usersvc:       p.Usersvc,
		ordersvc:      p.Ordersvc,
		syncsvc:       p.Syncsvc,
		chatsvc:       p.Chatsvc,
		attendancesvc: p.Attendancesvc,
		tasksvc:       p.Tasksvc,
		scheduler:     p.Scheduler,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	managers := s.RequireRole(userdomain.RoleAdmin, userdomain.RoleManager)
	admins := s.RequireRole(userdomain.RoleAdmin)

	// -------- Users --------
	api.GET("/users", s.ListUsers)
	api.POST("/users", admins, s.CreateUser)
	api.GET("/users/:id", s.GetUser)
	api.PATCH("/users/:id", admins, s.UpdateUser)
	api.DELETE("/users/:id", admins, s.DeleteUser)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/metrics", s.OrderMetrics)
	api.GET("/orders/:ref", s.GetOrder)
	api.POST("/orders/:ref/status", s.UpdateOrderStatus)
	api.POST("/orders/:ref/tags", s.UpdateOrderTags)
	api.POST("/orders/:ref/note", s.UpdateOrderNote)

	// -------- Chat --------
	api.GET("/chat/channels", s.ListChannels)
	api.GET("/chat/channels/:name/messages", s.ChannelMessages)
	api.POST("/chat/channels/:name/messages", s.SendChannelMessage)
	api.GET("/chat/dm/:userId/messages", s.DirectMessages)
	api.POST("/chat/dm/:userId/messages", s.SendDirectMessage)
	api.GET("/chat/messages/:id/thread", s.Thread)
	api.POST("/chat/messages/:id/replies", s.ThreadReply)
	api.POST("/chat/messages/:id/reactions", s.ToggleReaction)
	api.PATCH("/chat/messages/:id", s.EditMessage)
	api.DELETE("/chat/messages/:id", s.DeleteMessage)
	api.POST("/chat/messages/:id/read", s.MarkRead)
	api.GET("/chat/unread_counts", s.UnreadCounts)
	api.GET("/chat/search", s.SearchMessages)

	// -------- Attendance --------
	api.POST("/attendance/check_in", s.CheckIn)
	api.POST("/attendance/check_out", s.CheckOut)
	api.GET("/attendance/status", s.AttendanceStatus)
	api.GET("/attendance/records", s.AttendanceRecords)
	api.GET("/attendance/report", managers, s.AttendanceReport)
	api.GET("/attendance/overtime", managers, s.AttendanceOvertime)
	api.GET("/attendance/export", managers, s.AttendanceExport)

	// -------- Tasks --------
	api.GET("/tasks", s.ListTasks)
	api.POST("/tasks", managers, s.CreateTask)
	api.GET("/tasks/statistics", s.TaskStatistics)
	api.GET("/tasks/:id", s.GetTask)
	api.PATCH("/tasks/:id", s.UpdateTask)
	api.POST("/tasks/:id/move", s.MoveTask)
	api.DELETE("/tasks/:id", s.DeleteTask)
	api.GET("/tasks/:id/comments", s.TaskComments)
	api.POST("/tasks/:id/comments", s.AddTaskComment)
	api.GET("/tasks/:id/activity", s.TaskActivity)

	// -------- Announcements --------
	api.GET("/announcements", s.ListAnnouncements)
	api.POST("/announcements", managers, s.CreateAnnouncement)

	api.POST("/cron/run-recurring", managers, s.RunRecurringTasks)

	// -------- Shopify sync controls --------
	api.POST("/shopify/sync", managers, s.TriggerSync)
	api.POST("/shopify/backfill", managers, s.TriggerBackfill)
	api.GET("/shopify/sync_status", s.SyncStatus)
}

// registerWebhookRoutes wires the unauthenticated upstream callbacks;
// the webhook carries its own HMAC signature instead of a session.
func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/api/shopify/webhook", s.ShopifyWebhook)
}
