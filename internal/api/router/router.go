package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vincentnocera/residencyhours/config"
	"github.com/vincentnocera/residencyhours/internal/api/handler"
	"github.com/vincentnocera/residencyhours/internal/api/middleware"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/pkg/jwt"
	"github.com/vincentnocera/residencyhours/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetMe)
				users.PATCH("/me", h.User.UpdateMe)
				users.GET("/residents",
					middleware.RoleAuth(model.RoleAdmin, model.RoleProgramDirector),
					h.User.ListResidents)
			}

			// 活动目录模块
			activities := authorized.Group("/activities")
			{
				activities.GET("", h.Activity.ListActivities)
				activities.POST("", middleware.RoleAuth(model.RoleAdmin), h.Activity.CreateActivity)
				activities.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin), h.Activity.UpdateActivity)
			}

			// 周计划模块
			weeks := authorized.Group("/weeks")
			{
				weeks.GET("", h.Week.GetWeek)
				weeks.PUT("", h.Week.SaveWeek)
				weeks.POST("/copy", h.Week.CopyPreviousWeek)
			}

			// 审批模块（主任/管理员）
			approvals := authorized.Group("/approvals")
			approvals.Use(middleware.RoleAuth(model.RoleAdmin, model.RoleProgramDirector))
			{
				approvals.GET("/matrix", h.Approval.GetMatrix)
				approvals.POST("/:id/approve", h.Approval.Approve)
				approvals.POST("/bulk", h.Approval.BulkApprove)
			}

			// 导出模块
			exports := authorized.Group("/exports")
			{
				exports.GET("/week.xlsx", h.Export.ExportWeekExcel)
				exports.GET("/week.ics", h.Export.ExportWeekICS)
			}
		}
	}

	return r
}
