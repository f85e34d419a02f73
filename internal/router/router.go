package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/user/where2watch/internal/handler"
	"github.com/user/where2watch/internal/middleware"
	"github.com/user/where2watch/internal/model"
	"go.uber.org/zap"
)

const sessionName = "w2w_session"

// NewEngine 创建 gin 引擎并挂载全局中间件与路由
func NewEngine(h *handler.Handler, log *zap.Logger) *gin.Engine {
	if h.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	RegisterValidators()

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(h.Config.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.Config.AdminTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	RegisterRoutes(r, h)
	return r
}

// RegisterValidators 向 gin 的 binding 引擎注册自定义校验标签
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// 重复注册会覆盖同名标签，不会出错
	_ = v.RegisterValidation("contenttype", model.ValidateContentType)
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", h.Health)

	// ==================== 公开 API ====================
	api := r.Group("/api")
	{
		api.GET("/contents", h.ListContents)
		api.GET("/contents/:id", h.GetContent)
		api.GET("/contents/:id/providers/:providerId/link", h.ProviderLink)
		api.POST("/contents/:id/views", h.RecordView)
		api.GET("/search", h.SearchContents)
		api.GET("/categories", h.ListCategories)
		api.GET("/browse", h.Browse)
	}

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin(h.Config.AppSecret))
	{
		admin.GET("/stats", h.AdminStats)

		// 导入
		admin.POST("/import", h.ImportPreview)
		admin.POST("/import/save", h.ImportSave)

		// 内容管理
		admin.POST("/contents", h.CreateContent)
		admin.PUT("/contents/:id", h.UpdateContent)
		admin.DELETE("/contents/:id", h.DeleteContent)
		admin.POST("/contents/:id/seasons", h.AddSeason)
		admin.DELETE("/contents/:id/seasons/:season", h.RemoveSeason)
		admin.POST("/contents/:id/seasons/:season/episodes", h.AddEpisode)
		admin.DELETE("/contents/:id/seasons/:season/episodes/:episode", h.RemoveEpisode)

		// 分类管理
		admin.GET("/categories", h.AdminCategories)
		admin.POST("/categories", h.AdminCategoryCreate)
		admin.DELETE("/categories/:id", h.AdminCategoryDelete)
		admin.PUT("/categories/:id/contents", h.AdminCategorySetContents)
	}
}
