package main

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"memberhub/internal/api"
	"memberhub/internal/catalog"
	"memberhub/internal/config"
	"memberhub/internal/entity"
	"memberhub/internal/llm"
	"memberhub/internal/model"
	"memberhub/internal/progress"
	"memberhub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed web/dist/index.html
var indexHTML string

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	if err := model.SeedLaunchAnnouncements(context.Background(), repo); err != nil {
		logrus.WithError(err).Warn("failed to seed launch announcements")
	}

	cat, err := catalog.Load()
	if err != nil {
		logrus.WithError(err).Error("failed to load course catalog")
		return
	}

	cache, err := progress.NewCache(cfg)
	if err != nil {
		logrus.WithError(err).Warn("progress cache unavailable, falling back to database only")
		cache = nil
	}
	tracker := progress.NewTracker(repo, cat, cache)

	store, err := storage.NewStore(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	// 辅导后端缺失时不拦启动，问答会降级为兜底回复
	textBackend, err := llm.NewTextBackend(cfg)
	if err != nil {
		logrus.WithError(err).Warn("tutor text backend unavailable")
		textBackend = nil
	}
	speechBackend, err := llm.NewSpeechBackend(cfg)
	if err != nil {
		logrus.WithError(err).Warn("tutor speech backend unavailable, live sessions disabled")
		speechBackend = nil
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, cat, store, tracker, textBackend, speechBackend)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", httpHandler.Register)
	authGroup.POST("/login", httpHandler.Login)
	authGroup.POST("/logout", httpHandler.AuthMiddleware(), httpHandler.Logout)
	authGroup.GET("/me", httpHandler.AuthMiddleware(), httpHandler.Me)

	protected := apiGroup.Group("")
	protected.Use(httpHandler.AuthMiddleware())
	protected.GET("/profile", httpHandler.GetProfile)
	protected.PATCH("/profile", httpHandler.UpdateProfile)
	protected.POST("/profile/avatar", httpHandler.UploadAvatar)
	protected.GET("/dashboard", httpHandler.Dashboard)
	protected.GET("/courses", httpHandler.ListCourses)
	protected.GET("/courses/:id", httpHandler.GetCourse)
	protected.GET("/courses/:id/lessons/:lessonID", httpHandler.GetLesson)
	protected.POST("/progress/toggle", httpHandler.ToggleLesson)
	protected.GET("/progress", httpHandler.GetProgressSummary)
	protected.GET("/announcements", httpHandler.ListAnnouncements)
	protected.POST("/upgrade-requests", httpHandler.RequireRoles(entity.RoleBasic, entity.RoleFull), httpHandler.SubmitUpgrade)
	protected.GET("/upgrade-requests/mine", httpHandler.MyUpgradeRequest)

	tutor := protected.Group("/tutor")
	tutor.POST("/ask", httpHandler.AskTutor)
	tutor.POST("/live", httpHandler.CreateLiveSession)
	tutor.POST("/live/:sessionID/frames", httpHandler.PushLiveFrame)
	tutor.POST("/live/:sessionID/end-turn", httpHandler.EndLiveTurn)
	tutor.POST("/live/:sessionID/interrupt", httpHandler.InterruptLive)
	tutor.DELETE("/live/:sessionID", httpHandler.CloseLiveSession)
	tutor.GET("/live/:sessionID/events", httpHandler.StreamLiveEvents)

	admin := protected.Group("/admin")
	admin.Use(httpHandler.RequireLeadership())
	admin.GET("/members", httpHandler.ListMembers)
	admin.DELETE("/members/:id", httpHandler.DeleteMember)
	admin.GET("/stats", httpHandler.AdminStats)
	admin.GET("/upgrade-requests", httpHandler.ListUpgradeRequests)
	admin.POST("/upgrade-requests/:id/resolve", httpHandler.ResolveUpgrade)
	admin.POST("/announcements", httpHandler.CreateAnnouncement)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	//前端资源
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
	})

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  900 * time.Second,
		WriteTimeout: 900 * time.Second,
		IdleTimeout:  1200 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
