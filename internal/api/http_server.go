package api

import (
	"strings"
	"sync"
	"time"

	"memberhub/internal/auth"
	"memberhub/internal/catalog"
	"memberhub/internal/config"
	"memberhub/internal/llm"
	"memberhub/internal/model"
	"memberhub/internal/progress"
	"memberhub/internal/service"
	"memberhub/internal/storage"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	catalog           *catalog.Catalog
	storage           storage.Store
	storagePublicBase string
	authManager       *auth.Manager

	// 服务层
	tracker        *progress.Tracker
	tutorService   *service.TutorService
	liveService    *service.LiveService
	upgradeService *service.UpgradeService

	// SSE 客户端管理
	sseClients map[string][]chan sseMessage
	sseMu      sync.Mutex
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, cat *catalog.Catalog, store storage.Store, tracker *progress.Tracker, textBackend llm.TextBackend, speechBackend llm.SpeechBackend) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	liveSvc := service.NewLiveService(speechBackend)

	handler := &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		catalog:           cat,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		tracker:           tracker,
		tutorService:      service.NewTutorService(cat, textBackend),
		liveService:       liveSvc,
		upgradeService:    service.NewUpgradeService(repo),
		sseClients:        make(map[string][]chan sseMessage),
	}

	// 实时会话事件经 SSE 推给持有该会话的客户端
	liveSvc.SetNotifyFunc(handler.notifyLiveEvent)

	return handler, nil
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// notifyLiveEvent 把实时辅导会话事件转发到 SSE 通道
func (h *HTTPHandler) notifyLiveEvent(sessionID string, event string, data string) {
	if strings.TrimSpace(sessionID) == "" {
		return
	}
	h.publishSSEMessage(sessionID, sseMessage{
		event: event,
		data:  data,
	})
}
