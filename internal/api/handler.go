// Package api 本地 REST 接口
// 浏览器扩展推送名单，前端驱动设置流程，全部走这一层
package api

import (
	"github.com/gin-gonic/gin"

	"deckmate/internal/importer"
	"deckmate/internal/session"
	"deckmate/internal/store"
)

// Handler API 处理器
type Handler struct {
	store       *store.Store
	sessions    *session.Manager
	coordinator *importer.Coordinator
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, sessions *session.Manager, coordinator *importer.Coordinator) *Handler {
	return &Handler{
		store:       st,
		sessions:    sessions,
		coordinator: coordinator,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 赛事与名单
	router.GET("/events", h.ListEvents)
	router.POST("/events", h.CreateEvent)
	router.GET("/events/:id", h.GetEvent)
	router.PUT("/events/:id/roster", h.PutRoster)
	router.GET("/events/:id/roster", h.GetRoster)

	// 表格导入 (SSE 进度流)
	router.POST("/events/:id/import", h.Import)

	// 设置流程
	router.GET("/events/:id/setup", h.GetSetup)
	router.PATCH("/events/:id/columns/:index", h.SetColumnType)
	router.PATCH("/events/:id/filters", h.SetFilters)
	router.PATCH("/events/:id/duplicates", h.SetDuplicateStrategy)

	// 配对
	router.GET("/events/:id/rows", h.GetRows)
	router.POST("/events/:id/match/:mode", h.RunMatcher)
	router.GET("/events/:id/pairings", h.GetPairings)
	router.PUT("/events/:id/pairings/:playerId", h.AssignPairing)
	router.DELETE("/events/:id/pairings/:playerId", h.RemovePairing)

	// 保存与定稿
	router.POST("/events/:id/save", h.SaveSession)
	router.POST("/events/:id/finalize", h.Finalize)
	router.POST("/events/:id/reopen", h.Reopen)

	// 对账报告导出
	router.GET("/events/:id/export", h.ExportReport)
}
