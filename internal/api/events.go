package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deckmate/internal/model"
)

// GetStatus 系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	events, err := h.store.ListEvents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"events": len(events),
	})
}

// CreateEventRequest 新建赛事请求
type CreateEventRequest struct {
	Name      string `json:"name" binding:"required"`
	Date      string `json:"date"`
	Organizer string `json:"organizer"`
	Format    string `json:"format"`
}

// CreateEvent 新建赛事
// POST /api/events
func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的赛事数据"})
		return
	}

	event := &model.Event{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Date:      req.Date,
		Organizer: req.Organizer,
		Format:    req.Format,
	}
	if err := h.store.SaveEvent(event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListEvents 列出赛事
// GET /api/events
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.store.ListEvents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if events == nil {
		events = []*model.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent 取单个赛事
// GET /api/events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.store.GetEvent(c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "赛事不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event)
}

// PutRoster 整体替换赛事名单（扩展抓取后推送）
// PUT /api/events/:id/roster
func (h *Handler) PutRoster(c *gin.Context) {
	eventID := c.Param("id")

	var players []model.Player
	if err := c.ShouldBindJSON(&players); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的名单数据"})
		return
	}

	exists, err := h.store.HasEvent(eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "赛事不存在"})
		return
	}

	if err := h.store.ReplacePlayers(eventID, players); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 同步内存会话中的名单
	sess, err := h.sessions.Get(eventID)
	if err == nil {
		sess.SetPlayers(players)
	}

	c.JSON(http.StatusOK, gin.H{"players": len(players)})
}

// GetRoster 取赛事名单
// GET /api/events/:id/roster
func (h *Handler) GetRoster(c *gin.Context) {
	players, err := h.store.GetPlayers(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	c.JSON(http.StatusOK, players)
}
