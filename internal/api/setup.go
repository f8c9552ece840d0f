package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deckmate/internal/model"
	"deckmate/internal/session"
)

// getSession 取会话，失败时写响应并返回 nil
func (h *Handler) getSession(c *gin.Context) *session.Session {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	return sess
}

// writeSessionError 把会话错误翻译成 HTTP 状态
func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "元数据已冻结，请先重新进入设置模式"})
	case errors.Is(err, session.ErrNoSpreadsheet):
		c.JSON(http.StatusConflict, gin.H{"error": "尚未导入表格"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// GetSetup 设置流程总览：状态、步骤、元数据
// GET /api/events/:id/setup
func (h *Handler) GetSetup(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": sess.Status(),
		"steps":  sess.Steps(),
		"meta":   sess.Meta(),
	})
}

// SetColumnTypeRequest 列类型修改请求
type SetColumnTypeRequest struct {
	Type model.ColumnType `json:"type" binding:"required"`
}

// SetColumnType 手工指定列类型
// PATCH /api/events/:id/columns/:index
func (h *Handler) SetColumnType(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的列序号"})
		return
	}

	var req SetColumnTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的列类型"})
		return
	}

	if err := sess.SetColumnType(index, req.Type); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meta": sess.Meta(), "status": sess.Status()})
}

// SetFilters 更新行过滤器
// PATCH /api/events/:id/filters
func (h *Handler) SetFilters(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}

	var filters []model.SpreadsheetFilter
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的过滤器"})
		return
	}

	if err := sess.SetFilters(filters); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": len(sess.Rows()), "status": sess.Status()})
}

// SetDuplicateStrategyRequest 重复策略请求
type SetDuplicateStrategyRequest struct {
	Strategy model.DuplicateStrategy `json:"strategy" binding:"required"`
}

// SetDuplicateStrategy 选择重复行处理策略
// PATCH /api/events/:id/duplicates
func (h *Handler) SetDuplicateStrategy(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}

	var req SetDuplicateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的重复策略"})
		return
	}

	if err := sess.SetDuplicateStrategy(req.Strategy); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": len(sess.Rows()), "status": sess.Status()})
}

// GetRows 当前规范化行
// GET /api/events/:id/rows
func (h *Handler) GetRows(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	rows := sess.Rows()
	if rows == nil {
		rows = []model.SpreadsheetRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// RunMatcher 执行一轮自动配对
// POST /api/events/:id/match/:mode
func (h *Handler) RunMatcher(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}

	mode := model.PairingMode(c.Param("mode"))
	if !model.ValidPairingMode(mode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的配对模式: " + string(mode)})
		return
	}

	changed, err := sess.RunMatcher(mode)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"changed": changed,
		"mapping": sess.Mapping(),
		"status":  sess.Status(),
	})
}

// GetPairings 当前映射
// GET /api/events/:id/pairings
func (h *Handler) GetPairings(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, sess.Mapping())
}

// AssignPairingRequest 手工配对请求
type AssignPairingRequest struct {
	RowID string `json:"rowId" binding:"required"`
}

// AssignPairing 手工配对一名选手
// PUT /api/events/:id/pairings/:playerId
func (h *Handler) AssignPairing(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}

	var req AssignPairingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 rowId"})
		return
	}

	if err := sess.AssignManual(c.Param("playerId"), req.RowID); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": sess.Mapping(), "status": sess.Status()})
}

// RemovePairing 解除一名选手的配对
// DELETE /api/events/:id/pairings/:playerId
func (h *Handler) RemovePairing(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	sess.Unassign(c.Param("playerId"))
	c.JSON(http.StatusOK, gin.H{"mapping": sess.Mapping(), "status": sess.Status()})
}

// SaveSession 持久化会话
// POST /api/events/:id/save
func (h *Handler) SaveSession(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": sess.Status()})
}

// Finalize 冻结元数据并落盘规范化行
// POST /api/events/:id/finalize
func (h *Handler) Finalize(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	if err := sess.Finalize(); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": sess.Status()})
}

// Reopen 重新进入设置模式
// POST /api/events/:id/reopen
func (h *Handler) Reopen(c *gin.Context) {
	sess := h.getSession(c)
	if sess == nil {
		return
	}
	if err := sess.Reopen(); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": sess.Status()})
}
