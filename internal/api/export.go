package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"deckmate/internal/exporter"
)

// ExportReport 导出对账报告
// GET /api/events/:id/export
func (h *Handler) ExportReport(c *gin.Context) {
	eventID := c.Param("id")

	f, err := exporter.NewExporter(h.store).Export(eventID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("deckmate-%s.xlsx", eventID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		// 响应头已发出，只能记录
		_ = c.Error(err)
	}
}
