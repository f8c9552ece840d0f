package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"deckmate/internal/importer"
)

// Import 导入表格 (SSE 流式响应)
// POST /api/events/:id/import
// 两种形态：multipart 上传本地文件，或表单字段 source 给出远程表格 URL
func (h *Handler) Import(c *gin.Context) {
	eventID := c.Param("id")

	opts := importer.ImportOptions{EventID: eventID}

	if file, err := c.FormFile("file"); err == nil {
		opts.Source = file.Filename
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
			return
		}
		opts.Data = data
	} else if source := c.PostForm("source"); source != "" {
		opts.Source = source
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件或来源 URL"})
		return
	}

	// SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range h.coordinator.Import(opts) {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
