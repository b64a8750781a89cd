package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"devisflow/internal/csvexport"
	"devisflow/internal/domain"
	"devisflow/internal/middleware"
	"devisflow/internal/progress"
	"devisflow/internal/service"
)

// LogHandler exposes the caller's processing log.
type LogHandler struct {
	sessions *service.SessionRegistry
	now      func() time.Time
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(sessions *service.SessionRegistry) *LogHandler {
	return &LogHandler{sessions: sessions, now: time.Now}
}

// List handles GET /api/v1/logs?level=INFO,ERROR&q=...
func (h *LogHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	entries := h.sessions.Get(middleware.GetUserID(c)).Logs().Entries(filter)
	RespondOK(c, entries)
}

// Export handles GET /api/v1/logs/export?format=txt|csv
func (h *LogHandler) Export(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	logs := h.sessions.Get(middleware.GetUserID(c)).Logs()

	format := strings.ToLower(c.DefaultQuery("format", "txt"))
	var contentType string
	switch format {
	case "txt":
		contentType = "text/plain; charset=utf-8"
	case "csv":
		contentType = "text/csv; charset=utf-8"
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be txt or csv")
		return
	}

	filename := csvexport.BuildFilename("devisflow_logs", format, h.now())
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	var err error
	if format == "csv" {
		err = logs.WriteCSV(c.Writer, filter)
	} else {
		err = logs.WriteText(c.Writer, filter)
	}
	if err != nil {
		_ = c.Error(err)
	}
}

// Clear handles DELETE /api/v1/logs
func (h *LogHandler) Clear(c *gin.Context) {
	h.sessions.Get(middleware.GetUserID(c)).Logs().Clear()
	RespondOK(c, gin.H{"cleared": true})
}

// parseFilter reads the level and q query parameters. It writes a 400 and
// returns false on an unknown level.
func parseFilter(c *gin.Context) (progress.Filter, bool) {
	var f progress.Filter
	f.Query = strings.TrimSpace(c.Query("q"))

	raw := strings.TrimSpace(c.Query("level"))
	if raw == "" {
		return f, true
	}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		level, ok := domain.ParseLogLevel(part)
		if !ok {
			RespondError(c, http.StatusBadRequest, "INVALID_LEVEL", fmt.Sprintf("unknown log level %q", part))
			return f, false
		}
		f.Levels = append(f.Levels, level)
	}
	return f, true
}
