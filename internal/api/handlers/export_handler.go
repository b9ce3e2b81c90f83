package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roksva123/go-wrike-export/internal/config"
	"github.com/roksva123/go-wrike-export/internal/model"
	"github.com/roksva123/go-wrike-export/internal/wrike"
)

// ExportRunner runs one export. Implemented by service.ExportService.
type ExportRunner interface {
	Run(ctx context.Context, token string) (*model.ExportRun, error)
}

// RunHistory reads recorded runs. Implemented by service.HistoryService.
type RunHistory interface {
	ListRuns(ctx context.Context, status string, limit int) ([]model.ExportRun, error)
	GetRun(ctx context.Context, id string) (*model.ExportRun, error)
}

type ExportHandler struct {
	Runner     ExportRunner
	History    RunHistory
	Token      string
	OutputPath string
	Logger     *slog.Logger

	// running serializes export runs; a second trigger gets 409.
	running sync.Mutex
}

func NewExportHandler(runner ExportRunner, history RunHistory, token, outputPath string, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		Runner:     runner,
		History:    history,
		Token:      token,
		OutputPath: outputPath,
		Logger:     logger,
	}
}

// RunExport triggers a full export and waits for it to finish.
func (h *ExportHandler) RunExport(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "an export is already running"})
		return
	}
	defer h.running.Unlock()

	h.Logger.Info("api trigger: export")
	// Runs outlive the request.
	run, err := h.Runner.Run(context.WithoutCancel(c.Request.Context()), h.Token)
	if err != nil {
		var cfgErr *config.ConfigurationError
		var rErr *wrike.RetrievalError
		switch {
		case errors.As(err, &cfgErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
		case errors.As(err, &rErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           err.Error(),
				"upstream_status": rErr.StatusCode,
				"upstream_body":   rErr.Body,
				"run":             run,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "export completed", "run": run})
}

// ListRuns returns recorded runs, newest first.
func (h *ExportHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := h.History.ListRuns(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *ExportHandler) GetRun(c *gin.Context) {
	run, err := h.History.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// Document serves the last persisted document.
func (h *ExportHandler) Document(c *gin.Context) {
	if _, err := os.Stat(h.OutputPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no document has been exported yet"})
		return
	}
	c.File(h.OutputPath)
}
