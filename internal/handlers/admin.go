package handlers

import (
	"errors"
	"net/http"
	"time"

	"real-estate-crm/internal/cleanup"
	"real-estate-crm/internal/config"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/history"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"
	"real-estate-crm/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db             *database.GormDB
	scheduler      *scheduler.Scheduler
	history        *history.Service
	cleanupService *cleanup.Service
	cleanupCfg     config.CleanupConfig
	log            *logrus.Entry
}

// NewAdminHandler creates a new admin handler. sched may be nil when the
// daily jobs are not wired.
func NewAdminHandler(db *database.GormDB, sched *scheduler.Scheduler, cleanupCfg config.CleanupConfig) *AdminHandler {
	return &AdminHandler{
		db:             db,
		scheduler:      sched,
		history:        history.NewService(db.DB()),
		cleanupService: cleanup.NewService(db.DB()),
		cleanupCfg:     cleanupCfg,
		log:            logger.Component("admin"),
	}
}

// GetStats returns the dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	now := time.Now().UTC()
	stats, err := h.db.GetDashboardStats(now)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"dashboard": stats}

	deleteStats, err := h.cleanupService.GetDeleteStats(now)
	if err != nil {
		h.log.WithError(err).Warn("Failed to get delete stats")
	} else {
		resp["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, resp)
}

// GetCityStats returns listing counts per city for available properties
func (h *AdminHandler) GetCityStats(c *gin.Context) {
	type CityStat struct {
		City  string `json:"city"`
		Count int64  `json:"count"`
	}

	stats := make([]CityStat, 0)
	err := h.db.DB().Model(&models.Property{}).
		Select("city, count(*) as count").
		Where("status = ? AND city <> ''", models.PropertyStatusAvailable).
		Group("city").
		Order("count DESC").
		Limit(20).
		Scan(&stats).Error
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": stats, "total": len(stats)})
}

// GetRecentChanges returns recent property changes across all listings
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	q := newQueryParser(c)
	limit := q.Int("limit")
	if !q.Done() {
		return
	}
	n := 100
	if limit != nil && *limit > 0 {
		n = *limit
	}

	changes, err := h.history.GetRecentChanges(n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": changes, "total": len(changes)})
}

// RunCleanup purges read or resolved alerts older than the retention window
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    *int `json:"retention_days" binding:"omitempty,min=1"`
		MaxDeletionCount *int `json:"max_deletion_count" binding:"omitempty,min=1"`
		DryRun           bool `json:"dry_run"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	cfg := cleanup.CleanupConfig{
		RetentionDays:    h.cleanupCfg.AlertRetentionDays,
		MaxDeletionCount: h.cleanupCfg.MaxDeletionCount,
		DryRun:           req.DryRun,
	}
	if req.RetentionDays != nil {
		cfg.RetentionDays = *req.RetentionDays
	}
	if req.MaxDeletionCount != nil {
		cfg.MaxDeletionCount = *req.MaxDeletionCount
	}

	h.log.WithFields(logrus.Fields{
		"retention_days": cfg.RetentionDays,
		"max":            cfg.MaxDeletionCount,
		"dry_run":        cfg.DryRun,
	}).Info("Running alert cleanup")

	result, err := h.cleanupService.PurgeAlerts(cfg, time.Now().UTC())
	if err != nil {
		if errors.Is(err, cleanup.ErrSafetyLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	q := newQueryParser(c)
	limit := q.Int("limit")
	if !q.Done() {
		return
	}
	n := 100
	if limit != nil && *limit > 0 {
		n = *limit
	}

	logs, err := h.cleanupService.GetRecentDeleteLogs(n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs, "total": len(logs)})
}

// RunDailyJobs runs the alert generator and cleanup now, in the request
func (h *AdminHandler) RunDailyJobs(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}

	h.log.Info("Manual daily jobs trigger requested")
	if err := h.scheduler.RunNow(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Daily jobs completed"})
}
