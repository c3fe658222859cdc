package cleanup

import (
	"errors"
	"fmt"
	"time"

	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// ErrSafetyLimit aborts a purge that would delete more than allowed
var ErrSafetyLimit = errors.New("safety check failed")

// Service purges rental alerts that have been dealt with
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  `json:"retention_days"`     // Days to keep read or resolved alerts (default: 90)
	MaxDeletionCount int  `json:"max_deletion_count"` // Maximum number of alerts to delete in one run (safety limit)
	DryRun           bool `json:"dry_run"`            // If true, only log what would be deleted
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount   int       `json:"target_count"`   // Number of alerts eligible for deletion
	DeletedCount  int       `json:"deleted_count"`  // Number of alerts actually deleted
	DryRun        bool      `json:"dry_run"`        // Whether this was a dry run
	Cutoff        time.Time `json:"cutoff"`         // Alerts created before this were eligible
	ExecutedAt    time.Time `json:"executed_at"`    // When the cleanup was executed
	DeletedAlerts []uint    `json:"deleted_alerts"` // IDs of deleted alerts
}

// FindExpiredAlerts finds alerts that are eligible for deletion.
// Alerts must be read or resolved, and created before the cutoff.
func (s *Service) FindExpiredAlerts(cutoff time.Time) ([]models.RentalAlert, error) {
	var alerts []models.RentalAlert

	err := s.db.Where("(is_read = ? OR resolved_at IS NOT NULL) AND created_at < ?", true, cutoff).
		Order("id ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired alerts: %w", err)
	}

	return alerts, nil
}

// PurgeAlerts deletes expired alerts in a single transaction and writes one
// delete log per alert
func (s *Service) PurgeAlerts(config CleanupConfig, now time.Time) (*CleanupResult, error) {
	log := logger.Component("cleanup")
	result := &CleanupResult{
		DryRun:        config.DryRun,
		Cutoff:        now.AddDate(0, 0, -config.RetentionDays),
		ExecutedAt:    now,
		DeletedAlerts: []uint{},
	}

	expired, err := s.FindExpiredAlerts(result.Cutoff)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(expired)

	if result.TargetCount == 0 {
		log.Info("No expired alerts found for deletion")
		return result, nil
	}

	// Safety check: abort if too many alerts would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("%w: %d alerts exceed max deletion limit of %d",
			ErrSafetyLimit, result.TargetCount, config.MaxDeletionCount)
	}

	log.Infof("Starting cleanup: %d alerts to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, config.RetentionDays, config.DryRun)

	ids := make([]uint, 0, len(expired))
	for _, a := range expired {
		ids = append(ids, a.ID)
	}

	if config.DryRun {
		result.DeletedAlerts = ids
		result.DeletedCount = len(ids)
		log.Infof("[DRY-RUN] Would delete %d alerts", len(ids))
		return result, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		logs := make([]models.DeleteLog, 0, len(expired))
		for _, a := range expired {
			logs = append(logs, models.DeleteLog{
				EntityType: models.EntityAlert,
				EntityID:   a.ID,
				Label:      string(a.Type),
				Reason:     models.DeleteReasonAlertRetention,
			})
		}
		if err := tx.CreateInBatches(&logs, 500).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.RentalAlert{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purge alerts: %w", err)
	}

	result.DeletedAlerts = ids
	result.DeletedCount = len(ids)
	log.Infof("Cleanup completed: %d/%d alerts deleted", result.DeletedCount, result.TargetCount)

	return result, nil
}

// GetDeleteStats returns statistics about deleted records
func (s *Service) GetDeleteStats(now time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Total delete logs
	var totalDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	// Delete logs by reason
	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	// Recent deletions (last 30 days)
	var recentDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", now.AddDate(0, 0, -30)).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	logs := make([]models.DeleteLog, 0)
	err := s.db.Order("deleted_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
