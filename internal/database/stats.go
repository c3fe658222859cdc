package database

import (
	"time"

	"real-estate-crm/internal/models"
)

// DashboardStats are the counters shown on the admin dashboard
type DashboardStats struct {
	PropertiesByStatus map[string]int64 `json:"properties_by_status"`
	ClientsByStatus    map[string]int64 `json:"clients_by_status"`
	ActiveContracts    int64            `json:"active_contracts"`
	OverduePayments    int64            `json:"overdue_payments"`
	OpenMaintenance    int64            `json:"open_maintenance"`
	UnreadAlerts       int64            `json:"unread_alerts"`
	UpcomingVisits     int64            `json:"upcoming_visits"`
	ChangesLast7Days   int64            `json:"changes_last_7_days"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

type statusCount struct {
	Status string
	Count  int64
}

// GetDashboardStats gathers the dashboard counters as of now
func (gdb *GormDB) GetDashboardStats(now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: now}

	var err error
	if stats.PropertiesByStatus, err = gdb.countByStatus(&models.Property{}); err != nil {
		return nil, err
	}
	if stats.ClientsByStatus, err = gdb.countByStatus(&models.Client{}); err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.RentalContract{}).
		Where("status = ?", models.ContractActive).
		Count(&stats.ActiveContracts).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.RentalPayment{}).
		Where("status = ? OR (status IN ? AND due_date < ?)",
			models.PaymentLate,
			[]models.PaymentStatus{models.PaymentPending, models.PaymentPartial},
			DateOnly(now)).
		Count(&stats.OverduePayments).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.MaintenanceRequest{}).
		Where("status IN ?", []models.MaintenanceStatus{models.MaintenanceOpen, models.MaintenanceInProgress}).
		Count(&stats.OpenMaintenance).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.RentalAlert{}).
		Where("is_read = ?", false).
		Count(&stats.UnreadAlerts).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.PropertyVisit{}).
		Where("status IN ?", []models.VisitStatus{models.VisitRequested, models.VisitConfirmed}).
		Where("start_time >= ? AND start_time < ?", now, now.AddDate(0, 0, 7)).
		Count(&stats.UpcomingVisits).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.PropertyChange{}).
		Where("detected_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.ChangesLast7Days).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (gdb *GormDB) countByStatus(model interface{}) (map[string]int64, error) {
	var rows []statusCount
	if err := gdb.db.Model(model).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
