package database

import (
	"context"
	"time"

	"property-listings/internal/models"
)

// CreateDeleteLogs appends deletion audit records
func (gdb *GormDB) CreateDeleteLogs(ctx context.Context, logs []models.DeleteLog) error {
	if len(logs) == 0 {
		return nil
	}
	return gdb.conn(ctx).Create(&logs).Error
}

// RecentDeleteLogs returns the newest deletion audit records
func (gdb *GormDB) RecentDeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	logs := []models.DeleteLog{}
	err := gdb.conn(ctx).Order("deleted_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// Counts summarises the number of rows per table
type Counts struct {
	Agents     int64 `json:"agents"`
	Properties int64 `json:"properties"`
	Images     int64 `json:"images"`
	DeleteLogs int64 `json:"deleteLogs"`
}

func (gdb *GormDB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := gdb.conn(ctx)
	if err := db.Model(&models.Agent{}).Count(&c.Agents).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Property{}).Count(&c.Properties).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.PropertyImage{}).Count(&c.Images).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.DeleteLog{}).Count(&c.DeleteLogs).Error; err != nil {
		return c, err
	}
	return c, nil
}

// DeleteLogCountsByReason groups the audit records by reason
func (gdb *GormDB) DeleteLogCountsByReason(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Reason string
		Count  int64
	}
	if err := gdb.conn(ctx).Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Reason] = r.Count
	}
	return counts, nil
}

// CountDeleteLogsSince counts audit records written at or after since
func (gdb *GormDB) CountDeleteLogsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := gdb.conn(ctx).Model(&models.DeleteLog{}).Where("deleted_at >= ?", since).Count(&count).Error
	return count, err
}
