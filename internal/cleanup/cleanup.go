package cleanup

import (
	"context"
	"fmt"
	"time"

	"property-listings/internal/database"
	"property-listings/internal/models"
	"property-listings/internal/storage"

	"github.com/sirupsen/logrus"
)

// Service removes stored image files that no property_images row refers to.
// Such files are left behind when an upload fails between the file write and
// the row insert.
type Service struct {
	db     *database.GormDB
	blobs  storage.BlobStore
	logger *logrus.Entry
	now    func() time.Time
}

// NewService creates a new cleanup service
func NewService(db *database.GormDB, blobs storage.BlobStore, logger logrus.FieldLogger) *Service {
	return &Service{
		db:     db,
		blobs:  blobs,
		logger: logger.WithField("component", "cleanup"),
		now:    time.Now,
	}
}

// Options holds configuration for one sweep
type Options struct {
	MinAge           time.Duration // Files younger than this are never touched
	MaxDeletionCount int           // Safety limit; 0 means unlimited
	DryRun           bool          // Only report what would be deleted
}

// DefaultOptions returns default configuration
func DefaultOptions() Options {
	return Options{
		MinAge:           time.Hour,
		MaxDeletionCount: 10000,
	}
}

// Result holds the result of a sweep
type Result struct {
	ScannedCount int       `json:"scannedCount"`
	TargetCount  int       `json:"targetCount"`
	DeletedCount int       `json:"deletedCount"`
	SkippedCount int       `json:"skippedCount"`
	ErrorCount   int       `json:"errorCount"`
	DryRun       bool      `json:"dryRun"`
	ExecutedAt   time.Time `json:"executedAt"`
	DeletedFiles []string  `json:"deletedFiles"`
	Errors       []string  `json:"errors,omitempty"`
}

// SweepOrphans deletes stored files with no matching image row that are older
// than opts.MinAge and records each deletion in the audit log
func (s *Service) SweepOrphans(ctx context.Context, opts Options) (*Result, error) {
	now := s.now()
	result := &Result{
		DryRun:       opts.DryRun,
		ExecutedAt:   now,
		DeletedFiles: []string{},
	}

	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored files: %w", err)
	}
	// Referenced names are read after the listing so an upload that commits
	// in between is never mistaken for an orphan
	referenced, err := s.db.StoredFileNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored file names: %w", err)
	}
	result.ScannedCount = len(blobs)

	cutoff := now.Add(-opts.MinAge)
	var orphans []storage.BlobInfo
	for _, b := range blobs {
		if _, ok := referenced[b.Name]; ok {
			continue
		}
		if b.ModTime.After(cutoff) {
			result.SkippedCount++
			continue
		}
		orphans = append(orphans, b)
	}
	result.TargetCount = len(orphans)

	if result.TargetCount == 0 {
		s.logger.WithField("scanned", result.ScannedCount).Info("No orphaned files found")
		return result, nil
	}

	// Safety check: abort if too many files would be deleted
	if opts.MaxDeletionCount > 0 && result.TargetCount > opts.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d orphaned files exceed max deletion limit of %d",
			result.TargetCount, opts.MaxDeletionCount)
	}

	s.logger.WithFields(logrus.Fields{
		"targets": result.TargetCount,
		"min_age": opts.MinAge.String(),
		"dry_run": opts.DryRun,
	}).Info("Starting orphan sweep")

	for _, b := range orphans {
		log := s.logger.WithField("stored_file_name", b.Name)
		if opts.DryRun {
			log.Info("[DRY-RUN] Would delete orphaned file")
			result.DeletedFiles = append(result.DeletedFiles, b.Name)
			result.DeletedCount++
			continue
		}

		if err := s.blobs.Delete(ctx, b.Name); err != nil {
			log.WithError(err).Error("Failed to delete orphaned file")
			result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", b.Name, err))
			result.ErrorCount++
			continue
		}
		if err := s.db.CreateDeleteLogs(ctx, []models.DeleteLog{{
			EntityType:     models.EntityBlob,
			Label:          b.Name,
			StoredFileName: b.Name,
			Reason:         models.DeleteReasonOrphaned,
		}}); err != nil {
			log.WithError(err).Error("Failed to record orphaned file deletion")
			result.Errors = append(result.Errors, fmt.Sprintf("audit %s: %v", b.Name, err))
			result.ErrorCount++
		}

		result.DeletedFiles = append(result.DeletedFiles, b.Name)
		result.DeletedCount++
	}

	s.logger.WithFields(logrus.Fields{
		"deleted": result.DeletedCount,
		"targets": result.TargetCount,
		"errors":  result.ErrorCount,
		"dry_run": opts.DryRun,
	}).Info("Orphan sweep completed")

	return result, nil
}

// DeleteStats summarises the deletion audit log
type DeleteStats struct {
	TotalDeleted      int64            `json:"totalDeleted"`
	ByReason          map[string]int64 `json:"byReason"`
	DeletedLast30Days int64            `json:"deletedLast30Days"`
}

// GetDeleteStats returns statistics about recorded deletions
func (s *Service) GetDeleteStats(ctx context.Context) (*DeleteStats, error) {
	byReason, err := s.db.DeleteLogCountsByReason(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DeleteStats{ByReason: byReason}
	for _, n := range byReason {
		stats.TotalDeleted += n
	}

	recent, err := s.db.CountDeleteLogsSince(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	stats.DeletedLast30Days = recent
	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	return s.db.RecentDeleteLogs(ctx, limit)
}
