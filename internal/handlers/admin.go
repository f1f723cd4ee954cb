package handlers

import (
	"net/http"
	"strconv"
	"time"

	"property-listings/internal/apperror"
	"property-listings/internal/cleanup"
	"property-listings/internal/config"
	"property-listings/internal/database"
	"property-listings/internal/ratelimit"
	"property-listings/internal/scheduler"
	"property-listings/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin and system requests
type AdminHandler struct {
	db             *database.GormDB
	blobs          storage.BlobStore
	cleanupService *cleanup.Service
	scheduler      *scheduler.Scheduler
	limiter        *ratelimit.RateLimiter
	cfg            *config.Config
	startedAt      time.Time
	logger         logrus.FieldLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	db *database.GormDB,
	blobs storage.BlobStore,
	cleanupService *cleanup.Service,
	sched *scheduler.Scheduler,
	limiter *ratelimit.RateLimiter,
	cfg *config.Config,
	logger logrus.FieldLogger,
) *AdminHandler {
	return &AdminHandler{
		db:             db,
		blobs:          blobs,
		cleanupService: cleanupService,
		scheduler:      sched,
		limiter:        limiter,
		cfg:            cfg,
		startedAt:      time.Now(),
		logger:         logger.WithField("component", "admin"),
	}
}

// GetStats returns row and file counts plus deletion statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.db.Counts(ctx)
	if err != nil {
		respondError(c, h.logger, apperror.Internal(err, "failed to count records"))
		return
	}
	byType, err := h.db.PropertyCountsByType(ctx)
	if err != nil {
		respondError(c, h.logger, apperror.Internal(err, "failed to count property types"))
		return
	}

	stats := gin.H{
		"records":          counts,
		"propertiesByType": byType,
	}

	if blobs, err := h.blobs.List(ctx); err != nil {
		h.logger.WithError(err).Warn("Failed to list stored files")
	} else {
		var total int64
		for _, b := range blobs {
			total += b.Size
		}
		stats["files"] = gin.H{"count": len(blobs), "totalBytes": total}
	}

	if deleteStats, err := h.cleanupService.GetDeleteStats(ctx); err != nil {
		h.logger.WithError(err).Warn("Failed to get delete stats")
	} else {
		stats["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, stats)
}

// GetSystemInfo describes the storage backend, the database and the rate limiter
func (h *AdminHandler) GetSystemInfo(c *gin.Context) {
	ctx := c.Request.Context()

	files := []storage.BlobInfo{}
	if blobs, err := h.blobs.List(ctx); err != nil {
		h.logger.WithError(err).Warn("Failed to list stored files")
	} else {
		files = blobs
	}

	c.JSON(http.StatusOK, gin.H{
		"storage":       h.blobs.Describe(ctx),
		"files":         files,
		"fileCount":     len(files),
		"imageBaseUrl":  h.cfg.Storage.PublicBaseURL,
		"database":      h.cfg.Database.Type,
		"maxUploadMb":   h.cfg.Server.MaxUploadMB,
		"uploadLimiter": h.limiter.GetStats(),
		"cleanup":       h.scheduler.Status(),
		"uptime":        time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// RunCleanup runs the orphaned file sweep once. Omitted fields fall back to
// the configured cleanup settings.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		DryRun           *bool `json:"dryRun"`
		MinAgeMinutes    *int  `json:"minAgeMinutes"`
		MaxDeletionCount int   `json:"maxDeletionCount"`
	}
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	opts := cleanup.DefaultOptions()
	opts.MinAge = h.cfg.Cleanup.MinAge()
	opts.DryRun = h.cfg.Cleanup.DryRun
	if req.DryRun != nil {
		opts.DryRun = *req.DryRun
	}
	if req.MinAgeMinutes != nil {
		if *req.MinAgeMinutes < 0 {
			respondError(c, h.logger, apperror.Invalid("minAgeMinutes", "must not be negative"))
			return
		}
		opts.MinAge = time.Duration(*req.MinAgeMinutes) * time.Minute
	}
	if req.MaxDeletionCount > 0 {
		opts.MaxDeletionCount = req.MaxDeletionCount
	}

	h.logger.WithFields(logrus.Fields{
		"min_age": opts.MinAge.String(),
		"max":     opts.MaxDeletionCount,
		"dry_run": opts.DryRun,
	}).Info("Running cleanup")

	result, err := h.cleanupService.SweepOrphans(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.logger, apperror.Internal(err, "cleanup failed"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		respondError(c, h.logger, apperror.Invalid("limit", "must be a positive integer"))
		return
	}

	logs, err := h.cleanupService.GetRecentDeleteLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, apperror.Internal(err, "failed to load delete logs"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetRateLimitStats returns the upload limiter's current windows
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.GetStats())
}
