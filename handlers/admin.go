package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kpitracker/cron"
	"kpitracker/models"
	"kpitracker/services/entry"
	"kpitracker/services/period"
	"kpitracker/services/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// SchedulerStatusProvider is satisfied by *cron.ArchiveScheduler.
type SchedulerStatusProvider interface {
	Status() cron.SchedulerStatus
}

// AdminHandler encapsulates maintenance operations behind the admin token.
type AdminHandler struct {
	Archive   period.ArchiveService
	Migration period.MigrationService
	Entries   entry.EntryService
	// Optional; nil when the scheduler or the task queue is disabled.
	Scheduler SchedulerStatusProvider
	Tasks     tasks.Enqueuer
}

func NewAdminHandler(archive period.ArchiveService, migration period.MigrationService, entries entry.EntryService, scheduler SchedulerStatusProvider, enqueuer tasks.Enqueuer) *AdminHandler {
	return &AdminHandler{
		Archive:   archive,
		Migration: migration,
		Entries:   entries,
		Scheduler: scheduler,
		Tasks:     enqueuer,
	}
}

// MigrateLegacyHandler runs the legacy backfill inline, or queues it with
// ?async=true.
func (ah *AdminHandler) MigrateLegacyHandler(c *gin.Context) {
	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		ah.enqueue(c, tasks.NewMigrateTask)
		return
	}

	res, err := ah.Migration.MigrateLegacy(c.Request.Context())
	if err != nil {
		respondError(c, "Legacy migration failed", err)
		return
	}
	getLogger(c).Info("Legacy migration run", zap.Int("migrated", res.MigratedEntries), zap.Int("periodsCreated", res.PeriodsCreated))
	c.JSON(http.StatusOK, res)
}

// ForceArchiveHandler closes the previous period, inline or queued with
// ?async=true. An existing snapshot is reported with 200 rather than as a
// conflict.
func (ah *AdminHandler) ForceArchiveHandler(c *gin.Context) {
	if async, _ := strconv.ParseBool(c.Query("async")); async {
		ah.enqueue(c, tasks.NewClosePreviousTask)
		return
	}
	snapshot, err := ah.Archive.ClosePrevious(c.Request.Context())
	var already *period.AlreadyArchivedError
	if errors.As(err, &already) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Period %s already archived", already.PeriodID),
			"period":  already.Snapshot,
		})
		return
	}
	if err != nil {
		respondError(c, "Failed to archive previous period", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully archived period %s", snapshot.PeriodID),
		"period":  snapshot,
	})
}

// ArchivePeriodHandler archives any ended period by id.
func (ah *AdminHandler) ArchivePeriodHandler(c *gin.Context) {
	snapshot, err := ah.Archive.Archive(c.Request.Context(), models.Period{ID: c.Param("id")})
	if err != nil {
		respondError(c, "Failed to archive period", err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (ah *AdminHandler) SchedulerStatusHandler(c *gin.Context) {
	if ah.Scheduler == nil {
		c.JSON(http.StatusOK, cron.SchedulerStatus{Running: false, Jobs: []cron.JobStatus{}})
		return
	}
	c.JSON(http.StatusOK, ah.Scheduler.Status())
}

func (ah *AdminHandler) DeleteSnapshotHandler(c *gin.Context) {
	id := c.Param("id")
	if err := ah.Archive.DeleteSnapshot(c.Request.Context(), id); err != nil {
		respondError(c, "Failed to delete period log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Period %s deleted", id), "deleted_count": 1})
}

func (ah *AdminHandler) DeleteEntryHandler(c *gin.Context) {
	date := c.Param("date")
	if err := ah.Entries.DeleteRecord(c.Request.Context(), date); err != nil {
		respondError(c, "Failed to delete entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Entry %s deleted", date)})
}

type taskBuilder func(tasks.TriggerPayload) (*asynq.Task, []asynq.Option, error)

func (ah *AdminHandler) enqueue(c *gin.Context, build taskBuilder) {
	if ah.Tasks == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Background tasks are disabled"})
		return
	}
	task, opts, err := build(tasks.TriggerPayload{RequestedBy: "admin:" + c.ClientIP(), RequestedAt: time.Now().UTC()})
	if err != nil {
		respondError(c, "Failed to build task", err)
		return
	}
	id, err := ah.Tasks.Enqueue(c.Request.Context(), task, opts...)
	if errors.Is(err, tasks.ErrAlreadyQueued) {
		c.JSON(http.StatusAccepted, gin.H{"message": "Task already queued", "type": task.Type()})
		return
	}
	if err != nil {
		respondError(c, "Failed to queue task", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Task queued", "type": task.Type(), "task_id": id})
}
