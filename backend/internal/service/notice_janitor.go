package service

import (
	"context"
	"sync"
	"time"

	"github.com/BJS-kr/whatup/shared/logger"
	"github.com/robfig/cron/v3"
)

// NoticeJanitor purges read notices once they are older than the retention.
type NoticeJanitor struct {
	storage   JanitorStorage
	retention time.Duration
	clock     clock

	mu        sync.Mutex
	lastStats PurgeStats
}

// PurgeStats describes the last janitor run.
type PurgeStats struct {
	RunAt      time.Time
	Cutoff     time.Time
	Purged     int
	DurationMs int64
	Err        error
}

type JanitorStorage interface {
	PurgeRead(ctx context.Context, before time.Time) (int, error)
}

func NewNoticeJanitor(storage JanitorStorage, retention time.Duration) *NoticeJanitor {
	return &NoticeJanitor{storage: storage, retention: retention}
}

// Start schedules RunPurge with a cron spec such as "@daily" and stops the
// scheduler when ctx is done.
func (j *NoticeJanitor) Start(ctx context.Context, spec string) error {
	log := logger.Component("notice_janitor")

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		stats := j.RunPurge(ctx)
		if stats.Err != nil {
			log.Error("purge failed", "error", stats.Err)
			return
		}
		log.Info("purge completed",
			"purged", stats.Purged,
			"cutoff", stats.Cutoff,
			"duration_ms", stats.DurationMs)
	}); err != nil {
		return err
	}
	c.Start()
	log.Info("notice janitor scheduled", "spec", spec, "retention", j.retention)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Info("notice janitor stopped")
	}()
	return nil
}

// RunPurge executes a single purge. It can be called directly for maintenance.
func (j *NoticeJanitor) RunPurge(ctx context.Context) PurgeStats {
	start := j.clock.now()
	stats := PurgeStats{RunAt: start, Cutoff: start.Add(-j.retention)}

	stats.Purged, stats.Err = j.storage.PurgeRead(ctx, stats.Cutoff)
	stats.DurationMs = time.Since(start).Milliseconds()

	j.mu.Lock()
	j.lastStats = stats
	j.mu.Unlock()
	return stats
}

func (j *NoticeJanitor) LastStats() PurgeStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastStats
}
