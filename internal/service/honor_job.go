package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"funprofile/internal/repository"
)

// HonorJob recomputes every profile's honor counters on a schedule. The
// per-user recompute after mutations keeps counters fresh in between; the
// full sweep repairs any drift.
type HonorJob struct {
	profiles repository.ProfileRepository
	cron     *cron.Cron
}

// NewHonorJob creates the job without starting it.
func NewHonorJob(profiles repository.ProfileRepository) *HonorJob {
	return &HonorJob{
		profiles: profiles,
		cron:     cron.New(),
	}
}

// Start schedules the hourly sweep.
func (j *HonorJob) Start() error {
	_, err := j.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	slog.Info("honor recompute job scheduled", "schedule", "@hourly")
	return nil
}

// RunOnce executes a full sweep immediately.
func (j *HonorJob) RunOnce(ctx context.Context) {
	start := time.Now()
	if err := j.profiles.RecomputeAllHonor(ctx); err != nil {
		slog.ErrorContext(ctx, "honor recompute sweep failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "honor recompute sweep finished", "duration_ms", time.Since(start).Milliseconds())
}

// Stop halts the schedule and waits for a running sweep.
func (j *HonorJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
