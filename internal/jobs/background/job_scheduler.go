package background

import (
	"context"
	"log"
	"sync"
	"time"

	"toolcare/internal/caching"
	"toolcare/internal/jobs"
	"toolcare/internal/repositories"
	"toolcare/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages recurring background jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	alertSvc   *jobs.OverdueAlertService
	authSvc    services.AuthService
	cacheSvc   caching.CacheService
	branchRepo repositories.BranchRepository
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(alertSvc *jobs.OverdueAlertService, authSvc services.AuthService,
	cacheSvc caching.CacheService, branchRepo repositories.BranchRepository) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		alertSvc:   alertSvc,
		authSvc:    authSvc,
		cacheSvc:   cacheSvc,
		branchRepo: branchRepo,
		jobs:       make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Overdue loan alerts - every 30 minutes
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.processOverdueLoanAlerts),
		gocron.WithName("overdue-loan-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue loan alerts job: %v", err)
	} else {
		js.jobs["overdue-loan-alerts"] = alertsJob
	}

	// Expired refresh token cleanup - every hour
	tokenJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupExpiredTokens),
		gocron.WithName("token-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create token cleanup job: %v", err)
	} else {
		js.jobs["token-cleanup"] = tokenJob
	}

	// Branch cache warm - every 15 minutes
	warmJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.warmBranchCache),
		gocron.WithName("branch-cache-warm"),
	)
	if err != nil {
		log.Printf("Failed to create branch cache warm job: %v", err)
	} else {
		js.jobs["branch-cache-warm"] = warmJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// processOverdueLoanAlerts flags open loans that exceed the default loan window.
func (js *JobScheduler) processOverdueLoanAlerts() error {
	ctx := context.Background()

	alerts, err := js.alertSvc.CheckOverdueLoans(ctx, 0)
	if err != nil {
		log.Printf("Failed to check overdue loans: %v", err)
		return err
	}

	js.alertSvc.LogOverdueAlerts(ctx, alerts)
	return nil
}

// cleanupExpiredTokens purges refresh tokens past their expiry.
func (js *JobScheduler) cleanupExpiredTokens() error {
	ctx := context.Background()

	if err := js.authSvc.CleanupExpiredTokens(ctx); err != nil {
		log.Printf("Failed to clean up expired tokens: %v", err)
		return err
	}

	log.Printf("Expired refresh token cleanup completed")
	return nil
}

// warmBranchCache preloads active branches into the cache so scope checks
// on the hot path rarely hit the database.
func (js *JobScheduler) warmBranchCache() error {
	ctx := context.Background()

	branches, err := js.branchRepo.List(ctx, true, 1000, 0)
	if err != nil {
		log.Printf("Failed to list branches for cache warm: %v", err)
		return err
	}

	warmed := 0
	for _, branch := range branches {
		if err := js.cacheSvc.SetBranch(ctx, branch, 10*time.Minute); err != nil {
			log.Printf("Failed to warm cache for branch %s: %v", branch.ID.String(), err)
			continue
		}
		warmed++
	}

	log.Printf("Warmed branch cache with %d branches", warmed)
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
