package cron

import (
	"context"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/interfaces"
	cron_config "github.com/nametracker/nametracker/internal/cron/config"
	"github.com/nametracker/nametracker/internal/locking"
	"github.com/nametracker/nametracker/internal/logger"
	"github.com/nametracker/nametracker/internal/metrics"
	"github.com/nametracker/nametracker/internal/tracing"
)

const (
	// LeaseDuration is how long a lease lasts before needing renewal
	LeaseDuration = 15 * time.Second
	// RenewDeadline is how long a leader has to renew its lease
	RenewDeadline = 10 * time.Second
	// RetryPeriod is how long to wait between leadership attempts
	RetryPeriod = 2 * time.Second

	// lockMargin pads the lock TTL past the job timeout so a crashed holder
	// cannot wedge the schedule forever
	lockMargin = time.Minute
)

// lifecycleJob binds one scheduled entry to a service call. The lock key is
// derived from the name, the context deadline from the timeout.
type lifecycleJob struct {
	name     string
	schedule string
	timeout  time.Duration
	run      func(ctx context.Context) error
}

type CronManager struct {
	cfg    *config.Config
	log    logger.Logger
	cron   *cronv3.Cron
	k8s    kubernetes.Interface
	locker locking.Locker
	stopCh chan struct{}
	jobIDs map[string]cronv3.EntryID
	domain interfaces.DomainService
}

func NewCronManager(cfg *config.Config, log logger.Logger, k8s kubernetes.Interface, locker locking.Locker, domain interfaces.DomainService) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		k8s:    k8s,
		locker: locker,
		stopCh: make(chan struct{}),
		jobIDs: make(map[string]cronv3.EntryID),
		domain: domain,
	}
}

// Start initializes and starts the cron manager with leader election
// If k8s is nil, it will start in local mode without leader election
func (cm *CronManager) Start(podName, namespace string) error {
	// If k8s client is nil or we're in local development, start in local mode
	if cm.k8s == nil || os.Getenv("LOCAL_DEV") == "true" {
		cm.log.Info("Starting cron manager in local mode")
		cm.StartCron()
		return nil
	}

	// Create the leader election lock
	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      "nametracker-cron-leader",
			Namespace: namespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: podName,
		},
	}

	// Channel to track leader election errors
	errCh := make(chan error, 1)

	// Start leader election
	go func() {
		le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
			Lock:            lock,
			ReleaseOnCancel: true,
			LeaseDuration:   LeaseDuration,
			RenewDeadline:   RenewDeadline,
			RetryPeriod:     RetryPeriod,
			Callbacks: leaderelection.LeaderCallbacks{
				OnStartedLeading: func(ctx context.Context) {
					cm.StartCron()
				},
				OnStoppedLeading: func() {
					cm.log.Info("Leader lost - stopping crons")
					cm.Stop()
				},
				OnNewLeader: func(identity string) {
					cm.log.Infof("New leader elected: %s", identity)
				},
			},
		})
		if err != nil {
			errCh <- err
			return
		}

		ctx := context.Background()
		le.Run(ctx)
	}()

	// Wait briefly to see if leader election fails immediately
	select {
	case err := <-errCh:
		cm.log.Warnf("Leader election failed, falling back to local mode: %v", err)
		cm.StartCron()
	case <-time.After(5 * time.Second):
		// Leader election seems to be working, continue normally
	}

	return nil
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// lifecycleJobs builds the job table from the schedule config. Entries with
// an empty schedule are not registered.
func (cm *CronManager) lifecycleJobs(cronConfig *cron_config.Config) []lifecycleJob {
	return []lifecycleJob{
		{
			name:     "transition_pending",
			schedule: cronConfig.CronScheduleTransition,
			timeout:  cronConfig.TransitionTimeout,
			run:      cm.domain.TransitionPendingDomains,
		},
		{
			name:     "first_availability_check",
			schedule: cronConfig.CronScheduleFirstCheck,
			timeout:  cronConfig.CheckTimeout,
			run:      cm.domain.RunFirstAvailabilityCheck,
		},
		{
			name:     "second_availability_check",
			schedule: cronConfig.CronScheduleSecondCheck,
			timeout:  cronConfig.CheckTimeout,
			run:      cm.domain.RunSecondAvailabilityCheck,
		},
		{
			name:     "archive_expired",
			schedule: cronConfig.CronScheduleArchive,
			timeout:  cronConfig.ArchiveTimeout,
			run:      cm.domain.ArchiveExpiredDomains,
		},
		{
			name:     "idea_of_the_day",
			schedule: cronConfig.CronScheduleIdea,
			timeout:  cronConfig.IdeaTimeout,
			run:      cm.domain.RefreshIdeaOfTheDay,
		},
	}
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	for _, job := range cm.lifecycleJobs(&cronConfig) {
		if job.schedule == "" {
			continue
		}
		job := job
		id, err := c.AddFunc(job.schedule, func() {
			cm.runJob(job)
		})
		if err != nil {
			cm.log.Fatalf("Could not add %s cron job: %v", job.name, err)
		}
		cm.jobIDs[job.name] = id
		cm.log.Infof("Registered %s job with schedule: %s", job.name, job.schedule)
	}
}

// runJob executes one lifecycle job under the distributed lock. A held lock
// means another replica is already running it, so the tick is skipped.
func (cm *CronManager) runJob(job lifecycleJob) {
	defer tracing.RecoverAndLogToJaeger(cm.log)

	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager."+job.name)
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	lockKey := locking.JobKey(job.name)
	acquired, err := cm.locker.Acquire(ctx, lockKey, job.timeout+lockMargin)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to acquire lock for %s: %v", job.name, err)
		return
	}
	if !acquired {
		metrics.JobSkippedLocked.WithLabelValues(job.name).Inc()
		cm.log.Infof("Skipping %s: lock held by another replica", job.name)
		return
	}
	defer func() {
		if err := cm.locker.Release(context.Background(), lockKey); err != nil {
			cm.log.Warnf("Failed to release lock for %s: %v", job.name, err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, job.timeout)
	defer cancel()

	cm.log.Infof("Running %s", job.name)
	if err := job.run(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Job %s failed: %v", job.name, err)
		return
	}
	cm.log.Infof("Completed %s", job.name)
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}
