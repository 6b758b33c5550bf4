package cron

import (
	"context"
	"testing"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/internal/locking"
	"github.com/nametracker/nametracker/internal/logger"
)

type fakeDomainService struct {
	transitions  int
	firstChecks  int
	secondChecks int
	archives     int
	ideaRuns     int
	err          error
}

func (f *fakeDomainService) TransitionPendingDomains(ctx context.Context) error {
	f.transitions++
	return f.err
}

func (f *fakeDomainService) RunFirstAvailabilityCheck(ctx context.Context) error {
	f.firstChecks++
	return f.err
}

func (f *fakeDomainService) RunSecondAvailabilityCheck(ctx context.Context) error {
	f.secondChecks++
	return f.err
}

func (f *fakeDomainService) ArchiveExpiredDomains(ctx context.Context) error {
	f.archives++
	return f.err
}

func (f *fakeDomainService) RefreshIdeaOfTheDay(ctx context.Context) error {
	f.ideaRuns++
	return f.err
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func getConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{
			Logger: &logger.Config{
				LogLevel: "info",
			},
		},
	}
}

func TestNewCronManager(t *testing.T) {
	cfg := getConfig()
	log := getLogger()
	locker := locking.NewMemoryLocker()
	domain := &fakeDomainService{}

	cm := NewCronManager(cfg, log, nil, locker, domain)

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.NotNil(t, cm.jobIDs)
}

func TestLifecycleJobsCoverAllOperations(t *testing.T) {
	cm := NewCronManager(getConfig(), getLogger(), nil, locking.NewMemoryLocker(), &fakeDomainService{})
	c := cronv3.New(cronv3.WithSeconds())

	cm.registerJobs(c)

	for _, name := range []string{
		"heartbeat",
		"transition_pending",
		"first_availability_check",
		"second_availability_check",
		"archive_expired",
		"idea_of_the_day",
	} {
		assert.Contains(t, cm.jobIDs, name)
	}
}

func TestRunJobExecutesAndReleasesLock(t *testing.T) {
	locker := locking.NewMemoryLocker()
	domain := &fakeDomainService{}
	cm := NewCronManager(getConfig(), getLogger(), nil, locker, domain)

	job := lifecycleJob{
		name:    "transition_pending",
		timeout: time.Minute,
		run:     domain.TransitionPendingDomains,
	}

	cm.runJob(job)
	require.Equal(t, 1, domain.transitions)

	// lock released, a second run goes through
	cm.runJob(job)
	require.Equal(t, 2, domain.transitions)
}

func TestRunJobSkipsWhenLockHeld(t *testing.T) {
	locker := locking.NewMemoryLocker()
	domain := &fakeDomainService{}
	cm := NewCronManager(getConfig(), getLogger(), nil, locker, domain)

	acquired, err := locker.Acquire(context.Background(), locking.JobKey("archive_expired"), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	cm.runJob(lifecycleJob{
		name:    "archive_expired",
		timeout: time.Minute,
		run:     domain.ArchiveExpiredDomains,
	})

	assert.Equal(t, 0, domain.archives, "tick skipped while another replica holds the lock")
}

func TestCronManager_Stop(t *testing.T) {
	cm := NewCronManager(getConfig(), getLogger(), nil, locking.NewMemoryLocker(), &fakeDomainService{})

	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	cm.Stop()

	select {
	case <-cm.stopCh:
		// Channel is closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}
