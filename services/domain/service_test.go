package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/internal/enum"
	er "github.com/nametracker/nametracker/internal/errors"
	"github.com/nametracker/nametracker/internal/logger"
	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/internal/utils"
)

type fakeDomainRepository struct {
	repository.DomainRepository

	transitioned    int64
	transitionErr   error
	firstEligible   []models.Domain
	secondEligible  []models.Domain
	appliedBatches  []repository.CheckResultBatch
	archiveChunks   []int
	archiveCalls    int
	topScored       map[string]*models.Domain
	useCases        map[uint64]*models.UseCase
	markedIdeas     []uint64
	clearedStates   []enum.ListState
	lastArchiveCut  time.Time
	lastArchiveSize int
}

func (f *fakeDomainRepository) TransitionPendingDue(ctx context.Context, now time.Time) (int64, error) {
	return f.transitioned, f.transitionErr
}

func (f *fakeDomainRepository) SelectFirstCheckEligible(ctx context.Context, now time.Time) ([]models.Domain, error) {
	return f.firstEligible, nil
}

func (f *fakeDomainRepository) SelectSecondCheckEligible(ctx context.Context, now time.Time, minRecheck time.Duration) ([]models.Domain, error) {
	return f.secondEligible, nil
}

func (f *fakeDomainRepository) ApplyCheckResults(ctx context.Context, batch repository.CheckResultBatch, checkedAt time.Time) error {
	f.appliedBatches = append(f.appliedBatches, batch)
	return nil
}

func (f *fakeDomainRepository) ArchiveChunk(ctx context.Context, cutoff time.Time, chunkSize int, archivedAt time.Time) (int, error) {
	f.lastArchiveCut = cutoff
	f.lastArchiveSize = chunkSize
	if f.archiveCalls >= len(f.archiveChunks) {
		return 0, nil
	}
	n := f.archiveChunks[f.archiveCalls]
	f.archiveCalls++
	return n, nil
}

func (f *fakeDomainRepository) TopScored(ctx context.Context, listState enum.ListState, dropDate time.Time) (*models.Domain, error) {
	return f.topScored[ideaKey(dropDate, listState)], nil
}

func (f *fakeDomainRepository) PrimaryUseCase(ctx context.Context, domainID uint64) (*models.UseCase, error) {
	return f.useCases[domainID], nil
}

func (f *fakeDomainRepository) MarkIdeaOfTheDay(ctx context.Context, domainID uint64) error {
	f.markedIdeas = append(f.markedIdeas, domainID)
	return nil
}

func (f *fakeDomainRepository) ClearIdeaOfTheDay(ctx context.Context, listState enum.ListState) error {
	f.clearedStates = append(f.clearedStates, listState)
	return nil
}

type fakeIdeaRepository struct {
	repository.IdeaOfTheDayRepository

	existing map[string]*models.IdeaOfTheDay
	upserted []*models.IdeaOfTheDay
}

func (f *fakeIdeaRepository) GetForDate(ctx context.Context, date time.Time, listState enum.ListState) (*models.IdeaOfTheDay, error) {
	return f.existing[ideaKey(date, listState)], nil
}

func (f *fakeIdeaRepository) Upsert(ctx context.Context, idea *models.IdeaOfTheDay) error {
	f.upserted = append(f.upserted, idea)
	return nil
}

func ideaKey(date time.Time, listState enum.ListState) string {
	return date.Format("2006-01-02") + "/" + listState.String()
}

type fakeDynadot struct {
	batchCap    int
	verdicts    map[string]enum.Availability
	failOnBatch int
	calls       [][]string
}

func (f *fakeDynadot) BatchCap() int {
	return f.batchCap
}

func (f *fakeDynadot) CheckBulkAvailability(ctx context.Context, domains []string) (map[string]enum.Availability, error) {
	f.calls = append(f.calls, domains)
	if f.failOnBatch > 0 && len(f.calls) == f.failOnBatch {
		return nil, er.ErrProviderUnavailable
	}
	result := make(map[string]enum.Availability, len(domains))
	for _, d := range domains {
		verdict, ok := f.verdicts[d]
		if !ok {
			verdict = enum.AvailabilityUnknown
		}
		result[d] = verdict
	}
	return result, nil
}

func newTestService(domainRepo *fakeDomainRepository, ideaRepo *fakeIdeaRepository, dynadot *fakeDynadot) *domainService {
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	return &domainService{
		log: log,
		cfg: &config.Config{
			LifecycleConfig: &config.LifecycleConfig{
				BatchSpacing:     10 * time.Second,
				RetentionDays:    90,
				ArchiveChunkSize: 500,
				SecondCheckAfter: 12 * time.Hour,
				IdeaListStates:   []string{"pending_delete"},
			},
		},
		repositories: &repository.Repositories{
			DomainRepository:       domainRepo,
			IdeaOfTheDayRepository: ideaRepo,
		},
		dynadot: dynadot,
		now:     utils.Now,
		wait:    func(time.Duration) {},
	}
}

func makeDomains(n int) []models.Domain {
	domains := make([]models.Domain, n)
	for i := range domains {
		domains[i] = models.Domain{
			ID:     uint64(i + 1),
			Domain: fmt.Sprintf("name%03d.com", i+1),
		}
	}
	return domains
}

func TestSplitBatches(t *testing.T) {
	for _, total := range []int{0, 1, 49, 50, 51, 120} {
		batches := splitBatches(makeDomains(total), 50)

		seen := 0
		for i, batch := range batches {
			require.LessOrEqual(t, len(batch), 50)
			if i < len(batches)-1 {
				require.Len(t, batch, 50)
			}
			for _, d := range batch {
				seen++
				require.EqualValues(t, seen, d.ID, "input order preserved")
			}
		}
		require.Equal(t, total, seen, "every domain lands in exactly one batch")
	}
}

func TestTransitionPendingDomains(t *testing.T) {
	domainRepo := &fakeDomainRepository{transitioned: 3}
	service := newTestService(domainRepo, &fakeIdeaRepository{}, &fakeDynadot{})

	require.NoError(t, service.TransitionPendingDomains(context.Background()))

	domainRepo.transitionErr = er.ErrDomainNotFound
	require.Error(t, service.TransitionPendingDomains(context.Background()))
}

func TestFirstCheckMarksResults(t *testing.T) {
	domainRepo := &fakeDomainRepository{
		firstEligible: []models.Domain{
			{ID: 1, Domain: "free.com"},
			{ID: 2, Domain: "gone.com"},
			{ID: 3, Domain: "odd.com"},
		},
	}
	dynadot := &fakeDynadot{
		batchCap: 50,
		verdicts: map[string]enum.Availability{
			"free.com": enum.AvailabilityAvailable,
			"gone.com": enum.AvailabilityTaken,
			"odd.com":  enum.AvailabilityUnknown,
		},
	}
	service := newTestService(domainRepo, &fakeIdeaRepository{}, dynadot)

	require.NoError(t, service.RunFirstAvailabilityCheck(context.Background()))
	require.Len(t, domainRepo.appliedBatches, 1)

	batch := domainRepo.appliedBatches[0]
	require.Equal(t, []uint64{1}, batch.Available)
	require.Equal(t, []uint64{2}, batch.Taken)
	require.Equal(t, []uint64{1, 2, 3}, batch.Checked, "unknown still stamps last_checked")
}

func TestFirstCheckSplitsAndSpacesBatches(t *testing.T) {
	domainRepo := &fakeDomainRepository{firstEligible: makeDomains(120)}
	dynadot := &fakeDynadot{batchCap: 50}

	var waits []time.Duration
	service := newTestService(domainRepo, &fakeIdeaRepository{}, dynadot)
	service.wait = func(d time.Duration) { waits = append(waits, d) }

	require.NoError(t, service.RunFirstAvailabilityCheck(context.Background()))
	require.Len(t, dynadot.calls, 3)
	require.Len(t, dynadot.calls[0], 50)
	require.Len(t, dynadot.calls[1], 50)
	require.Len(t, dynadot.calls[2], 20)
	require.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, waits)
	require.Len(t, domainRepo.appliedBatches, 3)
}

func TestFirstCheckAbortsOnProviderOutage(t *testing.T) {
	domainRepo := &fakeDomainRepository{firstEligible: makeDomains(120)}
	dynadot := &fakeDynadot{batchCap: 50, failOnBatch: 2}
	service := newTestService(domainRepo, &fakeIdeaRepository{}, dynadot)

	err := service.RunFirstAvailabilityCheck(context.Background())
	require.ErrorIs(t, err, er.ErrProviderUnavailable)
	require.Len(t, dynadot.calls, 2, "remaining batches skipped")
	require.Len(t, domainRepo.appliedBatches, 1, "first batch results kept")
}

func TestSecondCheckOnlyDemotes(t *testing.T) {
	lastChecked := utils.TimePtr(utils.Now().Add(-13 * time.Hour))
	domainRepo := &fakeDomainRepository{
		secondEligible: []models.Domain{
			{ID: 10, Domain: "still.com", LastChecked: lastChecked},
			{ID: 11, Domain: "snatched.com", LastChecked: lastChecked},
		},
	}
	dynadot := &fakeDynadot{
		batchCap: 50,
		verdicts: map[string]enum.Availability{
			"still.com":    enum.AvailabilityAvailable,
			"snatched.com": enum.AvailabilityTaken,
		},
	}
	service := newTestService(domainRepo, &fakeIdeaRepository{}, dynadot)

	require.NoError(t, service.RunSecondAvailabilityCheck(context.Background()))
	require.Len(t, domainRepo.appliedBatches, 1)

	batch := domainRepo.appliedBatches[0]
	require.Empty(t, batch.Available, "confirmation pass never promotes")
	require.Equal(t, []uint64{11}, batch.Taken)
	require.Equal(t, []uint64{10, 11}, batch.Checked)
}

func TestArchiveExpiredDomainsLoopsUntilDrained(t *testing.T) {
	domainRepo := &fakeDomainRepository{archiveChunks: []int{500, 500, 120}}
	service := newTestService(domainRepo, &fakeIdeaRepository{}, &fakeDynadot{})

	require.NoError(t, service.ArchiveExpiredDomains(context.Background()))
	require.Equal(t, 3, domainRepo.archiveCalls)
	require.Equal(t, 500, domainRepo.lastArchiveSize)

	expectedCutoff := utils.ToDate(utils.Now()).AddDate(0, 0, -90)
	require.Equal(t, expectedCutoff, domainRepo.lastArchiveCut)
}

func TestRefreshIdeaOfTheDayWritesNewWinner(t *testing.T) {
	today := utils.ToDate(utils.Now())
	winner := &models.Domain{ID: 42, Domain: "brightidea.com", Score: utils.IntPtr(9)}

	domainRepo := &fakeDomainRepository{
		topScored: map[string]*models.Domain{
			ideaKey(today, enum.ListStatePendingDelete): winner,
		},
		useCases: map[uint64]*models.UseCase{
			42: {DomainID: 42, Title: "Ideas", Description: "A place for bright ideas"},
		},
	}
	ideaRepo := &fakeIdeaRepository{}
	service := newTestService(domainRepo, ideaRepo, &fakeDynadot{})

	require.NoError(t, service.RefreshIdeaOfTheDay(context.Background()))
	require.Len(t, ideaRepo.upserted, 1)

	idea := ideaRepo.upserted[0]
	require.Equal(t, uint64(42), idea.DomainID)
	require.Equal(t, "brightidea.com", idea.Domain)
	require.Equal(t, "A place for bright ideas", idea.UseCase)
	require.Equal(t, today, idea.Date)
	require.Equal(t, []enum.ListState{enum.ListStatePendingDelete}, domainRepo.clearedStates)
	require.Equal(t, []uint64{42}, domainRepo.markedIdeas)
}

func TestRefreshIdeaOfTheDayKeepsUnchangedWinner(t *testing.T) {
	today := utils.ToDate(utils.Now())
	winner := &models.Domain{ID: 42, Domain: "brightidea.com"}

	domainRepo := &fakeDomainRepository{
		topScored: map[string]*models.Domain{
			ideaKey(today, enum.ListStatePendingDelete): winner,
		},
	}
	ideaRepo := &fakeIdeaRepository{
		existing: map[string]*models.IdeaOfTheDay{
			ideaKey(today, enum.ListStatePendingDelete): {DomainID: 42, Domain: "brightidea.com"},
		},
	}
	service := newTestService(domainRepo, ideaRepo, &fakeDynadot{})

	require.NoError(t, service.RefreshIdeaOfTheDay(context.Background()))
	require.Empty(t, ideaRepo.upserted)
	require.Empty(t, domainRepo.markedIdeas)
	require.Empty(t, domainRepo.clearedStates)
}

func TestRefreshIdeaOfTheDayNoCandidates(t *testing.T) {
	domainRepo := &fakeDomainRepository{}
	ideaRepo := &fakeIdeaRepository{}
	service := newTestService(domainRepo, ideaRepo, &fakeDynadot{})

	require.NoError(t, service.RefreshIdeaOfTheDay(context.Background()))
	require.Empty(t, ideaRepo.upserted)
	require.Empty(t, domainRepo.markedIdeas)
}
