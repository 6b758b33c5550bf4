package domain

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/interfaces"
	"github.com/nametracker/nametracker/internal/enum"
	"github.com/nametracker/nametracker/internal/logger"
	"github.com/nametracker/nametracker/internal/metrics"
	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/internal/tracing"
	"github.com/nametracker/nametracker/internal/utils"
)

type domainService struct {
	log          logger.Logger
	cfg          *config.Config
	repositories *repository.Repositories
	dynadot      interfaces.DynadotService
	now          func() time.Time
	wait         func(time.Duration)
}

func NewDomainService(log logger.Logger, cfg *config.Config, repositories *repository.Repositories, dynadot interfaces.DynadotService) interfaces.DomainService {
	return &domainService{
		log:          log,
		cfg:          cfg,
		repositories: repositories,
		dynadot:      dynadot,
		now:          utils.Now,
		wait:         time.Sleep,
	}
}

// TransitionPendingDomains flips every pending_delete domain whose drop time
// has passed to deleted/unverified. Safe to run repeatedly.
func (s *domainService) TransitionPendingDomains(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.TransitionPendingDomains")
	defer span.Finish()
	tracing.TagComponentService(span)

	transitioned, err := s.repositories.DomainRepository.TransitionPendingDue(ctx, s.now())
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	metrics.DomainsTransitioned.Add(float64(transitioned))
	if transitioned > 0 {
		s.log.Infof("(TransitionPendingDomains) transitioned %d domains to deleted", transitioned)
	}
	span.LogFields(tracingLog.Int64("result.transitioned", transitioned))
	return nil
}

// RunFirstAvailabilityCheck verifies deleted domains whose post-drop delay
// has elapsed and records the provider verdict.
func (s *domainService) RunFirstAvailabilityCheck(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.RunFirstAvailabilityCheck")
	defer span.Finish()
	tracing.TagComponentService(span)

	eligible, err := s.repositories.DomainRepository.SelectFirstCheckEligible(ctx, s.now())
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if len(eligible) == 0 {
		return nil
	}

	s.log.Infof("(RunFirstAvailabilityCheck) checking %d domains", len(eligible))
	checked, err := s.dispatchChecks(ctx, eligible, true)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.log.Infof("(RunFirstAvailabilityCheck) checked %d domains", checked)
	return nil
}

// RunSecondAvailabilityCheck re-verifies domains previously reported
// available or still unverified. Only a taken verdict changes the status;
// an available one just refreshes last_checked.
func (s *domainService) RunSecondAvailabilityCheck(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.RunSecondAvailabilityCheck")
	defer span.Finish()
	tracing.TagComponentService(span)

	eligible, err := s.repositories.DomainRepository.SelectSecondCheckEligible(ctx, s.now(), s.cfg.LifecycleConfig.SecondCheckAfter)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if len(eligible) == 0 {
		return nil
	}

	s.log.Infof("(RunSecondAvailabilityCheck) rechecking %d domains", len(eligible))
	checked, err := s.dispatchChecks(ctx, eligible, false)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.log.Infof("(RunSecondAvailabilityCheck) rechecked %d domains", checked)
	return nil
}

// ArchiveExpiredDomains moves domains past the retention window into the
// archive table, one chunk per transaction, until no expired rows remain.
func (s *domainService) ArchiveExpiredDomains(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.ArchiveExpiredDomains")
	defer span.Finish()
	tracing.TagComponentService(span)

	now := s.now()
	cutoff := utils.ToDate(now).AddDate(0, 0, -s.cfg.LifecycleConfig.RetentionDays)
	span.LogKV("cutoff", cutoff.Format("2006-01-02"))

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			tracing.TraceErr(span, err)
			return err
		}

		archived, err := s.repositories.DomainRepository.ArchiveChunk(ctx, cutoff, s.cfg.LifecycleConfig.ArchiveChunkSize, now)
		if err != nil {
			tracing.TraceErr(span, err)
			return err
		}
		if archived == 0 {
			break
		}
		total += archived
		metrics.DomainsArchived.Add(float64(archived))
	}

	if total > 0 {
		s.log.Infof("(ArchiveExpiredDomains) archived %d domains older than %s", total, cutoff.Format("2006-01-02"))
	}
	span.LogFields(tracingLog.Int("result.archived", total))
	return nil
}

// RefreshIdeaOfTheDay recomputes the top-scored winner for yesterday and
// today across the configured list states. The stored idea and the domain
// flags change only when the winner differs from the recorded one.
func (s *domainService) RefreshIdeaOfTheDay(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.RefreshIdeaOfTheDay")
	defer span.Finish()
	tracing.TagComponentService(span)

	today := utils.ToDate(s.now())
	dates := []time.Time{today.AddDate(0, 0, -1), today}

	for _, listStateName := range s.cfg.LifecycleConfig.IdeaListStates {
		listState := enum.ListState(listStateName)
		for _, date := range dates {
			if err := s.refreshIdeaFor(ctx, date, listState); err != nil {
				tracing.TraceErr(span, err)
				return err
			}
		}
	}
	return nil
}

func (s *domainService) refreshIdeaFor(ctx context.Context, date time.Time, listState enum.ListState) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.refreshIdeaFor")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.LogKV("date", date.Format("2006-01-02"), "listState", listState.String())

	winner, err := s.repositories.DomainRepository.TopScored(ctx, listState, date)
	if err != nil {
		return err
	}
	if winner == nil {
		return nil
	}

	current, err := s.repositories.IdeaOfTheDayRepository.GetForDate(ctx, date, listState)
	if err != nil {
		return err
	}
	if current != nil && current.DomainID == winner.ID {
		return nil
	}

	idea := &models.IdeaOfTheDay{
		Date:      date,
		ListState: listState,
		DomainID:  winner.ID,
		Domain:    winner.Domain,
	}
	useCase, err := s.repositories.DomainRepository.PrimaryUseCase(ctx, winner.ID)
	if err != nil {
		return err
	}
	if useCase != nil {
		idea.UseCase = useCase.Description
	}

	if err := s.repositories.IdeaOfTheDayRepository.Upsert(ctx, idea); err != nil {
		return err
	}
	if err := s.repositories.DomainRepository.ClearIdeaOfTheDay(ctx, listState); err != nil {
		return err
	}
	if err := s.repositories.DomainRepository.MarkIdeaOfTheDay(ctx, winner.ID); err != nil {
		return err
	}

	metrics.IdeasRefreshed.Inc()
	s.log.Infof("(RefreshIdeaOfTheDay) new idea for %s/%s: %s", date.Format("2006-01-02"), listState, winner.Domain)
	return nil
}
