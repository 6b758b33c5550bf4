package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"gorm.io/gorm"

	"github.com/nametracker/nametracker/internal/enum"
	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/tracing"
	"github.com/nametracker/nametracker/internal/utils"
)

// CheckResultBatch carries the merged outcome of one provider batch.
// Checked holds every domain actually sent, regardless of outcome, so that
// last_checked is stamped even when the status is left untouched.
type CheckResultBatch struct {
	Available []uint64
	Taken     []uint64
	Checked   []uint64
}

type DomainRepository interface {
	Save(ctx context.Context, domain *models.Domain) error
	GetByID(ctx context.Context, id uint64) (*models.Domain, error)
	GetByName(ctx context.Context, name string) (*models.Domain, error)
	List(ctx context.Context, listState enum.ListState, regStatus enum.RegStatus, limit, offset int) ([]models.Domain, error)

	TransitionPendingDue(ctx context.Context, now time.Time) (int64, error)
	SelectFirstCheckEligible(ctx context.Context, now time.Time) ([]models.Domain, error)
	SelectSecondCheckEligible(ctx context.Context, now time.Time, minRecheck time.Duration) ([]models.Domain, error)
	ApplyCheckResults(ctx context.Context, batch CheckResultBatch, checkedAt time.Time) error

	ArchiveChunk(ctx context.Context, cutoff time.Time, chunkSize int, archivedAt time.Time) (int, error)

	TopScored(ctx context.Context, listState enum.ListState, dropDate time.Time) (*models.Domain, error)
	PrimaryUseCase(ctx context.Context, domainID uint64) (*models.UseCase, error)
	MarkIdeaOfTheDay(ctx context.Context, domainID uint64) error
	ClearIdeaOfTheDay(ctx context.Context, listState enum.ListState) error
}

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{
		db: db,
	}
}

// Save normalizes derived fields and persists the record. This is the only
// write path for extension and drop_time.
func (r *domainRepository) Save(ctx context.Context, domain *models.Domain) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("domain", domain.Domain)

	if err := domain.Normalize(); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	now := utils.Now()
	if domain.CreatedAt.IsZero() {
		domain.CreatedAt = now
	}
	domain.UpdatedAt = now

	err := r.db.WithContext(ctx).Save(domain).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *domainRepository) GetByID(ctx context.Context, id uint64) (*models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var domain models.Domain
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &domain, nil
}

func (r *domainRepository) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetByName")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("domain", name)

	var domain models.Domain
	err := r.db.WithContext(ctx).
		Where("domain = ?", name).
		First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &domain, nil
}

func (r *domainRepository) List(ctx context.Context, listState enum.ListState, regStatus enum.RegStatus, limit, offset int) ([]models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	query := r.db.WithContext(ctx).Model(&models.Domain{})
	if listState != "" && listState != enum.ListStateAll {
		query = query.Where("list_state = ?", listState)
	}
	if regStatus != "" {
		query = query.Where("reg_status = ?", regStatus)
	}

	var domains []models.Domain
	err := query.Order("drop_time ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return domains, nil
}

// TransitionPendingDue moves every pending_delete domain whose drop_time has
// arrived to deleted/unverified in one transaction. Top-rated domains get
// top_rated_date stamped with their drop_date before the list flips, so the
// update stays idempotent: once transitioned, rows no longer match.
func (r *domainRepository) TransitionPendingDue(ctx context.Context, now time.Time) (int64, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.TransitionPendingDue")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var transitioned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Domain{}).
			Where("list_state = ? AND drop_time <= ? AND is_top_rated = ?", enum.ListStatePendingDelete, now, true).
			UpdateColumn("top_rated_date", gorm.Expr("drop_date")).
			Error
		if err != nil {
			return err
		}

		result := tx.Model(&models.Domain{}).
			Where("list_state = ? AND drop_time <= ?", enum.ListStatePendingDelete, now).
			UpdateColumn("list_state", enum.ListStateDeleted).
			UpdateColumn("reg_status", enum.RegStatusUnverified).
			UpdateColumn("updated_at", now)
		if result.Error != nil {
			return result.Error
		}
		transitioned = result.RowsAffected
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}

	span.LogFields(tracingLog.Int64("result.transitioned", transitioned))
	return transitioned, nil
}

// SelectFirstCheckEligible snapshots deleted/unverified domains whose
// extension-specific delay after drop_time has elapsed. Extensions without a
// configured delay are excluded by construction.
func (r *domainRepository) SelectFirstCheckEligible(ctx context.Context, now time.Time) ([]models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.SelectFirstCheckEligible")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	delayFilter := r.db.Session(&gorm.Session{NewDB: true})
	for _, ext := range models.CheckableExtensions() {
		delay, _ := models.CheckDelayFor(ext)
		delayFilter = delayFilter.Or("extension = ? AND drop_time <= ?", ext, now.Add(-delay))
	}

	var domains []models.Domain
	err := r.db.WithContext(ctx).
		Where("list_state = ? AND reg_status = ?", enum.ListStateDeleted, enum.RegStatusUnverified).
		Where(delayFilter).
		Order("drop_time ASC, id ASC").
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	span.LogFields(tracingLog.Int("result.count", len(domains)))
	return domains, nil
}

// SelectSecondCheckEligible snapshots deleted domains still available or
// unverified whose last check is older than max(minRecheck, extension delay).
func (r *domainRepository) SelectSecondCheckEligible(ctx context.Context, now time.Time, minRecheck time.Duration) ([]models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.SelectSecondCheckEligible")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	recheckFilter := r.db.Session(&gorm.Session{NewDB: true})
	for _, ext := range models.CheckableExtensions() {
		delay, _ := models.CheckDelayFor(ext)
		if delay < minRecheck {
			delay = minRecheck
		}
		recheckFilter = recheckFilter.Or("extension = ? AND last_checked <= ?", ext, now.Add(-delay))
	}

	var domains []models.Domain
	err := r.db.WithContext(ctx).
		Where("list_state = ? AND reg_status IN ?", enum.ListStateDeleted,
			[]enum.RegStatus{enum.RegStatusAvailable, enum.RegStatusUnverified}).
		Where("last_checked IS NOT NULL").
		Where(recheckFilter).
		Order("last_checked ASC, id ASC").
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	span.LogFields(tracingLog.Int("result.count", len(domains)))
	return domains, nil
}

// ApplyCheckResults merges one provider batch in a single transaction.
// Status moves only forward: available/taken per the batch, while every
// checked domain gets last_checked refreshed.
func (r *domainRepository) ApplyCheckResults(ctx context.Context, batch CheckResultBatch, checkedAt time.Time) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.ApplyCheckResults")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(
		tracingLog.Int("batch.available", len(batch.Available)),
		tracingLog.Int("batch.taken", len(batch.Taken)),
		tracingLog.Int("batch.checked", len(batch.Checked)),
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(batch.Available) > 0 {
			err := tx.Model(&models.Domain{}).
				Where("id IN ?", batch.Available).
				Where("reg_status <> ?", enum.RegStatusTaken).
				UpdateColumn("reg_status", enum.RegStatusAvailable).
				Error
			if err != nil {
				return err
			}
		}
		if len(batch.Taken) > 0 {
			err := tx.Model(&models.Domain{}).
				Where("id IN ?", batch.Taken).
				UpdateColumn("reg_status", enum.RegStatusTaken).
				Error
			if err != nil {
				return err
			}
		}
		if len(batch.Checked) > 0 {
			err := tx.Model(&models.Domain{}).
				Where("id IN ?", batch.Checked).
				UpdateColumn("last_checked", checkedAt).
				UpdateColumn("updated_at", checkedAt).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

// ArchiveChunk copies one chunk of expired domains into archived_domains and
// deletes the originals, all inside a single transaction. Returns how many
// rows were archived; callers loop until it reports zero.
func (r *domainRepository) ArchiveChunk(ctx context.Context, cutoff time.Time, chunkSize int, archivedAt time.Time) (int, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.ArchiveChunk")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var archived int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chunk []models.Domain
		err := tx.Where("drop_date < ?", cutoff).
			Order("id ASC").
			Limit(chunkSize).
			Find(&chunk).Error
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			return nil
		}

		records := make([]models.ArchivedDomain, 0, len(chunk))
		ids := make([]uint64, 0, len(chunk))
		for _, domain := range chunk {
			records = append(records, models.ArchivedFrom(domain, archivedAt))
			ids = append(ids, domain.ID)
		}

		if err := tx.Create(&records).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Domain{}).Error; err != nil {
			return err
		}

		archived = len(chunk)
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}

	span.LogFields(tracingLog.Int("result.archived", archived))
	return archived, nil
}

// TopScored returns the highest-scoring domain for a list state and drop
// date, ties broken by lowest id. Nil when no scored candidate exists.
func (r *domainRepository) TopScored(ctx context.Context, listState enum.ListState, dropDate time.Time) (*models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.TopScored")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("listState", listState.String())

	var domain models.Domain
	err := r.db.WithContext(ctx).
		Where("list_state = ? AND drop_date = ? AND score IS NOT NULL", listState, dropDate).
		Order("score DESC, id ASC").
		First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &domain, nil
}

func (r *domainRepository) PrimaryUseCase(ctx context.Context, domainID uint64) (*models.UseCase, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.PrimaryUseCase")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var useCase models.UseCase
	err := r.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("display_order ASC, id ASC").
		First(&useCase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &useCase, nil
}

// MarkIdeaOfTheDay flags the winner. is_top_rated is set together with
// is_idea_of_the_day: an idea of the day is always top rated.
func (r *domainRepository) MarkIdeaOfTheDay(ctx context.Context, domainID uint64) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.MarkIdeaOfTheDay")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	err := r.db.WithContext(ctx).
		Model(&models.Domain{}).
		Where("id = ?", domainID).
		UpdateColumn("is_idea_of_the_day", true).
		UpdateColumn("is_top_rated", true).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *domainRepository) ClearIdeaOfTheDay(ctx context.Context, listState enum.ListState) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.ClearIdeaOfTheDay")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	err := r.db.WithContext(ctx).
		Model(&models.Domain{}).
		Where("list_state = ? AND is_idea_of_the_day = ?", listState, true).
		UpdateColumn("is_idea_of_the_day", false).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
