package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nametracker/nametracker/internal/enum"
	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/tracing"
	"github.com/nametracker/nametracker/internal/utils"
)

type IdeaOfTheDayRepository interface {
	GetForDate(ctx context.Context, date time.Time, listState enum.ListState) (*models.IdeaOfTheDay, error)
	Upsert(ctx context.Context, idea *models.IdeaOfTheDay) error
	GetLatest(ctx context.Context, listState enum.ListState) (*models.IdeaOfTheDay, error)
}

type ideaOfTheDayRepository struct {
	db *gorm.DB
}

func NewIdeaOfTheDayRepository(db *gorm.DB) IdeaOfTheDayRepository {
	return &ideaOfTheDayRepository{
		db: db,
	}
}

func (r *ideaOfTheDayRepository) GetForDate(ctx context.Context, date time.Time, listState enum.ListState) (*models.IdeaOfTheDay, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "IdeaOfTheDayRepository.GetForDate")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("date", date.Format("2006-01-02"), "listState", listState.String())

	var idea models.IdeaOfTheDay
	err := r.db.WithContext(ctx).
		Where("date = ? AND list_state = ?", utils.ToDate(date), listState).
		First(&idea).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &idea, nil
}

// Upsert writes the (date, list_state) row, replacing the previous winner if
// one exists. The unique index guarantees at most one row per key.
func (r *ideaOfTheDayRepository) Upsert(ctx context.Context, idea *models.IdeaOfTheDay) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "IdeaOfTheDayRepository.Upsert")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("domain", idea.Domain)

	now := utils.Now()
	idea.Date = utils.ToDate(idea.Date)
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	idea.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "list_state"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"domain_id", "domain", "use_case", "updated_at",
			}),
		}).
		Create(idea).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *ideaOfTheDayRepository) GetLatest(ctx context.Context, listState enum.ListState) (*models.IdeaOfTheDay, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "IdeaOfTheDayRepository.GetLatest")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var idea models.IdeaOfTheDay
	err := r.db.WithContext(ctx).
		Where("list_state = ?", listState).
		Order("date DESC").
		First(&idea).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &idea, nil
}
