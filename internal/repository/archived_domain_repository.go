package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"gorm.io/gorm"

	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/tracing"
)

// ArchivedDomainRepository is read-only: archived rows are written solely by
// the archival job through DomainRepository.ArchiveChunk.
type ArchivedDomainRepository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]models.ArchivedDomain, error)
}

type archivedDomainRepository struct {
	db *gorm.DB
}

func NewArchivedDomainRepository(db *gorm.DB) ArchivedDomainRepository {
	return &archivedDomainRepository{
		db: db,
	}
}

func (r *archivedDomainRepository) Count(ctx context.Context) (int64, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ArchivedDomainRepository.Count")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.ArchivedDomain{}).Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}
	return count, nil
}

func (r *archivedDomainRepository) List(ctx context.Context, limit, offset int) ([]models.ArchivedDomain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ArchivedDomainRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var archived []models.ArchivedDomain
	err := r.db.WithContext(ctx).
		Order("archived_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&archived).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return archived, nil
}
