package domain

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/nametracker/nametracker/internal/enum"
	er "github.com/nametracker/nametracker/internal/errors"
	"github.com/nametracker/nametracker/internal/metrics"
	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/internal/tracing"
)

// splitBatches partitions domains into ordered batches of at most batchCap
// entries. Every input domain lands in exactly one batch.
func splitBatches(domains []models.Domain, batchCap int) [][]models.Domain {
	if len(domains) == 0 {
		return nil
	}
	batches := make([][]models.Domain, 0, (len(domains)+batchCap-1)/batchCap)
	for start := 0; start < len(domains); start += batchCap {
		end := start + batchCap
		if end > len(domains) {
			end = len(domains)
		}
		batches = append(batches, domains[start:end])
	}
	return batches
}

// dispatchChecks sends each batch to the provider with a fixed spacing
// between calls and merges each batch result as soon as it arrives. A
// provider outage aborts the remaining batches; results already merged are
// kept. markAvailable controls whether an available verdict is written back,
// confirmation passes only demote to taken.
func (s *domainService) dispatchChecks(ctx context.Context, domains []models.Domain, markAvailable bool) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.dispatchChecks")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.LogFields(tracingLog.Int("request.domains", len(domains)))

	checked := 0
	for i, batch := range splitBatches(domains, s.dynadot.BatchCap()) {
		if i > 0 {
			s.wait(s.cfg.LifecycleConfig.BatchSpacing)
		}
		if err := ctx.Err(); err != nil {
			tracing.TraceErr(span, err)
			return checked, err
		}

		names := make([]string, len(batch))
		for j, d := range batch {
			names[j] = d.Domain
		}

		availability, err := s.dynadot.CheckBulkAvailability(ctx, names)
		if err != nil {
			if errors.Is(err, er.ErrProviderUnavailable) {
				s.log.Warnf("(dispatchChecks) provider unavailable, aborting with %d of %d domains checked: %v", checked, len(domains), err)
			}
			tracing.TraceErr(span, err)
			return checked, err
		}

		result := repository.CheckResultBatch{}
		for _, d := range batch {
			result.Checked = append(result.Checked, d.ID)
			verdict := availability[strings.ToLower(d.Domain)]
			metrics.DomainsChecked.WithLabelValues(verdict.String()).Inc()
			switch verdict {
			case enum.AvailabilityAvailable:
				if markAvailable {
					result.Available = append(result.Available, d.ID)
				}
			case enum.AvailabilityTaken:
				result.Taken = append(result.Taken, d.ID)
			}
		}

		if err := s.repositories.DomainRepository.ApplyCheckResults(ctx, result, s.now()); err != nil {
			tracing.TraceErr(span, err)
			return checked, err
		}
		checked += len(batch)
	}

	span.LogFields(tracingLog.Int("result.checked", checked))
	return checked, nil
}
